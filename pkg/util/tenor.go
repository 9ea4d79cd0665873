package util

import (
	"strconv"
	"strings"
)

// ParseTenor converts a tenor string to a year fraction. Accepted forms:
// plain numbers ("0.25", "10"), suffix notation ("3M", "2Y", "1W", "30D"),
// and Treasury column names ("3 Mo", "10 Yr"). Returns (0, false) when the
// string cannot be read.
func ParseTenor(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}

	num := s
	var unit string
	switch {
	case strings.HasSuffix(s, "MO"):
		num, unit = strings.TrimSuffix(s, "MO"), "M"
	case strings.HasSuffix(s, "YR"):
		num, unit = strings.TrimSuffix(s, "YR"), "Y"
	case strings.HasSuffix(s, "W"):
		num, unit = strings.TrimSuffix(s, "W"), "W"
	case strings.HasSuffix(s, "M"):
		num, unit = strings.TrimSuffix(s, "M"), "M"
	case strings.HasSuffix(s, "Y"):
		num, unit = strings.TrimSuffix(s, "Y"), "Y"
	case strings.HasSuffix(s, "D"):
		num, unit = strings.TrimSuffix(s, "D"), "D"
	default:
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "D":
		return v / 365, true
	case "W":
		return v * 7 / 365, true
	case "M":
		return v / 12, true
	default:
		return v, true
	}
}
