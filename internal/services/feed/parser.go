// Package feed parses the Treasury daily yield-curve CSV into tenor/rate
// observations. Parsing is a pure transformation: raw bytes in, observations
// out, no side effects.
package feed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"RateSim/internal/domain/models"
)

var (
	// ErrMalformed is returned when the document is not a well-formed CSV
	// with a header row and at least one data row.
	ErrMalformed = errors.New("feed: malformed document")
	// ErrEmpty is returned when the document parses but yields zero
	// tenor/rate pairs.
	ErrEmpty = errors.New("feed: no observations")
)

// DuplicateTenorError reports two observations at the same tenor.
type DuplicateTenorError struct {
	Tenor float64
}

func (e *DuplicateTenorError) Error() string {
	return fmt.Sprintf("feed: duplicate tenor %g", e.Tenor)
}

// InvalidRateError reports a rate that decodes to a non-finite value.
// Negative and zero rates are valid data and do not trigger this error.
type InvalidRateError struct {
	Tenor float64
	Raw   string
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("feed: invalid rate %q at tenor %g", e.Raw, e.Tenor)
}

// tenorColumns maps Treasury CSV header names to year fractions.
var tenorColumns = map[string]float64{
	"1 Mo":  1.0 / 12,
	"2 Mo":  2.0 / 12,
	"3 Mo":  0.25,
	"4 Mo":  4.0 / 12,
	"6 Mo":  0.5,
	"1 Yr":  1,
	"2 Yr":  2,
	"3 Yr":  3,
	"5 Yr":  5,
	"7 Yr":  7,
	"10 Yr": 10,
	"20 Yr": 20,
	"30 Yr": 30,
}

// Parse extracts the latest business day's observations from a Treasury
// daily-rates CSV. The first column of the data row is the business date;
// "ND" (no data) cells are skipped. Returns the date string alongside the
// observation set.
func Parse(raw []byte) (string, []models.Observation, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil, ErrEmpty
	}
	r := csv.NewReader(bytes.NewReader(trimmed))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	row, err := r.Read()
	if err != nil {
		return "", nil, fmt.Errorf("%w: no data rows", ErrMalformed)
	}
	if len(row) == 0 {
		return "", nil, fmt.Errorf("%w: empty data row", ErrMalformed)
	}
	asOf := strings.TrimSpace(row[0])

	seen := make(map[float64]bool, len(tenorColumns))
	obs := make([]models.Observation, 0, len(tenorColumns))
	for i, h := range header {
		tenor, ok := tenorColumns[strings.TrimSpace(h)]
		if !ok || i >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" || cell == "ND" {
			continue
		}
		rate, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return "", nil, &InvalidRateError{Tenor: tenor, Raw: cell}
		}
		if seen[tenor] {
			return "", nil, &DuplicateTenorError{Tenor: tenor}
		}
		seen[tenor] = true
		obs = append(obs, models.Observation{Tenor: tenor, Rate: rate})
	}

	if len(obs) == 0 {
		return "", nil, ErrEmpty
	}
	return asOf, obs, nil
}
