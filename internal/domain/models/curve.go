package models

import "time"

// Observation is a single point on a yield curve: time-to-maturity in years
// and the observed rate in percent. Rates may be zero or negative; tenors are
// strictly positive. Observations are immutable once parsed.
type Observation struct {
	Tenor float64 `json:"tenor"`
	Rate  float64 `json:"rate"`
}

// CurveSnapshot is one fetched-and-parsed state of a feed source: the
// observation set plus the feed's own business date and when we fetched it.
type CurveSnapshot struct {
	SourceID     string        `json:"source_id"`
	AsOf         string        `json:"as_of"` // business date as reported by the feed
	FetchedAt    time.Time     `json:"fetched_at"`
	Observations []Observation `json:"observations"`
}
