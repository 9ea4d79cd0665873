package models

// Instrument is a notional fixed-coupon bond used as the subject of risk
// computation. Coupon is the annual rate in percent; notional in currency units.
type Instrument struct {
	Maturity float64 `json:"maturity" validate:"gt=0,lte=100"` // years
	Coupon   float64 `json:"coupon" validate:"gte=0"`          // percent per annum, 0 for zero-coupon
	Notional float64 `json:"notional" validate:"gte=0"`
}

// RiskResult holds first-order rate sensitivities for an instrument against a
// specific curve. CurveID names the producing curve ("base" or a scenario label)
// so base and stressed results can be compared side by side.
type RiskResult struct {
	CurveID     string  `json:"curve_id"`
	Price       float64 `json:"price"`
	DV01        float64 `json:"dv01"`         // currency per 1bp move
	ModDuration float64 `json:"mod_duration"` // percent price change per 1% yield move
}

// TenorMetrics is the per-tenor breakdown returned by scenario analysis:
// the shocked yield, its move in basis points, and zero-coupon duration/DV01
// at that tenor.
type TenorMetrics struct {
	Tenor    float64 `json:"tenor"`
	Yield    float64 `json:"yield"`
	DeltaBPS float64 `json:"delta_bps"`
	Duration float64 `json:"duration"`
	DV01     float64 `json:"dv01"`
}
