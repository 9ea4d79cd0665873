package models

// Requests for the curve HTTP endpoints. Defined in domain for consistency and reuse.

type CurveRequest struct {
	Source string `query:"source" json:"source" default:"ust"`
}

// ScenarioRequest selects a stress scenario. Shock magnitudes are in basis
// points. Custom shock keys are tenor strings ("0.25", "3 Mo", "10Y").
type ScenarioRequest struct {
	Type      string             `json:"type" validate:"required,oneof=parallel steepener custom"`
	Magnitude float64            `json:"magnitude"`
	ShortBP   float64            `json:"short_bp"`
	LongBP    float64            `json:"long_bp"`
	Pivot     float64            `json:"pivot" default:"2"`
	Shocks    map[string]float64 `json:"shocks"`
}

type AnalyzeRequest struct {
	Source   string          `json:"source" default:"ust"`
	Scenario ScenarioRequest `json:"scenario" validate:"required"`
}

type RiskRequest struct {
	Source     string           `json:"source" default:"ust"`
	Instrument Instrument       `json:"instrument" validate:"required"`
	Scenario   *ScenarioRequest `json:"scenario,omitempty"`
}

// AnalyzeResponse carries the base curve, the shocked curve, and per-tenor
// risk metrics computed against the shocked curve.
type AnalyzeResponse struct {
	AsOf          string         `json:"date"`
	ScenarioID    string         `json:"scenario_id"`
	OriginalCurve []Observation  `json:"original_curve"`
	ShockedCurve  []Observation  `json:"shocked_curve"`
	Metrics       []TenorMetrics `json:"metrics"`
}

// CurveResponse is the plain base-curve payload for plotting.
type CurveResponse struct {
	AsOf  string        `json:"date"`
	Curve []Observation `json:"curve"`
}

// RiskResponse pairs base and (optionally) stressed sensitivities for one
// instrument so the two can be rendered side by side.
type RiskResponse struct {
	AsOf     string      `json:"date"`
	Base     RiskResult  `json:"base"`
	Stressed *RiskResult `json:"stressed,omitempty"`
}
