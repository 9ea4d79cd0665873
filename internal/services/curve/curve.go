package curve

import (
	"errors"
	"sort"

	"RateSim/internal/domain/models"
)

// Interpolation selects how rates between observed tenors are derived.
// It is a configuration choice, never inferred from the data.
type Interpolation string

const (
	// InterpLinear interpolates the rate linearly between bracketing tenors.
	InterpLinear Interpolation = "linear"
	// InterpFlatForward holds the forward rate piecewise constant between
	// nodes, i.e. rate*tenor is linear in tenor. Standard for the short end
	// of government curves.
	InterpFlatForward Interpolation = "flat_forward"
)

// ErrNoData is returned when a curve is built from zero observations.
var ErrNoData = errors.New("curve: no observations")

// BaseID is the curve ID assigned to curves built directly from a feed.
const BaseID = "base"

// Curve is an immutable yield curve: observations sorted ascending by tenor
// plus an interpolation strategy. Transformations construct new Curves, so a
// base curve and any number of derived stressed curves can coexist.
type Curve struct {
	id     string
	obs    []models.Observation
	interp Interpolation
}

// Build constructs a Curve from observations, sorting by tenor if needed.
// At least one observation is required.
func Build(obs []models.Observation, kind Interpolation) (Curve, error) {
	if len(obs) == 0 {
		return Curve{}, ErrNoData
	}
	sorted := make([]models.Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tenor < sorted[j].Tenor })
	return Curve{id: BaseID, obs: sorted, interp: kind}, nil
}

// WithID returns a copy of the curve carrying the given ID. Used by the
// scenario engine to label stressed curves for traceability.
func (c Curve) WithID(id string) Curve {
	c.id = id
	return c
}

// ID names the curve: "base" for feed-built curves, a scenario label otherwise.
func (c Curve) ID() string { return c.id }

// Interpolation returns the configured interpolation kind.
func (c Curve) Interpolation() Interpolation { return c.interp }

// Observations returns a copy of the curve's nodes, sorted by tenor.
func (c Curve) Observations() []models.Observation {
	out := make([]models.Observation, len(c.obs))
	copy(out, c.obs)
	return out
}

// Len returns the number of nodes.
func (c Curve) Len() int { return len(c.obs) }

// RateAt returns the rate (percent) at an arbitrary tenor. An exact node
// match returns that node's rate with no interpolation drift. Tenors outside
// the observed range extrapolate flat from the nearest boundary; linear tail
// extrapolation is deliberately avoided as unstable.
func (c Curve) RateAt(tenor float64) float64 {
	n := len(c.obs)
	if n == 1 {
		return c.obs[0].Rate
	}
	if tenor <= c.obs[0].Tenor {
		return c.obs[0].Rate
	}
	if tenor >= c.obs[n-1].Tenor {
		return c.obs[n-1].Rate
	}

	// Find the bracketing pair: obs[i-1].Tenor < tenor <= obs[i].Tenor.
	i := sort.Search(n, func(k int) bool { return c.obs[k].Tenor >= tenor })
	if c.obs[i].Tenor == tenor {
		return c.obs[i].Rate
	}
	lo, hi := c.obs[i-1], c.obs[i]

	switch c.interp {
	case InterpFlatForward:
		// Constant forward between nodes: r(t)*t linear in t.
		w := (tenor - lo.Tenor) / (hi.Tenor - lo.Tenor)
		rt := lo.Rate*lo.Tenor + w*(hi.Rate*hi.Tenor-lo.Rate*lo.Tenor)
		return rt / tenor
	default:
		w := (tenor - lo.Tenor) / (hi.Tenor - lo.Tenor)
		return lo.Rate + w*(hi.Rate-lo.Rate)
	}
}
