// Package scenario applies stress transformations to yield curves. A
// Scenario is a closed sum type: the three variants defined here are the
// only implementations, so Apply's handling is exhaustive and adding a new
// kind is a compile-checked extension point.
package scenario

import (
	"errors"
	"fmt"
	"sort"

	"RateSim/internal/domain/models"
	"RateSim/internal/services/curve"
)

// ErrEmptyShockSet is returned when CustomShocks carries zero entries.
var ErrEmptyShockSet = errors.New("scenario: empty shock set")

// Scenario is a stress transformation over a curve. The sealed method keeps
// the variant set closed to this package.
type Scenario interface {
	// ID is a stable label for the stressed curve, used for traceability.
	ID() string

	apply(base curve.Curve) (curve.Curve, error)
}

// Apply produces a new stressed Curve; the input curve is never mutated, so
// base and stressed curves can be compared side by side.
func Apply(base curve.Curve, s Scenario) (curve.Curve, error) {
	stressed, err := s.apply(base)
	if err != nil {
		return curve.Curve{}, err
	}
	return stressed.WithID(s.ID()), nil
}

// ParallelShift adds a constant offset, in basis points, to every node.
// A zero shift is a valid identity scenario.
type ParallelShift struct {
	BP float64
}

func (s ParallelShift) ID() string {
	return fmt.Sprintf("parallel:%+gbp", s.BP)
}

func (s ParallelShift) apply(base curve.Curve) (curve.Curve, error) {
	obs := base.Observations()
	shift := s.BP / 100
	for i := range obs {
		obs[i].Rate += shift
	}
	return curve.Build(obs, base.Interpolation())
}

// Steepener shifts nodes at or below the pivot tenor by ShortBP and nodes
// above it by LongBP. The resulting kink at the pivot reflects discrete
// steepener execution and is preserved, not smoothed. Sign is the caller's
// semantic choice: negative short with positive long steepens, the reverse
// flattens; no direction is validated.
type Steepener struct {
	ShortBP    float64
	LongBP     float64
	PivotTenor float64
}

func (s Steepener) ID() string {
	return fmt.Sprintf("steepener:%+g/%+gbp@%g", s.ShortBP, s.LongBP, s.PivotTenor)
}

func (s Steepener) apply(base curve.Curve) (curve.Curve, error) {
	obs := base.Observations()
	for i := range obs {
		if obs[i].Tenor <= s.PivotTenor {
			obs[i].Rate += s.ShortBP / 100
		} else {
			obs[i].Rate += s.LongBP / 100
		}
	}
	return curve.Build(obs, base.Interpolation())
}

// CustomShocks shifts individual tenors by per-tenor basis-point amounts.
// A shock at a tenor not present in the curve inserts a new node at the
// interpolated base rate plus the shock, so arbitrary points can be stressed.
type CustomShocks struct {
	Shocks map[float64]float64 // tenor -> shock in bp
}

func (s CustomShocks) ID() string {
	return fmt.Sprintf("custom:%d", len(s.Shocks))
}

func (s CustomShocks) apply(base curve.Curve) (curve.Curve, error) {
	if len(s.Shocks) == 0 {
		return curve.Curve{}, ErrEmptyShockSet
	}
	obs := base.Observations()
	existing := make(map[float64]int, len(obs))
	for i, o := range obs {
		existing[o.Tenor] = i
	}

	tenors := make([]float64, 0, len(s.Shocks))
	for t := range s.Shocks {
		tenors = append(tenors, t)
	}
	sort.Float64s(tenors)

	for _, t := range tenors {
		shock := s.Shocks[t] / 100
		if i, ok := existing[t]; ok {
			obs[i].Rate += shock
			continue
		}
		obs = append(obs, models.Observation{Tenor: t, Rate: base.RateAt(t) + shock})
	}
	// Build re-sorts inserted nodes by tenor.
	return curve.Build(obs, base.Interpolation())
}
