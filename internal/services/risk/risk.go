// Package risk prices notional bonds off a yield curve and derives DV01 and
// Modified Duration via finite differences.
package risk

import (
	"errors"
	"math"

	"RateSim/internal/domain/models"
	"RateSim/internal/services/curve"
	"RateSim/internal/services/scenario"
)

// ErrInvalidInstrument is returned for instruments with zero, negative, or
// implausibly long maturity.
var ErrInvalidInstrument = errors.New("risk: invalid instrument")

// bumpBP is the finite-difference bump used for DV01.
const bumpBP = 1.0

// MaxMaturity caps instrument maturity in years. Cash-flow generation is
// linear in maturity, so an unbounded value from a request would translate
// into unbounded work.
const MaxMaturity = 100.0

// Compute prices the instrument against the curve and derives DV01 and
// Modified Duration.
//
// DV01 is price(base) - price(base + 1bp parallel), so both legs share the
// same discounting convention and the sensitivity is unbiased. Modified
// Duration normalizes DV01 by price * 0.0001; a zero-notional instrument
// yields all-zero sensitivities without a division error.
func Compute(inst models.Instrument, c curve.Curve) (models.RiskResult, error) {
	if inst.Maturity <= 0 || inst.Maturity > MaxMaturity {
		return models.RiskResult{}, ErrInvalidInstrument
	}
	if inst.Notional == 0 {
		return models.RiskResult{CurveID: c.ID()}, nil
	}

	base := Price(inst, c)

	bumped, err := scenario.Apply(c, scenario.ParallelShift{BP: bumpBP})
	if err != nil {
		return models.RiskResult{}, err
	}
	dv01 := base - Price(inst, bumped)

	var modDur float64
	if base != 0 {
		modDur = dv01 / (base * 0.0001)
	}

	return models.RiskResult{
		CurveID:     c.ID(),
		Price:       base,
		DV01:        dv01,
		ModDuration: modDur,
	}, nil
}

// Price discounts the instrument's cash flows at curve rates looked up at
// each cash-flow tenor, using periodic annual compounding. Annual coupons
// are laid back from maturity; the principal pays at maturity.
func Price(inst models.Instrument, c curve.Curve) float64 {
	var pv float64
	for _, cf := range cashflows(inst) {
		r := c.RateAt(cf.tenor) / 100
		pv += cf.amount / math.Pow(1+r, cf.tenor)
	}
	return pv
}

type cashflow struct {
	tenor  float64
	amount float64
}

func cashflows(inst models.Instrument) []cashflow {
	coupon := inst.Notional * inst.Coupon / 100
	var flows []cashflow
	if coupon != 0 {
		// Coupons at maturity and annually before it, while the tenor stays
		// positive.
		for t := inst.Maturity - 1; t > 0; t-- {
			flows = append(flows, cashflow{tenor: t, amount: coupon})
		}
	}
	flows = append(flows, cashflow{tenor: inst.Maturity, amount: inst.Notional + coupon})
	return flows
}

// ZeroCouponMetrics computes Modified Duration and DV01 for a unit zero-coupon
// bond at a single curve point, per 100 face. Used for per-tenor metric
// readouts on scenario analysis.
//
//	ModDuration = tenor / (1 + y)
//	DV01        = price * ModDuration * 0.0001
func ZeroCouponMetrics(yieldPct, tenor float64) (modDuration, dv01 float64) {
	if tenor == 0 {
		return 0, 0
	}
	y := yieldPct / 100
	modDuration = tenor / (1 + y)
	price := 100 / math.Pow(1+y, tenor)
	dv01 = price * modDuration * 0.0001
	return modDuration, dv01
}
