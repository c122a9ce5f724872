package folio

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// CashFlow is one dated flow in an irregular series. Money invested is
// negative, money returned (including a terminal valuation) is positive.
type CashFlow struct {
	On     Date
	Amount decimal.Decimal
}

// XIRR computes the annualized money-weighted rate of return of an irregular
// cash-flow series. Input order is irrelevant; flows are re-sorted by date.
// It returns false whenever no meaningful rate exists: empty input, no sign
// change, a flat derivative, or a diverging iteration. The rate itself is the
// only float in the engine; amounts stay decimal.
func XIRR(flows []CashFlow) (float64, bool) {
	if len(flows) == 0 {
		return 0, false
	}

	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].On.Before(sorted[j].On) })

	// out = money put in (absolute), in = money taken out.
	out, in := decimal.Decimal{}, decimal.Decimal{}
	sameDay := true
	for _, f := range sorted {
		switch {
		case f.Amount.IsNegative():
			out = out.Add(f.Amount.Neg())
		case f.Amount.IsPositive():
			in = in.Add(f.Amount)
		}
		if f.On != sorted[0].On {
			sameDay = false
		}
	}

	// Without at least one flow in each direction there is no return to measure.
	if out.IsZero() || in.IsZero() {
		return 0, false
	}

	// All flows on one day: the date spread is zero, so annualizing is
	// undefined. Report the simple percentage return instead.
	if sameDay {
		return in.Sub(out).Div(out).InexactFloat64(), true
	}

	first := sorted[0].On
	amounts := make([]float64, len(sorted))
	years := make([]float64, len(sorted))
	for i, f := range sorted {
		amounts[i] = f.Amount.InexactFloat64()
		years[i] = float64(first.Days(f.On)) / 365.0
	}

	// Seed Newton-Raphson with the simple return stretched to a 365-day period.
	span := years[len(years)-1]
	rate := in.Sub(out).Div(out).InexactFloat64() / span

	const (
		maxIterations = 100
		tolerance     = 1e-9
	)
	for i := 0; i < maxIterations; i++ {
		f, fPrime := 0.0, 0.0
		for j := range amounts {
			d := math.Pow(1+rate, years[j])
			f += amounts[j] / d
			fPrime -= amounts[j] * years[j] / (d * (1 + rate))
		}
		if !isFinite(f) || !isFinite(fPrime) || fPrime == 0 {
			return 0, false
		}
		next := rate - f/fPrime
		if !isFinite(next) || next <= -1 {
			return 0, false
		}
		if math.Abs(next-rate) < tolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
