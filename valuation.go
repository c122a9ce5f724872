package folio

import (
	"context"

	"github.com/shopspring/decimal"
)

// Line is the valued view of one position, in the reporting currency.
type Line struct {
	Position
	Price         Money // unit price in the asset's currency (contract value for pensions)
	MarketValue   Money
	CostBasis     Money // converted to the reporting currency
	GainLoss      Money
	GainLossPct   Percent
	AllocationPct Percent
	Stale         bool // true when the oracle failed and a fallback was used
}

// Valuation is the result of valuing a set of positions at one date in one
// reporting currency.
type Valuation struct {
	On       Date // zero means "live"
	Currency string
	Lines    []Line

	TotalValue Money
	TotalCost  Money
	TotalGain  Money
}

// GainLossPct is the portfolio-level unrealized return against cost.
func (v Valuation) GainLossPct() Percent {
	return PercentOf(v.TotalGain, v.TotalCost)
}

// rateKey memoizes FX lookups within a single valuation pass, so a portfolio
// with thirty USD assets asks the oracle for USD once, not thirty times.
type rateKey struct {
	from, to string
	on       Date
}

type rateResult struct {
	rate decimal.Decimal
	ok   bool
}

type valuer struct {
	oracle Oracle
	rates  map[rateKey]rateResult
}

// rate resolves from→to as of a date, memoized per pass. Failures degrade to
// a rate of 1: a wrong-but-present number beats aborting the whole valuation.
// Failed lookups are memoized like successful ones, so a down oracle is asked
// once per tuple, not once per position.
func (v *valuer) rate(ctx context.Context, from, to string, on Date) (decimal.Decimal, bool) {
	if from == to || from == "" || to == "" {
		return decimal.NewFromInt(1), true
	}
	key := rateKey{from: from, to: to, on: on}
	if res, ok := v.rates[key]; ok {
		return res.rate, res.ok
	}
	r, err := v.oracle.Rate(ctx, from, to, on)
	res := rateResult{rate: r, ok: err == nil && r.IsPositive()}
	if !res.ok {
		res.rate = decimal.NewFromInt(1)
	}
	v.rates[key] = res
	return res.rate, res.ok
}

// price resolves the asset's unit price as of a date, falling back to the
// asset's last known price, then to zero. The bool reports freshness.
func (v *valuer) price(ctx context.Context, asset Asset, on Date) (Money, bool) {
	p, err := v.oracle.Price(ctx, asset.Symbol, on)
	if err == nil && !p.IsNegative() && !p.IsZero() {
		return M(p.Amount(), asset.Currency), true
	}
	if !asset.LastPrice.IsZero() {
		return asset.LastPrice, false
	}
	return M(0, asset.Currency), false
}

// Value converts positions into the reporting currency as of a date (zero
// date means live prices). A single asset's oracle failure never aborts the
// pass: the affected line is computed from fallbacks and flagged Stale.
func Value(ctx context.Context, positions []Position, currency string, on Date, oracle Oracle) Valuation {
	v := &valuer{oracle: oracle, rates: make(map[rateKey]rateResult)}

	result := Valuation{
		On:         on,
		Currency:   currency,
		Lines:      make([]Line, 0, len(positions)),
		TotalValue: M(0, currency),
		TotalCost:  M(0, currency),
		TotalGain:  M(0, currency),
	}

	for _, pos := range positions {
		price, fresh := v.price(ctx, pos.Asset, on)

		var native Money
		if pos.Asset.Class == PensionContract {
			// A pension contract is one aggregate value, whatever the unit count.
			native = price
		} else {
			native = price.Mul(pos.Quantity)
		}

		rate, rateOK := v.rate(ctx, pos.Asset.Currency, currency, on)
		value := native.Convert(rate, currency)
		cost := pos.CostBasis.Convert(rate, currency)
		gain := value.Sub(cost)

		line := Line{
			Position:    pos,
			Price:       price,
			MarketValue: value,
			CostBasis:   cost,
			GainLoss:    gain,
			GainLossPct: PercentOf(gain, cost),
			Stale:       !fresh || !rateOK,
		}

		result.Lines = append(result.Lines, line)
		result.TotalValue = result.TotalValue.Add(value)
		result.TotalCost = result.TotalCost.Add(cost)
		result.TotalGain = result.TotalGain.Add(gain)
	}

	// Allocation needs the grand total, so it is a second pass.
	for i := range result.Lines {
		result.Lines[i].AllocationPct = PercentOf(result.Lines[i].MarketValue, result.TotalValue)
	}

	return result
}
