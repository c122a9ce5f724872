package folio

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Oracle resolves market prices and currency cross-rates as of a given date.
// A zero date asks for the latest available value. Implementations talk to
// external data sources and may fail or return stale data; the valuation
// engine treats every error as a soft failure and falls back.
type Oracle interface {
	// Price returns the asset's market price on (or last known before) the
	// given date, denominated in the asset's own currency. For pension
	// contracts the "price" is the contract's total reported value.
	Price(ctx context.Context, symbol string, on Date) (Money, error)

	// Rate returns the value of 1 unit of from in to, as of the given date.
	Rate(ctx context.Context, from, to string, on Date) (decimal.Decimal, error)
}

type pricePoint struct {
	on    Date
	price Money
}

// StaticOracle serves prices and rates from in-memory histories. It backs
// tests and offline runs, and doubles as the zero-value "knows nothing"
// oracle that makes every valuation fall back to last known prices.
type StaticOracle struct {
	prices map[string][]pricePoint
	rates  map[string][]ratePoint
}

type ratePoint struct {
	on   Date
	rate decimal.Decimal
}

func NewStaticOracle() *StaticOracle {
	return &StaticOracle{
		prices: make(map[string][]pricePoint),
		rates:  make(map[string][]ratePoint),
	}
}

// SetPrice records the asset's price on a date. Points may be added in any order.
func (o *StaticOracle) SetPrice(symbol string, on Date, price Money) {
	pts := append(o.prices[symbol], pricePoint{on: on, price: price})
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].on.Before(pts[j].on) })
	o.prices[symbol] = pts
}

// SetRate records the from→to cross-rate on a date.
func (o *StaticOracle) SetRate(from, to string, on Date, rate decimal.Decimal) {
	key := from + "/" + to
	pts := append(o.rates[key], ratePoint{on: on, rate: rate})
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].on.Before(pts[j].on) })
	o.rates[key] = pts
}

func (o *StaticOracle) Price(_ context.Context, symbol string, on Date) (Money, error) {
	pts := o.prices[symbol]
	for i := len(pts) - 1; i >= 0; i-- {
		if on.IsZero() || !pts[i].on.After(on) {
			return pts[i].price, nil
		}
	}
	return Money{}, fmt.Errorf("no price for %s on %s", symbol, on)
}

func (o *StaticOracle) Rate(_ context.Context, from, to string, on Date) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	pts := o.rates[from+"/"+to]
	for i := len(pts) - 1; i >= 0; i-- {
		if on.IsZero() || !pts[i].on.After(on) {
			return pts[i].rate, nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("no %s/%s rate on %s", from, to, on)
}

var _ Oracle = (*StaticOracle)(nil)
