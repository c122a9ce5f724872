package folio

import (
	"github.com/shopspring/decimal"
)

// money helpers shared across the test files.
func TRY(v float64) Money { return M(v, "TRY") }
func USD(v float64) Money { return M(v, "USD") }

func rate(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// must unwraps a constructor result; the test data is known good.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err.Error())
	}
	return v
}

func buy(on string, symbol string, qty, price float64) Transaction {
	return must(NewBuy(MustParseDate(on), symbol, Q(qty), TRY(price)))
}

func sell(on string, symbol string, qty, price float64) Transaction {
	return must(NewSell(MustParseDate(on), symbol, Q(qty), TRY(price)))
}
