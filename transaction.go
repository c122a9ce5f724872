package folio

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Kind is a typed string identifying a transaction variant.
type Kind string

const (
	KindBuy                Kind = "buy"
	KindSell               Kind = "sell"
	KindDividend           Kind = "dividend"
	KindCoupon             Kind = "coupon"
	KindBonusIssue         Kind = "bonus-capital-increase"
	KindRightsExercised    Kind = "rights-exercised"
	KindRightsNotExercised Kind = "rights-not-exercised"
)

// Transaction is the closed set of ledger entries the engine understands.
// Each variant carries only the fields meaningful to it; invalid combinations
// are unrepresentable because values are built through the New* constructors.
// A transaction is immutable once created.
type Transaction interface {
	Kind() Kind
	When() Date
	Symbol() string // the asset's symbol

	sealed()
}

// base holds the fields common to all transaction variants.
type base struct {
	on     Date
	symbol string
}

func (b base) When() Date     { return b.on }
func (b base) Symbol() string { return b.symbol }
func (b base) sealed()        {}

func newBase(on Date, symbol string) (base, error) {
	if symbol == "" {
		return base{}, fmt.Errorf("transaction is missing an asset symbol")
	}
	if on.IsZero() {
		on = Today()
	}
	return base{on: on, symbol: symbol}, nil
}

// Buy is an ordinary market purchase.
type Buy struct {
	base
	Quantity Quantity
	Price    Money // per unit, in the asset's currency
}

func (Buy) Kind() Kind { return KindBuy }

// Cost is the total amount paid.
func (t Buy) Cost() Money { return t.Price.Mul(t.Quantity) }

func NewBuy(on Date, symbol string, quantity Quantity, price Money) (Buy, error) {
	b, err := newBase(on, symbol)
	if err != nil {
		return Buy{}, err
	}
	if !quantity.IsPositive() {
		return Buy{}, fmt.Errorf("buy quantity must be positive, got %s", quantity)
	}
	if !price.IsPositive() {
		return Buy{}, fmt.Errorf("buy price must be positive, got %s", price)
	}
	return Buy{base: b, Quantity: quantity, Price: price}, nil
}

// Sell is an ordinary market sale.
type Sell struct {
	base
	Quantity Quantity
	Price    Money // per unit, in the asset's currency
}

func (Sell) Kind() Kind { return KindSell }

// Proceeds is the total amount received.
func (t Sell) Proceeds() Money { return t.Price.Mul(t.Quantity) }

func NewSell(on Date, symbol string, quantity Quantity, price Money) (Sell, error) {
	b, err := newBase(on, symbol)
	if err != nil {
		return Sell{}, err
	}
	if !quantity.IsPositive() {
		return Sell{}, fmt.Errorf("sell quantity must be positive, got %s", quantity)
	}
	if !price.IsPositive() {
		return Sell{}, fmt.Errorf("sell price must be positive, got %s", price)
	}
	return Sell{base: b, Quantity: quantity, Price: price}, nil
}

// Dividend is income paid per held unit. It does not affect the position.
type Dividend struct {
	base
	Quantity Quantity // units the dividend was paid on
	PerShare Money
}

func (Dividend) Kind() Kind { return KindDividend }

// Amount is the total income received.
func (t Dividend) Amount() Money { return t.PerShare.Mul(t.Quantity) }

func NewDividend(on Date, symbol string, quantity Quantity, perShare Money) (Dividend, error) {
	b, err := newBase(on, symbol)
	if err != nil {
		return Dividend{}, err
	}
	if quantity.IsNegative() {
		return Dividend{}, fmt.Errorf("dividend quantity cannot be negative, got %s", quantity)
	}
	if perShare.IsNegative() {
		return Dividend{}, fmt.Errorf("dividend per-share amount cannot be negative, got %s", perShare)
	}
	return Dividend{base: b, Quantity: quantity, PerShare: perShare}, nil
}

// Coupon is a fixed-income interest payment. Like a dividend it leaves the
// position untouched.
type Coupon struct {
	base
	Amount Money
}

func (Coupon) Kind() Kind { return KindCoupon }

func NewCoupon(on Date, symbol string, amount Money) (Coupon, error) {
	b, err := newBase(on, symbol)
	if err != nil {
		return Coupon{}, err
	}
	if amount.IsNegative() {
		return Coupon{}, fmt.Errorf("coupon amount cannot be negative, got %s", amount)
	}
	return Coupon{base: b, Amount: amount}, nil
}

// BonusIssue is a free capital increase: the issuer grants Rate% new shares
// per held share at zero cost. Quantity grows, cost basis does not, so the
// average cost dilutes.
type BonusIssue struct {
	base
	Rate decimal.Decimal // percent; 100 doubles the share count
}

func (BonusIssue) Kind() Kind { return KindBonusIssue }

func NewBonusIssue(on Date, symbol string, rate decimal.Decimal) (BonusIssue, error) {
	b, err := newBase(on, symbol)
	if err != nil {
		return BonusIssue{}, err
	}
	if !rate.IsPositive() {
		return BonusIssue{}, fmt.Errorf("bonus issue rate must be positive, got %s", rate)
	}
	return BonusIssue{base: b, Rate: rate}, nil
}

// RightsExercised is a paid capital increase the holder subscribed to:
// Rate% new shares per held share, paid at Price per new share.
type RightsExercised struct {
	base
	Rate  decimal.Decimal // percent of the pre-existing position
	Price Money           // paid per new share
}

func (RightsExercised) Kind() Kind { return KindRightsExercised }

func NewRightsExercised(on Date, symbol string, rate decimal.Decimal, price Money) (RightsExercised, error) {
	b, err := newBase(on, symbol)
	if err != nil {
		return RightsExercised{}, err
	}
	if !rate.IsPositive() {
		return RightsExercised{}, fmt.Errorf("rights rate must be positive, got %s", rate)
	}
	if price.IsNegative() {
		return RightsExercised{}, fmt.Errorf("rights price cannot be negative, got %s", price)
	}
	return RightsExercised{base: b, Rate: rate, Price: price}, nil
}

// RightsNotExercised records a paid capital increase the holder opted out of.
// Neither quantity nor cost basis change; the dilution shows up downstream as
// an unrealized loss because the market price reflects the enlarged capital.
type RightsNotExercised struct {
	base
	Rate decimal.Decimal // percent
}

func (RightsNotExercised) Kind() Kind { return KindRightsNotExercised }

func NewRightsNotExercised(on Date, symbol string, rate decimal.Decimal) (RightsNotExercised, error) {
	b, err := newBase(on, symbol)
	if err != nil {
		return RightsNotExercised{}, err
	}
	if !rate.IsPositive() {
		return RightsNotExercised{}, fmt.Errorf("rights rate must be positive, got %s", rate)
	}
	return RightsNotExercised{base: b, Rate: rate}, nil
}

// sortTransactions orders a ledger slice by trade date, keeping the caller's
// order for transactions on the same day (creation order breaks the tie).
func sortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].When().Before(txs[j].When())
	})
}
