package folio

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssetClass categorizes an asset for valuation purposes. Most classes are
// informational; PensionContract changes how market value is computed (the
// contract's reported price is its total value, not a per-unit price).
type AssetClass int

const (
	Stock AssetClass = iota
	ETF
	Fund
	Bond
	CashAsset
	Crypto
	PensionContract
	OtherAsset
)

func (c AssetClass) String() string {
	switch c {
	case Stock:
		return "stock"
	case ETF:
		return "etf"
	case Fund:
		return "fund"
	case Bond:
		return "bond"
	case CashAsset:
		return "cash"
	case Crypto:
		return "crypto"
	case PensionContract:
		return "pension"
	case OtherAsset:
		return "other"
	default:
		return "unknown"
	}
}

// ParseAssetClass parses an asset class name.
func ParseAssetClass(s string) (AssetClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stock":
		return Stock, nil
	case "etf":
		return ETF, nil
	case "fund":
		return Fund, nil
	case "bond":
		return Bond, nil
	case "cash":
		return CashAsset, nil
	case "crypto":
		return Crypto, nil
	case "pension", "bes":
		return PensionContract, nil
	case "other":
		return OtherAsset, nil
	default:
		return OtherAsset, fmt.Errorf("unknown asset class %q", s)
	}
}

// Asset identifies a holdable instrument. LastPrice is the most recently
// observed price, always denominated in the asset's own currency; it is the
// valuation fallback when the oracle cannot serve a fresher one.
type Asset struct {
	ID        uuid.UUID
	Symbol    string
	Name      string
	Currency  string
	Class     AssetClass
	LastPrice Money
	PricedAt  time.Time
}

// NewAsset creates an asset with a fresh ID.
func NewAsset(symbol, name, currency string, class AssetClass) Asset {
	return Asset{
		ID:       uuid.New(),
		Symbol:   symbol,
		Name:     name,
		Currency: currency,
		Class:    class,
	}
}

// WithPrice returns a copy of the asset carrying a new last-known price.
// The price must be denominated in the asset's currency.
func (a Asset) WithPrice(price Money, at time.Time) (Asset, error) {
	if price.Currency() != "" && price.Currency() != a.Currency {
		return a, fmt.Errorf("price currency %s does not match asset currency %s", price.Currency(), a.Currency)
	}
	a.LastPrice = M(price.Amount(), a.Currency)
	a.PricedAt = at
	return a, nil
}
