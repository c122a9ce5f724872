package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ozgurk/folio"
)

// The ledger file is one JSON document describing a portfolio: its assets and
// the full transaction history. Amounts may be JSON numbers or strings, both
// decode to exact decimals.

type assetRecord struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Class     string          `json:"class"`
	LastPrice decimal.Decimal `json:"lastPrice"`
	PricedAt  time.Time       `json:"pricedAt"`
}

type txRecord struct {
	Kind     string          `json:"kind"`
	Date     folio.Date      `json:"date"`
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	PerShare decimal.Decimal `json:"perShare"`
	Amount   decimal.Decimal `json:"amount"`
	Rate     decimal.Decimal `json:"rate"`
}

type ledgerRecord struct {
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Assets       []assetRecord `json:"assets"`
	Transactions []txRecord    `json:"transactions"`
}

// LoadPortfolio reads and decodes the ledger file into a portfolio. The
// portfolio ID is derived from its name, so reruns address the same snapshot
// series.
func LoadPortfolio(filename string) (folio.Portfolio, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return folio.Portfolio{}, fmt.Errorf("reading ledger file: %w", err)
	}
	var rec ledgerRecord
	if err := json.Unmarshal(content, &rec); err != nil {
		return folio.Portfolio{}, fmt.Errorf("parsing ledger file %q: %w", filename, err)
	}
	return rec.portfolio()
}

func (rec ledgerRecord) portfolio() (folio.Portfolio, error) {
	p := folio.Portfolio{
		ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(rec.Name)),
		Name:     rec.Name,
		Currency: rec.Currency,
	}
	if p.Currency == "" {
		return p, fmt.Errorf("ledger %q is missing a reporting currency", rec.Name)
	}

	for _, a := range rec.Assets {
		class, err := folio.ParseAssetClass(a.Class)
		if err != nil {
			return p, fmt.Errorf("asset %q: %w", a.Symbol, err)
		}
		asset := folio.NewAsset(a.Symbol, a.Name, a.Currency, class)
		if !a.LastPrice.IsZero() {
			asset, err = asset.WithPrice(folio.M(a.LastPrice, a.Currency), a.PricedAt)
			if err != nil {
				return p, fmt.Errorf("asset %q: %w", a.Symbol, err)
			}
		}
		p.Assets = append(p.Assets, asset)
	}

	for i, t := range rec.Transactions {
		tx, err := t.transaction(rec)
		if err != nil {
			return p, fmt.Errorf("transaction %d: %w", i, err)
		}
		p.Transactions = append(p.Transactions, tx)
	}
	return p, nil
}

func (t txRecord) transaction(rec ledgerRecord) (folio.Transaction, error) {
	currency := rec.Currency
	for _, a := range rec.Assets {
		if a.Symbol == t.Symbol {
			currency = a.Currency
		}
	}

	var (
		tx  folio.Transaction
		err error
	)
	switch folio.Kind(t.Kind) {
	case folio.KindBuy:
		tx, err = folio.NewBuy(t.Date, t.Symbol, folio.Q(t.Quantity), folio.M(t.Price, currency))
	case folio.KindSell:
		tx, err = folio.NewSell(t.Date, t.Symbol, folio.Q(t.Quantity), folio.M(t.Price, currency))
	case folio.KindDividend:
		tx, err = folio.NewDividend(t.Date, t.Symbol, folio.Q(t.Quantity), folio.M(t.PerShare, currency))
	case folio.KindCoupon:
		tx, err = folio.NewCoupon(t.Date, t.Symbol, folio.M(t.Amount, currency))
	case folio.KindBonusIssue:
		tx, err = folio.NewBonusIssue(t.Date, t.Symbol, t.Rate)
	case folio.KindRightsExercised:
		tx, err = folio.NewRightsExercised(t.Date, t.Symbol, t.Rate, folio.M(t.Price, currency))
	case folio.KindRightsNotExercised:
		tx, err = folio.NewRightsNotExercised(t.Date, t.Symbol, t.Rate)
	default:
		return nil, fmt.Errorf("unknown transaction kind %q", t.Kind)
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}
