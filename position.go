package folio

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Position is the derived holding of one asset in one portfolio as of a
// cutoff date. It is recomputed from the ledger, never persisted. Quantity is
// never negative: the ledger replay floors at zero.
type Position struct {
	Asset     Asset
	Quantity  Quantity
	CostBasis Money // cumulative amount paid for the units still held
}

// AverageCost is the cost basis per held unit, zero when the position is empty.
func (p Position) AverageCost() Money {
	if !p.Quantity.IsPositive() {
		return M(0, p.CostBasis.Currency())
	}
	return p.CostBasis.Div(p.Quantity)
}

// positionOf replays one asset's transactions up to and including the cutoff
// date. A zero cutoff means no cutoff.
//
// Corporate actions follow issuer semantics: a bonus issue grants rate% new
// shares for free (cost basis unchanged, average cost dilutes); exercised
// rights add rate% new shares paid at the subscription price; rights left
// unexercised change nothing here — the dilution reaches the holder through
// the market price.
func positionOf(asset Asset, txs []Transaction, cutoff Date) Position {
	quantity := Q(0)
	costBasis := M(0, asset.Currency)

	for _, tx := range txs {
		if !cutoff.IsZero() && tx.When().After(cutoff) {
			continue
		}
		switch v := tx.(type) {
		case Buy:
			quantity = quantity.Add(v.Quantity)
			costBasis = costBasis.Add(v.Cost())
		case Sell:
			if quantity.IsPositive() {
				avg := costBasis.Div(quantity)
				costBasis = costBasis.Sub(avg.Mul(v.Quantity))
			}
			quantity = quantity.Sub(v.Quantity)
		case BonusIssue:
			// rate% new shares at zero cost
			quantity = quantity.Add(quantity.Mul(Q(v.Rate.Div(hundred))))
		case RightsExercised:
			newShares := quantity.Mul(Q(v.Rate.Div(hundred)))
			quantity = quantity.Add(newShares)
			costBasis = costBasis.Add(v.Price.Mul(newShares))
		case Dividend, Coupon, RightsNotExercised:
			// income and declined rights leave the position untouched
		}

		// No short positions are representable: over-selling zeroes the position.
		if !quantity.IsPositive() {
			quantity = Q(0)
			costBasis = M(0, asset.Currency)
		}
	}

	return Position{Asset: asset, Quantity: quantity, CostBasis: costBasis}
}

// Positions reconstructs every asset's position in the portfolio as of the
// cutoff date (zero cutoff means the full ledger). Assets with no
// transactions yield an empty position and are skipped.
func (p Portfolio) Positions(cutoff Date) []Position {
	positions := make([]Position, 0, len(p.Assets))
	for _, asset := range p.Assets {
		txs := p.transactionsOf(asset.Symbol)
		if len(txs) == 0 {
			continue
		}
		positions = append(positions, positionOf(asset, txs, cutoff))
	}
	return positions
}
