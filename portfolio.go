package folio

import "github.com/google/uuid"

// Portfolio is an immutable view of one portfolio's ledger, as handed over by
// the caller. The engine never reaches back into the caller's storage: assets
// and transactions travel with the portfolio value itself. A transaction may
// belong to several portfolios; each portfolio carries its own copy.
type Portfolio struct {
	ID           uuid.UUID
	Name         string
	Currency     string // reporting currency
	Assets       []Asset
	Transactions []Transaction
}

// Asset returns the portfolio's asset with this symbol, or false.
func (p Portfolio) Asset(symbol string) (Asset, bool) {
	for _, a := range p.Assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return Asset{}, false
}

// transactionsOf returns the asset's transactions in trade-date order,
// ties broken by the ledger's creation order.
func (p Portfolio) transactionsOf(symbol string) []Transaction {
	var txs []Transaction
	for _, tx := range p.Transactions {
		if tx.Symbol() == symbol {
			txs = append(txs, tx)
		}
	}
	sortTransactions(txs)
	return txs
}

// CashFlowEntry is a single dated, categorized cash movement in a stream.
// Inflows are positive, outflows negative.
type CashFlowEntry struct {
	On       Date
	Category string
	Amount   Money
}

// CashFlowPlan is an immutable view of one cash-flow stream's entries.
type CashFlowPlan struct {
	ID       uuid.UUID
	Name     string
	Currency string
	Entries  []CashFlowEntry
}

// SalaryRecord is one month's salary and the part of it saved.
type SalaryRecord struct {
	On      Date
	Salary  Money
	Savings Money
}

// SalaryFlow is an immutable view of a salary/savings stream.
type SalaryFlow struct {
	ID       uuid.UUID
	Name     string
	Currency string
	Records  []SalaryRecord
}
