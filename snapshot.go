package folio

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SnapshotKind distinguishes the snapshot variants.
type SnapshotKind string

const (
	PortfolioSnapshot     SnapshotKind = "portfolio"
	CashFlowSnapshot      SnapshotKind = "cashflow"
	SalarySavingsSnapshot SnapshotKind = "salary-savings"
	DividendSnapshot      SnapshotKind = "dividend"
)

// Snapshot is an immutable point-in-time record of an entity's state: a
// header with aggregated totals plus one item per asset or category. Once
// created it is never mutated, with a single exception: IRR is backfilled on
// portfolio snapshots after the predecessor is known.
type Snapshot struct {
	ID       uuid.UUID
	Kind     SnapshotKind
	ParentID string // the owning portfolio / stream / currency series
	On       Date
	Name     string
	Slug     string
	Currency string

	TotalValue Money
	TotalCost  Money
	GainLoss   Money

	// IRRPct is the annualized money-weighted return in percent, portfolio
	// snapshots only. Nil when not yet computed or not computable — the
	// first-ever snapshot of a portfolio has no predecessor and stays nil.
	IRRPct *float64

	Items []SnapshotItem
}

// SnapshotItem is one breakdown row. It belongs to exactly one snapshot and
// is deleted with it. Zero-value rows may exist; chart rendering downstream
// skips them.
type SnapshotItem struct {
	Label         string
	Quantity      Quantity
	CostBasis     Money
	Value         Money
	GainLoss      Money
	GainLossPct   Percent
	AllocationPct Percent
}

// GainLossPct is the snapshot-level unrealized return against cost.
func (s *Snapshot) GainLossPct() Percent {
	return PercentOf(s.GainLoss, s.TotalCost)
}

// ErrMismatchedParents rejects comparisons across unrelated entities.
var ErrMismatchedParents = errors.New("snapshots belong to different parents")

// Comparison pairs two snapshots of the same series, base first.
type Comparison struct {
	Base    *Snapshot
	Compare *Snapshot
}

// NewComparison validates that both snapshots describe the same logical
// series: same variant and same parent (for dividend snapshots the parent is
// the currency). Mismatches are a hard validation error, caught before
// anything is persisted.
func NewComparison(base, compare *Snapshot) (Comparison, error) {
	if base == nil || compare == nil {
		return Comparison{}, errors.New("comparison needs two snapshots")
	}
	if base.Kind != compare.Kind {
		return Comparison{}, fmt.Errorf("cannot compare a %s snapshot with a %s snapshot: %w",
			base.Kind, compare.Kind, ErrMismatchedParents)
	}
	if base.ParentID != compare.ParentID {
		return Comparison{}, fmt.Errorf("snapshot %s and %s: %w", base.Slug, compare.Slug, ErrMismatchedParents)
	}
	return Comparison{Base: base, Compare: compare}, nil
}

// ValueChange is the absolute difference of total value, compare minus base.
func (c Comparison) ValueChange() Money {
	return c.Compare.TotalValue.Sub(c.Base.TotalValue)
}

// ValueChangePct is the relative difference of total value.
func (c Comparison) ValueChangePct() Percent {
	return PercentOf(c.ValueChange(), c.Base.TotalValue)
}
