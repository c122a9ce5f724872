package folio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNoSnapshot is returned by stores when no snapshot matches.
var ErrNoSnapshot = errors.New("no snapshot found")

// SnapshotStore persists snapshots. Save must write the header and all item
// rows atomically: a snapshot is never visible half-made.
type SnapshotStore interface {
	Save(ctx context.Context, s *Snapshot) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	// LatestBefore returns the most recent snapshot of the series strictly
	// before the given date, or ErrNoSnapshot.
	LatestBefore(ctx context.Context, kind SnapshotKind, parentID string, on Date) (*Snapshot, error)
	// SetIRR backfills the IRR of an already persisted portfolio snapshot.
	SetIRR(ctx context.Context, id uuid.UUID, irrPct float64) error
}

// System orchestrates the engine: it reconstructs positions, values them
// through the oracle, and persists snapshots. One System is safe for
// concurrent use; snapshot creation for the same entity is serialized with a
// per-entity lock, different entities proceed in parallel.
type System struct {
	oracle Oracle
	store  SnapshotStore
	log    *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSystem wires an oracle and a snapshot store together.
func NewSystem(oracle Oracle, store SnapshotStore, log *logrus.Logger) *System {
	if log == nil {
		log = logrus.New()
	}
	return &System{
		oracle: oracle,
		store:  store,
		log:    log,
		locks:  make(map[string]*sync.Mutex),
	}
}

// entityLock returns the mutex serializing snapshot creation for one entity.
func (s *System) entityLock(parentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[parentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[parentID] = l
	}
	return l
}

// Positions reconstructs the portfolio's holdings as of a date
// (zero date means the full ledger).
func (s *System) Positions(p Portfolio, asOf Date) []Position {
	return p.Positions(asOf)
}

// Valuation values the portfolio's holdings in its reporting currency.
func (s *System) Valuation(ctx context.Context, p Portfolio, asOf Date) Valuation {
	return Value(ctx, p.Positions(asOf), p.Currency, asOf, s.oracle)
}

// uniqueSlug asks the store whether a candidate slug is taken. Store errors
// degrade to "taken" so a flaky store can only cause regeneration, never a
// duplicate.
func (s *System) uniqueSlug(ctx context.Context, name string) string {
	return UniqueSlug(name, func(slug string) bool {
		exists, err := s.store.SlugExists(ctx, slug)
		if err != nil {
			s.log.WithError(err).WithField("slug", slug).Warn("slug lookup failed, regenerating")
			return true
		}
		return exists
	})
}

// CreatePortfolioSnapshot values the portfolio as of the given date (zero
// means today) and persists an immutable record of it. The IRR is computed
// when the portfolio has an earlier snapshot; the first-ever snapshot has no
// predecessor and its IRR stays nil.
func (s *System) CreatePortfolioSnapshot(ctx context.Context, p Portfolio, on Date, name string) (*Snapshot, error) {
	if on.IsZero() {
		on = Today()
	}
	parent := p.ID.String()
	lock := s.entityLock(parent)
	lock.Lock()
	defer lock.Unlock()

	valuation := s.Valuation(ctx, p, on)

	if name == "" {
		name = fmt.Sprintf("%s %s", p.Name, on)
	}
	snap := &Snapshot{
		ID:         uuid.New(),
		Kind:       PortfolioSnapshot,
		ParentID:   parent,
		On:         on,
		Name:       name,
		Slug:       s.uniqueSlug(ctx, name),
		Currency:   p.Currency,
		TotalValue: valuation.TotalValue,
		TotalCost:  valuation.TotalCost,
		GainLoss:   valuation.TotalGain,
	}
	for _, line := range valuation.Lines {
		snap.Items = append(snap.Items, SnapshotItem{
			Label:         line.Asset.Symbol,
			Quantity:      line.Quantity,
			CostBasis:     line.CostBasis,
			Value:         line.MarketValue,
			GainLoss:      line.GainLoss,
			GainLossPct:   line.GainLossPct,
			AllocationPct: line.AllocationPct,
		})
	}

	// The IRR needs a predecessor; resolve it before saving so the lookup
	// cannot find the snapshot being built.
	_, err := s.store.LatestBefore(ctx, PortfolioSnapshot, parent, on)
	switch {
	case err == nil:
		if irr, ok := irrOf(p, on, snap.TotalValue); ok {
			snap.IRRPct = &irr
		}
	case errors.Is(err, ErrNoSnapshot):
		// first snapshot ever: IRR stays nil
	default:
		return nil, fmt.Errorf("looking up previous snapshot: %w", err)
	}

	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving portfolio snapshot: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"portfolio": p.Name,
		"slug":      snap.Slug,
		"total":     snap.TotalValue.String(),
	}).Info("portfolio snapshot created")
	return snap, nil
}

// UpdateIRR recomputes and backfills the money-weighted return of an already
// persisted portfolio snapshot. It is a no-op (and stays nil) when the
// snapshot is the portfolio's first or the series has no computable rate.
func (s *System) UpdateIRR(ctx context.Context, p Portfolio, snap *Snapshot) error {
	if snap.Kind != PortfolioSnapshot {
		return fmt.Errorf("cannot update IRR of a %s snapshot", snap.Kind)
	}
	if _, err := s.store.LatestBefore(ctx, PortfolioSnapshot, snap.ParentID, snap.On); err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			return nil
		}
		return err
	}
	irr, ok := irrOf(p, snap.On, snap.TotalValue)
	if !ok {
		return nil
	}
	if err := s.store.SetIRR(ctx, snap.ID, irr); err != nil {
		return fmt.Errorf("backfilling IRR: %w", err)
	}
	snap.IRRPct = &irr
	return nil
}

// irrOf builds the cash-flow series of every buy (outflow) and sell (inflow)
// up to the snapshot date, closes it with the snapshot's total value as the
// terminal inflow, and solves it. The result is in percent.
func irrOf(p Portfolio, on Date, terminal Money) (float64, bool) {
	var flows []CashFlow
	for _, tx := range p.Transactions {
		if tx.When().After(on) {
			continue
		}
		switch v := tx.(type) {
		case Buy:
			flows = append(flows, CashFlow{On: v.When(), Amount: v.Cost().Amount().Neg()})
		case Sell:
			flows = append(flows, CashFlow{On: v.When(), Amount: v.Proceeds().Amount()})
		}
	}
	if len(flows) == 0 {
		return 0, false
	}
	flows = append(flows, CashFlow{On: on, Amount: terminal.Amount()})
	rate, ok := XIRR(flows)
	if !ok {
		return 0, false
	}
	return 100 * rate, true
}

// CreateCashFlowSnapshot aggregates the stream's entries within the period's
// window (clipped to the snapshot date) into one item per category.
func (s *System) CreateCashFlowSnapshot(ctx context.Context, plan CashFlowPlan, period Period, on Date, name string) (*Snapshot, error) {
	if on.IsZero() {
		on = Today()
	}
	parent := plan.ID.String()
	lock := s.entityLock(parent)
	lock.Lock()
	defer lock.Unlock()

	window := period.Window(on)

	// Bucket sums per category, keeping first-appearance order.
	var order []string
	sums := make(map[string]Money)
	total := M(0, plan.Currency)
	for _, e := range plan.Entries {
		if !window.Contains(e.On) {
			continue
		}
		if _, seen := sums[e.Category]; !seen {
			order = append(order, e.Category)
			sums[e.Category] = M(0, plan.Currency)
		}
		sums[e.Category] = sums[e.Category].Add(e.Amount)
		total = total.Add(e.Amount)
	}

	if name == "" {
		name = fmt.Sprintf("%s %s", plan.Name, on)
	}
	snap := &Snapshot{
		ID:         uuid.New(),
		Kind:       CashFlowSnapshot,
		ParentID:   parent,
		On:         on,
		Name:       name,
		Slug:       s.uniqueSlug(ctx, name),
		Currency:   plan.Currency,
		TotalValue: total,
		TotalCost:  M(0, plan.Currency),
		GainLoss:   M(0, plan.Currency),
	}
	for _, category := range order {
		snap.Items = append(snap.Items, SnapshotItem{Label: category, Value: sums[category]})
	}

	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving cash-flow snapshot: %w", err)
	}
	s.log.WithFields(logrus.Fields{"stream": plan.Name, "slug": snap.Slug}).Info("cash-flow snapshot created")
	return snap, nil
}

// CreateSalarySavingsSnapshot sums the flow's salary and savings within the
// snapshot date's month (clipped to the date itself).
func (s *System) CreateSalarySavingsSnapshot(ctx context.Context, flow SalaryFlow, on Date, name string) (*Snapshot, error) {
	if on.IsZero() {
		on = Today()
	}
	parent := flow.ID.String()
	lock := s.entityLock(parent)
	lock.Lock()
	defer lock.Unlock()

	window := Monthly.Window(on)
	salary := M(0, flow.Currency)
	savings := M(0, flow.Currency)
	for _, r := range flow.Records {
		if !window.Contains(r.On) {
			continue
		}
		salary = salary.Add(r.Salary)
		savings = savings.Add(r.Savings)
	}

	if name == "" {
		name = fmt.Sprintf("%s %s", flow.Name, on)
	}
	snap := &Snapshot{
		ID:         uuid.New(),
		Kind:       SalarySavingsSnapshot,
		ParentID:   parent,
		On:         on,
		Name:       name,
		Slug:       s.uniqueSlug(ctx, name),
		Currency:   flow.Currency,
		TotalValue: savings,
		TotalCost:  M(0, flow.Currency),
		GainLoss:   M(0, flow.Currency),
	}
	snap.Items = append(snap.Items,
		SnapshotItem{Label: "salary", Value: salary, AllocationPct: PercentOf(salary, salary)},
		SnapshotItem{Label: "savings", Value: savings, AllocationPct: PercentOf(savings, salary)})

	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving salary-savings snapshot: %w", err)
	}
	s.log.WithFields(logrus.Fields{"flow": flow.Name, "slug": snap.Slug}).Info("salary-savings snapshot created")
	return snap, nil
}

// CreateDividendSnapshot sums dividend and coupon income per asset over a
// calendar year, for assets denominated in the given currency. The currency
// is the series' parent: dividend snapshots of the same currency compare.
func (s *System) CreateDividendSnapshot(ctx context.Context, portfolios []Portfolio, year int, currency string, on Date, name string) (*Snapshot, error) {
	if on.IsZero() {
		on = Today()
	}
	lock := s.entityLock(currency)
	lock.Lock()
	defer lock.Unlock()

	window := Range{From: NewDate(year, 1, 1), To: NewDate(year, 12, 31)}

	var order []string
	sums := make(map[string]Money)
	total := M(0, currency)
	add := func(symbol string, amount Money) {
		if _, seen := sums[symbol]; !seen {
			order = append(order, symbol)
			sums[symbol] = M(0, currency)
		}
		sums[symbol] = sums[symbol].Add(amount)
		total = total.Add(amount)
	}
	for _, p := range portfolios {
		for _, tx := range p.Transactions {
			if !window.Contains(tx.When()) {
				continue
			}
			asset, ok := p.Asset(tx.Symbol())
			if !ok || asset.Currency != currency {
				continue
			}
			switch v := tx.(type) {
			case Dividend:
				add(asset.Symbol, M(v.Amount().Amount(), currency))
			case Coupon:
				add(asset.Symbol, M(v.Amount.Amount(), currency))
			}
		}
	}

	if name == "" {
		name = fmt.Sprintf("%s dividends %d", currency, year)
	}
	snap := &Snapshot{
		ID:         uuid.New(),
		Kind:       DividendSnapshot,
		ParentID:   currency,
		On:         on,
		Name:       name,
		Slug:       s.uniqueSlug(ctx, name),
		Currency:   currency,
		TotalValue: total,
		TotalCost:  M(0, currency),
		GainLoss:   M(0, currency),
	}
	for _, symbol := range order {
		snap.Items = append(snap.Items, SnapshotItem{
			Label:         symbol,
			Value:         sums[symbol],
			AllocationPct: PercentOf(sums[symbol], total),
		})
	}

	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving dividend snapshot: %w", err)
	}
	s.log.WithFields(logrus.Fields{"currency": currency, "year": year, "slug": snap.Slug}).Info("dividend snapshot created")
	return snap, nil
}
