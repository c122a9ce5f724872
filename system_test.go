package folio

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// fakeStore is a minimal in-memory SnapshotStore for exercising the system.
type fakeStore struct {
	snaps []*Snapshot
	slugs map[string]bool
}

func newFakeStore() *fakeStore { return &fakeStore{slugs: make(map[string]bool)} }

func (f *fakeStore) Save(_ context.Context, s *Snapshot) error {
	if f.slugs[s.Slug] {
		return fmt.Errorf("slug %q already taken", s.Slug)
	}
	copied := *s
	f.snaps = append(f.snaps, &copied)
	f.slugs[s.Slug] = true
	return nil
}

func (f *fakeStore) SlugExists(_ context.Context, slug string) (bool, error) {
	return f.slugs[slug], nil
}

func (f *fakeStore) LatestBefore(_ context.Context, kind SnapshotKind, parentID string, on Date) (*Snapshot, error) {
	var best *Snapshot
	for _, s := range f.snaps {
		if s.Kind != kind || s.ParentID != parentID || !s.On.Before(on) {
			continue
		}
		if best == nil || s.On.After(best.On) {
			best = s
		}
	}
	if best == nil {
		return nil, ErrNoSnapshot
	}
	return best, nil
}

func (f *fakeStore) SetIRR(_ context.Context, id uuid.UUID, irrPct float64) error {
	for _, s := range f.snaps {
		if s.ID == id {
			s.IRRPct = &irrPct
			return nil
		}
	}
	return ErrNoSnapshot
}

func testPortfolio() Portfolio {
	return Portfolio{
		ID:       uuid.New(),
		Name:     "Main",
		Currency: "TRY",
		Assets:   []Asset{stock("THYAO")},
		Transactions: []Transaction{
			buy("2024-01-01", "THYAO", 10, 100), // cost 1000
		},
	}
}

func TestCreatePortfolioSnapshot_First(t *testing.T) {
	ctx := context.Background()
	oracle := NewStaticOracle()
	oracle.SetPrice("THYAO", MustParseDate("2024-06-30"), TRY(120))
	store := newFakeStore()
	system := NewSystem(oracle, store, nil)

	p := testPortfolio()
	snap, err := system.CreatePortfolioSnapshot(ctx, p, MustParseDate("2024-06-30"), "H1 close")
	if err != nil {
		t.Fatalf("CreatePortfolioSnapshot() error = %v", err)
	}

	if got, want := snap.TotalValue, TRY(1200); !got.Equal(want) {
		t.Errorf("TotalValue = %v, want %v", got, want)
	}
	if got, want := snap.TotalCost, TRY(1000); !got.Equal(want) {
		t.Errorf("TotalCost = %v, want %v", got, want)
	}
	if snap.IRRPct != nil {
		t.Errorf("IRRPct = %v, want nil for the first-ever snapshot", *snap.IRRPct)
	}
	if len(snap.Items) != 1 || snap.Items[0].Label != "THYAO" {
		t.Fatalf("Items = %+v, want one THYAO item", snap.Items)
	}
	if !strings.HasPrefix(snap.Slug, "h1-close#") {
		t.Errorf("Slug = %q, want h1-close#xxxxxx", snap.Slug)
	}
	if len(store.snaps) != 1 {
		t.Errorf("stored %d snapshots, want 1", len(store.snaps))
	}
}

func TestCreatePortfolioSnapshot_SecondGetsIRR(t *testing.T) {
	ctx := context.Background()
	oracle := NewStaticOracle()
	oracle.SetPrice("THYAO", MustParseDate("2024-06-30"), TRY(120))
	oracle.SetPrice("THYAO", MustParseDate("2025-06-30"), TRY(150))
	store := newFakeStore()
	system := NewSystem(oracle, store, nil)

	p := testPortfolio()
	if _, err := system.CreatePortfolioSnapshot(ctx, p, MustParseDate("2024-06-30"), ""); err != nil {
		t.Fatalf("first snapshot error = %v", err)
	}
	snap, err := system.CreatePortfolioSnapshot(ctx, p, MustParseDate("2025-06-30"), "")
	if err != nil {
		t.Fatalf("second snapshot error = %v", err)
	}

	if snap.IRRPct == nil {
		t.Fatal("IRRPct = nil, want a rate once a predecessor exists")
	}
	// -1000 on 2024-01-01, +1500 terminal 546 days later: about 31% annualized
	if math.Abs(*snap.IRRPct-31) > 2 {
		t.Errorf("IRRPct = %v, want about 31", *snap.IRRPct)
	}
}

func TestUpdateIRR(t *testing.T) {
	ctx := context.Background()
	oracle := NewStaticOracle()
	oracle.SetPrice("THYAO", MustParseDate("2024-06-30"), TRY(120))
	oracle.SetPrice("THYAO", MustParseDate("2025-06-30"), TRY(150))
	store := newFakeStore()
	system := NewSystem(oracle, store, nil)
	p := testPortfolio()

	first, err := system.CreatePortfolioSnapshot(ctx, p, MustParseDate("2024-06-30"), "")
	if err != nil {
		t.Fatalf("first snapshot error = %v", err)
	}

	// the first snapshot has no predecessor: backfilling is a no-op
	if err := system.UpdateIRR(ctx, p, first); err != nil {
		t.Fatalf("UpdateIRR() error = %v", err)
	}
	if first.IRRPct != nil {
		t.Errorf("IRRPct = %v, want nil", *first.IRRPct)
	}

	second, err := system.CreatePortfolioSnapshot(ctx, p, MustParseDate("2025-06-30"), "")
	if err != nil {
		t.Fatalf("second snapshot error = %v", err)
	}
	second.IRRPct = nil
	if err := system.UpdateIRR(ctx, p, second); err != nil {
		t.Fatalf("UpdateIRR() error = %v", err)
	}
	if second.IRRPct == nil {
		t.Fatal("IRRPct = nil after backfill, want a rate")
	}

	// only portfolio snapshots carry an IRR
	if err := system.UpdateIRR(ctx, p, testSnapshot(CashFlowSnapshot, "x", 1)); err == nil {
		t.Error("UpdateIRR on a cash-flow snapshot should fail")
	}
}

func TestCreateCashFlowSnapshot(t *testing.T) {
	ctx := context.Background()
	system := NewSystem(NewStaticOracle(), newFakeStore(), nil)

	plan := CashFlowPlan{
		ID:       uuid.New(),
		Name:     "household",
		Currency: "TRY",
		Entries: []CashFlowEntry{
			{On: MustParseDate("2025-02-01"), Category: "rent", Amount: TRY(-20000)},
			{On: MustParseDate("2025-02-05"), Category: "salary", Amount: TRY(90000)},
			{On: MustParseDate("2025-02-10"), Category: "rent", Amount: TRY(-1500)},
			{On: MustParseDate("2025-02-20"), Category: "groceries", Amount: TRY(-8000)}, // after the snapshot date
			{On: MustParseDate("2025-01-31"), Category: "salary", Amount: TRY(85000)},    // previous month
		},
	}

	snap, err := system.CreateCashFlowSnapshot(ctx, plan, Monthly, MustParseDate("2025-02-14"), "")
	if err != nil {
		t.Fatalf("CreateCashFlowSnapshot() error = %v", err)
	}

	// window is Feb 1 - Feb 14: the late entry and January are out
	if got, want := snap.TotalValue, TRY(68500); !got.Equal(want) {
		t.Errorf("TotalValue = %v, want %v", got, want)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("Items = %+v, want rent and salary", snap.Items)
	}
	if got, want := snap.Items[0].Label, "rent"; got != want {
		t.Errorf("Items[0] = %q, want %q (first appearance order)", got, want)
	}
	if got, want := snap.Items[0].Value, TRY(-21500); !got.Equal(want) {
		t.Errorf("rent = %v, want %v", got, want)
	}
	if got, want := snap.Items[1].Value, TRY(90000); !got.Equal(want) {
		t.Errorf("salary = %v, want %v", got, want)
	}
}

func TestCreateSalarySavingsSnapshot(t *testing.T) {
	ctx := context.Background()
	system := NewSystem(NewStaticOracle(), newFakeStore(), nil)

	flow := SalaryFlow{
		ID:       uuid.New(),
		Name:     "payroll",
		Currency: "TRY",
		Records: []SalaryRecord{
			{On: MustParseDate("2025-03-01"), Salary: TRY(100000), Savings: TRY(25000)},
			{On: MustParseDate("2025-02-01"), Salary: TRY(95000), Savings: TRY(20000)}, // previous month
		},
	}

	snap, err := system.CreateSalarySavingsSnapshot(ctx, flow, MustParseDate("2025-03-31"), "")
	if err != nil {
		t.Fatalf("CreateSalarySavingsSnapshot() error = %v", err)
	}

	if got, want := snap.TotalValue, TRY(25000); !got.Equal(want) {
		t.Errorf("TotalValue = %v, want %v", got, want)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("Items = %+v, want salary and savings", snap.Items)
	}
	if got, want := snap.Items[0].Value, TRY(100000); !got.Equal(want) {
		t.Errorf("salary = %v, want %v", got, want)
	}
	if got, want := snap.Items[1].AllocationPct, Percent(25); !got.Equal(want) {
		t.Errorf("savings rate = %v, want %v", got, want)
	}
}

func TestCreateSalarySavingsSnapshot_EmptyMonth(t *testing.T) {
	ctx := context.Background()
	system := NewSystem(NewStaticOracle(), newFakeStore(), nil)

	flow := SalaryFlow{
		ID:       uuid.New(),
		Name:     "payroll",
		Currency: "TRY",
		Records: []SalaryRecord{
			{On: MustParseDate("2025-02-01"), Salary: TRY(95000), Savings: TRY(20000)},
		},
	}

	// March has no records: every figure is zero, including the salary
	// item's allocation
	snap, err := system.CreateSalarySavingsSnapshot(ctx, flow, MustParseDate("2025-03-31"), "")
	if err != nil {
		t.Fatalf("CreateSalarySavingsSnapshot() error = %v", err)
	}

	if !snap.TotalValue.IsZero() {
		t.Errorf("TotalValue = %v, want 0", snap.TotalValue)
	}
	for _, item := range snap.Items {
		if item.AllocationPct != 0 {
			t.Errorf("%s AllocationPct = %v, want 0 for an empty month", item.Label, item.AllocationPct)
		}
	}
}

func TestCreateDividendSnapshot(t *testing.T) {
	ctx := context.Background()
	system := NewSystem(NewStaticOracle(), newFakeStore(), nil)

	usdAsset := NewAsset("AAPL", "Apple", "USD", Stock)
	p := Portfolio{
		ID:       uuid.New(),
		Name:     "Main",
		Currency: "TRY",
		Assets:   []Asset{stock("THYAO"), stock("TUPRS"), usdAsset},
		Transactions: []Transaction{
			must(NewDividend(MustParseDate("2025-03-01"), "THYAO", Q(100), TRY(5))),
			must(NewDividend(MustParseDate("2025-09-01"), "THYAO", Q(100), TRY(3))),
			must(NewCoupon(MustParseDate("2025-05-01"), "TUPRS", TRY(250))),
			must(NewDividend(MustParseDate("2025-06-01"), "AAPL", Q(10), USD(0.25))), // other currency
			must(NewDividend(MustParseDate("2024-03-01"), "THYAO", Q(100), TRY(4))),  // other year
		},
	}

	snap, err := system.CreateDividendSnapshot(ctx, []Portfolio{p}, 2025, "TRY", MustParseDate("2025-12-31"), "")
	if err != nil {
		t.Fatalf("CreateDividendSnapshot() error = %v", err)
	}

	if got, want := snap.ParentID, "TRY"; got != want {
		t.Errorf("ParentID = %q, want the currency %q", got, want)
	}
	if got, want := snap.TotalValue, TRY(1050); !got.Equal(want) {
		t.Errorf("TotalValue = %v, want %v", got, want)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("Items = %+v, want THYAO and TUPRS", snap.Items)
	}
	if got, want := snap.Items[0].Value, TRY(800); !got.Equal(want) {
		t.Errorf("THYAO dividends = %v, want %v", got, want)
	}
	if got, want := snap.Items[1].Value, TRY(250); !got.Equal(want) {
		t.Errorf("TUPRS coupons = %v, want %v", got, want)
	}
}

func TestSnapshotSlugsNeverCollide(t *testing.T) {
	ctx := context.Background()
	oracle := NewStaticOracle()
	oracle.SetPrice("THYAO", MustParseDate("2024-06-30"), TRY(120))
	store := newFakeStore()
	system := NewSystem(oracle, store, nil)
	p := testPortfolio()

	// same name on purpose: slugs must still be unique
	for i := 0; i < 5; i++ {
		on := MustParseDate("2024-06-30").Add(i)
		if _, err := system.CreatePortfolioSnapshot(ctx, p, on, "June report"); err != nil {
			t.Fatalf("snapshot %d error = %v", i, err)
		}
	}
	if len(store.slugs) != 5 {
		t.Errorf("got %d distinct slugs, want 5", len(store.slugs))
	}
}
