package folio

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func flow(on string, amount float64) CashFlow {
	return CashFlow{On: MustParseDate(on), Amount: decimal.NewFromFloat(amount)}
}

func TestXIRRDegenerateSeries(t *testing.T) {
	tests := []struct {
		name  string
		flows []CashFlow
	}{
		{"empty", nil},
		{"only outflows", []CashFlow{flow("2025-01-01", -1000), flow("2025-06-01", -500)}},
		{"only inflows", []CashFlow{flow("2025-01-01", 1000), flow("2025-06-01", 500)}},
		{"zeroes", []CashFlow{flow("2025-01-01", 0), flow("2025-06-01", 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rate, ok := XIRR(tt.flows); ok {
				t.Errorf("XIRR() = %v, true; want ok=false", rate)
			}
		})
	}
}

func TestXIRRSameDayIsSimpleReturn(t *testing.T) {
	flows := []CashFlow{flow("2025-03-15", -1000), flow("2025-03-15", 1100)}

	rate, ok := XIRR(flows)
	if !ok {
		t.Fatal("XIRR() ok = false, want true")
	}
	// same-day series cannot be annualized: exact simple return, no solver
	if rate != 0.1 {
		t.Errorf("XIRR() = %v, want exactly 0.1", rate)
	}
}

func TestXIRROneYearApart(t *testing.T) {
	flows := []CashFlow{flow("2020-01-01", -1000), flow("2021-01-01", 1100)}

	rate, ok := XIRR(flows)
	if !ok {
		t.Fatal("XIRR() ok = false, want true")
	}
	// 366 days (2020 is a leap year) stretch the 10% slightly below
	want := math.Pow(1.1, 365.0/366.0) - 1
	if math.Abs(rate-want) > 1e-6 {
		t.Errorf("XIRR() = %v, want %v", rate, want)
	}
}

func TestXIRRMultipleFlows(t *testing.T) {
	flows := []CashFlow{
		flow("2024-01-01", -10000),
		flow("2024-04-01", -2500),
		flow("2024-10-01", 1000),
		flow("2025-01-01", 13000),
	}

	rate, ok := XIRR(flows)
	if !ok {
		t.Fatal("XIRR() ok = false, want true")
	}

	// the solution must zero the NPV equation it was solved from
	first := MustParseDate("2024-01-01")
	var npv float64
	for _, f := range flows {
		years := float64(first.Days(f.On)) / 365.0
		v, _ := f.Amount.Float64()
		npv += v / math.Pow(1+rate, years)
	}
	if math.Abs(npv) > 1e-6 {
		t.Errorf("NPV at solved rate = %v, want 0", npv)
	}
	if rate < 0 {
		t.Errorf("XIRR() = %v, want a gain for this series", rate)
	}
}

func TestXIRRInputOrderIrrelevant(t *testing.T) {
	ordered := []CashFlow{
		flow("2024-01-01", -10000),
		flow("2024-07-01", -5000),
		flow("2025-01-01", 17000),
	}
	shuffled := []CashFlow{ordered[2], ordered[0], ordered[1]}

	r1, ok1 := XIRR(ordered)
	r2, ok2 := XIRR(shuffled)
	if !ok1 || !ok2 {
		t.Fatal("XIRR() ok = false, want true")
	}
	if r1 != r2 {
		t.Errorf("XIRR(ordered) = %v, XIRR(shuffled) = %v; want equal", r1, r2)
	}

	// the input slices themselves stay untouched
	if shuffled[0].On != MustParseDate("2025-01-01") {
		t.Error("XIRR mutated its input slice")
	}
}

func TestXIRRLoss(t *testing.T) {
	flows := []CashFlow{flow("2024-01-01", -10000), flow("2025-01-01", 8000)}

	rate, ok := XIRR(flows)
	if !ok {
		t.Fatal("XIRR() ok = false, want true")
	}
	if rate >= 0 || rate <= -1 {
		t.Errorf("XIRR() = %v, want a rate in (-1, 0)", rate)
	}
	if math.Abs(rate-(-0.2)) > 1e-2 {
		t.Errorf("XIRR() = %v, want about -0.2", rate)
	}
}
