package folio

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2025-01-31", NewDate(2025, time.January, 31)},
		{"2025-1-31", NewDate(2025, time.January, 31)},
		{" 2025-7-1 ", NewDate(2025, time.July, 1)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseDate("31/01/2025"); err == nil {
		t.Error("ParseDate should reject non ISO dates")
	}
}

func TestDateDays(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2025-01-01", "2025-01-01", 0},
		{"2025-01-01", "2025-01-31", 30},
		{"2020-01-01", "2021-01-01", 366}, // leap year
		{"2025-02-01", "2025-01-01", -31},
	}
	for _, tt := range tests {
		got := MustParseDate(tt.from).Days(MustParseDate(tt.to))
		if got != tt.want {
			t.Errorf("Days(%s, %s) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPeriodBounds(t *testing.T) {
	d := MustParseDate("2025-02-14")

	if got, want := d.StartOf(Monthly), MustParseDate("2025-02-01"); got != want {
		t.Errorf("StartOf(Monthly) = %v, want %v", got, want)
	}
	if got, want := d.EndOf(Monthly), MustParseDate("2025-02-28"); got != want {
		t.Errorf("EndOf(Monthly) = %v, want %v", got, want)
	}
	if got, want := d.StartOf(Yearly), MustParseDate("2025-01-01"); got != want {
		t.Errorf("StartOf(Yearly) = %v, want %v", got, want)
	}
	if got, want := d.EndOf(Yearly), MustParseDate("2025-12-31"); got != want {
		t.Errorf("EndOf(Yearly) = %v, want %v", got, want)
	}
	// leap February
	if got, want := MustParseDate("2024-02-10").EndOf(Monthly), MustParseDate("2024-02-29"); got != want {
		t.Errorf("EndOf(Monthly) leap = %v, want %v", got, want)
	}
}

func TestPeriodWindowClipsToDate(t *testing.T) {
	// mid-month snapshot covers the 1st up to the snapshot date only
	w := Monthly.Window(MustParseDate("2025-02-14"))
	if got, want := w.From, MustParseDate("2025-02-01"); got != want {
		t.Errorf("Window.From = %v, want %v", got, want)
	}
	if got, want := w.To, MustParseDate("2025-02-14"); got != want {
		t.Errorf("Window.To = %v, want %v", got, want)
	}

	// month-end snapshot covers the full month
	w = Monthly.Window(MustParseDate("2025-02-28"))
	if got, want := w.To, MustParseDate("2025-02-28"); got != want {
		t.Errorf("Window.To = %v, want %v", got, want)
	}

	if !w.Contains(MustParseDate("2025-02-01")) || !w.Contains(MustParseDate("2025-02-28")) {
		t.Error("Window boundaries should be inclusive")
	}
	if w.Contains(MustParseDate("2025-03-01")) {
		t.Error("Window should not contain the next month")
	}
}
