package folio

import "fmt"

// Percent is a display-only ratio, in percentage points (10.5 means 10.5%).
// Percents are derived from Money at the edges of the engine; they never feed
// back into monetary arithmetic.
type Percent float64

// PercentOf returns part as a percentage of whole. A zero whole yields zero:
// gain against a zero cost basis and allocation of an empty portfolio are
// both "no ratio", not a division error.
func PercentOf(part, whole Money) Percent {
	if whole.IsZero() {
		return 0
	}
	return Percent(100 * part.AsFloat() / whole.AsFloat())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}
