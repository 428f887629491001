package pricing

import "fmt"

// Tolerances for the pre-export integrity check, in centavos. Divergence
// beyond these is surfaced as a warning, never as a hard failure.
const (
	MonthlyTolerance        Money = 100
	ImplementationTolerance Money = 100
)

// RecalcNote records a per-column recomputation failure that was degraded
// to reusing the stale cached column.
type RecalcNote struct {
	Index int
	Err   error
}

// Recalculate re-derives every cached column from the current scenario
// state. Cached totals are never trusted: a comparison view can edit shared
// inputs long after a column was first computed, so recomputing is always
// more authoritative than reusing a memoized number. A column that fails to
// recompute falls back to its stale cached value so one malformed override
// cannot block exporting the rest of the batch.
func (t *Table) Recalculate(cached []Column, s Scenario) ([]Column, []RecalcNote) {
	fresh := make([]Column, len(cached))
	var notes []RecalcNote
	recommended := RecommendFor(s)
	for i, col := range cached {
		recomputed, err := t.recalculateOne(col, s, recommended)
		if err != nil {
			fresh[i] = col
			notes = append(notes, RecalcNote{Index: i, Err: err})
			continue
		}
		fresh[i] = recomputed
	}
	return fresh, notes
}

func (t *Table) recalculateOne(cached Column, s Scenario, recommended BundleID) (Column, error) {
	var (
		col Column
		err error
	)
	switch cached.Kind {
	case ColumnCustom:
		col, err = t.ComputeCustomColumn(s, cached.Overrides, recommended)
	default:
		col, err = t.ComputeColumn(cached.Bundle, s, recommended)
	}
	if err != nil {
		return Column{}, err
	}
	flags := PrepaidFlags{Seats: cached.PrepaidSeats, Contracts: cached.PrepaidContracts}
	if flags.Seats || flags.Contracts {
		col = t.ApplyPrepaid(col, flags)
	}
	return col, nil
}

// DocumentTotals are the figures about to be printed on the exported
// proposal.
type DocumentTotals struct {
	TotalMonthly   Money `json:"totalMonthly"`
	Implementation Money `json:"implementation"`
	Seats          int64 `json:"seats"`
}

// Warning is one non-blocking integrity finding. Warnings are diagnostic
// log material for investigating silent drift; they never reach the end
// customer and never stop document generation.
type Warning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Expected int64  `json:"expected"`
	Actual   int64  `json:"actual"`
}

// Warning codes.
const (
	WarnMonthlyDivergence        = "MONTHLY_DIVERGENCE"
	WarnImplementationDivergence = "IMPLEMENTATION_DIVERGENCE"
	WarnSeatInconsistency        = "SEAT_INCONSISTENCY"
)

// ValidateIntegrity cross-checks the document totals against the primary
// fresh column.
func ValidateIntegrity(doc DocumentTotals, fresh []Column) []Warning {
	if len(fresh) == 0 {
		return nil
	}
	primary := fresh[0]
	var warnings []Warning
	if diff := absMoney(doc.TotalMonthly - primary.TotalMonthly); diff > MonthlyTolerance {
		warnings = append(warnings, Warning{
			Code:     WarnMonthlyDivergence,
			Message:  fmt.Sprintf("document monthly total diverges from recomputed value by %d centavos", diff),
			Expected: primary.TotalMonthly,
			Actual:   doc.TotalMonthly,
		})
	}
	if diff := absMoney(doc.Implementation - primary.Implementation); diff > ImplementationTolerance {
		warnings = append(warnings, Warning{
			Code:     WarnImplementationDivergence,
			Message:  fmt.Sprintf("document implementation fee diverges from recomputed value by %d centavos", diff),
			Expected: primary.Implementation,
			Actual:   doc.Implementation,
		})
	}
	if users := primary.PostPaid[DimUsers]; users != nil {
		included := users.IncludedQuantity
		full := included + users.AdditionalQuantity
		if doc.Seats != included && doc.Seats != full {
			warnings = append(warnings, Warning{
				Code:     WarnSeatInconsistency,
				Message:  "declared seat count matches neither the included allowance nor included plus additional",
				Expected: full,
				Actual:   doc.Seats,
			})
		}
	}
	return warnings
}

func absMoney(v Money) Money {
	if v < 0 {
		return -v
	}
	return v
}
