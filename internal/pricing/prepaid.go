package pricing

// prepaidDimensions maps the two convertible dimensions to their flag
// accessors.
var prepaidDimensions = []struct {
	dim      Dimension
	selected func(PrepaidFlags) bool
	applied  func(*Column) *bool
}{
	{DimUsers, func(f PrepaidFlags) bool { return f.Seats }, func(c *Column) *bool { return &c.PrepaidSeats }},
	{DimContracts, func(f PrepaidFlags) bool { return f.Contracts }, func(c *Column) *bool { return &c.PrepaidContracts }},
}

// ApplyPrepaid converts flagged post-paid usage charges into discounted
// pre-paid recurring charges: the post-paid cost leaves PostPaidTotal and a
// reduced amount joins TotalMonthly, with the cycle totals recomputed. The
// conversion is only idempotent against its own output with the same flags;
// toggling a flag off requires re-deriving the column from the scenario.
func (t *Table) ApplyPrepaid(col Column, flags PrepaidFlags) Column {
	out := col
	for _, entry := range prepaidDimensions {
		if !entry.selected(flags) {
			continue
		}
		marker := entry.applied(&out)
		if *marker {
			// Already converted on a previous pass.
			continue
		}
		line := out.PostPaid[entry.dim]
		if line == nil || line.Cost <= 0 {
			continue
		}
		prepaid := RoundUpToSeven(line.Cost * Money(10000-t.PrepaidDiscountBps) / 10000)
		out.TotalMonthly += prepaid
		out.PostPaidTotal -= line.Cost
		*marker = true
	}
	if out.PostPaidTotal < 0 {
		out.PostPaidTotal = 0
	}
	out.CycleTotal = out.TotalMonthly*Money(out.CycleMonths) + out.Implementation
	out.AnnualEquivalent = out.TotalMonthly*12 + out.Implementation
	return out
}
