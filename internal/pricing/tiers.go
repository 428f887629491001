package pricing

// TieredCost prices a quantity of units by walking the marginal-rate
// schedule in order, consuming capacity from each segment at that segment's
// price. A single flat-rate segment is the degenerate case of the same
// walk, not a special path. Negative quantities bill as zero.
func TieredCost(quantity int64, schedule []Tier) Money {
	if quantity <= 0 {
		return 0
	}
	var cost Money
	remaining := quantity
	for _, seg := range schedule {
		if remaining <= 0 {
			break
		}
		take := remaining
		if seg.To != nil {
			capacity := *seg.To - seg.From + 1
			if capacity <= 0 {
				continue
			}
			if take > capacity {
				take = capacity
			}
		}
		cost += Money(take) * seg.Price
		remaining -= take
	}
	return cost
}

// RateAt returns the marginal unit price at a one-based position in the
// schedule. Positions past the final bounded segment price at the unbounded
// rate.
func RateAt(position int64, schedule []Tier) Money {
	if position <= 0 || len(schedule) == 0 {
		return 0
	}
	for _, seg := range schedule {
		if seg.To == nil || position <= *seg.To {
			return seg.Price
		}
	}
	return schedule[len(schedule)-1].Price
}

// marginalUsageCost prices the units beyond an included allowance. The
// schedule is indexed by total consumption, so the allowance burns through
// the leading segments and only the excess positions bill: the cost is the
// difference between pricing the full usage and pricing the allowance.
func marginalUsageCost(total, included int64, schedule []Tier) Money {
	if total <= included {
		return 0
	}
	return TieredCost(total, schedule) - TieredCost(included, schedule)
}
