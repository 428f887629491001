package pricing

// roundingDigit is the reais digit every displayed recurring price ends in.
// Merchandising convention: prices always round UP to the next amount whose
// final reais digit matches, never down.
const roundingDigit = 7

// RoundUpToSeven rounds a centavo amount up to the nearest whole-real value
// whose last reais digit is seven. An amount already on a boundary is
// returned unchanged. Idempotent, and the result is always >= the input.
func RoundUpToSeven(amount Money) Money {
	if amount <= 0 {
		return 0
	}
	reais := amount / 100
	if amount%100 != 0 {
		reais++
	}
	last := reais % 10
	switch {
	case last == roundingDigit:
		// Already on a boundary once lifted to a whole real.
	case last < roundingDigit:
		reais += roundingDigit - last
	default:
		reais += 10 + roundingDigit - last
	}
	return reais * 100
}

// CyclePrice converts an annual base price into the effective monthly price
// for the chosen payment frequency: annual/12 scaled by the cycle
// multiplier, then rounded up to the merchandising boundary.
func (t *Table) CyclePrice(annualBase Money, freq Frequency) (Money, error) {
	c, err := t.cycle(freq)
	if err != nil {
		return 0, err
	}
	if annualBase <= 0 {
		return 0, nil
	}
	monthly := annualBase * Money(c.MultiplierBps) / (12 * 10000)
	return RoundUpToSeven(monthly), nil
}

// discounted applies a bundle discount fraction (basis points) to an
// already cycle-priced amount and re-rounds to the merchandising boundary.
func discounted(price Money, discountBps int32) Money {
	if discountBps <= 0 || price <= 0 {
		return price
	}
	reduced := price * Money(10000-discountBps) / 10000
	return RoundUpToSeven(reduced)
}
