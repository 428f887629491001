package pricing

import "testing"

func TestRoundUpToSeven(t *testing.T) {
	cases := []struct {
		name string
		in   Money
		want Money
	}{
		{"base 490 rounds up to 497 never 487", 49000, 49700},
		{"already on boundary unchanged", 49700, 49700},
		{"one centavo past boundary jumps a full ten", 49701, 50700},
		{"close below the next boundary still rounds up", 49650, 49700},
		{"small amounts land on the first boundary", 100, 700},
		{"zero stays zero", 0, 0},
		{"fractional reais lift before rounding", 1650, 1700},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoundUpToSeven(tc.in); got != tc.want {
				t.Fatalf("RoundUpToSeven(%d) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestRoundUpToSevenProperties(t *testing.T) {
	for v := Money(0); v <= 30000; v += 37 {
		rounded := RoundUpToSeven(v)
		if rounded < v {
			t.Fatalf("RoundUpToSeven(%d) = %d went below the input", v, rounded)
		}
		if again := RoundUpToSeven(rounded); again != rounded {
			t.Fatalf("rounding is not idempotent: %d -> %d -> %d", v, rounded, again)
		}
		if rounded != 0 && (rounded/100)%10 != 7 {
			t.Fatalf("RoundUpToSeven(%d) = %d does not end in the merchandising digit", v, rounded)
		}
	}
}

func TestCyclePriceMultipliers(t *testing.T) {
	table := testTable()
	base := Money(240000)

	cases := []struct {
		freq Frequency
		want Money
	}{
		{FreqMonthly, 24700},
		{FreqSemiannual, 22700},
		{FreqAnnual, 20700},
		{FreqBiennial, 18700},
	}
	for _, tc := range cases {
		got, err := table.CyclePrice(base, tc.freq)
		if err != nil {
			t.Fatalf("CyclePrice(%s): %v", tc.freq, err)
		}
		if got != tc.want {
			t.Fatalf("CyclePrice(%d, %s) = %d, want %d", base, tc.freq, got, tc.want)
		}
	}
}

func TestCyclePriceOrdering(t *testing.T) {
	table := testTable()
	prices := make([]Money, 0, 4)
	for _, freq := range []Frequency{FreqMonthly, FreqSemiannual, FreqAnnual, FreqBiennial} {
		p, err := table.CyclePrice(480000, freq)
		if err != nil {
			t.Fatalf("CyclePrice(%s): %v", freq, err)
		}
		prices = append(prices, p)
	}
	for i := 1; i < len(prices); i++ {
		if prices[i] > prices[i-1] {
			t.Fatalf("shorter cycles must not be cheaper: %v", prices)
		}
	}
}

func TestCyclePriceUnknownFrequency(t *testing.T) {
	table := testTable()
	_, err := table.CyclePrice(240000, Frequency("weekly"))
	refErr, ok := err.(*ReferenceError)
	if !ok {
		t.Fatalf("expected ReferenceError, got %v", err)
	}
	if refErr.Key != "weekly" {
		t.Fatalf("expected the missing key to be reported, got %q", refErr.Key)
	}
}
