package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableValidateAcceptsFixture(t *testing.T) {
	t.Parallel()
	require.NoError(t, testTable().Validate())
}

func TestTableValidateRejectsBrokenSchedules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		schedule []Tier
	}{
		{"empty", nil},
		{"bounded final segment", []Tier{{From: 1, To: upTo(10), Price: 100}}},
		{"gap between segments", []Tier{{From: 1, To: upTo(5), Price: 100}, {From: 8, Price: 50}}},
		{"overlapping segments", []Tier{{From: 1, To: upTo(5), Price: 100}, {From: 4, Price: 50}}},
		{"unbounded mid segment", []Tier{{From: 1, Price: 100}, {From: 6, Price: 50}}},
		{"negative price", []Tier{{From: 1, Price: -1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := testTable()
			table.Usage[DimUsers][TierProfessional] = tc.schedule
			require.Error(t, table.Validate())
		})
	}
}

func TestTableValidateRequiresEveryCycle(t *testing.T) {
	t.Parallel()
	table := testTable()
	delete(table.Cycles, FreqBiennial)
	err := table.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "biennial")
}

func TestTableValidateRejectsDiscountOutOfRange(t *testing.T) {
	t.Parallel()
	table := testTable()
	bundle := table.Bundles[BundleDuo]
	bundle.DiscountBps = 10500
	table.Bundles[BundleDuo] = bundle
	require.Error(t, table.Validate())
}
