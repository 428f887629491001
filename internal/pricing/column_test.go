package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeColumnBaseline(t *testing.T) {
	t.Parallel()
	table := testTable()

	col, err := table.ComputeColumn(BundleNone, managementProScenario(), BundleNone)
	require.NoError(t, err)

	require.Equal(t, ColumnBaseline, col.Kind)
	require.Equal(t, BundleNone, col.Bundle)
	require.False(t, col.Recommended)

	require.Equal(t, Priced(20700), col.Products[ProductManagement])
	require.Equal(t, NotApplicable(), col.Products[ProductCRM])
	for _, key := range AllAddons() {
		require.Equal(t, NotApplicable(), col.Addons[key], "addon %s", key)
	}
	require.Equal(t, NotApplicable(), col.Premium[PremiumVIPSupport])
	require.Equal(t, "16h remote onboarding", col.Training)

	users := col.PostPaid[DimUsers]
	require.NotNil(t, users)
	require.Equal(t, int64(7), users.IncludedQuantity)
	require.Equal(t, int64(3), users.AdditionalQuantity)
	require.Equal(t, Money(11100), users.Cost)
	require.Equal(t, Money(3700), users.PerUnitCost)

	// Contracts apply to the management product but sit inside the
	// allowance: a zero-cost line, not a nil one.
	contracts := col.PostPaid[DimContracts]
	require.NotNil(t, contracts)
	require.Equal(t, Money(0), contracts.Cost)
	require.Equal(t, int64(200), contracts.IncludedQuantity)

	// Dimensions outside the selection stay nil.
	require.Nil(t, col.PostPaid[DimLeads])
	require.Nil(t, col.PostPaid[DimSignatures])
	require.Nil(t, col.PostPaid[DimBoletos])
	require.Nil(t, col.PostPaid[DimSplits])

	require.Equal(t, Money(80000), col.Implementation)
	require.Equal(t, Money(80000), col.TheoreticalImplementation)
	require.Equal(t, Money(20700), col.TotalMonthly)
	require.Equal(t, Money(11100), col.PostPaidTotal)
	require.Equal(t, 12, col.CycleMonths)
	require.Equal(t, Money(20700*12+80000), col.CycleTotal)
	require.Equal(t, Money(20700*12+80000), col.AnnualEquivalent)
}

func TestComputeColumnBaselineSumsPricedLines(t *testing.T) {
	t.Parallel()
	table := testTable()

	col, err := table.ComputeColumn(BundleNone, bothAllAddonsScenario(), BundleNone)
	require.NoError(t, err)

	var want Money
	for _, line := range col.Products {
		if amount, ok := line.Billable(); ok {
			want += amount
		}
	}
	for _, line := range col.Addons {
		if amount, ok := line.Billable(); ok {
			want += amount
		}
	}
	for _, line := range col.Premium {
		if amount, ok := line.Billable(); ok {
			want += amount
		}
	}
	require.Equal(t, want, col.TotalMonthly)
	require.Equal(t, Money(66900), col.TotalMonthly)
	require.Equal(t, Money(220000), col.Implementation)
}

func TestComputeColumnEliteBundle(t *testing.T) {
	t.Parallel()
	table := testTable()
	scenario := bothAllAddonsScenario()
	recommended := Recommend(scenario.Selection, scenario.Addons)
	require.Equal(t, BundleElite, recommended)

	col, err := table.ComputeColumn(BundleElite, scenario, recommended)
	require.NoError(t, err)

	require.Equal(t, ColumnBundle, col.Kind)
	require.True(t, col.Recommended)

	// Each covered product line carries the rounded discounted price.
	require.Equal(t, Priced(16700), col.Products[ProductManagement])
	require.Equal(t, Priced(12700), col.Products[ProductCRM])

	// Bundle-included add-ons keep the "included" label, not a zero price.
	for _, key := range AllAddons() {
		require.Equal(t, Included(), col.Addons[key], "addon %s", key)
	}
	require.Equal(t, Included(), col.Premium[PremiumVIPSupport])
	require.Equal(t, Included(), col.Premium[PremiumDedicatedCS])
	require.Equal(t, "dedicated onboarding", col.Training)

	// Included add-ons still generate post-paid usage charges.
	boletos := col.PostPaid[DimBoletos]
	require.NotNil(t, boletos)
	require.Equal(t, Money(20*270), boletos.Cost)

	require.Equal(t, Money(29400), col.TotalMonthly)
	require.Equal(t, Money(23300), col.PostPaidTotal)

	// Implementation is waived item by item, never percentage-discounted.
	require.Equal(t, Money(0), col.Implementation)
	require.Equal(t, Money(220000), col.TheoreticalImplementation)
}

func TestComputeColumnIncludedAddonStillBillsUsage(t *testing.T) {
	t.Parallel()
	table := testTable()
	scenario := Scenario{
		Selection: SelectManagement,
		Plans:     map[Product]PlanTier{ProductManagement: TierProfessional},
		Addons:    map[AddonKey]bool{AddonSignatures: true, AddonBoletos: true},
		Frequency: FreqAnnual,
		Usage:     UsageMetrics{Seats: 5, MonthlyClosings: 130},
	}

	col, err := table.ComputeColumn(BundleGestao, scenario, BundleGestao)
	require.NoError(t, err)

	require.Equal(t, Included(), col.Addons[AddonBoletos])
	boletos := col.PostPaid[DimBoletos]
	require.NotNil(t, boletos)
	require.Equal(t, int64(30), boletos.AdditionalQuantity)
	require.Equal(t, Money(30*270), boletos.Cost)

	// The non-included signatures add-on is discounted at the bundle rate:
	// cycle price 6700 reduced 10% and re-rounded.
	require.Equal(t, Priced(6700), col.Addons[AddonSignatures])
}

func TestPremiumInclusionDecidedBeforeCharging(t *testing.T) {
	t.Parallel()
	table := testTable()
	scenario := Scenario{
		Selection: SelectManagement,
		Plans:     map[Product]PlanTier{ProductManagement: TierEnterprise},
		Addons:    map[AddonKey]bool{},
		Frequency: FreqAnnual,
		Usage:     UsageMetrics{Seats: 15},
		Premium:   PremiumOptIns{VIPSupport: true, DedicatedCS: true},
	}

	col, err := table.ComputeColumn(BundleNone, scenario, BundleNone)
	require.NoError(t, err)

	// Enterprise tier includes premium: the opt-ins must not charge.
	require.Equal(t, Included(), col.Premium[PremiumVIPSupport])
	require.Equal(t, Included(), col.Premium[PremiumDedicatedCS])
	require.Equal(t, Money(40700), col.TotalMonthly)
}

func TestPremiumOptInCharges(t *testing.T) {
	t.Parallel()
	table := testTable()
	scenario := managementProScenario()
	scenario.Premium = PremiumOptIns{VIPSupport: true}

	col, err := table.ComputeColumn(BundleNone, scenario, BundleNone)
	require.NoError(t, err)

	require.Equal(t, Priced(10700), col.Premium[PremiumVIPSupport])
	require.Equal(t, NotApplicable(), col.Premium[PremiumDedicatedCS])
	require.Equal(t, Money(20700+10700), col.TotalMonthly)
}

func TestWhatsAppOptInActivatesAddon(t *testing.T) {
	t.Parallel()
	table := testTable()
	scenario := managementProScenario()
	scenario.Usage.WhatsAppOptIn = true

	col, err := table.ComputeColumn(BundleNone, scenario, BundleNone)
	require.NoError(t, err)
	require.Equal(t, Priced(4700), col.Addons[AddonWhatsApp])
}

func TestIneligibleBundleStillComputes(t *testing.T) {
	t.Parallel()
	table := testTable()

	// Elite covers both products but the scenario only activates one; the
	// what-if preview must still produce a column.
	col, err := table.ComputeColumn(BundleElite, managementProScenario(), BundleNone)
	require.NoError(t, err)
	require.Equal(t, Priced(16700), col.Products[ProductManagement])
	require.Equal(t, NotApplicable(), col.Products[ProductCRM])
}

func TestComputeCustomColumnAppliesOverrides(t *testing.T) {
	t.Parallel()
	table := testTable()
	monthly := FreqMonthly
	ov := &Overrides{
		Frequency: &monthly,
		Addons:    map[AddonKey]bool{AddonSignatures: true},
	}

	col, err := table.ComputeCustomColumn(managementProScenario(), ov, BundleNone)
	require.NoError(t, err)

	require.Equal(t, ColumnCustom, col.Kind)
	require.Same(t, ov, col.Overrides)
	require.Equal(t, 1, col.CycleMonths)
	require.Equal(t, Priced(24700), col.Products[ProductManagement])
	require.Equal(t, Priced(7700), col.Addons[AddonSignatures])
	require.Equal(t, Money(24700+7700), col.TotalMonthly)
	require.Equal(t, Money(32400*1+95000), col.CycleTotal)

	signatures := col.PostPaid[DimSignatures]
	require.NotNil(t, signatures)
	require.Equal(t, Money(0), signatures.Cost)
}

func TestComputeColumnClampsNegativeUsage(t *testing.T) {
	t.Parallel()
	table := testTable()
	scenario := managementProScenario()
	scenario.Usage.Seats = -3

	col, err := table.ComputeColumn(BundleNone, scenario, BundleNone)
	require.NoError(t, err)
	users := col.PostPaid[DimUsers]
	require.NotNil(t, users)
	require.Equal(t, int64(0), users.AdditionalQuantity)
	require.Equal(t, Money(0), users.Cost)
}

func TestComputeColumnMissingPlanFails(t *testing.T) {
	t.Parallel()
	table := testTable()
	scenario := managementProScenario()
	scenario.Plans[ProductManagement] = PlanTier("mega")

	_, err := table.ComputeColumn(BundleNone, scenario, BundleNone)
	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
	require.Equal(t, "management/mega", refErr.Key)
}

func TestComputeColumnUnknownBundleFails(t *testing.T) {
	t.Parallel()
	table := testTable()

	_, err := table.ComputeColumn(BundleID("kombo_premium"), managementProScenario(), BundleNone)
	var refErr *ReferenceError
	require.ErrorAs(t, err, &refErr)
	require.Equal(t, "bundle", refErr.Kind)
}
