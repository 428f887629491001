package ratetable

import "github.com/quotelab/backend-quotes/internal/pricing"

func bound(v int64) *int64 { return &v }

// DefaultTable returns the built-in commercial table used by the seeder and
// by development environments. Production prices are managed through the
// administrative publish endpoint; this snapshot mirrors the launch price
// list. All amounts are centavos.
func DefaultTable() *pricing.Table {
	both := []pricing.Product{pricing.ProductManagement, pricing.ProductCRM}
	return &pricing.Table{
		Version: 1,
		Cycles: map[pricing.Frequency]pricing.Cycle{
			pricing.FreqMonthly:    {MultiplierBps: 12000, Months: 1},
			pricing.FreqSemiannual: {MultiplierBps: 11000, Months: 6},
			pricing.FreqAnnual:     {MultiplierBps: 10000, Months: 12},
			pricing.FreqBiennial:   {MultiplierBps: 9000, Months: 24},
		},
		Plans: map[pricing.Product]map[pricing.PlanTier]pricing.Plan{
			pricing.ProductManagement: {
				pricing.TierEssential:    {AnnualBase: 202800, Implementation: 59700, IncludedSeats: 3, IncludedContracts: 100},
				pricing.TierProfessional: {AnnualBase: 418800, Implementation: 99700, IncludedSeats: 7, IncludedContracts: 300},
				pricing.TierEnterprise:   {AnnualBase: 838800, Implementation: 179700, IncludedSeats: 15, IncludedContracts: 800, PremiumIncluded: true},
			},
			pricing.ProductCRM: {
				pricing.TierEssential:    {AnnualBase: 142800, Implementation: 39700, IncludedSeats: 2},
				pricing.TierProfessional: {AnnualBase: 298800, Implementation: 69700, IncludedSeats: 5},
				pricing.TierEnterprise:   {AnnualBase: 598800, Implementation: 129700, IncludedSeats: 12, PremiumIncluded: true},
			},
		},
		Addons: map[pricing.AddonKey]pricing.Addon{
			pricing.AddonLeads:      {Products: []pricing.Product{pricing.ProductCRM}, Annual: 94800, Implementation: 29700, Allowance: 150},
			pricing.AddonWhatsApp:   {Products: both, Annual: 70800, Implementation: 19700, Shareable: true},
			pricing.AddonSignatures: {Products: both, Annual: 118800, Implementation: 24700, Allowance: 15, Shareable: true},
			pricing.AddonBoletos:    {Products: []pricing.Product{pricing.ProductManagement}, Annual: 130800, Implementation: 34700, Allowance: 150},
			pricing.AddonSplits:     {Products: []pricing.Product{pricing.ProductManagement}, Annual: 94800, Implementation: 29700, Allowance: 80},
		},
		Bundles: map[pricing.BundleID]pricing.Bundle{
			pricing.BundleElite: {
				DiscountBps:     2000,
				Products:        both,
				IncludedAddons:  pricing.AllAddons(),
				PremiumIncluded: true,
				Training:        "dedicated onboarding team",
				FreeImplementation: []string{
					"product:management", "product:crm",
					"addon:leads", "addon:whatsapp", "addon:signatures", "addon:boletos", "addon:splits",
				},
			},
			pricing.BundleDuo: {
				DiscountBps: 1500,
				Products:    both,
			},
			pricing.BundleGestao: {
				DiscountBps:        1000,
				Products:           []pricing.Product{pricing.ProductManagement},
				IncludedAddons:     []pricing.AddonKey{pricing.AddonBoletos},
				FreeImplementation: []string{"addon:boletos"},
			},
			pricing.BundleGestaoMax: {
				DiscountBps:        1300,
				Products:           []pricing.Product{pricing.ProductManagement},
				IncludedAddons:     []pricing.AddonKey{pricing.AddonBoletos, pricing.AddonSplits},
				FreeImplementation: []string{"addon:boletos", "addon:splits"},
			},
			pricing.BundleCRM: {
				DiscountBps: 1000,
				Products:    []pricing.Product{pricing.ProductCRM},
			},
			pricing.BundleCRMMax: {
				DiscountBps:        1300,
				Products:           []pricing.Product{pricing.ProductCRM},
				IncludedAddons:     []pricing.AddonKey{pricing.AddonWhatsApp},
				FreeImplementation: []string{"addon:whatsapp"},
			},
		},
		Usage: map[pricing.Dimension]map[pricing.PlanTier][]pricing.Tier{
			pricing.DimUsers: {
				pricing.TierEssential:    {{From: 1, Price: 5700}},
				pricing.TierProfessional: {{From: 1, To: bound(5), Price: 4700}, {From: 6, Price: 3700}},
				pricing.TierEnterprise:   {{From: 1, To: bound(10), Price: 3700}, {From: 11, Price: 2700}},
			},
			pricing.DimContracts: {
				pricing.TierEssential:    {{From: 1, To: bound(300), Price: 90}, {From: 301, Price: 70}},
				pricing.TierProfessional: {{From: 1, To: bound(500), Price: 70}, {From: 501, Price: 50}},
				pricing.TierEnterprise:   {{From: 1, To: bound(1000), Price: 50}, {From: 1001, Price: 40}},
			},
			pricing.DimLeads: {
				pricing.TierEssential:    {{From: 1, To: bound(500), Price: 40}, {From: 501, Price: 30}},
				pricing.TierProfessional: {{From: 1, To: bound(1000), Price: 30}, {From: 1001, Price: 20}},
				pricing.TierEnterprise:   {{From: 1, To: bound(2000), Price: 20}, {From: 2001, Price: 15}},
			},
			pricing.DimSignatures: {
				pricing.TierEssential:    {{From: 1, To: bound(20), Price: 1070}, {From: 21, Price: 870}},
				pricing.TierProfessional: {{From: 1, To: bound(20), Price: 970}, {From: 21, Price: 770}},
				pricing.TierEnterprise:   {{From: 1, To: bound(40), Price: 870}, {From: 41, Price: 670}},
			},
			pricing.DimBoletos: {
				pricing.TierEssential:    {{From: 1, To: bound(300), Price: 290}, {From: 301, Price: 220}},
				pricing.TierProfessional: {{From: 1, To: bound(500), Price: 270}, {From: 501, Price: 170}},
				pricing.TierEnterprise:   {{From: 1, To: bound(1000), Price: 220}, {From: 1001, Price: 150}},
			},
			pricing.DimSplits: {
				pricing.TierEssential:    {{From: 1, Price: 150}},
				pricing.TierProfessional: {{From: 1, Price: 120}},
				pricing.TierEnterprise:   {{From: 1, Price: 90}},
			},
		},
		PremiumPrices: map[pricing.PremiumService]pricing.Money{
			pricing.PremiumVIPSupport:  178800,
			pricing.PremiumDedicatedCS: 358800,
		},
		Training: map[pricing.PlanTier]string{
			pricing.TierEssential:    "8h remote onboarding",
			pricing.TierProfessional: "16h remote onboarding",
			pricing.TierEnterprise:   "dedicated onboarding team",
		},
		PrepaidDiscountBps: 2000,
	}
}
