package pricing

func upTo(v int64) *int64 { return &v }

func forAllTiers(schedule []Tier) map[PlanTier][]Tier {
	return map[PlanTier][]Tier{
		TierEssential:    schedule,
		TierProfessional: schedule,
		TierEnterprise:   schedule,
	}
}

// testTable returns the rate-table snapshot all engine tests compute
// against. Values are centavos.
func testTable() *Table {
	both := []Product{ProductManagement, ProductCRM}
	return &Table{
		Version: 42,
		Cycles: map[Frequency]Cycle{
			FreqMonthly:    {MultiplierBps: 12000, Months: 1},
			FreqSemiannual: {MultiplierBps: 11000, Months: 6},
			FreqAnnual:     {MultiplierBps: 10000, Months: 12},
			FreqBiennial:   {MultiplierBps: 9000, Months: 24},
		},
		Plans: map[Product]map[PlanTier]Plan{
			ProductManagement: {
				TierEssential:    {AnnualBase: 120000, Implementation: 50000, IncludedSeats: 3, IncludedContracts: 50},
				TierProfessional: {AnnualBase: 240000, Implementation: 80000, IncludedSeats: 7, IncludedContracts: 200},
				TierEnterprise:   {AnnualBase: 480000, Implementation: 120000, IncludedSeats: 15, IncludedContracts: 500, PremiumIncluded: true},
			},
			ProductCRM: {
				TierEssential:    {AnnualBase: 96000, Implementation: 30000, IncludedSeats: 2},
				TierProfessional: {AnnualBase: 180000, Implementation: 50000, IncludedSeats: 5},
				TierEnterprise:   {AnnualBase: 360000, Implementation: 90000, IncludedSeats: 10, PremiumIncluded: true},
			},
		},
		Addons: map[AddonKey]Addon{
			AddonLeads:      {Products: []Product{ProductCRM}, Annual: 60000, Implementation: 20000, Allowance: 100},
			AddonWhatsApp:   {Products: both, Annual: 48000, Implementation: 10000, Shareable: true},
			AddonSignatures: {Products: both, Annual: 72000, Implementation: 15000, Allowance: 10, Shareable: true},
			AddonBoletos:    {Products: []Product{ProductManagement}, Annual: 84000, Implementation: 25000, Allowance: 100},
			AddonSplits:     {Products: []Product{ProductManagement}, Annual: 60000, Implementation: 20000, Allowance: 50},
		},
		Bundles: map[BundleID]Bundle{
			BundleElite: {
				DiscountBps:     2000,
				Products:        both,
				IncludedAddons:  AllAddons(),
				PremiumIncluded: true,
				Training:        "dedicated onboarding",
				FreeImplementation: []string{
					"product:management", "product:crm",
					"addon:leads", "addon:whatsapp", "addon:signatures", "addon:boletos", "addon:splits",
				},
			},
			BundleDuo: {DiscountBps: 1500, Products: both},
			BundleGestao: {
				DiscountBps:        1000,
				Products:           []Product{ProductManagement},
				IncludedAddons:     []AddonKey{AddonBoletos},
				FreeImplementation: []string{"addon:boletos"},
			},
			BundleGestaoMax: {
				DiscountBps:    1200,
				Products:       []Product{ProductManagement},
				IncludedAddons: []AddonKey{AddonBoletos, AddonSplits},
			},
			BundleCRM:    {DiscountBps: 1000, Products: []Product{ProductCRM}},
			BundleCRMMax: {DiscountBps: 1200, Products: []Product{ProductCRM}, IncludedAddons: []AddonKey{AddonWhatsApp}},
		},
		Usage: map[Dimension]map[PlanTier][]Tier{
			DimUsers: {
				TierEssential:    {{From: 1, Price: 5700}},
				TierProfessional: {{From: 1, To: upTo(5), Price: 4700}, {From: 6, Price: 3700}},
				TierEnterprise:   {{From: 1, To: upTo(10), Price: 3700}, {From: 11, Price: 2700}},
			},
			DimContracts:  forAllTiers([]Tier{{From: 1, To: upTo(500), Price: 70}, {From: 501, Price: 50}}),
			DimLeads:      forAllTiers([]Tier{{From: 1, To: upTo(1000), Price: 30}, {From: 1001, Price: 20}}),
			DimSignatures: forAllTiers([]Tier{{From: 1, To: upTo(20), Price: 970}, {From: 21, Price: 770}}),
			DimBoletos:    forAllTiers([]Tier{{From: 1, To: upTo(500), Price: 270}, {From: 501, Price: 170}}),
			DimSplits:     forAllTiers([]Tier{{From: 1, Price: 120}}),
		},
		PremiumPrices: map[PremiumService]Money{
			PremiumVIPSupport:  120000,
			PremiumDedicatedCS: 240000,
		},
		Training: map[PlanTier]string{
			TierEssential:    "8h remote onboarding",
			TierProfessional: "16h remote onboarding",
			TierEnterprise:   "dedicated onboarding",
		},
		PrepaidDiscountBps: 2000,
	}
}

// managementProScenario is the canonical single-product scenario: product
// management on the professional tier, annual cycle, ten declared seats.
func managementProScenario() Scenario {
	return Scenario{
		Selection: SelectManagement,
		Plans:     map[Product]PlanTier{ProductManagement: TierProfessional},
		Addons:    map[AddonKey]bool{},
		Frequency: FreqAnnual,
		Usage:     UsageMetrics{Seats: 10},
	}
}

func bothAllAddonsScenario() Scenario {
	return Scenario{
		Selection: SelectBoth,
		Plans: map[Product]PlanTier{
			ProductManagement: TierProfessional,
			ProductCRM:        TierProfessional,
		},
		Addons: map[AddonKey]bool{
			AddonLeads:      true,
			AddonWhatsApp:   true,
			AddonSignatures: true,
			AddonBoletos:    true,
			AddonSplits:     true,
		},
		Frequency: FreqAnnual,
		Usage:     UsageMetrics{Seats: 12, MonthlyClosings: 120, MonthlyLeads: 300, ContractsUnderManagement: 250, NewContractsPerMonth: 8},
	}
}
