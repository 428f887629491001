package pricing

import "fmt"

// ComputeColumn produces one fully itemised pricing result for a bundle
// choice (BundleNone for the undiscounted baseline). An ineligible bundle
// still computes: hiding ineligible bundles is the caller's concern, which
// keeps what-if previews possible.
func (t *Table) ComputeColumn(id BundleID, s Scenario, recommended BundleID) (Column, error) {
	kind := ColumnBundle
	if id == BundleNone {
		kind = ColumnBaseline
	}
	return t.compute(kind, id, s, recommended, nil)
}

// ComputeCustomColumn produces a free-form comparison column built from an
// override set layered over the scenario. Custom columns carry no bundle
// discount; every line follows the overridden configuration directly.
func (t *Table) ComputeCustomColumn(s Scenario, ov *Overrides, recommended BundleID) (Column, error) {
	return t.compute(ColumnCustom, BundleNone, s, recommended, ov)
}

func (t *Table) compute(kind ColumnKind, id BundleID, scenario Scenario, recommended BundleID, ov *Overrides) (Column, error) {
	s := scenario.resolve(ov)

	var bundle Bundle
	if id != BundleNone {
		b, err := t.bundle(id)
		if err != nil {
			return Column{}, err
		}
		bundle = b
	}

	col := Column{
		Kind:        kind,
		Bundle:      id,
		Recommended: id != BundleNone && id == recommended,
		Products:    make(map[Product]Line, 2),
		Addons:      make(map[AddonKey]Line, len(AllAddons())),
		Premium:     make(map[PremiumService]Line, 2),
		PostPaid:    make(map[Dimension]*PostPaidLine, len(AllDimensions())),
	}
	if kind == ColumnCustom {
		col.Overrides = ov
	}

	cycle, err := t.cycle(s.Frequency)
	if err != nil {
		return Column{}, err
	}
	col.CycleMonths = cycle.Months

	// Per-product recurring prices. The bundle discount only reaches
	// products its coverage declares.
	for _, p := range []Product{ProductManagement, ProductCRM} {
		if !s.Selection.Includes(p) {
			col.Products[p] = NotApplicable()
			continue
		}
		tier, ok := s.Plans[p]
		if !ok {
			return Column{}, missingRef("plan selection", string(p))
		}
		plan, err := t.plan(p, tier)
		if err != nil {
			return Column{}, err
		}
		price, err := t.CyclePrice(plan.AnnualBase, s.Frequency)
		if err != nil {
			return Column{}, err
		}
		if bundle.Covers(p) {
			price = discounted(price, bundle.DiscountBps)
		}
		col.Products[p] = Priced(price)
	}

	// Add-on lines. Bundle-included add-ons keep the "included" label
	// rather than a zero price: some of them still bill post-paid usage
	// downstream, and renderers must tell the two apart.
	for _, key := range AllAddons() {
		addon, ok := t.Addons[key]
		if !ok {
			return Column{}, missingRef("addon", string(key))
		}
		if !s.Addons[key] || !addon.AppliesTo(s.Selection) {
			col.Addons[key] = NotApplicable()
			continue
		}
		if bundle.IncludesAddon(key) {
			col.Addons[key] = Included()
			continue
		}
		price, err := t.CyclePrice(addon.Annual, s.Frequency)
		if err != nil {
			return Column{}, err
		}
		col.Addons[key] = Priced(discounted(price, bundle.DiscountBps))
	}

	// Premium services. Plan-tier or bundle inclusion overrides the manual
	// opt-ins and must be decided before any charge is summed; deciding it
	// after would double-charge an enterprise-tier scenario.
	premiumIncluded := bundle.PremiumIncluded
	for _, p := range s.Selection.Products() {
		plan, err := t.plan(p, s.Plans[p])
		if err != nil {
			return Column{}, err
		}
		if plan.PremiumIncluded {
			premiumIncluded = true
		}
	}
	optIns := map[PremiumService]bool{
		PremiumVIPSupport:  s.Premium.VIPSupport,
		PremiumDedicatedCS: s.Premium.DedicatedCS,
	}
	for _, svc := range []PremiumService{PremiumVIPSupport, PremiumDedicatedCS} {
		switch {
		case premiumIncluded:
			col.Premium[svc] = Included()
		case optIns[svc]:
			annual, ok := t.PremiumPrices[svc]
			if !ok {
				return Column{}, missingRef("premium service", string(svc))
			}
			price, err := t.CyclePrice(annual, s.Frequency)
			if err != nil {
				return Column{}, err
			}
			col.Premium[svc] = Priced(price)
		default:
			col.Premium[svc] = NotApplicable()
		}
	}

	// Training descriptor follows the highest active plan tier unless the
	// bundle declares its own inclusion.
	if bundle.Training != "" {
		col.Training = bundle.Training
	} else if tier := s.highestActiveTier(); tier != "" {
		col.Training = t.Training[tier]
	}

	// Post-paid usage per dimension. Inapplicable dimensions stay nil;
	// applicable ones always produce a line, with cost zero when the
	// declared usage sits inside the allowance.
	if err := t.fillPostPaid(&col, s); err != nil {
		return Column{}, err
	}

	// Implementation fees. The bundle discount never applies here; instead
	// the bundle may waive specific items outright.
	if err := t.fillImplementation(&col, s, bundle); err != nil {
		return Column{}, err
	}

	for _, line := range col.Products {
		if amount, ok := line.Billable(); ok {
			col.TotalMonthly += amount
		}
	}
	for _, line := range col.Addons {
		if amount, ok := line.Billable(); ok {
			col.TotalMonthly += amount
		}
	}
	for _, line := range col.Premium {
		if amount, ok := line.Billable(); ok {
			col.TotalMonthly += amount
		}
	}
	for _, line := range col.PostPaid {
		if line != nil {
			col.PostPaidTotal += line.Cost
		}
	}
	col.CycleTotal = col.TotalMonthly*Money(cycle.Months) + col.Implementation
	col.AnnualEquivalent = col.TotalMonthly*12 + col.Implementation
	return col, nil
}

// usageDimension describes how one post-paid dimension binds to the
// scenario: when it applies, which metric feeds it, which plan tier prices
// it, and what allowance is included.
type usageDimension struct {
	applies   bool
	metric    int64
	tier      PlanTier
	allowance int64
}

func (t *Table) usageDimensions(s Scenario) (map[Dimension]usageDimension, error) {
	out := make(map[Dimension]usageDimension, len(AllDimensions()))

	managementTier := s.Plans[ProductManagement]
	crmTier := s.Plans[ProductCRM]
	pricingTier := s.highestActiveTier()

	// Seats are pooled across active products.
	var includedSeats, includedContracts int64
	for _, p := range s.Selection.Products() {
		plan, err := t.plan(p, s.Plans[p])
		if err != nil {
			return nil, err
		}
		includedSeats += plan.IncludedSeats
		if p == ProductManagement {
			includedContracts = plan.IncludedContracts
		}
	}

	addonAllowance := func(key AddonKey) int64 {
		return t.Addons[key].Allowance
	}

	out[DimUsers] = usageDimension{
		applies:   true,
		metric:    s.Usage.Seats,
		tier:      pricingTier,
		allowance: includedSeats,
	}
	out[DimContracts] = usageDimension{
		applies:   s.Selection.Includes(ProductManagement),
		metric:    s.Usage.ContractsUnderManagement,
		tier:      managementTier,
		allowance: includedContracts,
	}
	out[DimLeads] = usageDimension{
		applies:   s.Selection.Includes(ProductCRM) && s.Addons[AddonLeads],
		metric:    s.Usage.MonthlyLeads,
		tier:      crmTier,
		allowance: addonAllowance(AddonLeads),
	}
	out[DimSignatures] = usageDimension{
		applies:   s.Addons[AddonSignatures],
		metric:    s.Usage.NewContractsPerMonth,
		tier:      pricingTier,
		allowance: addonAllowance(AddonSignatures),
	}
	out[DimBoletos] = usageDimension{
		applies:   s.Selection.Includes(ProductManagement) && s.Addons[AddonBoletos],
		metric:    s.Usage.MonthlyClosings,
		tier:      managementTier,
		allowance: addonAllowance(AddonBoletos),
	}
	out[DimSplits] = usageDimension{
		applies:   s.Selection.Includes(ProductManagement) && s.Addons[AddonSplits],
		metric:    s.Usage.MonthlyClosings,
		tier:      managementTier,
		allowance: addonAllowance(AddonSplits),
	}
	return out, nil
}

func (t *Table) fillPostPaid(col *Column, s Scenario) error {
	dims, err := t.usageDimensions(s)
	if err != nil {
		return err
	}
	for _, dim := range AllDimensions() {
		binding := dims[dim]
		if !binding.applies {
			col.PostPaid[dim] = nil
			continue
		}
		schedule, err := t.schedule(dim, binding.tier)
		if err != nil {
			return err
		}
		total := binding.metric
		if total < 0 {
			total = 0
		}
		additional := total - binding.allowance
		if additional < 0 {
			additional = 0
		}
		line := &PostPaidLine{
			IncludedQuantity:   binding.allowance,
			AdditionalQuantity: additional,
			Cost:               marginalUsageCost(total, binding.allowance, schedule),
		}
		// The per-unit rate reported is the marginal rate at the last
		// billed position, or at the next position when nothing billed.
		position := total
		if additional == 0 {
			position = binding.allowance + 1
		}
		line.PerUnitCost = RateAt(position, schedule)
		col.PostPaid[dim] = line
	}
	return nil
}

func (t *Table) fillImplementation(col *Column, s Scenario, bundle Bundle) error {
	var actual, theoretical Money
	for _, p := range s.Selection.Products() {
		plan, err := t.plan(p, s.Plans[p])
		if err != nil {
			return err
		}
		theoretical += plan.Implementation
		if !bundle.freeImplementationFor(fmt.Sprintf("product:%s", p)) {
			actual += plan.Implementation
		}
	}
	for _, key := range AllAddons() {
		line, ok := col.Addons[key]
		if !ok || line.Kind == LineNotApplicable {
			continue
		}
		addon := t.Addons[key]
		theoretical += addon.Implementation
		if !bundle.freeImplementationFor(fmt.Sprintf("addon:%s", key)) {
			actual += addon.Implementation
		}
	}
	col.Implementation = actual
	col.TheoreticalImplementation = theoretical
	return nil
}
