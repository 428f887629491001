package pricing

// Money represents a monetary value stored in centavos.
type Money = int64

// Product identifies one of the two sellable products.
type Product string

// Products offered by the platform.
const (
	ProductManagement Product = "management"
	ProductCRM        Product = "crm"
)

// PlanTier identifies a product plan level.
type PlanTier string

// Plan tiers, ordered lowest to highest.
const (
	TierEssential    PlanTier = "essential"
	TierProfessional PlanTier = "professional"
	TierEnterprise   PlanTier = "enterprise"
)

// tierRank orders plan tiers for "highest active tier" rules.
var tierRank = map[PlanTier]int{
	TierEssential:    1,
	TierProfessional: 2,
	TierEnterprise:   3,
}

// Frequency is the billing cycle chosen for the quote.
type Frequency string

// Supported billing frequencies.
const (
	FreqMonthly    Frequency = "monthly"
	FreqSemiannual Frequency = "semiannual"
	FreqAnnual     Frequency = "annual"
	FreqBiennial   Frequency = "biennial"
)

// Selection describes which products are active in the scenario.
type Selection string

// Product selections.
const (
	SelectManagement Selection = "management"
	SelectCRM        Selection = "crm"
	SelectBoth       Selection = "both"
)

// Products returns the active products for the selection.
func (s Selection) Products() []Product {
	switch s {
	case SelectManagement:
		return []Product{ProductManagement}
	case SelectCRM:
		return []Product{ProductCRM}
	case SelectBoth:
		return []Product{ProductManagement, ProductCRM}
	default:
		return nil
	}
}

// Includes reports whether the product is part of the selection.
func (s Selection) Includes(p Product) bool {
	for _, active := range s.Products() {
		if active == p {
			return true
		}
	}
	return false
}

// AddonKey identifies an optional add-on product.
type AddonKey string

// Add-on keys.
const (
	AddonLeads      AddonKey = "leads"
	AddonWhatsApp   AddonKey = "whatsapp"
	AddonSignatures AddonKey = "signatures"
	AddonBoletos    AddonKey = "boletos"
	AddonSplits     AddonKey = "splits"
)

// AllAddons lists every add-on key in canonical order.
func AllAddons() []AddonKey {
	return []AddonKey{AddonLeads, AddonWhatsApp, AddonSignatures, AddonBoletos, AddonSplits}
}

// PremiumService identifies an optional recurring service.
type PremiumService string

// Premium services.
const (
	PremiumVIPSupport  PremiumService = "vip_support"
	PremiumDedicatedCS PremiumService = "dedicated_cs"
)

// Dimension identifies a metered post-paid usage dimension.
type Dimension string

// Post-paid usage dimensions.
const (
	DimUsers      Dimension = "users"
	DimContracts  Dimension = "contracts"
	DimLeads      Dimension = "leads"
	DimSignatures Dimension = "signatures"
	DimBoletos    Dimension = "boletos"
	DimSplits     Dimension = "splits"
)

// AllDimensions lists every usage dimension in canonical order.
func AllDimensions() []Dimension {
	return []Dimension{DimUsers, DimContracts, DimLeads, DimSignatures, DimBoletos, DimSplits}
}

// BundleID names a promotional bundle ("Kombo").
type BundleID string

// Bundle identifiers.
const (
	BundleElite     BundleID = "kombo_elite"
	BundleDuo       BundleID = "kombo_duo"
	BundleGestao    BundleID = "kombo_gestao"
	BundleGestaoMax BundleID = "kombo_gestao_max"
	BundleCRM       BundleID = "kombo_crm"
	BundleCRMMax    BundleID = "kombo_crm_max"
	BundleNone      BundleID = ""
)

// UsageMetrics carries the metered inputs declared by the salesperson.
type UsageMetrics struct {
	Seats                    int64 `json:"seats" validate:"min=0"`
	MonthlyClosings          int64 `json:"monthlyClosings" validate:"min=0"`
	MonthlyLeads             int64 `json:"monthlyLeads" validate:"min=0"`
	ContractsUnderManagement int64 `json:"contractsUnderManagement" validate:"min=0"`
	NewContractsPerMonth     int64 `json:"newContractsPerMonth" validate:"min=0"`
	WhatsAppOptIn            bool  `json:"whatsappOptIn"`
}

// PremiumOptIns carries the manual premium-service selections.
type PremiumOptIns struct {
	VIPSupport  bool `json:"vipSupport"`
	DedicatedCS bool `json:"dedicatedCs"`
}

// Scenario is the full calculation input tuple.
type Scenario struct {
	Selection Selection            `json:"selection" validate:"required,oneof=management crm both"`
	Plans     map[Product]PlanTier `json:"plans" validate:"required"`
	Addons    map[AddonKey]bool    `json:"addons"`
	Frequency Frequency            `json:"frequency" validate:"required,oneof=monthly semiannual annual biennial"`
	Usage     UsageMetrics         `json:"usage"`
	Premium   PremiumOptIns        `json:"premium"`
}

// Overrides is a per-column snapshot of editable fields. A nil pointer or a
// missing map entry means "inherit from the scenario".
type Overrides struct {
	Frequency *Frequency           `json:"frequency,omitempty"`
	Plans     map[Product]PlanTier `json:"plans,omitempty"`
	Addons    map[AddonKey]bool    `json:"addons,omitempty"`
	Premium   *PremiumOptIns       `json:"premium,omitempty"`
}

// LineKind distinguishes the three states a priced line can be in.
type LineKind string

// Line states.
const (
	LinePriced        LineKind = "priced"
	LineIncluded      LineKind = "included"
	LineNotApplicable LineKind = "not_applicable"
)

// Line is the tagged price variant carried by every column row. A line is
// either priced at an amount, included at no recurring charge by the bundle,
// or not applicable to the active selection.
type Line struct {
	Kind   LineKind `json:"kind"`
	Amount Money    `json:"amount,omitempty"`
}

// Priced builds a numeric line.
func Priced(amount Money) Line { return Line{Kind: LinePriced, Amount: amount} }

// Included builds a bundle-included line with no recurring charge.
func Included() Line { return Line{Kind: LineIncluded} }

// NotApplicable builds a line that is not offered for the selection.
func NotApplicable() Line { return Line{Kind: LineNotApplicable} }

// Billable returns the amount when the line carries a numeric price.
func (l Line) Billable() (Money, bool) {
	if l.Kind == LinePriced {
		return l.Amount, true
	}
	return 0, false
}

// PostPaidLine is the per-dimension usage breakdown. A nil *PostPaidLine in a
// column means the dimension does not apply to the selection; a zero-cost
// line means it applies but no excess usage was declared.
type PostPaidLine struct {
	IncludedQuantity   int64 `json:"includedQuantity"`
	AdditionalQuantity int64 `json:"additionalQuantity"`
	Cost               Money `json:"cost"`
	PerUnitCost        Money `json:"perUnitCost"`
}

// ColumnKind distinguishes how a column was produced.
type ColumnKind string

// Column kinds.
const (
	ColumnBaseline ColumnKind = "baseline"
	ColumnBundle   ColumnKind = "bundle"
	ColumnCustom   ColumnKind = "custom"
)

// Column is one fully itemised pricing result. It is immutable once
// produced; edits spawn a fresh computation.
type Column struct {
	Kind        ColumnKind                  `json:"kind"`
	Bundle      BundleID                    `json:"bundle,omitempty"`
	Recommended bool                        `json:"recommended"`
	Products    map[Product]Line            `json:"products"`
	Addons      map[AddonKey]Line           `json:"addons"`
	Premium     map[PremiumService]Line     `json:"premium"`
	Training    string                      `json:"training,omitempty"`
	PostPaid    map[Dimension]*PostPaidLine `json:"postPaid"`

	Implementation            Money `json:"implementation"`
	TheoreticalImplementation Money `json:"theoreticalImplementation"`

	TotalMonthly     Money `json:"totalMonthly"`
	PostPaidTotal    Money `json:"postPaidTotal"`
	CycleMonths      int   `json:"cycleMonths"`
	CycleTotal       Money `json:"cycleTotal"`
	AnnualEquivalent Money `json:"annualEquivalent"`

	PrepaidSeats     bool `json:"prepaidSeats"`
	PrepaidContracts bool `json:"prepaidContracts"`

	// Overrides is populated for custom columns only and records the
	// editable set the column was built from.
	Overrides *Overrides `json:"overrides,omitempty"`
}

// PrepaidFlags selects which post-paid dimensions convert to pre-paid.
type PrepaidFlags struct {
	Seats     bool `json:"seats"`
	Contracts bool `json:"contracts"`
}

// resolve applies overrides field-by-field on top of the scenario and
// returns the effective scenario the column is computed from.
func (s Scenario) resolve(ov *Overrides) Scenario {
	out := s
	out.Plans = make(map[Product]PlanTier, len(s.Plans))
	for p, t := range s.Plans {
		out.Plans[p] = t
	}
	out.Addons = make(map[AddonKey]bool, len(s.Addons))
	for k, v := range s.Addons {
		out.Addons[k] = v
	}
	// WhatsApp opt-in declared with the usage metrics activates the add-on.
	if s.Usage.WhatsAppOptIn {
		out.Addons[AddonWhatsApp] = true
	}
	out.Usage = s.Usage.clamped()
	if ov == nil {
		return out
	}
	if ov.Frequency != nil {
		out.Frequency = *ov.Frequency
	}
	for p, t := range ov.Plans {
		out.Plans[p] = t
	}
	for k, v := range ov.Addons {
		out.Addons[k] = v
	}
	if ov.Premium != nil {
		out.Premium = *ov.Premium
	}
	return out
}

// clamped floors every numeric usage metric at zero. A quoting tool must
// never hard-fail mid-edit on a transient negative input.
func (u UsageMetrics) clamped() UsageMetrics {
	clamp := func(v int64) int64 {
		if v < 0 {
			return 0
		}
		return v
	}
	return UsageMetrics{
		Seats:                    clamp(u.Seats),
		MonthlyClosings:          clamp(u.MonthlyClosings),
		MonthlyLeads:             clamp(u.MonthlyLeads),
		ContractsUnderManagement: clamp(u.ContractsUnderManagement),
		NewContractsPerMonth:     clamp(u.NewContractsPerMonth),
		WhatsAppOptIn:            u.WhatsAppOptIn,
	}
}

// activeAddons returns the add-on keys enabled in the scenario, in
// canonical order.
func (s Scenario) activeAddons() []AddonKey {
	out := make([]AddonKey, 0, len(s.Addons))
	for _, k := range AllAddons() {
		if s.Addons[k] {
			out = append(out, k)
		}
	}
	return out
}

// highestActiveTier returns the highest plan tier across active products.
func (s Scenario) highestActiveTier() PlanTier {
	var best PlanTier
	for _, p := range s.Selection.Products() {
		t, ok := s.Plans[p]
		if !ok {
			continue
		}
		if best == "" || tierRank[t] > tierRank[best] {
			best = t
		}
	}
	return best
}
