package pricing

import (
	"errors"
	"fmt"
	"sort"
)

// ReferenceError reports a rate-table key the calculation needed but could
// not find. It indicates a deployment-time data defect, not a user-input
// problem, and stops the specific calculation.
type ReferenceError struct {
	Kind string
	Key  string
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("rate table: missing %s %q", e.Kind, e.Key)
}

func missingRef(kind, key string) error {
	return &ReferenceError{Kind: kind, Key: key}
}

// Cycle describes one billing frequency: its price multiplier in basis
// points over the annual rate and the number of months it spans.
type Cycle struct {
	MultiplierBps int32 `json:"multiplierBps"`
	Months        int   `json:"months"`
}

// Plan carries the per-tier commercial terms of one product.
type Plan struct {
	AnnualBase        Money `json:"annualBase"`
	Implementation    Money `json:"implementation"`
	IncludedSeats     int64 `json:"includedSeats"`
	IncludedContracts int64 `json:"includedContracts"`
	PremiumIncluded   bool  `json:"premiumIncluded"`
}

// Addon carries the commercial terms of one add-on.
type Addon struct {
	Products       []Product `json:"products"`
	Annual         Money     `json:"annual"`
	Implementation Money     `json:"implementation"`
	Allowance      int64     `json:"allowance"`
	Shareable      bool      `json:"shareable"`
}

// AppliesTo reports whether the add-on can be sold for the selection.
func (a Addon) AppliesTo(sel Selection) bool {
	for _, p := range a.Products {
		if sel.Includes(p) {
			return true
		}
	}
	return false
}

// Bundle describes a promotional package: the discount it grants and what
// it covers or includes outright.
type Bundle struct {
	DiscountBps        int32      `json:"discountBps"`
	Products           []Product  `json:"products"`
	IncludedAddons     []AddonKey `json:"includedAddons"`
	PremiumIncluded    bool       `json:"premiumIncluded"`
	Training           string     `json:"training,omitempty"`
	FreeImplementation []string   `json:"freeImplementation,omitempty"`
}

// Covers reports whether the bundle's product coverage contains p.
func (b Bundle) Covers(p Product) bool {
	for _, covered := range b.Products {
		if covered == p {
			return true
		}
	}
	return false
}

// IncludesAddon reports whether the bundle grants the add-on at no
// recurring charge.
func (b Bundle) IncludesAddon(key AddonKey) bool {
	for _, k := range b.IncludedAddons {
		if k == key {
			return true
		}
	}
	return false
}

// freeImplementationFor reports whether the bundle waives the
// implementation fee for the given item key ("product:crm", "addon:leads").
func (b Bundle) freeImplementationFor(item string) bool {
	for _, k := range b.FreeImplementation {
		if k == item {
			return true
		}
	}
	return false
}

// Tier is one marginal-rate segment of a usage schedule. To is nil on the
// final, unbounded segment.
type Tier struct {
	From  int64  `json:"from"`
	To    *int64 `json:"to"`
	Price Money  `json:"price"`
}

// Table is one immutable, versioned rate-table snapshot. The engine reads a
// single decoded snapshot per calculation pass and never mutates it.
type Table struct {
	Version            int64                             `json:"version"`
	Cycles             map[Frequency]Cycle               `json:"cycles"`
	Plans              map[Product]map[PlanTier]Plan     `json:"plans"`
	Addons             map[AddonKey]Addon                `json:"addons"`
	Bundles            map[BundleID]Bundle               `json:"bundles"`
	Usage              map[Dimension]map[PlanTier][]Tier `json:"usage"`
	PremiumPrices      map[PremiumService]Money          `json:"premiumPrices"`
	Training           map[PlanTier]string               `json:"training"`
	PrepaidDiscountBps int32                             `json:"prepaidDiscountBps"`
}

// Validate checks the snapshot shape once at load time: known keys,
// non-negative prices, and contiguous ascending tier schedules ending in an
// unbounded segment. Lookups during calculation assume a validated table.
func (t *Table) Validate() error {
	if t == nil {
		return errors.New("rate table: nil snapshot")
	}
	var errs []error
	for _, freq := range []Frequency{FreqMonthly, FreqSemiannual, FreqAnnual, FreqBiennial} {
		c, ok := t.Cycles[freq]
		if !ok {
			errs = append(errs, missingRef("cycle", string(freq)))
			continue
		}
		if c.MultiplierBps <= 0 || c.Months <= 0 {
			errs = append(errs, fmt.Errorf("rate table: cycle %s: non-positive multiplier or months", freq))
		}
	}
	for _, p := range []Product{ProductManagement, ProductCRM} {
		tiers, ok := t.Plans[p]
		if !ok {
			errs = append(errs, missingRef("product", string(p)))
			continue
		}
		for tier, plan := range tiers {
			if plan.AnnualBase < 0 || plan.Implementation < 0 {
				errs = append(errs, fmt.Errorf("rate table: plan %s/%s: negative price", p, tier))
			}
		}
	}
	for key, addon := range t.Addons {
		if addon.Annual < 0 || addon.Implementation < 0 {
			errs = append(errs, fmt.Errorf("rate table: addon %s: negative price", key))
		}
		if len(addon.Products) == 0 {
			errs = append(errs, fmt.Errorf("rate table: addon %s: no product scope", key))
		}
	}
	for id, bundle := range t.Bundles {
		if bundle.DiscountBps < 0 || bundle.DiscountBps > 10000 {
			errs = append(errs, fmt.Errorf("rate table: bundle %s: discount out of range", id))
		}
		if len(bundle.Products) == 0 {
			errs = append(errs, fmt.Errorf("rate table: bundle %s: no product coverage", id))
		}
	}
	for dim, byTier := range t.Usage {
		for tier, schedule := range byTier {
			if err := validateSchedule(schedule); err != nil {
				errs = append(errs, fmt.Errorf("rate table: usage %s/%s: %w", dim, tier, err))
			}
		}
	}
	if t.PrepaidDiscountBps < 0 || t.PrepaidDiscountBps > 10000 {
		errs = append(errs, errors.New("rate table: prepaid discount out of range"))
	}
	return errors.Join(errs...)
}

func validateSchedule(schedule []Tier) error {
	if len(schedule) == 0 {
		return errors.New("empty schedule")
	}
	sorted := sort.SliceIsSorted(schedule, func(i, j int) bool {
		return schedule[i].From < schedule[j].From
	})
	if !sorted {
		return errors.New("segments out of order")
	}
	for i, seg := range schedule {
		if seg.Price < 0 {
			return errors.New("negative price")
		}
		last := i == len(schedule)-1
		if last {
			if seg.To != nil {
				return errors.New("final segment must be unbounded")
			}
			continue
		}
		if seg.To == nil {
			return errors.New("unbounded segment before the final one")
		}
		if *seg.To < seg.From {
			return errors.New("segment upper bound below lower bound")
		}
		if next := schedule[i+1]; next.From != *seg.To+1 {
			return errors.New("segments not contiguous")
		}
	}
	return nil
}

// cycle resolves the cycle record for a frequency.
func (t *Table) cycle(freq Frequency) (Cycle, error) {
	c, ok := t.Cycles[freq]
	if !ok {
		return Cycle{}, missingRef("cycle", string(freq))
	}
	return c, nil
}

// plan resolves the plan record for a product and tier.
func (t *Table) plan(p Product, tier PlanTier) (Plan, error) {
	byTier, ok := t.Plans[p]
	if !ok {
		return Plan{}, missingRef("product", string(p))
	}
	plan, ok := byTier[tier]
	if !ok {
		return Plan{}, missingRef("plan", fmt.Sprintf("%s/%s", p, tier))
	}
	return plan, nil
}

// bundle resolves a bundle record.
func (t *Table) bundle(id BundleID) (Bundle, error) {
	b, ok := t.Bundles[id]
	if !ok {
		return Bundle{}, missingRef("bundle", string(id))
	}
	return b, nil
}

// schedule resolves the usage tier schedule for a dimension and plan tier.
func (t *Table) schedule(dim Dimension, tier PlanTier) ([]Tier, error) {
	byTier, ok := t.Usage[dim]
	if !ok {
		return nil, missingRef("usage dimension", string(dim))
	}
	schedule, ok := byTier[tier]
	if !ok {
		return nil, missingRef("usage schedule", fmt.Sprintf("%s/%s", dim, tier))
	}
	return schedule, nil
}
