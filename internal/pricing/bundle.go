package pricing

// Eligible reports whether a bundle can be offered for the product
// selection: every product the bundle covers must be active. A
// both-products bundle is therefore only eligible when both are selected.
func (t *Table) Eligible(id BundleID, sel Selection) (bool, error) {
	b, err := t.bundle(id)
	if err != nil {
		return false, err
	}
	for _, p := range b.Products {
		if !sel.Includes(p) {
			return false, nil
		}
	}
	return true, nil
}

// EligibleBundles returns every bundle offerable for the selection, in
// canonical order.
func (t *Table) EligibleBundles(sel Selection) []BundleID {
	var out []BundleID
	for _, id := range []BundleID{BundleElite, BundleDuo, BundleGestao, BundleGestaoMax, BundleCRM, BundleCRMMax} {
		if _, ok := t.Bundles[id]; !ok {
			continue
		}
		if ok, _ := t.Eligible(id, sel); ok {
			out = append(out, id)
		}
	}
	return out
}

// recommendRule is one row of the recommendation table: an exact add-on
// signature for a product selection mapped to the bundle it earns.
type recommendRule struct {
	selection Selection
	addons    []AddonKey
	bundle    BundleID
}

// recommendRules is the ordered rule table. First exact signature match
// wins; there is no partial-match scoring.
var recommendRules = []recommendRule{
	{SelectBoth, []AddonKey{AddonLeads, AddonWhatsApp, AddonSignatures, AddonBoletos, AddonSplits}, BundleElite},
	{SelectBoth, nil, BundleDuo},
	{SelectManagement, []AddonKey{AddonSignatures, AddonBoletos}, BundleGestao},
	{SelectManagement, []AddonKey{AddonSignatures, AddonBoletos, AddonSplits}, BundleGestaoMax},
	{SelectCRM, []AddonKey{AddonLeads}, BundleCRM},
	{SelectCRM, []AddonKey{AddonLeads, AddonWhatsApp}, BundleCRMMax},
}

// Recommend resolves the bundle to auto-suggest for the active selection
// and add-on set. It is a pure lookup over exact signatures: two scenarios
// with the same signature always recommend the same bundle, and any
// signature outside the table recommends none.
func Recommend(sel Selection, addons map[AddonKey]bool) BundleID {
	for _, rule := range recommendRules {
		if rule.selection != sel {
			continue
		}
		if signatureMatches(rule.addons, addons) {
			return rule.bundle
		}
	}
	return BundleNone
}

// RecommendFor resolves the recommendation from a scenario after usage
// driven activation (a WhatsApp opt-in counts as the add-on being active).
func RecommendFor(s Scenario) BundleID {
	return Recommend(s.Selection, s.resolve(nil).Addons)
}

// signatureMatches reports an exact match between a rule signature and the
// active add-on set.
func signatureMatches(signature []AddonKey, addons map[AddonKey]bool) bool {
	want := make(map[AddonKey]bool, len(signature))
	for _, k := range signature {
		want[k] = true
	}
	for _, k := range AllAddons() {
		if addons[k] != want[k] {
			return false
		}
	}
	return true
}
