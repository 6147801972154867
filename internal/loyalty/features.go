package loyalty

import "strings"

// Features is a set of unlocked dashboard features.
type Features uint16

const (
	FeatureDashboardBasic Features = 1 << iota
	FeatureRepeatOrder
	FeatureLoyaltyLedger
	FeatureSavedMenus
	FeatureCorporateDashboard
	FeatureAutoInvoice
	FeatureExclusiveCatalog
	FeaturePrioritySupport
)

var featureNames = []struct {
	flag Features
	name string
}{
	{FeatureDashboardBasic, "DASHBOARD_BASIC"},
	{FeatureRepeatOrder, "REPEAT_ORDER"},
	{FeatureLoyaltyLedger, "LOYALTY_LEDGER"},
	{FeatureSavedMenus, "SAVED_MENUS"},
	{FeatureCorporateDashboard, "CORPORATE_DASHBOARD"},
	{FeatureAutoInvoice, "AUTO_INVOICE"},
	{FeatureExclusiveCatalog, "EXCLUSIVE_CATALOG"},
	{FeaturePrioritySupport, "PRIORITY_SUPPORT"},
}

// Has reports whether every flag in f2 is set in f.
func (f Features) Has(f2 Features) bool { return f&f2 == f2 }

// Names lists the set flags in declaration order.
func (f Features) Names() []string {
	out := []string{}
	for _, fn := range featureNames {
		if f.Has(fn.flag) {
			out = append(out, fn.name)
		}
	}
	return out
}

func (f Features) String() string { return strings.Join(f.Names(), "|") }

// CorporateSpendThreshold is the lifetime spend above which the corporate
// dashboard opens.
const CorporateSpendThreshold int64 = 5_000_000

// UnlockRule grants Grant when Match holds.
type UnlockRule struct {
	Match func(orderCount int, spend int64, tier Tier) bool
	Grant Features
}

// DefaultUnlockRules are evaluated independently; the result is their union.
var DefaultUnlockRules = []UnlockRule{
	{
		Match: func(int, int64, Tier) bool { return true },
		Grant: FeatureDashboardBasic,
	},
	{
		Match: func(orders int, _ int64, tier Tier) bool { return orders > 0 || tier.Level() > 0 },
		Grant: FeatureRepeatOrder | FeatureLoyaltyLedger | FeatureSavedMenus,
	},
	{
		Match: func(_ int, spend int64, _ Tier) bool { return spend > CorporateSpendThreshold },
		Grant: FeatureCorporateDashboard | FeatureAutoInvoice,
	},
	{
		Match: func(_ int, _ int64, tier Tier) bool { return atLeast(tier, TierGold) },
		Grant: FeatureExclusiveCatalog | FeaturePrioritySupport,
	},
}

func atLeast(t Tier, name string) bool {
	ref, ok := DefaultTiers.ByName(name)
	return ok && t.Threshold >= ref.Threshold
}

// Unlocked returns the union of all default rules that match.
func Unlocked(orderCount int, spend int64, tier Tier) Features {
	return UnlockedBy(DefaultUnlockRules, orderCount, spend, tier)
}

// UnlockedBy evaluates a custom rule list.
func UnlockedBy(rules []UnlockRule, orderCount int, spend int64, tier Tier) Features {
	var f Features
	for _, r := range rules {
		if r.Match(orderCount, spend, tier) {
			f |= r.Grant
		}
	}
	return f
}
