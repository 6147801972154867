package loyalty

import (
	"errors"
	"testing"
)

func TestResolveTier(t *testing.T) {
	tests := []struct {
		spend int64
		want  string
	}{
		{0, TierMember},
		{2_999_999, TierMember},
		{3_000_000, TierBronze},
		{12_000_000, TierSilver},
		{25_000_000, TierGold},
		{60_000_000, TierPlatinum},
		{250_000_000, TierDiamond},
	}
	for _, tt := range tests {
		if got := DefaultTiers.Resolve(tt.spend); got.Name != tt.want {
			t.Errorf("Resolve(%d): got %s, want %s", tt.spend, got.Name, tt.want)
		}
	}
}

func TestTierGap(t *testing.T) {
	p := DefaultTiers.Gap(1_500_000)
	if p.Current.Name != TierMember || p.Next != TierBronze {
		t.Fatalf("unexpected tiers: %+v", p)
	}
	if p.Gap != 1_500_000 || p.Percent != 50 {
		t.Errorf("gap=%d percent=%d, want 1500000 and 50", p.Gap, p.Percent)
	}

	p = DefaultTiers.Gap(17_500_000)
	if p.Current.Name != TierSilver || p.Next != TierGold || p.Gap != 7_500_000 || p.Percent != 70 {
		t.Errorf("unexpected progress: %+v", p)
	}

	p = DefaultTiers.Gap(150_000_000)
	if p.Current.Name != TierDiamond || p.Gap != 0 || p.Percent != 100 || p.Next != "" {
		t.Errorf("top tier progress: %+v", p)
	}
}

func TestNewTierTable_Validation(t *testing.T) {
	if _, err := NewTierTable(); !errors.Is(err, ErrInvalidTierTable) {
		t.Errorf("empty: expected ErrInvalidTierTable, got: %v", err)
	}
	if _, err := NewTierTable(Tier{Name: "A", Threshold: 10}); !errors.Is(err, ErrInvalidTierTable) {
		t.Errorf("non-zero start: expected ErrInvalidTierTable, got: %v", err)
	}
	_, err := NewTierTable(Tier{Name: "A"}, Tier{Name: "B", Threshold: 5}, Tier{Name: "C", Threshold: 5})
	if !errors.Is(err, ErrInvalidTierTable) {
		t.Errorf("duplicate threshold: expected ErrInvalidTierTable, got: %v", err)
	}
}

func TestUnlocked(t *testing.T) {
	member := DefaultTiers.Resolve(0)
	gold := DefaultTiers.Resolve(30_000_000)

	tests := []struct {
		name   string
		orders int
		spend  int64
		tier   Tier
		has    Features
		hasNot Features
	}{
		{"new member", 0, 0, member, FeatureDashboardBasic, FeatureRepeatOrder | FeatureCorporateDashboard},
		{"first order", 1, 500_000, member, FeatureRepeatOrder | FeatureSavedMenus, FeatureCorporateDashboard},
		{"big spender", 3, 6_000_000, DefaultTiers.Resolve(6_000_000), FeatureCorporateDashboard | FeatureAutoInvoice, FeatureExclusiveCatalog},
		{"gold", 10, 30_000_000, gold, FeatureExclusiveCatalog | FeaturePrioritySupport | FeatureCorporateDashboard, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Unlocked(tt.orders, tt.spend, tt.tier)
			if !f.Has(tt.has) {
				t.Errorf("expected %s to include %s", f, tt.has)
			}
			if tt.hasNot != 0 && f&tt.hasNot != 0 {
				t.Errorf("expected %s to exclude %s", f, tt.hasNot)
			}
		})
	}
}

func TestUnlockRulesAreAdditive(t *testing.T) {
	rules := []UnlockRule{
		{Match: func(int, int64, Tier) bool { return true }, Grant: FeatureSavedMenus},
		{Match: func(int, int64, Tier) bool { return true }, Grant: FeatureRepeatOrder},
	}
	reversed := []UnlockRule{rules[1], rules[0]}

	a := UnlockedBy(rules, 0, 0, Tier{})
	b := UnlockedBy(reversed, 0, 0, Tier{})
	if a != b || !a.Has(FeatureSavedMenus|FeatureRepeatOrder) {
		t.Errorf("rule order changed result: %s vs %s", a, b)
	}
}

func TestFeatureNames(t *testing.T) {
	f := FeatureSavedMenus | FeatureDashboardBasic
	if got := f.String(); got != "DASHBOARD_BASIC|SAVED_MENUS" {
		t.Errorf("String: got %q", got)
	}
}

func TestRewards(t *testing.T) {
	r, err := RewardByID("tumpeng-mini")
	if err != nil || r.Cost != 250 {
		t.Fatalf("RewardByID: %+v %v", r, err)
	}
	if _, err := RewardByID("nope"); !errors.Is(err, ErrRewardNotFound) {
		t.Errorf("expected ErrRewardNotFound, got: %v", err)
	}
	if got := Claimable(120); len(got) != 2 {
		t.Errorf("Claimable(120): got %d rewards, want 2", len(got))
	}
	if got := Claimable(0); len(got) != 0 {
		t.Errorf("Claimable(0): got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(120, 12_000_000, 4)
	if s.Progress.Current.Name != TierSilver {
		t.Errorf("tier: got %s", s.Progress.Current.Name)
	}
	if len(s.Claimable) != 2 {
		t.Errorf("claimable: got %d", len(s.Claimable))
	}
	found := false
	for _, n := range s.Features {
		if n == "CORPORATE_DASHBOARD" {
			found = true
		}
	}
	if !found {
		t.Errorf("features: %v", s.Features)
	}
}
