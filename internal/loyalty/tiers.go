package loyalty

import (
	"errors"
	"fmt"
)

// ErrInvalidTierTable is returned for tables that are empty, do not start at
// zero, or are not strictly ascending.
var ErrInvalidTierTable = errors.New("tier table must start at 0 and ascend")

// Tier names, lowest first.
const (
	TierMember   = "MEMBER"
	TierBronze   = "BRONZE"
	TierSilver   = "SILVER"
	TierGold     = "GOLD"
	TierPlatinum = "PLATINUM"
	TierDiamond  = "DIAMOND"
)

// Tier is a membership level reached at Threshold Rupiah of lifetime spend.
type Tier struct {
	Name      string   `json:"name"`
	Threshold int64    `json:"threshold"`
	Perks     []string `json:"perks,omitempty"`
	level     int
}

// Level is the tier's position in its table, 0 for the lowest.
func (t Tier) Level() int { return t.level }

// TierTable is an ascending list of tiers.
type TierTable []Tier

// NewTierTable validates tiers and assigns levels.
func NewTierTable(tiers ...Tier) (TierTable, error) {
	if len(tiers) == 0 || tiers[0].Threshold != 0 {
		return nil, ErrInvalidTierTable
	}
	out := make(TierTable, len(tiers))
	for i, t := range tiers {
		if i > 0 && t.Threshold <= tiers[i-1].Threshold {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTierTable, t.Name)
		}
		t.level = i
		out[i] = t
	}
	return out, nil
}

// DefaultTiers is the membership ladder, measured on lifetime spend.
var DefaultTiers = func() TierTable {
	t, err := NewTierTable(
		Tier{Name: TierMember, Threshold: 0},
		Tier{Name: TierBronze, Threshold: 3_000_000, Perks: []string{"VOUCHER_50K", "STICKER_PACK"}},
		Tier{Name: TierSilver, Threshold: 10_000_000, Perks: []string{"FREE_NASIBOX_10", "WALL_OF_FAME"}},
		Tier{Name: TierGold, Threshold: 25_000_000, Perks: []string{"FREE_TUMPENG_MINI", "PRIORITY_SLA"}},
		Tier{Name: TierPlatinum, Threshold: 50_000_000, Perks: []string{"FREE_AQIQAH_BASIC", "DEDICATED_CS"}},
		Tier{Name: TierDiamond, Threshold: 100_000_000, Perks: []string{"FREE_WEDDING_INTIMATE", "VIP_TASTING"}},
	)
	if err != nil {
		panic(err)
	}
	return t
}()

// Resolve returns the highest tier whose threshold spend meets, or the
// lowest tier when none does.
func (tt TierTable) Resolve(spend int64) Tier {
	for i := len(tt) - 1; i >= 0; i-- {
		if spend >= tt[i].Threshold {
			return tt[i]
		}
	}
	return tt[0]
}

// ByName looks a tier up by name.
func (tt TierTable) ByName(name string) (Tier, bool) {
	for _, t := range tt {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// Progress describes the distance to the next tier.
type Progress struct {
	Current       Tier   `json:"current"`
	Next          string `json:"next,omitempty"`
	NextThreshold int64  `json:"next_threshold,omitempty"`
	Gap           int64  `json:"gap"`
	Percent       int    `json:"percent"`
}

// Gap reports how far spend is from the next tier. At the top tier the gap
// is 0 and progress is 100.
func (tt TierTable) Gap(spend int64) Progress {
	cur := tt.Resolve(spend)
	if cur.level >= len(tt)-1 {
		return Progress{Current: cur, Percent: 100}
	}

	next := tt[cur.level+1]
	p := Progress{
		Current:       cur,
		Next:          next.Name,
		NextThreshold: next.Threshold,
		Gap:           next.Threshold - spend,
	}
	if spend > 0 {
		p.Percent = int(spend * 100 / next.Threshold)
	}
	if p.Percent > 100 {
		p.Percent = 100
	}
	return p
}
