package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidTiers is returned when a discount table is not ascending.
var ErrInvalidTiers = errors.New("discount tiers must be ascending with rates in [0, 1)")

// Tier is one row of a volume discount table.
type Tier struct {
	MinPax int
	Rate   decimal.Decimal
	Label  string
}

// DiscountTable is an ascending list of volume tiers. Lookups walk it from
// the highest threshold down; the first tier the pax count meets wins.
type DiscountTable []Tier

// NewDiscountTable validates tiers: thresholds strictly ascending, rates
// non-decreasing and within [0, 1).
func NewDiscountTable(tiers ...Tier) (DiscountTable, error) {
	one := decimal.NewFromInt(1)
	for i, t := range tiers {
		if t.Rate.IsNegative() || t.Rate.GreaterThanOrEqual(one) {
			return nil, fmt.Errorf("%w: tier[%d] rate %s", ErrInvalidTiers, i, t.Rate)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if t.MinPax <= prev.MinPax || t.Rate.LessThan(prev.Rate) {
			return nil, fmt.Errorf("%w: tier[%d]", ErrInvalidTiers, i)
		}
	}
	out := make(DiscountTable, len(tiers))
	copy(out, tiers)
	return out, nil
}

func mustTable(tiers ...Tier) DiscountTable {
	t, err := NewDiscountTable(tiers...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the tier that applies to pax. The zero Tier (rate 0, empty
// label) is returned when no threshold is met.
func (d DiscountTable) Lookup(pax int) Tier {
	for i := len(d) - 1; i >= 0; i-- {
		if pax >= d[i].MinPax {
			return d[i]
		}
	}
	return Tier{Rate: decimal.Zero}
}

// Rate returns the discount rate for pax.
func (d DiscountTable) Rate(pax int) decimal.Decimal {
	return d.Lookup(pax).Rate
}

// Volume tiers of the packaged-menu calculator.
var SimpleTiers = mustTable(
	Tier{MinPax: 100, Rate: decimal.RequireFromString("0.05"), Label: "Diskon Volume (5%)"},
	Tier{MinPax: 300, Rate: decimal.RequireFromString("0.10"), Label: "Diskon Volume (10%)"},
)

// Volume tiers of the build-your-own menu tool.
var BuildTiers = mustTable(
	Tier{MinPax: 100, Rate: decimal.RequireFromString("0.05"), Label: "Diskon Volume (5%)"},
	Tier{MinPax: 500, Rate: decimal.RequireFromString("0.10"), Label: "Diskon Big Event (10%)"},
)

// Volume tiers for corporate members.
var CorporateTiers = mustTable(
	Tier{MinPax: 100, Rate: decimal.RequireFromString("0.10"), Label: "Diskon Korporat (10%)"},
	Tier{MinPax: 500, Rate: decimal.RequireFromString("0.18"), Label: "Diskon Korporat (18%)"},
)
