// Package pricing turns catalog selections and party sizes into priced quotes.
package pricing

import (
	"errors"
	"fmt"

	"github.com/mpoksari/catering-api/internal/catalog"
	"github.com/mpoksari/catering-api/internal/enum"
	"github.com/shopspring/decimal"
)

// Party size bounds shared by the calculator and the build tool.
const (
	MinPax = 10
	MaxPax = 1000
)

// DefaultOperationalFee is the per-pax packaging and cutlery charge added to
// build-your-own menus. It is included in the discountable total.
const DefaultOperationalFee int64 = 2500

// Errors returned by the pricing engine.
var (
	ErrInvalidPax      = errors.New("invalid pax")
	ErrEmptySelection  = errors.New("selection is empty")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrModeMismatch    = errors.New("entry pricing mode not allowed here")
)

// InvalidPaxError carries the reason a party size was refused.
// errors.Is(err, ErrInvalidPax) matches it.
type InvalidPaxError struct {
	Pax    int
	Reason string
}

func (e *InvalidPaxError) Error() string {
	return fmt.Sprintf("invalid pax %d: %s", e.Pax, e.Reason)
}

func (e *InvalidPaxError) Is(target error) bool { return target == ErrInvalidPax }

// ValidatePax checks pax against the inclusive [MinPax, MaxPax] range.
func ValidatePax(pax int) error {
	if pax < MinPax {
		return &InvalidPaxError{Pax: pax, Reason: "below minimum"}
	}
	if pax > MaxPax {
		return &InvalidPaxError{Pax: pax, Reason: "above maximum, contact support"}
	}
	return nil
}

// Mode identifies which tool produced a Result.
type Mode string

const (
	ModeSimple Mode = "SIMPLE"
	ModeBuild  Mode = "BUILD"
)

// LineItem is one priced entry of a quote.
type LineItem struct {
	EntryID   string          `json:"entry_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Result is an itemized quote. Money is in whole Rupiah.
type Result struct {
	Mode           Mode            `json:"mode"`
	Pax            int             `json:"pax"`
	Lines          []LineItem      `json:"lines"`
	OperationalFee decimal.Decimal `json:"operational_fee"`
	PerPaxCost     decimal.Decimal `json:"per_pax_cost"`
	RawTotal       decimal.Decimal `json:"raw_total"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	DiscountLabel  string          `json:"discount_label,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalTotal     decimal.Decimal `json:"final_total"`
}

// HasDiscount reports whether a volume discount was applied.
func (r *Result) HasDiscount() bool { return r.DiscountAmount.IsPositive() }

// Engine prices selections against a catalog. Engines are immutable values;
// use the With* methods to derive variants.
type Engine struct {
	catalog        *catalog.Index
	simpleTiers    DiscountTable
	buildTiers     DiscountTable
	operationalFee int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSimpleTiers overrides the calculator discount table.
func WithSimpleTiers(t DiscountTable) Option { return func(e *Engine) { e.simpleTiers = t } }

// WithBuildTiers overrides the build tool discount table.
func WithBuildTiers(t DiscountTable) Option { return func(e *Engine) { e.buildTiers = t } }

// WithOperationalFee overrides the per-pax operational fee.
func WithOperationalFee(fee int64) Option { return func(e *Engine) { e.operationalFee = fee } }

// NewEngine creates an Engine over idx with the default tier tables.
func NewEngine(idx *catalog.Index, opts ...Option) *Engine {
	e := &Engine{
		catalog:        idx,
		simpleTiers:    SimpleTiers,
		buildTiers:     BuildTiers,
		operationalFee: DefaultOperationalFee,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Corporate returns a copy of e that prices both tools with CorporateTiers.
func (e *Engine) Corporate() *Engine {
	c := *e
	c.simpleTiers = CorporateTiers
	c.buildTiers = CorporateTiers
	return &c
}

// Catalog returns the index the engine prices against.
func (e *Engine) Catalog() *catalog.Index { return e.catalog }

// QuoteSimple prices a single catalog entry for pax guests. PER_PAX entries
// multiply by pax; FIXED entries are a one-time charge.
func (e *Engine) QuoteSimple(entryID string, pax int) (*Result, error) {
	if err := ValidatePax(pax); err != nil {
		return nil, err
	}
	entry, err := e.catalog.GetByID(entryID)
	if err != nil {
		return nil, err
	}

	unitPrice := decimal.NewFromInt(entry.UnitPrice)
	paxDec := decimal.NewFromInt(int64(pax))

	var rawTotal, perPax decimal.Decimal
	line := LineItem{EntryID: entry.ID, Name: entry.Name, UnitPrice: unitPrice}
	switch entry.PricingMode {
	case enum.PricingPerPax:
		rawTotal = unitPrice.Mul(paxDec)
		perPax = unitPrice
		line.Quantity = pax
	case enum.PricingFixed:
		rawTotal = unitPrice
		perPax = unitPrice.Div(paxDec).Round(0)
		line.Quantity = 1
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrModeMismatch, entry.ID, entry.PricingMode)
	}
	line.Subtotal = rawTotal

	res := &Result{
		Mode:           ModeSimple,
		Pax:            pax,
		Lines:          []LineItem{line},
		OperationalFee: decimal.Zero,
		PerPaxCost:     perPax,
		RawTotal:       rawTotal,
	}
	applyDiscount(res, e.simpleTiers.Lookup(pax))
	return res, nil
}

// QuoteBuild prices a build-your-own selection of PER_UNIT entries:
// per-pax cost is the sum of unit price × quantity plus the operational fee,
// and the raw total is per-pax cost × pax.
func (e *Engine) QuoteBuild(sel Selection, pax int) (*Result, error) {
	if err := ValidatePax(pax); err != nil {
		return nil, err
	}
	if len(sel) == 0 {
		return nil, ErrEmptySelection
	}

	itemsPerPax := decimal.Zero
	lines := make([]LineItem, 0, len(sel))
	for _, id := range sel.IDs(e.catalog) {
		qty := sel[id]
		entry, err := e.catalog.GetByID(id)
		if err != nil {
			return nil, err
		}
		if entry.PricingMode != enum.PricingPerUnit {
			return nil, fmt.Errorf("%w: %s is %s", ErrModeMismatch, entry.ID, entry.PricingMode)
		}
		if qty <= 0 || !entry.AllowsQuantity(qty) {
			return nil, fmt.Errorf("%w: %s x%d", ErrInvalidQuantity, entry.ID, qty)
		}
		unitPrice := decimal.NewFromInt(entry.UnitPrice)
		subtotal := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
		itemsPerPax = itemsPerPax.Add(subtotal)
		lines = append(lines, LineItem{
			EntryID:   entry.ID,
			Name:      entry.Name,
			Quantity:  qty,
			UnitPrice: unitPrice,
			Subtotal:  subtotal,
		})
	}

	fee := decimal.NewFromInt(e.operationalFee)
	perPax := itemsPerPax.Add(fee)
	res := &Result{
		Mode:           ModeBuild,
		Pax:            pax,
		Lines:          lines,
		OperationalFee: fee,
		PerPaxCost:     perPax,
		RawTotal:       perPax.Mul(decimal.NewFromInt(int64(pax))),
	}
	applyDiscount(res, e.buildTiers.Lookup(pax))
	return res, nil
}

// applyDiscount fills the discount fields. The discount is rounded to whole
// Rupiah so FinalTotal stays integral.
func applyDiscount(res *Result, tier Tier) {
	res.DiscountRate = tier.Rate
	res.DiscountLabel = tier.Label
	res.DiscountAmount = res.RawTotal.Mul(tier.Rate).Round(0)
	res.FinalTotal = res.RawTotal.Sub(res.DiscountAmount)
}
