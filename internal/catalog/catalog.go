// Package catalog holds the static menu and build-your-own ingredient tables.
package catalog

import (
	"errors"
	"fmt"

	"github.com/mpoksari/catering-api/internal/enum"
)

// Errors returned by the catalog.
var (
	ErrNotFound       = errors.New("catalog entry not found")
	ErrDuplicateID    = errors.New("duplicate catalog entry id")
	ErrInvalidEntry   = errors.New("invalid catalog entry")
	ErrNegativePrice  = errors.New("unit price must be >= 0")
	ErrInvalidBounds  = errors.New("min quantity must be <= max quantity")
	ErrBoundsNotUnits = errors.New("quantity bounds are only allowed on PER_UNIT entries")
)

// Entry is a purchasable menu package or build-your-own ingredient.
// UnitPrice is in whole Rupiah. MinQuantity and MaxQuantity are zero when
// absent, which means [1, unbounded).
type Entry struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    enum.Category    `json:"category"`
	UnitPrice   int64            `json:"unit_price"`
	PricingMode enum.PricingMode `json:"pricing_mode"`
	MinQuantity int              `json:"min_quantity,omitempty"`
	MaxQuantity int              `json:"max_quantity,omitempty"`
	MinOrder    int              `json:"min_order,omitempty"` // suggested minimum pax, display only
	Description string           `json:"description,omitempty"`
	Popular     bool             `json:"popular,omitempty"`
}

// Min returns the effective lower quantity bound.
func (e Entry) Min() int {
	if e.MinQuantity > 0 {
		return e.MinQuantity
	}
	return 1
}

// Max returns the effective upper quantity bound and false when unbounded.
func (e Entry) Max() (int, bool) {
	if e.MaxQuantity > 0 {
		return e.MaxQuantity, true
	}
	return 0, false
}

// AllowsQuantity reports whether qty is inside the entry's bounds.
func (e Entry) AllowsQuantity(qty int) bool {
	if qty < e.Min() {
		return false
	}
	if max, ok := e.Max(); ok && qty > max {
		return false
	}
	return true
}

func (e Entry) validate() error {
	if e.ID == "" || e.Name == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidEntry)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidEntry, e.ID, e.Category)
	}
	if !e.PricingMode.Valid() {
		return fmt.Errorf("%w: %s: unknown pricing mode %q", ErrInvalidEntry, e.ID, e.PricingMode)
	}
	if e.UnitPrice < 0 {
		return fmt.Errorf("%s: %w", e.ID, ErrNegativePrice)
	}
	if e.MinQuantity < 0 || e.MaxQuantity < 0 {
		return fmt.Errorf("%s: %w", e.ID, ErrInvalidBounds)
	}
	if (e.MinQuantity > 0 || e.MaxQuantity > 0) && e.PricingMode != enum.PricingPerUnit {
		return fmt.Errorf("%s: %w", e.ID, ErrBoundsNotUnits)
	}
	if e.MinQuantity > 0 && e.MaxQuantity > 0 && e.MinQuantity > e.MaxQuantity {
		return fmt.Errorf("%s: %w", e.ID, ErrInvalidBounds)
	}
	return nil
}

// Index is an immutable lookup table over catalog entries.
type Index struct {
	entries    []Entry
	byID       map[string]int
	categories []enum.Category
}

// New validates entries and builds an Index. Insertion order is preserved.
func New(entries []Entry) (*Index, error) {
	idx := &Index{
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	seen := make(map[enum.Category]bool)
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := idx.byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		idx.byID[e.ID] = len(idx.entries)
		idx.entries = append(idx.entries, e)
		if !seen[e.Category] {
			seen[e.Category] = true
			idx.categories = append(idx.categories, e.Category)
		}
	}
	return idx, nil
}

// MustNew is New for static tables; it panics on invalid input.
func MustNew(entries []Entry) *Index {
	idx, err := New(entries)
	if err != nil {
		panic(err)
	}
	return idx
}

// GetByID returns the entry with the given id.
func (idx *Index) GetByID(id string) (Entry, error) {
	i, ok := idx.byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return idx.entries[i], nil
}

// ListByCategory returns entries of the category in insertion order.
func (idx *Index) ListByCategory(c enum.Category) []Entry {
	var out []Entry
	for _, e := range idx.entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// ListCategories returns the distinct categories present, first-seen first.
func (idx *Index) ListCategories() []enum.Category {
	out := make([]enum.Category, len(idx.categories))
	copy(out, idx.categories)
	return out
}

// All returns a copy of every entry in insertion order.
func (idx *Index) All() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Position returns the insertion position of id, or -1.
func (idx *Index) Position(id string) int {
	if i, ok := idx.byID[id]; ok {
		return i
	}
	return -1
}

// Len returns the number of entries.
func (idx *Index) Len() int { return len(idx.entries) }
