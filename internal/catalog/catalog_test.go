package catalog

import (
	"errors"
	"testing"

	"github.com/mpoksari/catering-api/internal/enum"
)

func TestDefaultTablesAreValid(t *testing.T) {
	if _, err := New(DefaultMenu()); err != nil {
		t.Fatalf("DefaultMenu: %v", err)
	}
	if _, err := New(DefaultBuildItems()); err != nil {
		t.Fatalf("DefaultBuildItems: %v", err)
	}
}

func TestGetByID(t *testing.T) {
	idx := MustNew(DefaultMenu())

	e, err := idx.GetByID("1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if e.UnitPrice != 35000 || e.PricingMode != enum.PricingPerPax {
		t.Errorf("unexpected entry: %+v", e)
	}

	_, err = idx.GetByID("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestListByCategory_InsertionOrder(t *testing.T) {
	idx := MustNew(DefaultMenu())

	got := idx.ListByCategory(enum.CategoryAqiqah)
	want := []string{"3", "301", "302", "303"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, e := range got {
		if e.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, e.ID, want[i])
		}
	}

	if len(idx.ListByCategory(enum.CategoryDessert)) != 0 {
		t.Error("expected no dessert entries in the packaged menu")
	}
}

func TestListCategories_Distinct(t *testing.T) {
	idx := MustNew(DefaultBuildItems())

	cats := idx.ListCategories()
	want := []enum.Category{
		enum.CategoryKarbo, enum.CategoryAyam, enum.CategoryDaging, enum.CategorySeafood,
		enum.CategorySayur, enum.CategoryPendamping, enum.CategoryDessert, enum.CategoryMinuman,
	}
	if len(cats) != len(want) {
		t.Fatalf("expected %d categories, got %d: %v", len(want), len(cats), cats)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, cats[i], want[i])
		}
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantErr error
	}{
		{
			name: "negative price",
			entries: []Entry{
				{ID: "x", Name: "X", Category: enum.CategoryKarbo, UnitPrice: -1, PricingMode: enum.PricingPerUnit},
			},
			wantErr: ErrNegativePrice,
		},
		{
			name: "min above max",
			entries: []Entry{
				{ID: "x", Name: "X", Category: enum.CategoryKarbo, UnitPrice: 1, PricingMode: enum.PricingPerUnit, MinQuantity: 10, MaxQuantity: 5},
			},
			wantErr: ErrInvalidBounds,
		},
		{
			name: "bounds on per-pax entry",
			entries: []Entry{
				{ID: "x", Name: "X", Category: enum.CategoryNasiKotak, UnitPrice: 1, PricingMode: enum.PricingPerPax, MaxQuantity: 5},
			},
			wantErr: ErrBoundsNotUnits,
		},
		{
			name: "duplicate id",
			entries: []Entry{
				{ID: "x", Name: "X", Category: enum.CategoryKarbo, UnitPrice: 1, PricingMode: enum.PricingPerUnit},
				{ID: "x", Name: "Y", Category: enum.CategoryKarbo, UnitPrice: 1, PricingMode: enum.PricingPerUnit},
			},
			wantErr: ErrDuplicateID,
		},
		{
			name: "unknown category",
			entries: []Entry{
				{ID: "x", Name: "X", Category: "Pizza", UnitPrice: 1, PricingMode: enum.PricingPerUnit},
			},
			wantErr: ErrInvalidEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestEntryBounds(t *testing.T) {
	e := Entry{MinQuantity: 10, MaxQuantity: 50}
	if !e.AllowsQuantity(10) || !e.AllowsQuantity(50) {
		t.Error("bounds must be inclusive")
	}
	if e.AllowsQuantity(9) || e.AllowsQuantity(51) {
		t.Error("quantities outside bounds must be rejected")
	}

	open := Entry{}
	if open.Min() != 1 {
		t.Errorf("default min: got %d, want 1", open.Min())
	}
	if _, ok := open.Max(); ok {
		t.Error("default max must be unbounded")
	}
	if !open.AllowsQuantity(100000) {
		t.Error("unbounded entry must allow large quantities")
	}
}
