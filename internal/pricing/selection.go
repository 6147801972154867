package pricing

import (
	"fmt"
	"sort"

	"github.com/mpoksari/catering-api/internal/catalog"
	"github.com/mpoksari/catering-api/internal/enum"
)

// Selection maps catalog entry ids to selected quantities.
type Selection map[string]int

// Clone returns a copy of s.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// IDs returns the selected ids ordered by catalog position. Ids missing from
// the catalog sort last, lexically.
func (s Selection) IDs(idx *catalog.Index) []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := idx.Position(ids[i]), idx.Position(ids[j])
		switch {
		case pi >= 0 && pj >= 0:
			return pi < pj
		case pi >= 0:
			return true
		case pj >= 0:
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}

// NoticeKind classifies the outcome of a quantity adjustment.
type NoticeKind string

const (
	NoticeNone          NoticeKind = ""
	NoticeAdded         NoticeKind = "ADDED"
	NoticeUpdated       NoticeKind = "UPDATED"
	NoticeRemoved       NoticeKind = "REMOVED"
	NoticeSnappedToMin  NoticeKind = "SNAPPED_TO_MIN"
	NoticeLimitExceeded NoticeKind = "LIMIT_EXCEEDED"
)

// Notice is a transient, user-facing message about an adjustment. A
// LIMIT_EXCEEDED notice means the selection was left unchanged.
type Notice struct {
	Kind     NoticeKind `json:"kind"`
	EntryID  string     `json:"entry_id,omitempty"`
	Quantity int        `json:"quantity"`
	Message  string     `json:"message,omitempty"`
}

// Adjust applies delta to the quantity of entry in sel and returns the new
// selection; sel itself is not modified.
//
//   - reaching 0 or below removes the entry
//   - a first add below the minimum lands on the minimum
//   - decrementing from exactly the minimum removes the entry
//   - any other drop below the minimum snaps back to it
//   - going past the maximum is rejected with LIMIT_EXCEEDED
func Adjust(sel Selection, entry catalog.Entry, delta int) (Selection, Notice) {
	current := sel[entry.ID]
	next := current + delta
	min := entry.Min()

	if delta == 0 || (current == 0 && next <= 0) {
		return sel.Clone(), Notice{Kind: NoticeNone, EntryID: entry.ID, Quantity: current}
	}

	if next <= 0 {
		return without(sel, entry.ID), Notice{
			Kind: NoticeRemoved, EntryID: entry.ID,
			Message: fmt.Sprintf("%s dihapus dari paket", entry.Name),
		}
	}

	if current == 0 && next < min {
		return with(sel, entry.ID, min), Notice{
			Kind: NoticeAdded, EntryID: entry.ID, Quantity: min,
			Message: fmt.Sprintf("%s ditambahkan (Min. %d)", entry.Name, min),
		}
	}

	if next < min {
		if current == min && delta < 0 {
			return without(sel, entry.ID), Notice{
				Kind: NoticeRemoved, EntryID: entry.ID,
				Message: fmt.Sprintf("%s dihapus", entry.Name),
			}
		}
		return with(sel, entry.ID, min), Notice{
			Kind: NoticeSnappedToMin, EntryID: entry.ID, Quantity: min,
			Message: fmt.Sprintf("Minimal order untuk %s adalah %d", entry.Name, min),
		}
	}

	if max, ok := entry.Max(); ok && next > max {
		return sel.Clone(), Notice{
			Kind: NoticeLimitExceeded, EntryID: entry.ID, Quantity: current,
			Message: fmt.Sprintf("Maksimal %d untuk %s", max, entry.Name),
		}
	}

	kind := NoticeUpdated
	msg := fmt.Sprintf("%s diupdate: %d", entry.Name, next)
	if current == 0 {
		kind = NoticeAdded
		msg = fmt.Sprintf("%s ditambahkan", entry.Name)
	}
	return with(sel, entry.ID, next), Notice{Kind: kind, EntryID: entry.ID, Quantity: next, Message: msg}
}

// Adjust looks up entryID and applies delta. Only PER_UNIT entries can be
// adjusted.
func (e *Engine) Adjust(sel Selection, entryID string, delta int) (Selection, Notice, error) {
	entry, err := e.catalog.GetByID(entryID)
	if err != nil {
		return nil, Notice{}, err
	}
	if entry.PricingMode != enum.PricingPerUnit {
		return nil, Notice{}, fmt.Errorf("%w: %s is %s", ErrModeMismatch, entry.ID, entry.PricingMode)
	}
	next, notice := Adjust(sel, entry, delta)
	return next, notice, nil
}

// Remove drops id from sel, returning a new selection.
func Remove(sel Selection, id string) Selection { return without(sel, id) }

func with(sel Selection, id string, qty int) Selection {
	out := sel.Clone()
	out[id] = qty
	return out
}

func without(sel Selection, id string) Selection {
	out := sel.Clone()
	delete(out, id)
	return out
}
