// Package ledger stores each member's orders, most recent first.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mpoksari/catering-api/internal/enum"
)

// Errors returned by the ledger.
var (
	ErrNotFound          = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order id already recorded")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidTransition = errors.New("order status can only move forward")
)

// Order is a placed catering order. Total is the final charged amount in
// whole Rupiah.
type Order struct {
	ID           string                         `json:"id"`
	CreatedAt    time.Time                      `json:"created_at"`
	ItemsSummary string                         `json:"items_summary"`
	Total        int64                          `json:"total"`
	Status       enum.OrderStatus               `json:"status"`
	Pax          int                            `json:"pax"`
	Timeline     map[enum.OrderStatus]time.Time `json:"timeline,omitempty"`
}

func (o Order) clone() Order {
	if o.Timeline != nil {
		tl := make(map[enum.OrderStatus]time.Time, len(o.Timeline))
		for k, v := range o.Timeline {
			tl[k] = v
		}
		o.Timeline = tl
	}
	return o
}

// Filter narrows ListForUser. Zero values match everything.
type Filter struct {
	Status enum.OrderStatus
	Range  enum.DateRange
}

// Since returns the earliest creation time admitted by r relative to now.
// Windows start at local midnight and step back whole calendar months.
// The zero time is returned for ALL_TIME and unknown ranges.
func Since(r enum.DateRange, now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch r {
	case enum.RangeLastMonth:
		return midnight.AddDate(0, -1, 0)
	case enum.RangeLast3Months:
		return midnight.AddDate(0, -3, 0)
	}
	return time.Time{}
}

// Match reports whether o passes the filter.
func (f Filter) Match(o Order, now time.Time) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if since := Since(f.Range, now); !since.IsZero() && o.CreatedAt.Before(since) {
		return false
	}
	return true
}

// Ledger holds orders per member. It is safe for concurrent use.
type Ledger struct {
	mu     sync.RWMutex
	orders map[string][]Order
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{orders: make(map[string][]Order)}
}

// Append records o at the head of the member's sequence. A missing status
// defaults to PENDING and the timeline is stamped with CreatedAt.
func (l *Ledger) Append(memberID string, o Order) error {
	if o.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidOrder)
	}
	if o.Total < 0 || o.Pax < 0 {
		return fmt.Errorf("%w: %s: negative total or pax", ErrInvalidOrder, o.ID)
	}
	if o.Status == "" {
		o.Status = enum.OrderStatusPending
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: %s: unknown status %q", ErrInvalidOrder, o.ID, o.Status)
	}
	o = o.clone()
	if o.Timeline == nil {
		o.Timeline = map[enum.OrderStatus]time.Time{o.Status: o.CreatedAt}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing := l.orders[memberID]
	for _, e := range existing {
		if e.ID == o.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateOrder, o.ID)
		}
	}
	next := make([]Order, 0, len(existing)+1)
	next = append(next, o)
	next = append(next, existing...)
	l.orders[memberID] = next
	return nil
}

// ListForUser returns the member's orders that pass f, most recent first.
func (l *Ledger) ListForUser(memberID string, f Filter, now time.Time) []Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Order{}
	for _, o := range l.orders[memberID] {
		if f.Match(o, now) {
			out = append(out, o.clone())
		}
	}
	return out
}

// FindByID returns a single order of the member.
func (l *Ledger) FindByID(memberID, orderID string) (Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, o := range l.orders[memberID] {
		if o.ID == orderID {
			return o.clone(), nil
		}
	}
	return Order{}, fmt.Errorf("%w: %s", ErrNotFound, orderID)
}

// LastOrder returns the most recent order, or false when there is none.
func (l *Ledger) LastOrder(memberID string) (Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	orders := l.orders[memberID]
	if len(orders) == 0 {
		return Order{}, false
	}
	return orders[0].clone(), true
}

// Count returns the number of orders recorded for the member.
func (l *Ledger) Count(memberID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders[memberID])
}

// LifetimeSpend sums the totals of every recorded order.
func (l *Ledger) LifetimeSpend(memberID string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var sum int64
	for _, o := range l.orders[memberID] {
		sum += o.Total
	}
	return sum
}

// UpdateStatus moves an order to a later status and stamps the timeline.
// Statuses between the old and new one are not back-filled.
func (l *Ledger) UpdateStatus(memberID, orderID string, status enum.OrderStatus, at time.Time) (Order, error) {
	if !status.Valid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	orders := l.orders[memberID]
	for i := range orders {
		if orders[i].ID != orderID {
			continue
		}
		if status.Rank() <= orders[i].Status.Rank() {
			return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, orders[i].Status, status)
		}
		updated := orders[i].clone()
		updated.Status = status
		if updated.Timeline == nil {
			updated.Timeline = make(map[enum.OrderStatus]time.Time)
		}
		updated.Timeline[status] = at
		orders[i] = updated
		return updated.clone(), nil
	}
	return Order{}, fmt.Errorf("%w: %s", ErrNotFound, orderID)
}

// Snapshot returns a copy of the member's orders, most recent first.
func (l *Ledger) Snapshot(memberID string) []Order {
	return l.ListForUser(memberID, Filter{}, time.Time{})
}

// Restore replaces the member's orders with a persisted sequence, which must
// already be most recent first.
func (l *Ledger) Restore(memberID string, orders []Order) {
	cp := make([]Order, len(orders))
	for i, o := range orders {
		cp[i] = o.clone()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders[memberID] = cp
}

// Forget drops everything held for the member.
func (l *Ledger) Forget(memberID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.orders, memberID)
}
