// Package member owns member records: profile, order history, points log and
// saved menus. It composes the pricing engine, the order ledger and the points
// book with persistence, event publishing and realtime notification.
package member

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mpoksari/catering-api/internal/ledger"
	"github.com/mpoksari/catering-api/internal/loyalty"
	"github.com/mpoksari/catering-api/internal/pricing"
)

// Errors returned by the member service.
var (
	ErrNotFound          = errors.New("member not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidMember     = errors.New("name and email are required")
	ErrInvalidFilter     = errors.New("invalid order filter")
	ErrInvalidMode       = errors.New("mode must be SIMPLE or BUILD")
	ErrFeatureLocked     = errors.New("feature not unlocked")
	ErrInvalidSavedMenu  = errors.New("invalid saved menu")
	ErrSavedMenuNotFound = errors.New("saved menu not found")
)

// Storage keys.
const (
	directoryKey = "members"
	memberPrefix = "member:"
	emailPrefix  = "email:"
)

func memberKey(id uuid.UUID) string { return memberPrefix + id.String() }

// Member is the persisted record. Balance is never stored; it is folded from
// Transactions.
type Member struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Phone        string                `json:"phone,omitempty"`
	CompanyName  string                `json:"company_name,omitempty"`
	JoinedAt     time.Time             `json:"joined_at"`
	Orders       []ledger.Order        `json:"orders"`
	Transactions []loyalty.Transaction `json:"transactions"`
	SavedMenus   []SavedMenu           `json:"saved_menus"`

	// Version is the store version the record was read at.
	Version int64 `json:"-"`
}

// Corporate reports whether the member orders on behalf of a company.
func (m *Member) Corporate() bool { return m.CompanyName != "" }

// SavedMenu is a named order configuration the member can place again.
// ItemsSummary and TotalPrice are the quote at the time it was saved.
type SavedMenu struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Mode         pricing.Mode      `json:"mode"`
	EntryID      string            `json:"entry_id,omitempty"`
	Selection    pricing.Selection `json:"selection,omitempty"`
	Pax          int               `json:"pax"`
	ItemsSummary string            `json:"items_summary"`
	TotalPrice   int64             `json:"total_price"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Request rebuilds the checkout request the menu was saved from.
func (sm SavedMenu) Request() CheckoutRequest {
	return CheckoutRequest{
		Mode:      sm.Mode,
		EntryID:   sm.EntryID,
		Selection: sm.Selection.Clone(),
		Pax:       sm.Pax,
	}
}

// keyedMutex serializes work per key. Entries live only while someone holds
// or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
