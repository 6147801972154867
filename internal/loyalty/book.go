// Package loyalty keeps the append-only points log of each member and
// derives balances, tiers and feature unlocks from it.
package loyalty

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mpoksari/catering-api/internal/enum"
	"github.com/rs/zerolog"
)

// PointDivisor is the spend, in Rupiah, that earns one point.
const PointDivisor int64 = 100_000

// Errors returned by the points book.
var (
	ErrInsufficientBalance = errors.New("insufficient points balance")
	ErrInvalidAmount       = errors.New("points amount must be positive")
	ErrMissingOrderID      = errors.New("order id is required")
)

// PointsForTotal returns floor(total / PointDivisor). Non-positive totals earn
// nothing.
func PointsForTotal(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return total / PointDivisor
}

// Transaction is one entry of a member's points log. Delta is always
// positive; Kind decides the sign.
type Transaction struct {
	MemberID string               `json:"member_id"`
	Kind     enum.TransactionKind `json:"kind"`
	Delta    int64                `json:"delta"`
	OrderID  string               `json:"order_id,omitempty"`
	RewardID string               `json:"reward_id,omitempty"`
	At       time.Time            `json:"at"`
}

// Signed returns Delta with the sign implied by Kind.
func (t Transaction) Signed() int64 {
	if t.Kind == enum.TransactionRedeem {
		return -t.Delta
	}
	return t.Delta
}

// Fold sums a transaction log into a balance.
func Fold(txns []Transaction) int64 {
	var bal int64
	for _, t := range txns {
		bal += t.Signed()
	}
	return bal
}

type account struct {
	mu       sync.Mutex
	txns     []Transaction
	credited map[string]bool
}

// Book holds the points log of every member. Credits and redemptions for one
// member are serialized; different members never contend.
type Book struct {
	mu       sync.Mutex
	accounts map[string]*account
	log      zerolog.Logger
}

// NewBook creates an empty Book.
func NewBook(log zerolog.Logger) *Book {
	return &Book{accounts: make(map[string]*account), log: log}
}

func (b *Book) account(memberID string) *account {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.accounts[memberID]
	if !ok {
		a = &account{credited: make(map[string]bool)}
		b.accounts[memberID] = a
	}
	return a
}

// CreditForOrder records an EARN of points for orderID. Crediting the same
// order twice is a no-op: it returns false and logs a duplicate credit.
// Zero points still mark the order as credited.
func (b *Book) CreditForOrder(memberID, orderID string, points int64, at time.Time) (bool, error) {
	if orderID == "" {
		return false, ErrMissingOrderID
	}
	if points < 0 {
		return false, fmt.Errorf("%w: %d", ErrInvalidAmount, points)
	}

	a := b.account(memberID)
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.credited[orderID] {
		b.log.Warn().
			Str("member_id", memberID).
			Str("order_id", orderID).
			Msg("duplicate credit ignored")
		return false, nil
	}
	a.credited[orderID] = true
	if points > 0 {
		a.txns = append(a.txns, Transaction{
			MemberID: memberID,
			Kind:     enum.TransactionEarn,
			Delta:    points,
			OrderID:  orderID,
			At:       at,
		})
	}
	return true, nil
}

// Redeem spends cost points and returns the new balance. Nothing is recorded
// when the balance does not cover cost.
func (b *Book) Redeem(memberID string, cost int64, rewardID string, at time.Time) (int64, error) {
	if cost <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAmount, cost)
	}

	a := b.account(memberID)
	a.mu.Lock()
	defer a.mu.Unlock()

	bal := Fold(a.txns)
	if cost > bal {
		return bal, fmt.Errorf("%w: need %d, have %d", ErrInsufficientBalance, cost, bal)
	}
	a.txns = append(a.txns, Transaction{
		MemberID: memberID,
		Kind:     enum.TransactionRedeem,
		Delta:    cost,
		RewardID: rewardID,
		At:       at,
	})
	return bal - cost, nil
}

// Balance folds the member's log.
func (b *Book) Balance(memberID string) int64 {
	a := b.account(memberID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return Fold(a.txns)
}

// Credited reports whether orderID has already been credited.
func (b *Book) Credited(memberID, orderID string) bool {
	a := b.account(memberID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.credited[orderID]
}

// Transactions returns a copy of the member's log in append order.
func (b *Book) Transactions(memberID string) []Transaction {
	a := b.account(memberID)
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Transaction, len(a.txns))
	copy(out, a.txns)
	return out
}

// Restore replaces the member's log with a persisted one. Orders referenced
// by EARN entries are marked as credited.
func (b *Book) Restore(memberID string, txns []Transaction) {
	a := b.account(memberID)
	a.mu.Lock()
	defer a.mu.Unlock()

	a.txns = make([]Transaction, len(txns))
	copy(a.txns, txns)
	a.credited = make(map[string]bool, len(txns))
	for _, t := range txns {
		if t.Kind == enum.TransactionEarn && t.OrderID != "" {
			a.credited[t.OrderID] = true
		}
	}
}

// MarkCredited flags orders whose credit earned zero points and therefore
// left no EARN entry behind.
func (b *Book) MarkCredited(memberID string, orderIDs ...string) {
	a := b.account(memberID)
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range orderIDs {
		a.credited[id] = true
	}
}

// Forget drops the member's log and credit marks.
func (b *Book) Forget(memberID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.accounts, memberID)
}
