package member

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mpoksari/catering-api/internal/checkout"
	"github.com/mpoksari/catering-api/internal/enum"
	"github.com/mpoksari/catering-api/internal/events"
	"github.com/mpoksari/catering-api/internal/ledger"
	"github.com/mpoksari/catering-api/internal/loyalty"
	"github.com/mpoksari/catering-api/internal/pricing"
	"github.com/mpoksari/catering-api/internal/storage"
	"github.com/mpoksari/catering-api/internal/ws"
	"github.com/rs/zerolog"
)

const (
	maxOrderIDRetries  = 3
	maxConflictRetries = 5
	maxSavedMenus      = 20
)

// Notifier pushes realtime events to a member's open pages.
// Satisfied by *ws.Hub.
type Notifier interface {
	BroadcastToMember(memberID uuid.UUID, event ws.Event)
}

// Service handles member business logic.
type Service struct {
	store    storage.Store
	engine   *pricing.Engine
	ledger   *ledger.Ledger
	book     *loyalty.Book
	events   events.Publisher
	notifier Notifier
	log      zerolog.Logger
	waNumber string

	now     func() time.Time
	orderID func() string

	locks keyedMutex
	dirMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithOrderIDs overrides order id generation.
func WithOrderIDs(gen func() string) Option { return func(s *Service) { s.orderID = gen } }

// WithWhatsAppNumber sets the checkout contact.
func WithWhatsAppNumber(n string) Option { return func(s *Service) { s.waNumber = n } }

// NewService creates a Service. events and notifier may be nil.
func NewService(store storage.Store, engine *pricing.Engine, pub events.Publisher, notifier Notifier, log zerolog.Logger, opts ...Option) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	s := &Service{
		store:    store,
		engine:   engine,
		ledger:   ledger.New(),
		book:     loyalty.NewBook(log),
		events:   pub,
		notifier: notifier,
		log:      log,
		waNumber: checkout.DefaultWhatsAppNumber,
		now:      time.Now,
		orderID:  newOrderID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// RegisterRequest is the validated input for registering a member.
type RegisterRequest struct {
	Name        string
	Email       string
	Phone       string
	CompanyName string
}

// Register creates a member and adds it to the directory.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Member, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return nil, ErrInvalidMember
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidMember)
	}

	if _, err := s.store.Load(ctx, emailPrefix+req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	m := &Member{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		JoinedAt:     s.now(),
		Orders:       []ledger.Order{},
		Transactions: []loyalty.Transaction{},
		SavedMenus:   []SavedMenu{},
	}
	version, err := storage.SaveJSONIfVersion(ctx, s.store, memberKey(m.ID), 0, m)
	if err != nil {
		return nil, fmt.Errorf("save member: %w", err)
	}
	m.Version = version

	// Created only if absent: of two concurrent registrations of one
	// address, the second loses here.
	if _, err := s.store.SaveIfVersion(ctx, emailPrefix+req.Email, 0, []byte(m.ID.String())); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("save email index: %w", err)
	}
	if err := s.appendDirectory(ctx, m.ID); err != nil {
		return nil, err
	}

	s.log.Info().Str("member_id", m.ID.String()).Msg("member registered")
	return m, nil
}

func (s *Service) appendDirectory(ctx context.Context, id uuid.UUID) error {
	s.dirMu.Lock()
	defer s.dirMu.Unlock()

	for attempt := 1; ; attempt++ {
		var dir []string
		version, err := storage.LoadJSONVersion(ctx, s.store, directoryKey, &dir)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load directory: %w", err)
		}
		dir = append(dir, id.String())
		_, err = storage.SaveJSONIfVersion(ctx, s.store, directoryKey, version, dir)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrConflict) || attempt >= maxConflictRetries {
			return fmt.Errorf("save directory: %w", err)
		}
	}
}

// Directory lists every registered member id in registration order.
func (s *Service) Directory(ctx context.Context) ([]uuid.UUID, error) {
	var dir []string
	if err := storage.LoadJSON(ctx, s.store, directoryKey, &dir); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []uuid.UUID{}, nil
		}
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(dir))
	for _, raw := range dir {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("directory entry %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Get loads a member record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Member, error) {
	defer s.acquire(id)()
	return s.load(ctx, id)
}

// acquire serializes work on one member within this process. The returned
// func drops the hydrated ledger and book state and releases the lock.
func (s *Service) acquire(id uuid.UUID) func() {
	key := id.String()
	unlock := s.locks.lock(key)
	return func() {
		s.ledger.Forget(key)
		s.book.Forget(key)
		unlock()
	}
}

// load reads the record and hydrates the ledger and the points book from it.
// Callers hold the member lock.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*Member, error) {
	var m Member
	version, err := storage.LoadJSONVersion(ctx, s.store, memberKey(id), &m)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load member: %w", err)
	}
	m.Version = version
	if m.SavedMenus == nil {
		m.SavedMenus = []SavedMenu{}
	}

	key := id.String()
	s.ledger.Restore(key, m.Orders)
	s.book.Restore(key, m.Transactions)
	orderIDs := make([]string, len(m.Orders))
	for i, o := range m.Orders {
		orderIDs[i] = o.ID
	}
	s.book.MarkCredited(key, orderIDs...)
	return &m, nil
}

// save writes the ledger and book state back into the record, provided
// nobody else saved it since it was loaded.
// Callers hold the member lock.
func (s *Service) save(ctx context.Context, m *Member) error {
	key := m.ID.String()
	m.Orders = s.ledger.Snapshot(key)
	m.Transactions = s.book.Transactions(key)
	version, err := storage.SaveJSONIfVersion(ctx, s.store, memberKey(m.ID), m.Version, m)
	if err != nil {
		return fmt.Errorf("save member: %w", err)
	}
	m.Version = version
	return nil
}

// mutate loads the member, applies fn and saves the result. When another
// process saved the member in between, the record is reloaded and fn runs
// again on the fresh state. fn must not have effects outside the member.
// Callers hold the member lock.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(m *Member) error) (*Member, error) {
	for attempt := 1; ; attempt++ {
		m, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(m); err != nil {
			return nil, err
		}
		err = s.save(ctx, m)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, storage.ErrConflict) || attempt >= maxConflictRetries {
			return nil, err
		}
		s.log.Warn().
			Str("member_id", id.String()).
			Int("attempt", attempt).
			Msg("member changed concurrently, retrying")
	}
}

// features resolves what the hydrated member has unlocked.
func (s *Service) features(key string) loyalty.Features {
	spend := s.ledger.LifetimeSpend(key)
	return loyalty.Unlocked(s.ledger.Count(key), spend, loyalty.DefaultTiers.Resolve(spend))
}

// engineFor picks corporate tiers for corporate members.
func (s *Service) engineFor(m *Member) *pricing.Engine {
	if m.Corporate() {
		return s.engine.Corporate()
	}
	return s.engine
}

// CheckoutRequest is the validated input for placing an order.
type CheckoutRequest struct {
	Mode      pricing.Mode
	EntryID   string            // SIMPLE
	Selection pricing.Selection // BUILD
	Pax       int
}

// CheckoutResult is the placed order with its quote and WhatsApp handoff.
type CheckoutResult struct {
	Order        ledger.Order    `json:"order"`
	Quote        *pricing.Result `json:"quote"`
	Message      string          `json:"message"`
	WhatsAppURL  string          `json:"whatsapp_url"`
	PointsEarned int64           `json:"points_earned"`
	Balance      int64           `json:"points_balance"`
}

// Quote prices a request the way Checkout would for this member, without
// recording anything.
func (s *Service) Quote(ctx context.Context, memberID uuid.UUID, req CheckoutRequest) (*pricing.Result, error) {
	m, err := s.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return quote(s.engineFor(m), req)
}

func quote(eng *pricing.Engine, req CheckoutRequest) (*pricing.Result, error) {
	switch req.Mode {
	case pricing.ModeSimple:
		return eng.QuoteSimple(req.EntryID, req.Pax)
	case pricing.ModeBuild:
		return eng.QuoteBuild(req.Selection, req.Pax)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
}

// Checkout prices the request, records the order, credits points and
// returns the message to hand off to WhatsApp.
func (s *Service) Checkout(ctx context.Context, memberID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	return s.placeOrder(ctx, memberID, func(*Member) (CheckoutRequest, error) { return req, nil })
}

// CheckoutSavedMenu places an order from one of the member's saved menus at
// today's prices.
func (s *Service) CheckoutSavedMenu(ctx context.Context, memberID uuid.UUID, menuID string) (*CheckoutResult, error) {
	return s.placeOrder(ctx, memberID, func(m *Member) (CheckoutRequest, error) {
		i := findSavedMenu(m.SavedMenus, menuID)
		if i < 0 {
			return CheckoutRequest{}, fmt.Errorf("%w: %s", ErrSavedMenuNotFound, menuID)
		}
		return m.SavedMenus[i].Request(), nil
	})
}

func (s *Service) placeOrder(ctx context.Context, memberID uuid.UUID, requestFor func(m *Member) (CheckoutRequest, error)) (*CheckoutResult, error) {
	defer s.acquire(memberID)()

	key := memberID.String()
	var (
		res    *pricing.Result
		order  ledger.Order
		points int64
	)
	_, err := s.mutate(ctx, memberID, func(m *Member) error {
		req, err := requestFor(m)
		if err != nil {
			return err
		}
		res, err = quote(s.engineFor(m), req)
		if err != nil {
			return err
		}

		order = ledger.Order{
			CreatedAt:    s.now(),
			ItemsSummary: checkout.ItemsSummary(res),
			Total:        res.FinalTotal.IntPart(),
			Status:       enum.OrderStatusPending,
			Pax:          res.Pax,
		}
		for attempt := 0; ; attempt++ {
			order.ID = s.orderID()
			err = s.ledger.Append(key, order)
			if err == nil {
				break
			}
			if !errors.Is(err, ledger.ErrDuplicateOrder) || attempt+1 >= maxOrderIDRetries {
				return fmt.Errorf("append order: %w", err)
			}
		}

		points = loyalty.PointsForTotal(order.Total)
		if _, err := s.book.CreditForOrder(key, order.ID, points, order.CreatedAt); err != nil {
			return fmt.Errorf("credit points: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	placed, _ := s.ledger.FindByID(key, order.ID)
	msg := checkout.Message(res)
	result := &CheckoutResult{
		Order:        placed,
		Quote:        res,
		Message:      msg,
		WhatsAppURL:  checkout.WhatsAppLink(s.waNumber, msg),
		PointsEarned: points,
		Balance:      s.book.Balance(key),
	}

	s.log.Info().
		Str("member_id", key).
		Str("order_id", order.ID).
		Int64("total", order.Total).
		Int64("points", points).
		Msg("order placed")
	s.emit(ctx, events.Event{
		Type:     events.TypeOrderPlaced,
		MemberID: key,
		OrderID:  order.ID,
		At:       order.CreatedAt,
		Data:     map[string]any{"total": order.Total, "pax": order.Pax, "points": points},
	}, placed)

	return result, nil
}

// emit publishes e and pushes payload to the member's open pages. Failures
// are logged; the change is already persisted.
func (s *Service) emit(ctx context.Context, e events.Event, payload any) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Error().Err(err).Str("type", e.Type).Str("member_id", e.MemberID).Msg("publish event")
	}
	if s.notifier == nil {
		return
	}
	ev, err := ws.NewEvent(e.Type, payload)
	if err != nil {
		s.log.Error().Err(err).Str("type", e.Type).Msg("build ws event")
		return
	}
	if id, err := uuid.Parse(e.MemberID); err == nil {
		s.notifier.BroadcastToMember(id, ev)
	}
}

// Orders lists the member's orders, most recent first.
func (s *Service) Orders(ctx context.Context, memberID uuid.UUID, f ledger.Filter) ([]ledger.Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidFilter, f.Status)
	}
	if f.Range != "" && !f.Range.Valid() {
		return nil, fmt.Errorf("%w: range %q", ErrInvalidFilter, f.Range)
	}

	defer s.acquire(memberID)()

	if _, err := s.load(ctx, memberID); err != nil {
		return nil, err
	}
	return s.ledger.ListForUser(memberID.String(), f, s.now()), nil
}

// Order returns a single order of the member.
func (s *Service) Order(ctx context.Context, memberID uuid.UUID, orderID string) (ledger.Order, error) {
	defer s.acquire(memberID)()

	if _, err := s.load(ctx, memberID); err != nil {
		return ledger.Order{}, err
	}
	return s.ledger.FindByID(memberID.String(), orderID)
}

// UpdateOrderStatus is called by fulfillment staff to move an order forward.
func (s *Service) UpdateOrderStatus(ctx context.Context, memberID uuid.UUID, orderID string, status enum.OrderStatus) (ledger.Order, error) {
	defer s.acquire(memberID)()

	now := s.now()
	var updated ledger.Order
	_, err := s.mutate(ctx, memberID, func(*Member) error {
		var err error
		updated, err = s.ledger.UpdateStatus(memberID.String(), orderID, status, now)
		return err
	})
	if err != nil {
		return ledger.Order{}, err
	}

	s.emit(ctx, events.Event{
		Type:     events.TypeOrderStatusChanged,
		MemberID: memberID.String(),
		OrderID:  orderID,
		At:       now,
		Data:     map[string]any{"status": status},
	}, updated)
	return updated, nil
}

// RedeemResult is the outcome of a reward redemption.
type RedeemResult struct {
	Reward  loyalty.Reward `json:"reward"`
	Balance int64          `json:"points_balance"`
}

// Redeem exchanges points for a catalogue reward.
func (s *Service) Redeem(ctx context.Context, memberID uuid.UUID, rewardID string) (*RedeemResult, error) {
	reward, err := loyalty.RewardByID(rewardID)
	if err != nil {
		return nil, err
	}

	defer s.acquire(memberID)()

	now := s.now()
	var bal int64
	_, err = s.mutate(ctx, memberID, func(*Member) error {
		var err error
		bal, err = s.book.Redeem(memberID.String(), reward.Cost, reward.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &RedeemResult{Reward: reward, Balance: bal}
	s.emit(ctx, events.Event{
		Type:     events.TypeLoyaltyRedeemed,
		MemberID: memberID.String(),
		At:       now,
		Data:     result,
	}, result)
	return result, nil
}

// Transactions returns the member's points log, most recent first.
func (s *Service) Transactions(ctx context.Context, memberID uuid.UUID) ([]loyalty.Transaction, error) {
	defer s.acquire(memberID)()

	if _, err := s.load(ctx, memberID); err != nil {
		return nil, err
	}
	txns := s.book.Transactions(memberID.String())
	for i, j := 0, len(txns)-1; i < j; i, j = i+1, j-1 {
		txns[i], txns[j] = txns[j], txns[i]
	}
	return txns, nil
}

// Dashboard is the member home view.
type Dashboard struct {
	Member     *Member         `json:"-"`
	Loyalty    loyalty.Summary `json:"loyalty"`
	OrderCount int             `json:"order_count"`
	LastOrder  *ledger.Order   `json:"last_order,omitempty"`
}

// Dashboard derives balance, tier progress, unlocked features and the last
// order from the member record.
func (s *Service) Dashboard(ctx context.Context, memberID uuid.UUID) (*Dashboard, error) {
	defer s.acquire(memberID)()

	m, err := s.load(ctx, memberID)
	if err != nil {
		return nil, err
	}

	key := memberID.String()
	count := s.ledger.Count(key)
	d := &Dashboard{
		Member:     m,
		Loyalty:    loyalty.Summarize(s.book.Balance(key), s.ledger.LifetimeSpend(key), count),
		OrderCount: count,
	}
	if last, ok := s.ledger.LastOrder(key); ok {
		d.LastOrder = &last
	}
	return d, nil
}

// RepeatResult is the WhatsApp handoff for ordering a past order again.
type RepeatResult struct {
	Order       ledger.Order `json:"order"`
	Message     string       `json:"message"`
	WhatsAppURL string       `json:"whatsapp_url"`
}

// RepeatOrder builds the message asking the order desk to repeat a past
// order. Nothing is recorded; the desk confirms the new order by chat.
func (s *Service) RepeatOrder(ctx context.Context, memberID uuid.UUID, orderID string) (*RepeatResult, error) {
	defer s.acquire(memberID)()

	m, err := s.load(ctx, memberID)
	if err != nil {
		return nil, err
	}
	key := memberID.String()
	if !s.features(key).Has(loyalty.FeatureRepeatOrder) {
		return nil, fmt.Errorf("%w: REPEAT_ORDER", ErrFeatureLocked)
	}
	o, err := s.ledger.FindByID(key, orderID)
	if err != nil {
		return nil, err
	}

	tier := loyalty.DefaultTiers.Resolve(s.ledger.LifetimeSpend(key))
	msg := checkout.RepeatMessage(m.Name, tier.Name, o.ItemsSummary, o.Total)
	s.log.Info().Str("member_id", key).Str("order_id", o.ID).Msg("repeat order requested")
	return &RepeatResult{
		Order:       o,
		Message:     msg,
		WhatsAppURL: checkout.WhatsAppLink(s.waNumber, msg),
	}, nil
}

// SaveMenu prices req for the member and stores it under name.
func (s *Service) SaveMenu(ctx context.Context, memberID uuid.UUID, name string, req CheckoutRequest) (SavedMenu, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SavedMenu{}, fmt.Errorf("%w: name is required", ErrInvalidSavedMenu)
	}

	defer s.acquire(memberID)()

	var saved SavedMenu
	_, err := s.mutate(ctx, memberID, func(m *Member) error {
		if !s.features(m.ID.String()).Has(loyalty.FeatureSavedMenus) {
			return fmt.Errorf("%w: SAVED_MENUS", ErrFeatureLocked)
		}
		if len(m.SavedMenus) >= maxSavedMenus {
			return fmt.Errorf("%w: at most %d menus", ErrInvalidSavedMenu, maxSavedMenus)
		}
		res, err := quote(s.engineFor(m), req)
		if err != nil {
			return err
		}
		saved = SavedMenu{
			ID:           uuid.NewString(),
			Name:         name,
			Mode:         req.Mode,
			EntryID:      req.EntryID,
			Selection:    req.Selection.Clone(),
			Pax:          res.Pax,
			ItemsSummary: checkout.ItemsSummary(res),
			TotalPrice:   res.FinalTotal.IntPart(),
			CreatedAt:    s.now(),
		}
		if req.Mode != pricing.ModeBuild {
			saved.Selection = nil
		}
		m.SavedMenus = append(m.SavedMenus, saved)
		return nil
	})
	if err != nil {
		return SavedMenu{}, err
	}
	return saved, nil
}

// SavedMenus lists the member's saved menus, oldest first.
func (s *Service) SavedMenus(ctx context.Context, memberID uuid.UUID) ([]SavedMenu, error) {
	defer s.acquire(memberID)()

	m, err := s.load(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return m.SavedMenus, nil
}

// DeleteSavedMenu removes a saved menu.
func (s *Service) DeleteSavedMenu(ctx context.Context, memberID uuid.UUID, menuID string) error {
	defer s.acquire(memberID)()

	_, err := s.mutate(ctx, memberID, func(m *Member) error {
		i := findSavedMenu(m.SavedMenus, menuID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrSavedMenuNotFound, menuID)
		}
		m.SavedMenus = append(m.SavedMenus[:i], m.SavedMenus[i+1:]...)
		return nil
	})
	return err
}

func findSavedMenu(menus []SavedMenu, id string) int {
	for i, sm := range menus {
		if sm.ID == id {
			return i
		}
	}
	return -1
}
