package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mpoksari/catering-api/internal/auth"
	"github.com/mpoksari/catering-api/internal/enum"
	"github.com/mpoksari/catering-api/internal/ledger"
	"github.com/mpoksari/catering-api/internal/loyalty"
	"github.com/mpoksari/catering-api/internal/member"
	mw "github.com/mpoksari/catering-api/internal/middleware"
	"github.com/mpoksari/catering-api/internal/pricing"
)

// MemberService defines the member operations needed by member handlers.
// Satisfied by *member.Service; narrow interface for testability.
type MemberService interface {
	Register(ctx context.Context, req member.RegisterRequest) (*member.Member, error)
	Get(ctx context.Context, id uuid.UUID) (*member.Member, error)
	Quote(ctx context.Context, memberID uuid.UUID, req member.CheckoutRequest) (*pricing.Result, error)
	Checkout(ctx context.Context, memberID uuid.UUID, req member.CheckoutRequest) (*member.CheckoutResult, error)
	Orders(ctx context.Context, memberID uuid.UUID, f ledger.Filter) ([]ledger.Order, error)
	Order(ctx context.Context, memberID uuid.UUID, orderID string) (ledger.Order, error)
	UpdateOrderStatus(ctx context.Context, memberID uuid.UUID, orderID string, status enum.OrderStatus) (ledger.Order, error)
	Redeem(ctx context.Context, memberID uuid.UUID, rewardID string) (*member.RedeemResult, error)
	Dashboard(ctx context.Context, memberID uuid.UUID) (*member.Dashboard, error)
	Transactions(ctx context.Context, memberID uuid.UUID) ([]loyalty.Transaction, error)
	RepeatOrder(ctx context.Context, memberID uuid.UUID, orderID string) (*member.RepeatResult, error)
	SaveMenu(ctx context.Context, memberID uuid.UUID, name string, req member.CheckoutRequest) (member.SavedMenu, error)
	SavedMenus(ctx context.Context, memberID uuid.UUID) ([]member.SavedMenu, error)
	DeleteSavedMenu(ctx context.Context, memberID uuid.UUID, menuID string) error
	CheckoutSavedMenu(ctx context.Context, memberID uuid.UUID, menuID string) (*member.CheckoutResult, error)
}

// MemberHandler handles registration, the member area and fulfillment.
type MemberHandler struct {
	svc       MemberService
	jwtSecret string
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(svc MemberService, jwtSecret string) *MemberHandler {
	return &MemberHandler{svc: svc, jwtSecret: jwtSecret}
}

// RegisterPublicRoutes registers unauthenticated member endpoints.
func (h *MemberHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/members", h.Register)
}

// RegisterRoutes registers the member area. Expected to be mounted at /me
// behind Authenticate.
func (h *MemberHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Me)
	r.Get("/dashboard", h.Dashboard)
	r.Post("/quote", h.Quote)
	r.Post("/checkout", h.Checkout)
	r.Get("/orders", h.Orders)
	r.Get("/orders/{id}", h.Order)
	r.Post("/orders/{id}/repeat", h.RepeatOrder)
	r.Get("/transactions", h.Transactions)
	r.Get("/saved-menus", h.SavedMenus)
	r.Post("/saved-menus", h.SaveMenu)
	r.Delete("/saved-menus/{sid}", h.DeleteSavedMenu)
	r.Post("/saved-menus/{sid}/checkout", h.CheckoutSavedMenu)
	r.Post("/rewards/{rid}/redeem", h.Redeem)
}

// RegisterFulfillmentRoutes registers staff endpoints. Expected to be mounted
// at /fulfillment behind RequireRole(STAFF).
func (h *MemberHandler) RegisterFulfillmentRoutes(r chi.Router) {
	r.Patch("/members/{mid}/orders/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
}

type memberResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Corporate   bool      `json:"corporate"`
	JoinedAt    time.Time `json:"joined_at"`
}

type registerResponse struct {
	Member memberResponse `json:"member"`
	Token  string         `json:"token"`
}

type checkoutRequest struct {
	Mode      pricing.Mode      `json:"mode"`
	EntryID   string            `json:"entry_id"`
	Selection pricing.Selection `json:"selection"`
	Pax       int               `json:"pax"`
}

type saveMenuRequest struct {
	Name string `json:"name"`
	checkoutRequest
}

type dashboardResponse struct {
	Member     memberResponse  `json:"member"`
	Loyalty    loyalty.Summary `json:"loyalty"`
	OrderCount int             `json:"order_count"`
	LastOrder  *ledger.Order   `json:"last_order,omitempty"`
}

type updateStatusRequest struct {
	Status enum.OrderStatus `json:"status"`
}

func toMemberResponse(m *member.Member) memberResponse {
	return memberResponse{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		CompanyName: m.CompanyName,
		Corporate:   m.Corporate(),
		JoinedAt:    m.JoinedAt,
	}
}

// toCheckoutRequest infers the mode when omitted: a selection means BUILD.
func (req checkoutRequest) toCheckoutRequest() member.CheckoutRequest {
	mode := req.Mode
	if mode == "" {
		mode = pricing.ModeSimple
		if len(req.Selection) > 0 {
			mode = pricing.ModeBuild
		}
	}
	return member.CheckoutRequest{
		Mode:      mode,
		EntryID:   req.EntryID,
		Selection: req.Selection,
		Pax:       req.Pax,
	}
}

// sessionMember returns the member id of the authenticated caller.
func sessionMember(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := mw.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return uuid.Nil, false
	}
	return claims.MemberID, true
}

// --- Handlers ---

// Register creates a member and returns a session token.
func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.svc.Register(r.Context(), member.RegisterRequest{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, m.ID, enum.RoleMember)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Member: toMemberResponse(m), Token: token})
}

// Me returns the caller's profile.
func (h *MemberHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	m, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(m))
}

// Dashboard returns balance, tier progress, unlocked features and the last
// order.
func (h *MemberHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Dashboard(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Member:     toMemberResponse(d.Member),
		Loyalty:    d.Loyalty,
		OrderCount: d.OrderCount,
		LastOrder:  d.LastOrder,
	})
}

// Quote prices a request with the caller's tiers without placing an order.
func (h *MemberHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Quote(r.Context(), id, req.toCheckoutRequest())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(res))
}

// Checkout places an order and returns the WhatsApp handoff.
func (h *MemberHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Checkout(r.Context(), id, req.toCheckoutRequest())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Orders lists the caller's orders, filtered by ?status= and ?range=.
func (h *MemberHandler) Orders(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := ledger.Filter{
		Status: enum.OrderStatus(q.Get("status")),
		Range:  enum.DateRange(q.Get("range")),
	}
	orders, err := h.svc.Orders(r.Context(), id, f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// Order returns one of the caller's orders.
func (h *MemberHandler) Order(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	o, err := h.svc.Order(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// RepeatOrder returns the WhatsApp handoff for ordering a past order again.
func (h *MemberHandler) RepeatOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	res, err := h.svc.RepeatOrder(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SavedMenus lists the caller's saved menus.
func (h *MemberHandler) SavedMenus(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	menus, err := h.svc.SavedMenus(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menus)
}

// SaveMenu prices a configuration and keeps it under a name.
func (h *MemberHandler) SaveMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	var req saveMenuRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sm, err := h.svc.SaveMenu(r.Context(), id, req.Name, req.toCheckoutRequest())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sm)
}

// DeleteSavedMenu removes one of the caller's saved menus.
func (h *MemberHandler) DeleteSavedMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteSavedMenu(r.Context(), id, chi.URLParam(r, "sid")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckoutSavedMenu places an order from a saved menu.
func (h *MemberHandler) CheckoutSavedMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	res, err := h.svc.CheckoutSavedMenu(r.Context(), id, chi.URLParam(r, "sid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// Transactions returns the caller's points log.
func (h *MemberHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	txns, err := h.svc.Transactions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

// Redeem exchanges points for a reward.
func (h *MemberHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionMember(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Redeem(r.Context(), id, chi.URLParam(r, "rid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateStatus moves a member's order forward. Staff only.
func (h *MemberHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "mid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member ID")
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	o, err := h.svc.UpdateOrderStatus(r.Context(), memberID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
