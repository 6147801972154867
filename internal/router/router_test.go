package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/mpoksari/catering-api/internal/auth"
	"github.com/mpoksari/catering-api/internal/catalog"
	"github.com/mpoksari/catering-api/internal/config"
	"github.com/mpoksari/catering-api/internal/enum"
	"github.com/mpoksari/catering-api/internal/member"
	"github.com/mpoksari/catering-api/internal/pricing"
	"github.com/mpoksari/catering-api/internal/storage"
	"github.com/rs/zerolog"
)

const testSecret = "router-secret"

func setupRouter(t *testing.T, rps float64, burst int) http.Handler {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:      testSecret,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		CORSOrigins:    []string{"http://localhost:5173"},
	}
	engine := pricing.NewEngine(catalog.Default())
	svc := member.NewService(storage.NewMemory(), engine, nil, nil, zerolog.Nop())
	return New(cfg, Deps{Engine: engine, Members: svc})
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "10.0.0.1:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMemberFlow(t *testing.T) {
	h := setupRouter(t, 100, 100)

	rr := do(t, h, http.MethodPost, "/members", "", map[string]string{"name": "Sari", "email": "sari@example.com"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var reg struct {
		Member struct {
			ID uuid.UUID `json:"id"`
		} `json:"member"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&reg); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = do(t, h, http.MethodPost, "/me/checkout", reg.Token, map[string]interface{}{"entry_id": "1", "pax": 100})
	if rr.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var placed member.CheckoutResult
	if err := json.NewDecoder(rr.Body).Decode(&placed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if placed.PointsEarned != 33 {
		t.Errorf("expected 33 points, got: %d", placed.PointsEarned)
	}

	// A member cannot drive fulfillment.
	statusPath := "/fulfillment/members/" + reg.Member.ID.String() + "/orders/" + placed.Order.ID + "/status"
	rr = do(t, h, http.MethodPatch, statusPath, reg.Token, map[string]string{"status": "PROCESSING"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member, got %d", rr.Code)
	}

	staff, err := auth.GenerateToken(testSecret, uuid.New(), enum.RoleStaff)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	rr = do(t, h, http.MethodPatch, statusPath, staff, map[string]string{"status": "PROCESSING"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/me/orders?status=PROCESSING", reg.Token, nil)
	var orders []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 1 || orders[0]["id"] != placed.Order.ID {
		t.Fatalf("expected the processing order, got: %v", orders)
	}

	rr = do(t, h, http.MethodPost, "/me/orders/"+placed.Order.ID+"/repeat", reg.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("repeat: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/me/saved-menus", reg.Token, map[string]interface{}{"name": "Arisan", "entry_id": "1", "pax": 100})
	if rr.Code != http.StatusCreated {
		t.Fatalf("save menu: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var saved member.SavedMenu
	if err := json.NewDecoder(rr.Body).Decode(&saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rr = do(t, h, http.MethodPost, "/me/saved-menus/"+saved.ID+"/checkout", reg.Token, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("saved menu checkout: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodDelete, "/me/saved-menus/"+saved.ID, reg.Token, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete saved menu: expected 204, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/me/dashboard", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
}

func TestPublicRoutesAreRateLimited(t *testing.T) {
	h := setupRouter(t, 0.001, 2)

	for i := 0; i < 2; i++ {
		if rr := do(t, h, http.MethodGet, "/catalog/items", "", nil); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	if rr := do(t, h, http.MethodGet, "/catalog/items", "", nil); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	// Health is outside the limited group.
	if rr := do(t, h, http.MethodGet, "/health", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for health, got %d", rr.Code)
	}
}
