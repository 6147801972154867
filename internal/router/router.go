package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/mpoksari/catering-api/internal/config"
	"github.com/mpoksari/catering-api/internal/enum"
	"github.com/mpoksari/catering-api/internal/handler"
	"github.com/mpoksari/catering-api/internal/ledger"
	mw "github.com/mpoksari/catering-api/internal/middleware"
	"github.com/mpoksari/catering-api/internal/pricing"
	"github.com/mpoksari/catering-api/internal/ws"
	"github.com/rs/zerolog/log"
)

// Version is reported by /health.
const Version = "1.0.0"

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Engine  *pricing.Engine
	Members handler.MemberService
	Hub     *ws.Hub
	Checks  map[string]handler.Check
}

// New creates a Chi router with all application routes wired up.
// Public routes are rate limited per client IP; the member area requires a
// session and fulfillment requires the STAFF role.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", handler.Health(Version, deps.Checks))

	// WebSocket route (handles auth internally via query param)
	snapshot := func(ctx context.Context, memberID uuid.UUID) (any, error) {
		return deps.Members.Orders(ctx, memberID, ledger.Filter{})
	}
	r.Get("/ws/members/{mid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, cfg.JWTSecret, snapshot, w, r)
	})

	memberHandler := handler.NewMemberHandler(deps.Members, cfg.JWTSecret)

	// Public routes
	limiter := mw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)

		handler.NewCatalogHandler(deps.Engine.Catalog()).RegisterRoutes(r)
		handler.NewQuoteHandler(deps.Engine).RegisterRoutes(r)
		memberHandler.RegisterPublicRoutes(r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/me", memberHandler.RegisterRoutes)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleStaff))
			r.Route("/fulfillment", memberHandler.RegisterFulfillmentRoutes)
		})
	})

	log.Info().Msg("router initialized")
	return r
}
