package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mpoksari/catering-api/internal/auth"
	"github.com/mpoksari/catering-api/internal/catalog"
	"github.com/mpoksari/catering-api/internal/config"
	"github.com/mpoksari/catering-api/internal/enum"
	"github.com/mpoksari/catering-api/internal/logging"
	"github.com/mpoksari/catering-api/internal/member"
	"github.com/mpoksari/catering-api/internal/pricing"
	"github.com/mpoksari/catering-api/internal/storage"
)

func main() {
	// CLI flags
	email := flag.String("email", "", "Member email address")
	name := flag.String("name", "", "Member full name")
	company := flag.String("company", "", "Company name (makes the member corporate)")
	staff := flag.Bool("staff", false, "Print a STAFF token for fulfillment instead of registering a member")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if *staff {
		token, err := auth.GenerateToken(cfg.JWTSecret, uuid.New(), enum.RoleStaff)
		if err != nil {
			logger.Fatal().Err(err).Msg("generate staff token")
		}
		fmt.Println(token)
		return
	}

	// Fall back to environment variables, then defaults
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}
	if *email == "" {
		*email = "demo@mpoksari.id"
	}
	if *name == "" {
		*name = "Demo Member"
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer backend.Close()

	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn().Msg("seeding the memory store; the member is lost when this process exits")
	}

	svc := member.NewService(backend.Store, pricing.NewEngine(catalog.Default()), nil, nil, logger)
	m, err := svc.Register(ctx, member.RegisterRequest{Name: *name, Email: *email, CompanyName: *company})
	if errors.Is(err, member.ErrEmailTaken) {
		logger.Warn().Str("email", *email).Msg("member already exists, skipping")
		return
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("register member")
	}

	token, err := auth.GenerateToken(cfg.JWTSecret, m.ID, enum.RoleMember)
	if err != nil {
		logger.Fatal().Err(err).Msg("generate token")
	}

	logger.Info().Str("member_id", m.ID.String()).Str("email", m.Email).Msg("seed completed")
	fmt.Println(token)
}
