package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "KAFKA_BROKERS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(k, "")
	}
	t.Setenv("APP_ENV", "production")

	cfg := Load()
	if cfg.Port != "8081" {
		t.Errorf("Port: got %q", cfg.Port)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Errorf("StoreDriver: got %q", cfg.StoreDriver)
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("KafkaBrokers: expected nil, got %v", cfg.KafkaBrokers)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 10 {
		t.Errorf("rate limit: got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("CORS_ORIGINS", "https://mpoksari.id, https://admin.mpoksari.id")

	cfg := Load()
	if cfg.StoreDriver != StoreRedis {
		t.Errorf("StoreDriver: got %q", cfg.StoreDriver)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("KafkaBrokers: got %v", cfg.KafkaBrokers)
	}
	if cfg.RateLimitRPS != 0.5 {
		t.Errorf("RateLimitRPS: got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 10 {
		t.Errorf("RateLimitBurst should fall back, got %d", cfg.RateLimitBurst)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.mpoksari.id" {
		t.Errorf("CORSOrigins: got %v", cfg.CORSOrigins)
	}
}
