package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	allKeys := []string{
		"MENTORHUB_HTTP_PORT",
		"MENTORHUB_SQLITE_DSN",
		"MENTORHUB_TIMEZONE",
		"MENTORHUB_RATE_LIMIT_RPS",
		"MENTORHUB_RATE_LIMIT_BURST",
		"MENTORHUB_CALENDAR_CACHE_TTL",
	}

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		for _, key := range allKeys {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:mentorhub.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.Timezone != "UTC" {
			t.Fatalf("expected default timezone UTC, got %q", cfg.Timezone)
		}
		if cfg.CalendarCacheTTL != 30*time.Second {
			t.Fatalf("expected default cache TTL 30s, got %s", cfg.CalendarCacheTTL)
		}
	})

	t.Run("parses overrides", func(t *testing.T) {
		t.Setenv("MENTORHUB_HTTP_PORT", "9090")
		t.Setenv("MENTORHUB_SQLITE_DSN", "file:/tmp/mentorhub.db")
		t.Setenv("MENTORHUB_TIMEZONE", "Asia/Tokyo")
		t.Setenv("MENTORHUB_RATE_LIMIT_RPS", "5.5")
		t.Setenv("MENTORHUB_RATE_LIMIT_BURST", "50")
		t.Setenv("MENTORHUB_CALENDAR_CACHE_TTL", "2m")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/mentorhub.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.Timezone != "Asia/Tokyo" {
			t.Fatalf("expected timezone Asia/Tokyo, got %q", cfg.Timezone)
		}
		if cfg.RateLimitRPS != 5.5 {
			t.Fatalf("expected rate 5.5, got %f", cfg.RateLimitRPS)
		}
		if cfg.RateLimitBurst != 50 {
			t.Fatalf("expected burst 50, got %d", cfg.RateLimitBurst)
		}
		if cfg.CalendarCacheTTL != 2*time.Minute {
			t.Fatalf("expected cache TTL 2m, got %s", cfg.CalendarCacheTTL)
		}
	})

	t.Run("reports all invalid values together", func(t *testing.T) {
		t.Setenv("MENTORHUB_HTTP_PORT", "not-a-port")
		t.Setenv("MENTORHUB_TIMEZONE", "Mars/Olympus")
		t.Setenv("MENTORHUB_CALENDAR_CACHE_TTL", "-5s")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, key := range []string{"MENTORHUB_HTTP_PORT", "MENTORHUB_TIMEZONE", "MENTORHUB_CALENDAR_CACHE_TTL"} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("expected %s to be named in %q", key, err.Error())
			}
		}
	})
}
