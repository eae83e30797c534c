package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the mentorhub service.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	Timezone         string
	RateLimitRPS     float64
	RateLimitBurst   int
	CalendarCacheTTL time.Duration
}

// Load parses configuration values from the current process environment.
//
// Every variable has a sensible default; values that are present but
// unparsable are reported together in one error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:         8080,
		SQLiteDSN:        "file:mentorhub.db?_foreign_keys=on",
		Timezone:         "UTC",
		RateLimitRPS:     2,
		RateLimitBurst:   20,
		CalendarCacheTTL: 30 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("MENTORHUB_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MENTORHUB_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("MENTORHUB_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if timezone := strings.TrimSpace(os.Getenv("MENTORHUB_TIMEZONE")); timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			invalid = append(invalid, "MENTORHUB_TIMEZONE")
		} else {
			cfg.Timezone = timezone
		}
	}

	if rpsValue := strings.TrimSpace(os.Getenv("MENTORHUB_RATE_LIMIT_RPS")); rpsValue != "" {
		rps, err := strconv.ParseFloat(rpsValue, 64)
		if err != nil || rps <= 0 {
			invalid = append(invalid, "MENTORHUB_RATE_LIMIT_RPS")
		} else {
			cfg.RateLimitRPS = rps
		}
	}

	if burstValue := strings.TrimSpace(os.Getenv("MENTORHUB_RATE_LIMIT_BURST")); burstValue != "" {
		burst, err := strconv.Atoi(burstValue)
		if err != nil || burst <= 0 {
			invalid = append(invalid, "MENTORHUB_RATE_LIMIT_BURST")
		} else {
			cfg.RateLimitBurst = burst
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("MENTORHUB_CALENDAR_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "MENTORHUB_CALENDAR_CACHE_TTL")
		} else {
			cfg.CalendarCacheTTL = ttl
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
