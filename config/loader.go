package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path (skipped when path is empty) on top of the
// built-in defaults, applies SEALEDBID_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SEALEDBID_* environment variables and
// overwrites the corresponding Config fields when a variable is set.
func applyEnvOverrides(cfg *Config) {
	// ── Auction ──
	setInt(&cfg.Auction.TotalQuantity, "SEALEDBID_AUCTION_TOTAL_QUANTITY")
	setInt(&cfg.Auction.BaseCash, "SEALEDBID_AUCTION_BASE_CASH")

	// ── Tournament ──
	setInt(&cfg.Tournament.Runs, "SEALEDBID_TOURNAMENT_RUNS")
	setInt(&cfg.Tournament.Workers, "SEALEDBID_TOURNAMENT_WORKERS")
	setInt64(&cfg.Tournament.Seed, "SEALEDBID_TOURNAMENT_SEED")

	// ── Bidders ──
	applyBidderOverrides(&cfg.Own, "SEALEDBID_OWN")
	applyBidderOverrides(&cfg.Other, "SEALEDBID_OTHER")

	// ── Output ──
	setStr(&cfg.Output.Format, "SEALEDBID_OUTPUT_FORMAT")
	setStr(&cfg.Output.SignKeyPath, "SEALEDBID_OUTPUT_SIGN_KEY_PATH")
	setStr(&cfg.Output.SignFormat, "SEALEDBID_OUTPUT_SIGN_FORMAT")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "SEALEDBID_LOG_LEVEL")
}

func applyBidderOverrides(b *BidderConfig, prefix string) {
	setStr(&b.Strategy, prefix+"_STRATEGY")
	setStr(&b.Greediness, prefix+"_GREEDINESS")
	setInt(&b.Risk, prefix+"_RISK")
	setInt(&b.Reward, prefix+"_REWARD")
	setInt(&b.MaxRounds, prefix+"_MAX_ROUNDS")
	setIntSlice(&b.Bids, prefix+"_BIDS")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

// setIntSlice parses a comma separated list. A malformed list leaves dst untouched.
func setIntSlice(dst *[]int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}

	parts := strings.Split(v, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return
		}
		values = append(values, n)
	}
	*dst = values
}
