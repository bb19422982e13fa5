package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/sealedbid/core"
	"github.com/cloudx-io/sealedbid/strategy"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sealedbid.toml")
	assert.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	check.NoError(t, cfg.Validate())
	check.Equal(t, 10, cfg.Auction.TotalQuantity)
	check.Equal(t, 100, cfg.Auction.BaseCash)
	check.Equal(t, strategy.NameBalanced, cfg.Own.Strategy)
	check.Equal(t, FormatText, cfg.Output.Format)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	check.Equal(t, Defaults().Auction, cfg.Auction)
	check.Equal(t, Defaults().Tournament, cfg.Tournament)
}

func TestLoad_FileMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[auction]
total_quantity = 20

[tournament]
runs = 50
workers = 4
seed = 7

[own]
strategy = "godlike"
greediness = "strong"
risk = 1
reward = 3

[other]
strategy = "scripted"
bids = [5, 0, 12]

[output]
format = "json"
`)

	cfg, err := Load(path)
	assert.NoError(t, err)

	check.Equal(t, 20, cfg.Auction.TotalQuantity)
	check.Equal(t, 100, cfg.Auction.BaseCash)
	check.Equal(t, 50, cfg.Tournament.Runs)
	check.Equal(t, 4, cfg.Tournament.Workers)
	check.Equal(t, int64(7), cfg.Tournament.Seed)
	check.Equal(t, "godlike", cfg.Own.Strategy)
	check.Equal(t, "strong", cfg.Own.Greediness)
	check.Equal(t, 3, cfg.Own.Reward)
	check.Equal(t, []int{5, 0, 12}, cfg.Other.Bids)
	check.Equal(t, FormatJSON, cfg.Output.Format)
	check.Equal(t, "debug", cfg.LogLevel)
	check.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	check.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "[auction\ntotal_quantity = ")
	_, err := Load(path)
	check.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEALEDBID_AUCTION_TOTAL_QUANTITY", "16")
	t.Setenv("SEALEDBID_AUCTION_BASE_CASH", "250")
	t.Setenv("SEALEDBID_TOURNAMENT_RUNS", "9")
	t.Setenv("SEALEDBID_TOURNAMENT_SEED", "42")
	t.Setenv("SEALEDBID_OWN_STRATEGY", "random")
	t.Setenv("SEALEDBID_OTHER_STRATEGY", "scripted")
	t.Setenv("SEALEDBID_OTHER_BIDS", "3, 4,5")
	t.Setenv("SEALEDBID_OUTPUT_FORMAT", "cbor")
	t.Setenv("SEALEDBID_OUTPUT_SIGN_FORMAT", "base64url")
	t.Setenv("SEALEDBID_LOG_LEVEL", "warn")

	cfg, err := Load("")
	assert.NoError(t, err)

	check.Equal(t, 16, cfg.Auction.TotalQuantity)
	check.Equal(t, 250, cfg.Auction.BaseCash)
	check.Equal(t, 9, cfg.Tournament.Runs)
	check.Equal(t, int64(42), cfg.Tournament.Seed)
	check.Equal(t, "random", cfg.Own.Strategy)
	check.Equal(t, []int{3, 4, 5}, cfg.Other.Bids)
	check.Equal(t, FormatCBOR, cfg.Output.Format)
	check.Equal(t, "base64url", cfg.Output.SignFormat)
	check.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MalformedEnvIsIgnored(t *testing.T) {
	t.Setenv("SEALEDBID_AUCTION_BASE_CASH", "lots")
	t.Setenv("SEALEDBID_OWN_BIDS", "1,two,3")

	cfg, err := Load("")
	assert.NoError(t, err)
	check.Equal(t, 100, cfg.Auction.BaseCash)
	check.Equal(t, 0, len(cfg.Own.Bids))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Auction.TotalQuantity = 7
	cfg.Auction.BaseCash = -1
	cfg.Tournament.Runs = 0
	cfg.Own.Strategy = "psychic"
	cfg.Other.Risk = 5
	cfg.Output.Format = "xml"
	cfg.Output.SignFormat = "hex"
	cfg.LogLevel = "chatty"

	err := cfg.Validate()
	assert.NotNil(t, err)

	msg := err.Error()
	for _, want := range []string{
		"total_quantity",
		"base_cash",
		"runs",
		`own: unknown strategy "psychic"`,
		"other:",
		`unknown format "xml"`,
		`unknown sign_format "hex"`,
		`unknown log_level "chatty"`,
	} {
		check.True(t, strings.Contains(msg, want))
	}
}

func TestValidate_ScriptedSkipsParameters(t *testing.T) {
	cfg := Defaults()
	cfg.Own.Strategy = "Scripted"
	cfg.Own.Risk = 0
	check.NoError(t, cfg.Validate())
}

func TestBidderConfig_Parameters(t *testing.T) {
	b := BidderConfig{Greediness: "weak", Risk: 1, Reward: 2, MaxRounds: 3}
	params, err := b.Parameters()
	assert.NoError(t, err)
	check.Equal(t, strategy.Weak, params.Greediness)
	check.Equal(t, strategy.RiskRewardRatio{Risk: 1, Reward: 2}, params.RiskReward)
	check.Equal(t, 3, params.MaxRounds)

	b.Greediness = "feral"
	_, err = b.Parameters()
	check.True(t, errors.Is(err, core.ErrInvalidArgument))
}

func TestBidderConfig_Factory(t *testing.T) {
	scripted := BidderConfig{Strategy: StrategyScripted, Bids: []int{4}}
	factory, err := scripted.Factory(0)
	assert.NoError(t, err)
	strat, err := factory(0)
	assert.NoError(t, err)
	check.NotNil(t, strat)

	balanced := defaultBidder()
	factory, err = balanced.Factory(11)
	assert.NoError(t, err)
	strat, err = factory(3)
	assert.NoError(t, err)
	check.NotNil(t, strat)

	broken := BidderConfig{Strategy: strategy.NameRandom, Greediness: "medium", Risk: 0, Reward: 1}
	_, err = broken.Factory(0)
	check.True(t, errors.Is(err, core.ErrConstruction))
}
