// Package config defines the configuration of a simulation run and provides
// validation helpers.
package config

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/strategy"
	"github.com/cloudx-io/sealedbid/tournament"
)

// StrategyScripted selects the replay strategy, configured through BidderConfig.Bids.
const StrategyScripted = "scripted"

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SEALEDBID_* environment variables.
type Config struct {
	Auction    AuctionConfig    `toml:"auction"`
	Tournament TournamentConfig `toml:"tournament"`
	Own        BidderConfig     `toml:"own"`
	Other      BidderConfig     `toml:"other"`
	Output     OutputConfig     `toml:"output"`
	LogLevel   string           `toml:"log_level"`
}

// AuctionConfig sizes every auction of the run.
type AuctionConfig struct {
	TotalQuantity int `toml:"total_quantity"`
	BaseCash      int `toml:"base_cash"`
}

// TournamentConfig controls how many auctions are played.
type TournamentConfig struct {
	Runs    int `toml:"runs"`
	Workers int `toml:"workers"`
	// Seed makes Random and Godlike reproducible. 0 draws from crypto/rand.
	Seed int64 `toml:"seed"`
}

// BidderConfig picks and tunes the strategy of one party.
type BidderConfig struct {
	Strategy   string `toml:"strategy"`
	Greediness string `toml:"greediness"`
	Risk       int    `toml:"risk"`
	Reward     int    `toml:"reward"`
	MaxRounds  int    `toml:"max_rounds"`
	Bids       []int  `toml:"bids"`
}

// OutputConfig controls how results are rendered.
type OutputConfig struct {
	Format      string `toml:"format"`
	SignKeyPath string `toml:"sign_key_path"`
	// SignFormat is the text encoding of the signed report: gzip, base64 or base64url.
	SignFormat string `toml:"sign_format"`
}

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

var validFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatCBOR: true,
}

// Defaults returns a Config for a single 10-unit auction between two
// default-tuned Balanced bidders.
func Defaults() Config {
	return Config{
		Auction: AuctionConfig{
			TotalQuantity: 10,
			BaseCash:      100,
		},
		Tournament: TournamentConfig{
			Runs:    1,
			Workers: 1,
		},
		Own:   defaultBidder(),
		Other: defaultBidder(),
		Output: OutputConfig{
			Format:     FormatText,
			SignFormat: auctionapi.EncodingGzip,
		},
		LogLevel: "info",
	}
}

func defaultBidder() BidderConfig {
	return BidderConfig{
		Strategy:   strategy.NameBalanced,
		Greediness: strategy.Medium.String(),
		Risk:       1,
		Reward:     1,
	}
}

// Parameters converts the tuning fields into validated strategy parameters.
func (b BidderConfig) Parameters() (strategy.Parameters, error) {
	greediness, err := strategy.ParseGreediness(b.Greediness)
	if err != nil {
		return strategy.Parameters{}, err
	}
	return strategy.NewParameters(greediness, b.Risk, b.Reward, b.MaxRounds)
}

// Factory returns a tournament factory for this bidder. seed is combined with
// the run number; 0 keeps crypto/rand.
func (b BidderConfig) Factory(seed uint64) (tournament.StrategyFactory, error) {
	if strings.EqualFold(b.Strategy, StrategyScripted) {
		return tournament.Scripted(b.Bids...), nil
	}

	params, err := b.Parameters()
	if err != nil {
		return nil, err
	}
	return tournament.Named(b.Strategy, params, seed), nil
}

func (b BidderConfig) validate(section string) []string {
	var errs []string

	name := strings.ToLower(b.Strategy)
	if name != StrategyScripted && !slices.Contains(strategy.Names(), name) {
		errs = append(errs, fmt.Sprintf("%s: unknown strategy %q (valid: %s, %s)", section, b.Strategy, strings.Join(strategy.Names(), ", "), StrategyScripted))
	}
	if name == StrategyScripted {
		return errs
	}

	if _, err := b.Parameters(); err != nil {
		errs = append(errs, fmt.Sprintf("%s: %v", section, err))
	}
	return errs
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []string

	if c.Auction.TotalQuantity <= 0 || c.Auction.TotalQuantity%2 != 0 {
		errs = append(errs, fmt.Sprintf("auction: total_quantity must be a positive even number, got %d", c.Auction.TotalQuantity))
	}
	if c.Auction.BaseCash < 0 {
		errs = append(errs, fmt.Sprintf("auction: base_cash must be >= 0, got %d", c.Auction.BaseCash))
	}

	if c.Tournament.Runs < 1 {
		errs = append(errs, "tournament: runs must be >= 1")
	}
	if c.Tournament.Workers < 1 {
		errs = append(errs, "tournament: workers must be >= 1")
	}
	if c.Tournament.Seed < 0 {
		errs = append(errs, "tournament: seed must be >= 0")
	}

	errs = append(errs, c.Own.validate("own")...)
	errs = append(errs, c.Other.validate("other")...)

	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, fmt.Sprintf("output: unknown format %q (valid: text, json, cbor)", c.Output.Format))
	}

	if !slices.Contains(auctionapi.Encodings(), strings.ToLower(c.Output.SignFormat)) {
		errs = append(errs, fmt.Sprintf("output: unknown sign_format %q (valid: %s)", c.Output.SignFormat, strings.Join(auctionapi.Encodings(), ", ")))
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
