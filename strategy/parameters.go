package strategy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cloudx-io/sealedbid/core"
)

// Greediness scales how much of the available cash a strategy is willing to commit.
type Greediness int

const (
	Weak Greediness = iota + 1
	Medium
	Strong
)

var (
	weakMultiplier   = decimal.RequireFromString("0.5")
	mediumMultiplier = decimal.NewFromInt(1)
	strongMultiplier = decimal.RequireFromString("1.5")
)

// Multiplier returns 0.5, 1.0 or 1.5. Unknown values behave like Medium.
func (g Greediness) Multiplier() decimal.Decimal {
	switch g {
	case Weak:
		return weakMultiplier
	case Strong:
		return strongMultiplier
	default:
		return mediumMultiplier
	}
}

func (g Greediness) String() string {
	switch g {
	case Weak:
		return "weak"
	case Medium:
		return "medium"
	case Strong:
		return "strong"
	default:
		return fmt.Sprintf("greediness(%d)", int(g))
	}
}

// ParseGreediness accepts "weak", "medium" or "strong" in any case.
func ParseGreediness(s string) (Greediness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weak":
		return Weak, nil
	case "medium", "":
		return Medium, nil
	case "strong":
		return Strong, nil
	default:
		return 0, fmt.Errorf("%w: unknown greediness %q", core.ErrInvalidArgument, s)
	}
}

// RiskRewardRatio shapes the share of cash risked per round: reward/(risk+reward).
type RiskRewardRatio struct {
	Risk   int `json:"risk" toml:"risk"`
	Reward int `json:"reward" toml:"reward"`
}

// Parameters is the validated tuning bundle shared by every strategy.
type Parameters struct {
	Greediness Greediness
	RiskReward RiskRewardRatio
	// MaxRounds stops bidding once the strategy's round counter exceeds it. 0 means unlimited.
	MaxRounds int
}

// DefaultParameters is Medium greediness, a 1:1 risk/reward ratio and no round limit.
func DefaultParameters() Parameters {
	return Parameters{
		Greediness: Medium,
		RiskReward: RiskRewardRatio{Risk: 1, Reward: 1},
	}
}

// NewParameters builds a Parameters and validates it.
func NewParameters(greediness Greediness, risk, reward, maxRounds int) (Parameters, error) {
	p := Parameters{
		Greediness: greediness,
		RiskReward: RiskRewardRatio{Risk: risk, Reward: reward},
		MaxRounds:  maxRounds,
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Validate enforces risk > 0, reward > 0, risk <= reward and maxRounds >= 0.
func (p Parameters) Validate() error {
	switch {
	case p.Greediness < Weak || p.Greediness > Strong:
		return constructionError("unknown greediness %d", int(p.Greediness))
	case p.RiskReward.Risk <= 0:
		return constructionError("risk must be positive, got %d", p.RiskReward.Risk)
	case p.RiskReward.Reward <= 0:
		return constructionError("reward must be positive, got %d", p.RiskReward.Reward)
	case p.RiskReward.Risk > p.RiskReward.Reward:
		return constructionError("risk %d must not exceed reward %d", p.RiskReward.Risk, p.RiskReward.Reward)
	case p.MaxRounds < 0:
		return constructionError("max rounds must be non-negative, got %d", p.MaxRounds)
	}
	return nil
}

func constructionError(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", core.ErrConstruction, core.ErrInvalidArgument, fmt.Sprintf(format, args...))
}
