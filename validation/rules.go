package validation

import (
	"fmt"

	"github.com/cloudx-io/sealedbid/core"
)

// Rule names reported in core.RuleViolation.
const (
	RuleNegativeCash           = "negative_cash"
	RuleRemainingQuantity      = "remaining_quantity"
	RuleFinalQuantityExhausted = "final_quantity_exhaustion"
)

// RuleValidator checks one invariant of an AuctionState. It returns nil when
// the invariant holds and an error wrapping core.ErrValidation otherwise.
type RuleValidator interface {
	Validate(state *core.AuctionState) error
}

// RuleValidatorFunc adapts a plain function to the RuleValidator interface.
type RuleValidatorFunc func(state *core.AuctionState) error

func (f RuleValidatorFunc) Validate(state *core.AuctionState) error {
	return f(state)
}

// NegativeCash fails when either party's cash dropped below zero.
type NegativeCash struct{}

func (NegativeCash) Validate(state *core.AuctionState) error {
	if state.OwnCash < 0 || state.OtherCash < 0 {
		return &core.RuleViolation{
			Rule:    RuleNegativeCash,
			Message: fmt.Sprintf("cash must not be negative (own=%d, other=%d)", state.OwnCash, state.OtherCash),
		}
	}
	return nil
}

// RemainingQuantity fails when more units were awarded than the supply held.
type RemainingQuantity struct{}

func (RemainingQuantity) Validate(state *core.AuctionState) error {
	if state.RemainingQuantity < 0 {
		return &core.RuleViolation{
			Rule:    RuleRemainingQuantity,
			Message: fmt.Sprintf("remaining quantity must not be negative, got %d", state.RemainingQuantity),
		}
	}
	return nil
}

// FinalQuantityExhaustion requires the supply to be fully awarded and the two
// quantity totals to add up to the initial supply.
type FinalQuantityExhaustion struct{}

func (FinalQuantityExhaustion) Validate(state *core.AuctionState) error {
	if state.RemainingQuantity != 0 {
		return &core.RuleViolation{
			Rule:    RuleFinalQuantityExhausted,
			Message: fmt.Sprintf("remaining quantity must be 0 at the end, got %d", state.RemainingQuantity),
		}
	}

	if won := state.OwnQuantityWon + state.OtherQuantityWon; won != state.TotalInitialQuantity {
		return &core.RuleViolation{
			Rule: RuleFinalQuantityExhausted,
			Message: fmt.Sprintf("quantities won (%d + %d = %d) do not match initial quantity %d",
				state.OwnQuantityWon, state.OtherQuantityWon, won, state.TotalInitialQuantity),
		}
	}
	return nil
}

// RoundRules are checked after every round, in priority order.
func RoundRules() []RuleValidator {
	return []RuleValidator{NegativeCash{}, RemainingQuantity{}}
}

// FinalRules are checked once when the round loop ends.
func FinalRules() []RuleValidator {
	return []RuleValidator{FinalQuantityExhaustion{}}
}
