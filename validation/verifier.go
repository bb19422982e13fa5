package validation

import (
	"fmt"

	"github.com/cloudx-io/sealedbid/core"
)

// Verifier pairs the auction scoreboard with its updater and the round and
// final rule sets. The orchestrator feeds it each round's bids.
type Verifier struct {
	state   *core.AuctionState
	updater core.AuctionStateUpdater
	round   RuleValidator
	final   RuleValidator
}

// NewVerifier owns state from now on. Nil rule sets default to RoundRules and FinalRules.
func NewVerifier(state *core.AuctionState, round, final RuleValidator, updater core.AuctionStateUpdater) *Verifier {
	if round == nil {
		round = NewComposite(RoundRules()...)
	}
	if final == nil {
		final = NewComposite(FinalRules()...)
	}
	return &Verifier{
		state:   state,
		updater: updater,
		round:   round,
		final:   final,
	}
}

// VerifyRound applies the bids to the scoreboard and checks the round rules.
// A rule violation is returned as is; the scoreboard keeps the update.
func (v *Verifier) VerifyRound(ownBid, otherBid int) error {
	if err := v.updater.Update(v.state, ownBid, otherBid); err != nil {
		return fmt.Errorf("update auction state: %w", err)
	}
	return v.round.Validate(v.state)
}

// VerifyFinalState checks the final rules without touching the scoreboard.
func (v *Verifier) VerifyFinalState() error {
	return v.final.Validate(v.state)
}

// State returns a copy of the scoreboard.
func (v *Verifier) State() core.AuctionState {
	return *v.state
}
