package auction

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/core"
)

// Status is the terminal state of an auction.
type Status string

const (
	StatusCompleted    Status = auctionapi.StatusCompleted
	StatusAbortedEarly Status = auctionapi.StatusAbortedEarly
)

// Winner names the party with strictly more quantity won, or a tie.
type Winner string

const (
	WinnerNone  Winner = ""
	WinnerOwn   Winner = auctionapi.WinnerOwn
	WinnerOther Winner = auctionapi.WinnerOther
	WinnerTie   Winner = auctionapi.WinnerTie
)

// Result is the outcome of Run.
type Result struct {
	Status       Status
	RoundsPlayed int
	MaxRounds    int

	// AbortReason is set when Status is StatusAbortedEarly.
	AbortReason error
	// FinalValidationErr is the final rule violation, if any. It does not undo completed rounds.
	FinalValidationErr error

	// Winner is only set on completion.
	Winner Winner

	State core.AuctionState
	Own   core.BidderState
	Other core.BidderState

	History []core.RoundRecord
}

// Valid reports whether the auction completed and passed final validation.
func (r *Result) Valid() bool {
	return r.Status == StatusCompleted && r.FinalValidationErr == nil
}

func decideWinner(state core.AuctionState) Winner {
	switch {
	case state.OwnQuantityWon > state.OtherQuantityWon:
		return WinnerOwn
	case state.OwnQuantityWon < state.OtherQuantityWon:
		return WinnerOther
	default:
		return WinnerTie
	}
}

// Report renders the result with a fresh report id, nonce and timestamp.
func (r *Result) Report() (*auctionapi.Report, error) {
	nonce, err := auctionapi.NewNonce()
	if err != nil {
		return nil, fmt.Errorf("report nonce: %w", err)
	}
	return r.BuildReport(uuid.NewString(), nonce, time.Now().UTC()), nil
}

// BuildReport renders the result with the given identity. The transcript hash
// is computed from the history and nonce.
func (r *Result) BuildReport(reportID, nonce string, timestamp time.Time) *auctionapi.Report {
	report := &auctionapi.Report{
		ReportID:        reportID,
		Timestamp:       timestamp,
		Status:          string(r.Status),
		RoundsPlayed:    r.RoundsPlayed,
		MaxRounds:       r.MaxRounds,
		Winner:          string(r.Winner),
		State:           r.State,
		Own:             r.Own,
		Other:           r.Other,
		History:         auctionapi.NewRoundBids(r.History),
		TranscriptNonce: nonce,
	}
	if r.AbortReason != nil {
		report.AbortReason = r.AbortReason.Error()
	}
	if r.FinalValidationErr != nil {
		report.FinalValidationError = r.FinalValidationErr.Error()
	}
	report.Seal()
	return report
}
