package validation

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/core"
)

// ReportValidationInput contains all inputs needed to validate a signed auction report
type ReportValidationInput struct {
	SignedReport   string // Text form produced by the simulator
	Encoding       string // "gzip" (default), "base64" or "base64url"
	PublicKey      *ecdsa.PublicKey
	ExpectedWinner string // Optional: "own", "other", "tie"; empty skips the check
}

// ReportValidationResult contains the outcome of every report check
type ReportValidationResult struct {
	SignatureValid    bool
	TranscriptValid   bool
	LedgerValid       bool
	OutcomeValid      bool
	WinnerValid       bool
	ValidationDetails []string

	Report *auctionapi.Report
}

// IsValid returns true if all report checks passed
func (r *ReportValidationResult) IsValid() bool {
	return r.SignatureValid && r.TranscriptValid && r.LedgerValid && r.OutcomeValid && r.WinnerValid
}

// ValidateSignedReport validates a signed auction report and verifies:
// - COSE signature matches the public key
// - Transcript hash matches the recorded round history
// - Cash and quantities replayed from the history match the scoreboard and bidder ledgers
// - Reported status agrees with the auction rules applied to the final state
// - Winner matches the final quantities (and the caller's expectation, if given)
//
// Returns:
//   - ReportValidationResult with detailed results (call result.IsValid() to check overall status)
//   - error if validation cannot be performed (e.g., malformed input, missing key)
func ValidateSignedReport(input *ReportValidationInput) (*ReportValidationResult, error) {
	if input.PublicKey == nil {
		return nil, fmt.Errorf("public key is required")
	}

	signed, err := auctionapi.DecodeSignedReport(input.SignedReport, input.Encoding)
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	result := &ReportValidationResult{}

	report, err := signed.Verify(input.PublicKey)
	if err != nil {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Signature verification failed: %v", err))

		// Keep going on the unverified payload so the caller sees every problem
		report, err = signed.Payload()
		if err != nil {
			return nil, fmt.Errorf("failed to parse report payload: %w", err)
		}
	} else {
		result.SignatureValid = true
		result.ValidationDetails = append(result.ValidationDetails, "Signature validation passed")
	}
	result.Report = report

	result.TranscriptValid = validateTranscript(report, result)
	result.LedgerValid = validateLedger(report, result)
	result.OutcomeValid = validateOutcome(report, result)
	result.WinnerValid = validateWinner(input, report, result)

	return result, nil
}

func validateTranscript(report *auctionapi.Report, result *ReportValidationResult) bool {
	if report.TranscriptNonce == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Transcript nonce missing from report")
		return false
	}

	computed := report.ComputeTranscriptHash()
	if computed == report.TranscriptHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Transcript hash validation passed: %s", computed))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Transcript hash mismatch: computed %s, report has %s", computed, report.TranscriptHash))
	return false
}

// validateLedger replays the history from the starting cash and quantity.
// Awards follow core.DefaultWinEvaluator. The replayed totals must match the
// scoreboard and, for completed reports, both bidder ledgers.
func validateLedger(report *auctionapi.Report, result *ReportValidationResult) bool {
	state := report.State

	// A verification failure aborts after its round was recorded.
	played := len(report.History)
	switch {
	case report.Status == auctionapi.StatusCompleted && played != report.RoundsPlayed,
		report.Status != auctionapi.StatusCompleted && played != report.RoundsPlayed && played != report.RoundsPlayed+1:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Round count mismatch: history has %d rounds, report has %d played",
			played, report.RoundsPlayed))
		return false
	}

	evaluator := core.DefaultWinEvaluator{}
	ownCash, otherCash := state.InitialBaseCash, state.InitialBaseCash
	var ownWon, otherWon int

	for _, round := range report.History {
		ownBid, ok := round.Bids[report.Own.ID]
		if !ok {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Round %d has no bid for own party %s", round.Round, report.Own.ID))
			return false
		}
		otherBid, ok := round.Bids[report.Other.ID]
		if !ok {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Round %d has no bid for other party %s", round.Round, report.Other.ID))
			return false
		}

		ownAward, err := evaluator.Evaluate(ownBid, otherBid)
		if err != nil {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Round %d: %v", round.Round, err))
			return false
		}
		otherAward, err := evaluator.Evaluate(otherBid, ownBid)
		if err != nil {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Round %d: %v", round.Round, err))
			return false
		}

		ownCash -= ownBid
		otherCash -= otherBid
		ownWon += ownAward
		otherWon += otherAward
	}
	remaining := state.TotalInitialQuantity - ownWon - otherWon

	if ownCash != state.OwnCash || otherCash != state.OtherCash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Cash mismatch: history implies own=%d other=%d, report has own=%d other=%d",
			ownCash, otherCash, state.OwnCash, state.OtherCash))
		return false
	}

	if ownWon != state.OwnQuantityWon || otherWon != state.OtherQuantityWon || remaining != state.RemainingQuantity {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Quantity mismatch: history implies own=%d other=%d remaining=%d, report has own=%d other=%d remaining=%d",
			ownWon, otherWon, remaining, state.OwnQuantityWon, state.OtherQuantityWon, state.RemainingQuantity))
		return false
	}

	// An evaluator fault aborts after the bidders settled but before the scoreboard did.
	if report.Status == auctionapi.StatusCompleted {
		if report.Own.Cash != ownCash || report.Own.QuantityWon != ownWon ||
			report.Other.Cash != otherCash || report.Other.QuantityWon != otherWon {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Bidder ledger mismatch: history implies own=%d/%d other=%d/%d (cash/quantity), bidders have own=%d/%d other=%d/%d",
				ownCash, ownWon, otherCash, otherWon,
				report.Own.Cash, report.Own.QuantityWon, report.Other.Cash, report.Other.QuantityWon))
			return false
		}
	}

	result.ValidationDetails = append(result.ValidationDetails, "Ledger validation passed")
	return true
}

// validateOutcome checks that the reported status and final validation error
// are what the auction rules say about the reported state.
func validateOutcome(report *auctionapi.Report, result *ReportValidationResult) bool {
	switch report.Status {
	case auctionapi.StatusCompleted:
		if audit := Audit(report.State, RoundRules()...); !audit.IsValid() {
			result.ValidationDetails = append(result.ValidationDetails, audit.ValidationDetails...)
			result.ValidationDetails = append(result.ValidationDetails, "Outcome validation failed: completed report breaks round rules")
			return false
		}
	case auctionapi.StatusAbortedEarly:
		if report.AbortReason == "" {
			result.ValidationDetails = append(result.ValidationDetails, "Outcome validation failed: aborted report has no abort reason")
			return false
		}
	default:
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Outcome validation failed: unknown status %q", report.Status))
		return false
	}

	finalAudit := Audit(report.State, FinalRules()...)
	if finalAudit.IsValid() != (report.FinalValidationError == "") {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Outcome validation failed: final rules valid=%t but report final error is %q",
			finalAudit.IsValid(), report.FinalValidationError))
		return false
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Outcome validation passed: %s", report.Status))
	return true
}

func validateWinner(input *ReportValidationInput, report *auctionapi.Report, result *ReportValidationResult) bool {
	expected := ""
	if report.Status == auctionapi.StatusCompleted {
		switch {
		case report.State.OwnQuantityWon > report.State.OtherQuantityWon:
			expected = auctionapi.WinnerOwn
		case report.State.OwnQuantityWon < report.State.OtherQuantityWon:
			expected = auctionapi.WinnerOther
		default:
			expected = auctionapi.WinnerTie
		}
	}

	if report.Winner != expected {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Winner validation failed: state implies %q, report has %q", expected, report.Winner))
		return false
	}

	if input.ExpectedWinner != "" && input.ExpectedWinner != report.Winner {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Winner validation failed: expected %q, report has %q", input.ExpectedWinner, report.Winner))
		return false
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Winner validation passed: %q", report.Winner))
	return true
}
