package validation

import (
	"crypto/ecdsa"
	"strings"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/core"
)

// completedReport is a 2-round auction over 4 units where own outbids other twice.
func completedReport() *auctionapi.Report {
	state := core.NewAuctionState(4, 100)
	state.OwnCash, state.OtherCash = 80, 90
	state.OwnQuantityWon = 4
	state.RemainingQuantity = 0

	r := &auctionapi.Report{
		ReportID:     "report-1",
		Timestamp:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Status:       auctionapi.StatusCompleted,
		RoundsPlayed: 2,
		MaxRounds:    2,
		Winner:       auctionapi.WinnerOwn,
		State:        *state,
		Own:          core.BidderState{ID: "ownAA", Cash: 80, QuantityWon: 4, TotalQuantity: 4},
		Other:        core.BidderState{ID: "othBB", Cash: 90, TotalQuantity: 4},
		History: []auctionapi.RoundBids{
			{Round: 1, Bids: map[string]int{"ownAA": 10, "othBB": 5}},
			{Round: 2, Bids: map[string]int{"ownAA": 10, "othBB": 5}},
		},
		TranscriptNonce: "nonce",
	}
	r.Seal()
	return r
}

func signAndCompress(t *testing.T, report *auctionapi.Report, key *ecdsa.PrivateKey) string {
	t.Helper()
	signed, err := auctionapi.SignReport(report, key)
	assert.NoError(t, err)
	compressed, err := signed.CompressGzip()
	assert.NoError(t, err)
	return compressed.String()
}

func TestValidateSignedReport_Valid(t *testing.T) {
	key, err := auctionapi.GenerateSigningKey()
	assert.NoError(t, err)

	result, err := ValidateSignedReport(&ReportValidationInput{
		SignedReport:   signAndCompress(t, completedReport(), key),
		PublicKey:      &key.PublicKey,
		ExpectedWinner: auctionapi.WinnerOwn,
	})
	assert.NoError(t, err)

	check.True(t, result.SignatureValid)
	check.True(t, result.TranscriptValid)
	check.True(t, result.LedgerValid)
	check.True(t, result.OutcomeValid)
	check.True(t, result.WinnerValid)
	check.True(t, result.IsValid())
	check.Equal(t, "report-1", result.Report.ReportID)
}

func TestValidateSignedReport_Failures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *auctionapi.Report)
		expected string
		check    func(r *ReportValidationResult) bool
	}{
		{
			name:   "tampered history",
			mutate: func(r *auctionapi.Report) { r.History[1].Bids["othBB"] = 4 },
			check:  func(r *ReportValidationResult) bool { return !r.TranscriptValid && !r.LedgerValid },
		},
		{
			name: "cash does not reconcile",
			mutate: func(r *auctionapi.Report) {
				r.State.OwnCash = 85
			},
			check: func(r *ReportValidationResult) bool { return r.TranscriptValid && !r.LedgerValid },
		},
		{
			name: "tampered award",
			mutate: func(r *auctionapi.Report) {
				// Same cash spent, but other won both rounds
				r.History[0].Bids = map[string]int{"ownAA": 5, "othBB": 10}
				r.History[1].Bids = map[string]int{"ownAA": 15, "othBB": 0}
				r.Seal()
			},
			check: func(r *ReportValidationResult) bool { return r.TranscriptValid && !r.LedgerValid },
		},
		{
			name:   "rounds played disagrees with history",
			mutate: func(r *auctionapi.Report) { r.RoundsPlayed = 1 },
			check:  func(r *ReportValidationResult) bool { return !r.LedgerValid },
		},
		{
			name:   "bidder ledger disagrees",
			mutate: func(r *auctionapi.Report) { r.Other.QuantityWon = 1 },
			check:  func(r *ReportValidationResult) bool { return r.OutcomeValid && !r.LedgerValid },
		},
		{
			name:   "missing party in round",
			mutate: func(r *auctionapi.Report) { delete(r.History[0].Bids, "ownAA"); r.Seal() },
			check:  func(r *ReportValidationResult) bool { return r.TranscriptValid && !r.LedgerValid },
		},
		{
			name:   "wrong winner",
			mutate: func(r *auctionapi.Report) { r.Winner = auctionapi.WinnerTie },
			check:  func(r *ReportValidationResult) bool { return !r.WinnerValid },
		},
		{
			name:   "final error hidden",
			mutate: func(r *auctionapi.Report) { r.State.RemainingQuantity = 2; r.State.OwnQuantityWon = 2 },
			check:  func(r *ReportValidationResult) bool { return !r.OutcomeValid },
		},
		{
			name:   "aborted without reason",
			mutate: func(r *auctionapi.Report) { r.Status = auctionapi.StatusAbortedEarly; r.Winner = "" },
			check:  func(r *ReportValidationResult) bool { return !r.OutcomeValid && r.WinnerValid },
		},
		{
			name:   "unknown status",
			mutate: func(r *auctionapi.Report) { r.Status = "paused" },
			check:  func(r *ReportValidationResult) bool { return !r.OutcomeValid },
		},
		{
			name:   "missing nonce",
			mutate: func(r *auctionapi.Report) { r.TranscriptNonce = "" },
			check:  func(r *ReportValidationResult) bool { return !r.TranscriptValid },
		},
	}

	key, err := auctionapi.GenerateSigningKey()
	assert.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := completedReport()
			tt.mutate(report)

			result, err := ValidateSignedReport(&ReportValidationInput{
				SignedReport: signAndCompress(t, report, key),
				PublicKey:    &key.PublicKey,
			})
			assert.NoError(t, err)

			check.True(t, result.SignatureValid)
			check.False(t, result.IsValid())
			check.True(t, tt.check(result))
		})
	}
}

func TestValidateSignedReport_AbortedReport(t *testing.T) {
	report := completedReport()
	report.Status = auctionapi.StatusAbortedEarly
	report.Winner = ""
	report.AbortReason = "round 3: own bid: internal strategy fault"

	key, err := auctionapi.GenerateSigningKey()
	assert.NoError(t, err)

	result, err := ValidateSignedReport(&ReportValidationInput{
		SignedReport: signAndCompress(t, report, key),
		PublicKey:    &key.PublicKey,
	})
	assert.NoError(t, err)
	check.True(t, result.IsValid())
}

func TestValidateSignedReport_AbortedInVerification(t *testing.T) {
	// The failing round is recorded but not counted as played
	report := completedReport()
	report.Status = auctionapi.StatusAbortedEarly
	report.Winner = ""
	report.RoundsPlayed = 1
	report.AbortReason = "round 2: verify round: remaining quantity violated"

	key, err := auctionapi.GenerateSigningKey()
	assert.NoError(t, err)

	result, err := ValidateSignedReport(&ReportValidationInput{
		SignedReport: signAndCompress(t, report, key),
		PublicKey:    &key.PublicKey,
	})
	assert.NoError(t, err)
	check.True(t, result.LedgerValid)
	check.True(t, result.IsValid())

	report.RoundsPlayed = 0
	result, err = ValidateSignedReport(&ReportValidationInput{
		SignedReport: signAndCompress(t, report, key),
		PublicKey:    &key.PublicKey,
	})
	assert.NoError(t, err)
	check.False(t, result.LedgerValid)
}

func TestValidateSignedReport_Encodings(t *testing.T) {
	key, err := auctionapi.GenerateSigningKey()
	assert.NoError(t, err)
	signed, err := auctionapi.SignReport(completedReport(), key)
	assert.NoError(t, err)

	for _, encoding := range auctionapi.Encodings() {
		t.Run(encoding, func(t *testing.T) {
			text, err := signed.Encode(encoding)
			assert.NoError(t, err)

			result, err := ValidateSignedReport(&ReportValidationInput{
				SignedReport: text,
				Encoding:     encoding,
				PublicKey:    &key.PublicKey,
			})
			assert.NoError(t, err)
			check.True(t, result.IsValid())
		})
	}
}

func TestValidateSignedReport_WrongKey(t *testing.T) {
	key, err := auctionapi.GenerateSigningKey()
	assert.NoError(t, err)
	other, err := auctionapi.GenerateSigningKey()
	assert.NoError(t, err)

	result, err := ValidateSignedReport(&ReportValidationInput{
		SignedReport: signAndCompress(t, completedReport(), key),
		PublicKey:    &other.PublicKey,
	})
	assert.NoError(t, err)

	check.False(t, result.SignatureValid)
	check.False(t, result.IsValid())
	// The payload is still checked
	check.True(t, result.TranscriptValid)
	check.True(t, strings.Contains(result.ValidationDetails[0], "Signature verification failed"))
}

func TestValidateSignedReport_ExpectedWinnerMismatch(t *testing.T) {
	key, err := auctionapi.GenerateSigningKey()
	assert.NoError(t, err)

	result, err := ValidateSignedReport(&ReportValidationInput{
		SignedReport:   signAndCompress(t, completedReport(), key),
		PublicKey:      &key.PublicKey,
		ExpectedWinner: auctionapi.WinnerOther,
	})
	assert.NoError(t, err)
	check.False(t, result.WinnerValid)
}

func TestValidateSignedReport_InputErrors(t *testing.T) {
	key, err := auctionapi.GenerateSigningKey()
	assert.NoError(t, err)

	_, err = ValidateSignedReport(&ReportValidationInput{SignedReport: "abc"})
	check.Error(t, err)

	_, err = ValidateSignedReport(&ReportValidationInput{
		SignedReport: "!!!invalid!!!",
		PublicKey:    &key.PublicKey,
	})
	check.True(t, err != nil && strings.Contains(err.Error(), "decode report"))
}
