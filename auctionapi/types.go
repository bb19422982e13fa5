// Package auctionapi defines the outcome report an auction run publishes and
// its wire encodings.
package auctionapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/sealedbid/core"
)

// Report statuses
const (
	StatusCompleted    = "completed"
	StatusAbortedEarly = "aborted_early"
)

// Winner values. An aborted auction has no winner.
const (
	WinnerOwn   = "own"
	WinnerOther = "other"
	WinnerTie   = "tie"
)

// RoundBids is one round of the history: party id -> bid.
type RoundBids struct {
	Round int            `json:"round" cbor:"round"`
	Bids  map[string]int `json:"bids" cbor:"bids"`
}

// Report is the outcome of one auction run.
type Report struct {
	ReportID  string    `json:"report_id" cbor:"report_id"`
	Timestamp time.Time `json:"timestamp" cbor:"timestamp"`

	Status       string `json:"status" cbor:"status"`
	RoundsPlayed int    `json:"rounds_played" cbor:"rounds_played"`
	MaxRounds    int    `json:"max_rounds" cbor:"max_rounds"`
	Winner       string `json:"winner,omitempty" cbor:"winner,omitempty"`

	AbortReason          string `json:"abort_reason,omitempty" cbor:"abort_reason,omitempty"`
	FinalValidationError string `json:"final_validation_error,omitempty" cbor:"final_validation_error,omitempty"`

	// Verifier scoreboard
	State core.AuctionState `json:"state" cbor:"state"`

	// Ledgers kept by the two bidders
	Own   core.BidderState `json:"own" cbor:"own"`
	Other core.BidderState `json:"other" cbor:"other"`

	History []RoundBids `json:"history" cbor:"history"`

	TranscriptNonce string `json:"transcript_nonce" cbor:"transcript_nonce"`
	TranscriptHash  string `json:"transcript_hash" cbor:"transcript_hash"`
}

// NewRoundBids converts a core history into its wire form, rounds numbered from 1.
func NewRoundBids(history []core.RoundRecord) []RoundBids {
	rounds := make([]RoundBids, len(history))
	for i, record := range history {
		rounds[i] = RoundBids{Round: i + 1, Bids: record.Bids()}
	}
	return rounds
}

// Records converts the wire history back into core round records, ordered by round number.
func (r *Report) Records() []core.RoundRecord {
	sorted := make([]RoundBids, len(r.History))
	copy(sorted, r.History)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Round < sorted[j].Round })

	records := make([]core.RoundRecord, len(sorted))
	for i, round := range sorted {
		records[i] = core.NewRoundRecord(round.Bids)
	}
	return records
}

// ComputeTranscriptHash recomputes the transcript hash from History and TranscriptNonce.
func (r *Report) ComputeTranscriptHash() string {
	return core.ComputeTranscriptHash(r.Records(), r.TranscriptNonce)
}

// Seal fills TranscriptHash from the current history.
func (r *Report) Seal() {
	r.TranscriptHash = r.ComputeTranscriptHash()
}

// EncodeJSON renders the report as indented JSON.
func (r *Report) EncodeJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report JSON: %w", err)
	}
	return data, nil
}

// DecodeReportJSON parses a report produced by EncodeJSON.
func DecodeReportJSON(data []byte) (*Report, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var r Report
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("unmarshal report JSON: %w", err)
	}
	return &r, nil
}

var (
	reportEncMode cbor.EncMode
	reportDecMode cbor.DecMode
)

func init() {
	encOpts := cbor.CoreDetEncOptions()
	encOpts.Time = cbor.TimeRFC3339Nano

	var err error
	reportEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("auctionapi: build CBOR encoder: %v", err))
	}
	reportDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("auctionapi: build CBOR decoder: %v", err))
	}
}

// EncodeCBOR renders the report as deterministic (core deterministic encoding) CBOR.
// Equal reports always encode to equal bytes, which is what gets signed.
func (r *Report) EncodeCBOR() ([]byte, error) {
	data, err := reportEncMode.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report CBOR: %w", err)
	}
	return data, nil
}

// DecodeReportCBOR parses a report produced by EncodeCBOR.
func DecodeReportCBOR(data []byte) (*Report, error) {
	var r Report
	if err := reportDecMode.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report CBOR: %w", err)
	}
	return &r, nil
}
