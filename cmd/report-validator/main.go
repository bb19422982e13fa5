package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/validation"
)

// Exit codes
const (
	exitValid   = 0
	exitInvalid = 1
	exitInput   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("report-validator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { showUsage(stderr) }

	// Define CLI flags
	var (
		reportInput    = fs.String("report", "", "Signed report text (file path or inline)")
		encoding       = fs.String("encoding", auctionapi.EncodingGzip, "Signed report encoding: gzip, base64 or base64url")
		publicKeyPath  = fs.String("public-key", "", "PEM public key of the signing simulator")
		expectedWinner = fs.String("expected-winner", "", "Optional expected winner: own, other or tie")
		outputFormat   = fs.String("format", "text", "Output format: text or json")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitValid
		}
		return exitInput
	}

	// Check for required inputs
	if *reportInput == "" || *publicKeyPath == "" {
		showUsage(stderr)
		fmt.Fprintf(stderr, "\nError: Both inputs are required (--report, --public-key)\n")
		return exitInput
	}

	keyPEM, err := os.ReadFile(*publicKeyPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading public key: %v\n", err)
		return exitInput
	}
	publicKey, err := auctionapi.ParsePublicKeyPEM(keyPEM)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing public key: %v\n", err)
		return exitInput
	}

	// Validate using library
	result, err := validation.ValidateSignedReport(&validation.ReportValidationInput{
		SignedReport:   readReportInput(*reportInput),
		Encoding:       strings.ToLower(*encoding),
		PublicKey:      publicKey,
		ExpectedWinner: strings.ToLower(*expectedWinner),
	})
	if err != nil {
		fmt.Fprintf(stderr, "Validation error: %v\n", err)
		return exitInput
	}

	// Output results
	if *outputFormat == "json" {
		if err := outputJSON(stdout, result); err != nil {
			fmt.Fprintf(stderr, "Error marshaling JSON: %v\n", err)
			return exitInput
		}
	} else {
		outputText(stdout, result)
	}

	// Exit with appropriate code
	if !result.IsValid() {
		return exitInvalid
	}
	return exitValid
}

func showUsage(w io.Writer) {
	fmt.Fprintln(w, "Sealed-Bid Auction Report Validator")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Validates signed auction reports produced by auction-sim -sign-key.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  report-validator --report <signed-report> --public-key <pem> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Required Flags:")
	fmt.Fprintln(w, "  --report <path|string>              Signed report (file path or inline string)")
	fmt.Fprintln(w, "  --public-key <path>                 PEM public key written by auction-sim -gen-key")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Optional Flags:")
	fmt.Fprintln(w, "  --encoding <gzip|base64|base64url>  Signed report encoding (default: gzip)")
	fmt.Fprintln(w, "  --expected-winner <own|other|tie>   Fail unless the report names this winner")
	fmt.Fprintln(w, "  --format <text|json>                Output format (default: text)")
	fmt.Fprintln(w, "  --help                              Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Checks:")
	fmt.Fprintln(w, "  - COSE_Sign1 (ES256) signature")
	fmt.Fprintln(w, "  - Transcript hash over the round history")
	fmt.Fprintln(w, "  - Cash and quantity ledger replayed from the history")
	fmt.Fprintln(w, "  - Status agrees with the round and final rules")
	fmt.Fprintln(w, "  - Winner agrees with the final quantities")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  auction-sim -gen-key sim.pem")
	fmt.Fprintln(w, "  auction-sim -sign-key sim.pem 2> signed.txt")
	fmt.Fprintln(w, "  report-validator --report \"$(tail -n1 signed.txt)\" --public-key sim.pem.pub")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  auction-sim -sign-key sim.pem -sign-format base64 2> signed.txt")
	fmt.Fprintln(w, "  report-validator --report \"$(tail -n1 signed.txt)\" --encoding base64 --public-key sim.pem.pub")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Codes:")
	fmt.Fprintln(w, "  0 - Validation passed")
	fmt.Fprintln(w, "  1 - Validation failed")
	fmt.Fprintln(w, "  2 - Invalid input or runtime error")
}

func readReportInput(input string) string {
	// Try reading as file first
	if data, err := os.ReadFile(input); err == nil {
		return string(data)
	}
	// Treat as inline report
	return input
}

func outputText(w io.Writer, result *validation.ReportValidationResult) {
	fmt.Fprintln(w, "Sealed-Bid Auction Report Validator")
	fmt.Fprintln(w, "===================================")
	fmt.Fprintln(w)

	if report := result.Report; report != nil {
		fmt.Fprintln(w, "Report:")
		fmt.Fprintln(w, "-------")
		fmt.Fprintf(w, "  Report ID:               %s\n", report.ReportID)
		fmt.Fprintf(w, "  Timestamp:               %s\n", report.Timestamp.Format(time.RFC3339))
		fmt.Fprintf(w, "  Status:                  %s\n", report.Status)
		fmt.Fprintf(w, "  Rounds Played:           %d of %d\n", report.RoundsPlayed, report.MaxRounds)
		fmt.Fprintf(w, "  Winner:                  %s\n", report.Winner)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Signature Valid:         %v\n", result.SignatureValid)
	fmt.Fprintf(w, "  Transcript Valid:        %v\n", result.TranscriptValid)
	fmt.Fprintf(w, "  Ledger Valid:            %v\n", result.LedgerValid)
	fmt.Fprintf(w, "  Outcome Valid:           %v\n", result.OutcomeValid)
	fmt.Fprintf(w, "  Winner Valid:            %v\n", result.WinnerValid)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Details:")
	for _, detail := range result.ValidationDetails {
		fmt.Fprintf(w, "  - %s\n", detail)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "===================================")
	if result.IsValid() {
		fmt.Fprintln(w, "VALIDATION: ✓ PASSED")
		fmt.Fprintln(w, "Exit Code: 0")
	} else {
		fmt.Fprintln(w, "VALIDATION: ✗ FAILED")
		fmt.Fprintln(w, "Exit Code: 1")
	}
}

func outputJSON(w io.Writer, result *validation.ReportValidationResult) error {
	output := map[string]any{
		"valid":            result.IsValid(),
		"signature_valid":  result.SignatureValid,
		"transcript_valid": result.TranscriptValid,
		"ledger_valid":     result.LedgerValid,
		"outcome_valid":    result.OutcomeValid,
		"winner_valid":     result.WinnerValid,
		"details":          result.ValidationDetails,
	}
	if result.Report != nil {
		output["report"] = result.Report
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
