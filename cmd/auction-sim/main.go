package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cloudx-io/sealedbid/auction"
	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/config"
	"github.com/cloudx-io/sealedbid/tournament"
)

// Exit codes
const (
	exitValid   = 0
	exitInvalid = 1
	exitInput   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("auction-sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { showUsage(stderr) }

	var (
		configPath = fs.String("config", "", "TOML configuration file")
		format     = fs.String("format", "", "Output format: text, json or cbor")
		runs       = fs.Int("runs", 0, "Number of auctions to play")
		seed       = fs.Int64("seed", 0, "Seed for random strategies (0 = crypto/rand)")
		signKey    = fs.String("sign-key", "", "PEM EC private key used to sign the report")
		signFormat = fs.String("sign-format", "", "Signed report encoding: gzip, base64 or base64url")
		genKey     = fs.String("gen-key", "", "Write a new signing key pair to <path> and <path>.pub, then exit")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitValid
		}
		return exitInput
	}

	if *genKey != "" {
		if err := writeKeyPair(*genKey); err != nil {
			fmt.Fprintf(stderr, "Error generating key: %v\n", err)
			return exitInput
		}
		fmt.Fprintf(stdout, "Wrote %s and %s.pub\n", *genKey, *genKey)
		return exitValid
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitInput
	}

	// Flags win over file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = *format
		case "runs":
			cfg.Tournament.Runs = *runs
		case "seed":
			cfg.Tournament.Seed = *seed
		case "sign-key":
			cfg.Output.SignKeyPath = *signKey
		case "sign-format":
			cfg.Output.SignFormat = *signFormat
		}
	})
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	cfg.Output.SignFormat = strings.ToLower(cfg.Output.SignFormat)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitInput
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating logger: %v\n", err)
		return exitInput
	}
	defer func() { _ = logger.Sync() }()

	ownFactory, err := cfg.Own.Factory(uint64(cfg.Tournament.Seed))
	if err != nil {
		fmt.Fprintf(stderr, "Error configuring own bidder: %v\n", err)
		return exitInput
	}
	// Offset so the two parties never share a random stream.
	otherSeed := uint64(0)
	if cfg.Tournament.Seed != 0 {
		otherSeed = uint64(cfg.Tournament.Seed) + 1<<32
	}
	otherFactory, err := cfg.Other.Factory(otherSeed)
	if err != nil {
		fmt.Fprintf(stderr, "Error configuring other bidder: %v\n", err)
		return exitInput
	}

	if cfg.Tournament.Runs == 1 {
		return runSingle(cfg, ownFactory, otherFactory, logger, stdout, stderr)
	}
	return runTournament(ctx, cfg, ownFactory, otherFactory, logger, stdout, stderr)
}

func showUsage(w io.Writer) {
	fmt.Fprintln(w, "Sealed-Bid Auction Simulator")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Plays repeated two-party sealed-bid auctions between configured strategies.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  auction-sim [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -config <path>          TOML configuration file (default: built-in defaults)")
	fmt.Fprintln(w, "  -format <text|json|cbor> Output format (default: text)")
	fmt.Fprintln(w, "  -runs <n>               Number of auctions; more than 1 prints a tournament summary")
	fmt.Fprintln(w, "  -seed <n>               Seed for random strategies (0 = crypto/rand)")
	fmt.Fprintln(w, "  -sign-key <path>        Sign the report with this PEM EC private key")
	fmt.Fprintln(w, "  -sign-format <enc>      Signed report encoding: gzip, base64 or base64url (default: gzip)")
	fmt.Fprintln(w, "  -gen-key <path>         Write a new P-256 key pair and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  SEALEDBID_* variables (also read from .env) override the config file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Codes:")
	fmt.Fprintln(w, "  0 - Every auction completed and passed final validation")
	fmt.Fprintln(w, "  1 - An auction aborted or failed final validation")
	fmt.Fprintln(w, "  2 - Invalid input or runtime error")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	zapConfig.OutputPaths = []string{"stderr"}
	return zapConfig.Build()
}

func runSingle(cfg *config.Config, ownFactory, otherFactory tournament.StrategyFactory, logger *zap.Logger, stdout, stderr io.Writer) int {
	own, err := ownFactory(0)
	if err != nil {
		fmt.Fprintf(stderr, "Error building own strategy: %v\n", err)
		return exitInput
	}
	other, err := otherFactory(0)
	if err != nil {
		fmt.Fprintf(stderr, "Error building other strategy: %v\n", err)
		return exitInput
	}

	a, err := auction.New(cfg.Auction.TotalQuantity, cfg.Auction.BaseCash, own, other, auction.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "Error creating auction: %v\n", err)
		return exitInput
	}

	result := a.Run()
	report, err := result.Report()
	if err != nil {
		fmt.Fprintf(stderr, "Error building report: %v\n", err)
		return exitInput
	}

	if err := writeReport(stdout, cfg.Output.Format, report); err != nil {
		fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return exitInput
	}

	if cfg.Output.SignKeyPath != "" {
		signed, err := signReport(report, cfg.Output.SignKeyPath, cfg.Output.SignFormat)
		if err != nil {
			fmt.Fprintf(stderr, "Error signing report: %v\n", err)
			return exitInput
		}
		fmt.Fprintf(stderr, "Signed report (%s):\n%s\n", cfg.Output.SignFormat, signed)
	}

	if !result.Valid() {
		return exitInvalid
	}
	return exitValid
}

func runTournament(ctx context.Context, cfg *config.Config, ownFactory, otherFactory tournament.StrategyFactory, logger *zap.Logger, stdout, stderr io.Writer) int {
	summary, err := tournament.Run(ctx, tournament.Spec{
		TotalQuantity: cfg.Auction.TotalQuantity,
		BaseCash:      cfg.Auction.BaseCash,
		Runs:          cfg.Tournament.Runs,
		Workers:       cfg.Tournament.Workers,
		Own:           ownFactory,
		Other:         otherFactory,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error running tournament: %v\n", err)
		return exitInput
	}

	if err := writeSummary(stdout, cfg, summary); err != nil {
		fmt.Fprintf(stderr, "Error writing summary: %v\n", err)
		return exitInput
	}

	if summary.Aborted > 0 || summary.FinalFailures > 0 {
		return exitInvalid
	}
	return exitValid
}

func writeReport(w io.Writer, format string, report *auctionapi.Report) error {
	switch format {
	case config.FormatJSON:
		data, err := report.EncodeJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case config.FormatCBOR:
		data, err := report.EncodeCBOR()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		outputReportText(w, report)
		return nil
	}
}

func outputReportText(w io.Writer, report *auctionapi.Report) {
	fmt.Fprintln(w, "Sealed-Bid Auction Report")
	fmt.Fprintln(w, "=========================")
	fmt.Fprintf(w, "  Report ID:        %s\n", report.ReportID)
	fmt.Fprintf(w, "  Status:           %s\n", report.Status)
	fmt.Fprintf(w, "  Rounds Played:    %d of %d\n", report.RoundsPlayed, report.MaxRounds)
	if report.AbortReason != "" {
		fmt.Fprintf(w, "  Abort Reason:     %s\n", report.AbortReason)
	}
	if report.FinalValidationError != "" {
		fmt.Fprintf(w, "  Final Validation: %s\n", report.FinalValidationError)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rounds:")
	for _, round := range report.History {
		fmt.Fprintf(w, "  %3d  own=%-6d other=%d\n", round.Round, round.Bids[report.Own.ID], round.Bids[report.Other.ID])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Final State:")
	fmt.Fprintf(w, "  Own   (%s): cash=%d quantity=%d\n", report.Own.ID, report.State.OwnCash, report.State.OwnQuantityWon)
	fmt.Fprintf(w, "  Other (%s): cash=%d quantity=%d\n", report.Other.ID, report.State.OtherCash, report.State.OtherQuantityWon)
	fmt.Fprintf(w, "  Remaining Quantity: %d\n", report.State.RemainingQuantity)
	fmt.Fprintf(w, "  Transcript Hash:    %s\n", report.TranscriptHash)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=========================")
	if report.Winner != "" {
		fmt.Fprintf(w, "WINNER: %s\n", strings.ToUpper(report.Winner))
	} else {
		fmt.Fprintln(w, "WINNER: none (aborted)")
	}
}

type summaryOutput struct {
	Runs             int    `json:"runs" cbor:"runs"`
	OwnWins          int    `json:"own_wins" cbor:"own_wins"`
	OtherWins        int    `json:"other_wins" cbor:"other_wins"`
	Ties             int    `json:"ties" cbor:"ties"`
	Aborted          int    `json:"aborted" cbor:"aborted"`
	FinalFailures    int    `json:"final_failures" cbor:"final_failures"`
	OwnQuantityWon   int    `json:"own_quantity_won" cbor:"own_quantity_won"`
	OtherQuantityWon int    `json:"other_quantity_won" cbor:"other_quantity_won"`
	OwnWinRate       string `json:"own_win_rate" cbor:"own_win_rate"`
	OtherWinRate     string `json:"other_win_rate" cbor:"other_win_rate"`
	TieRate          string `json:"tie_rate" cbor:"tie_rate"`
	OwnStrategy      string `json:"own_strategy" cbor:"own_strategy"`
	OtherStrategy    string `json:"other_strategy" cbor:"other_strategy"`
	Seed             int64  `json:"seed,omitempty" cbor:"seed,omitempty"`
}

func newSummaryOutput(cfg *config.Config, s *tournament.Summary) summaryOutput {
	return summaryOutput{
		Runs:             s.Runs,
		OwnWins:          s.OwnWins,
		OtherWins:        s.OtherWins,
		Ties:             s.Ties,
		Aborted:          s.Aborted,
		FinalFailures:    s.FinalFailures,
		OwnQuantityWon:   s.OwnQuantityWon,
		OtherQuantityWon: s.OtherQuantityWon,
		OwnWinRate:       s.WinRate(auction.WinnerOwn).String(),
		OtherWinRate:     s.WinRate(auction.WinnerOther).String(),
		TieRate:          s.WinRate(auction.WinnerTie).String(),
		OwnStrategy:      cfg.Own.Strategy,
		OtherStrategy:    cfg.Other.Strategy,
		Seed:             cfg.Tournament.Seed,
	}
}

func writeSummary(w io.Writer, cfg *config.Config, s *tournament.Summary) error {
	out := newSummaryOutput(cfg, s)

	switch cfg.Output.Format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case config.FormatCBOR:
		data, err := cbor.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	fmt.Fprintln(w, "Sealed-Bid Tournament Summary")
	fmt.Fprintln(w, "=============================")
	fmt.Fprintf(w, "  Own Strategy:       %s\n", out.OwnStrategy)
	fmt.Fprintf(w, "  Other Strategy:     %s\n", out.OtherStrategy)
	fmt.Fprintf(w, "  Runs:               %d\n", out.Runs)
	fmt.Fprintf(w, "  Own Wins:           %d (%s)\n", out.OwnWins, out.OwnWinRate)
	fmt.Fprintf(w, "  Other Wins:         %d (%s)\n", out.OtherWins, out.OtherWinRate)
	fmt.Fprintf(w, "  Ties:               %d (%s)\n", out.Ties, out.TieRate)
	fmt.Fprintf(w, "  Aborted:            %d\n", out.Aborted)
	fmt.Fprintf(w, "  Final Failures:     %d\n", out.FinalFailures)
	fmt.Fprintf(w, "  Own Quantity Won:   %d\n", out.OwnQuantityWon)
	fmt.Fprintf(w, "  Other Quantity Won: %d\n", out.OtherQuantityWon)
	return nil
}

func signReport(report *auctionapi.Report, keyPath, encoding string) (string, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return "", fmt.Errorf("read signing key: %w", err)
	}
	key, err := auctionapi.ParsePrivateKeyPEM(data)
	if err != nil {
		return "", err
	}

	signed, err := auctionapi.SignReport(report, key)
	if err != nil {
		return "", err
	}
	return signed.Encode(encoding)
}

func writeKeyPair(path string) error {
	key, err := auctionapi.GenerateSigningKey()
	if err != nil {
		return err
	}

	privPEM, err := auctionapi.PrivateKeyPEM(key)
	if err != nil {
		return err
	}
	pubPEM, err := auctionapi.PublicKeyPEM(&key.PublicKey)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(privPEM), 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	if err := os.WriteFile(path+".pub", []byte(pubPEM), 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}
	return nil
}
