package auction

import (
	"go.uber.org/zap"

	"github.com/cloudx-io/sealedbid/bidder"
	"github.com/cloudx-io/sealedbid/core"
	"github.com/cloudx-io/sealedbid/validation"
)

type options struct {
	logger      *zap.Logger
	evaluator   core.WinEvaluator
	idGenerator bidder.IDGenerator
	roundRules  validation.RuleValidator
	finalRules  validation.RuleValidator
}

// Option configures an Auction.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWinEvaluator replaces the default win rule for both bidders and the verifier.
func WithWinEvaluator(evaluator core.WinEvaluator) Option {
	return func(o *options) {
		if evaluator != nil {
			o.evaluator = evaluator
		}
	}
}

// WithIDGenerator replaces the random bidder identifier source.
func WithIDGenerator(gen bidder.IDGenerator) Option {
	return func(o *options) {
		o.idGenerator = gen
	}
}

// WithRules replaces the round and final rule sets. A nil argument keeps the standard set.
func WithRules(round, final validation.RuleValidator) Option {
	return func(o *options) {
		o.roundRules = round
		o.finalRules = final
	}
}

func defaultOptions() options {
	return options{
		logger:    zap.NewNop(),
		evaluator: core.DefaultWinEvaluator{},
	}
}
