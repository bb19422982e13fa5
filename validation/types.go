package validation

import (
	"errors"

	"github.com/cloudx-io/sealedbid/core"
)

// AuditResult lists every violated rule of an AuctionState instead of only the first.
type AuditResult struct {
	Violations        []*core.RuleViolation
	ValidationDetails []string
}

// IsValid returns true if no rule was violated
func (r *AuditResult) IsValid() bool {
	return len(r.Violations) == 0
}

// Audit runs every rule against state without short-circuiting. It is a
// reporting aid; the auction itself stops on the first violation.
// With no rules given it runs RoundRules followed by FinalRules.
func Audit(state core.AuctionState, rules ...RuleValidator) *AuditResult {
	if len(rules) == 0 {
		rules = append(RoundRules(), FinalRules()...)
	}

	result := &AuditResult{}
	for _, rule := range rules {
		err := rule.Validate(&state)
		if err == nil {
			continue
		}

		var violation *core.RuleViolation
		if !errors.As(err, &violation) {
			violation = &core.RuleViolation{Rule: "unnamed", Message: err.Error()}
		}
		result.Violations = append(result.Violations, violation)
		result.ValidationDetails = append(result.ValidationDetails, violation.Error())
	}
	return result
}
