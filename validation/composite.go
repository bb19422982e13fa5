package validation

import "github.com/cloudx-io/sealedbid/core"

// Composite runs a fixed list of rules in registration order and returns the
// first violation.
type Composite struct {
	rules []RuleValidator
}

var _ RuleValidator = (*Composite)(nil)

// NewComposite copies rules; later changes to the slice do not affect the composite.
// Nil entries are skipped.
func NewComposite(rules ...RuleValidator) *Composite {
	kept := make([]RuleValidator, 0, len(rules))
	for _, r := range rules {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &Composite{rules: kept}
}

func (c *Composite) Validate(state *core.AuctionState) error {
	for _, rule := range c.rules {
		if err := rule.Validate(state); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of registered rules.
func (c *Composite) Len() int {
	return len(c.rules)
}
