package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cloudx-io/sealedbid/core"
)

const (
	NameBalanced = "balanced"
	NameRandom   = "random"
	NameGodlike  = "godlike"
)

type constructor func(params Parameters, rnd RandSource) BidderStrategy

var registry = map[string]constructor{
	NameBalanced: func(params Parameters, _ RandSource) BidderStrategy { return NewBalanced(params) },
	NameRandom:   func(params Parameters, rnd RandSource) BidderStrategy { return NewRandom(params, rnd) },
	NameGodlike:  func(params Parameters, rnd RandSource) BidderStrategy { return NewGodlike(params, rnd) },
}

// New builds the named strategy after validating params. Names are case-insensitive.
func New(name string, params Parameters, rnd RandSource) (BidderStrategy, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q (known: %s)", core.ErrConstruction, name, strings.Join(Names(), ", "))
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	return ctor(params, rnd), nil
}

// Names lists the strategies New can build, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
