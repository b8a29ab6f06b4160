package rules

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry manages rule registration and lookup.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules: make(map[string]Rule),
	}
}

// Register adds a rule to the registry.
// Panics if a rule with the same code is already registered.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := rule.Metadata().Code
	if _, exists := r.rules[code]; exists {
		panic(fmt.Sprintf("rule %q already registered", code))
	}
	r.rules[code] = rule
}

// Get retrieves a rule by its full code.
// Returns nil if no rule is found.
func (r *Registry) Get(code string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[code]
}

// Has returns true if a rule with the given full code is registered.
func (r *Registry) Has(code string) bool {
	return r.Get(code) != nil
}

// Lookup finds a rule by full code ("lint/style/useShorthandFunctionType"),
// by group and name ("style/useShorthandFunctionType") or by bare name.
// Returns nil when nothing or more than one rule matches.
func (r *Registry) Lookup(ref string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rule, ok := r.rules[ref]; ok {
		return rule
	}
	var found Rule
	for code, rule := range r.rules {
		if strings.HasSuffix(code, "/"+ref) {
			if found != nil {
				return nil
			}
			found = rule
		}
	}
	return found
}

// Known reports whether ref resolves to exactly one rule.
func (r *Registry) Known(ref string) bool {
	return r.Lookup(ref) != nil
}

// filter returns the rules accepted by keep, sorted by code.
func (r *Registry) filter(keep func(RuleMetadata) bool) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if keep == nil || keep(rule.Metadata()) {
			result = append(result, rule)
		}
	}
	slices.SortFunc(result, func(a, b Rule) int {
		return cmp.Compare(a.Metadata().Code, b.Metadata().Code)
	})
	return result
}

// All returns all registered rules sorted by code.
func (r *Registry) All() []Rule {
	return r.filter(nil)
}

// Codes returns all registered rule codes sorted alphabetically.
func (r *Registry) Codes() []string {
	rules := r.All()
	codes := make([]string, len(rules))
	for i, rule := range rules {
		codes[i] = rule.Metadata().Code
	}
	return codes
}

// EnabledByDefault returns rules that are enabled by default.
func (r *Registry) EnabledByDefault() []Rule {
	return r.filter(func(m RuleMetadata) bool { return m.EnabledByDefault })
}

// ByCategory returns rules filtered by category.
func (r *Registry) ByCategory(category string) []Rule {
	return r.filter(func(m RuleMetadata) bool { return m.Category == category })
}

// Fixable returns rules that offer fixes.
func (r *Registry) Fixable() []Rule {
	return r.filter(func(m RuleMetadata) bool { return m.FixKind != FixNone })
}

// defaultRegistry is the global default registry.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a rule to the default registry.
func Register(rule Rule) {
	defaultRegistry.Register(rule)
}

// Get retrieves a rule from the default registry.
func Get(code string) Rule {
	return defaultRegistry.Get(code)
}

// Lookup finds a rule in the default registry by full or partial code.
func Lookup(ref string) Rule {
	return defaultRegistry.Lookup(ref)
}

// All returns all rules from the default registry.
func All() []Rule {
	return defaultRegistry.All()
}

// Codes returns all rule codes from the default registry.
func Codes() []string {
	return defaultRegistry.Codes()
}

// EnabledDefault returns rules enabled by default from the default registry.
func EnabledDefault() []Rule {
	return defaultRegistry.EnabledByDefault()
}
