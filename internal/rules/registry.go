package rules

import (
	"fmt"
	"sort"
)

// Registry holds rules by name. The built-in set lives in Default; plugin
// packs register into their own registries and are merged by the linter.
type Registry struct {
	byName map[string]*Rule
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Rule)}
}

// Register adds a rule. Names must be unique within a registry.
func (r *Registry) Register(rule *Rule) error {
	if rule.Name == "" {
		return fmt.Errorf("rules: rule with empty name")
	}
	if _, ok := r.byName[rule.Name]; ok {
		return fmt.Errorf("rules: duplicate rule %q", rule.Name)
	}
	if rule.Check == nil {
		return fmt.Errorf("rules: rule %q has no check", rule.Name)
	}
	r.byName[rule.Name] = rule
	return nil
}

// Get returns a rule by name.
func (r *Registry) Get(name string) (*Rule, bool) {
	rule, ok := r.byName[name]
	return rule, ok
}

// Names lists the registered rule names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Rules lists the registered rules in name order.
func (r *Registry) Rules() []*Rule {
	names := r.Names()
	out := make([]*Rule, 0, len(names))
	for _, name := range names {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int { return len(r.byName) }

// Default returns a registry with every built-in rule.
func Default() *Registry {
	r := NewRegistry()
	for _, rule := range builtins {
		if err := r.Register(rule); err != nil {
			panic(err) // дубликат в билтинах - ошибка программиста
		}
	}
	return r
}

var builtins = []*Rule{
	PreferReflectApply,
	NoDebugger,
	Eqeqeq,
	NoDupeKeys,
	NoArrayConstructor,
	NoSparseArrays,
	NoEmpty,
	NoVar,
	NoUnnormalizedIdentifiers,
	UnicodeBOM,
	LinebreakStyle,
}
