// Package plugin loads declarative rule packs from a project's plugin
// directory and runs them alongside the built-in rules.
//
// A pack is a TOML file declaring pattern rules: a regular expression
// matched against the text of a grammar node type, or against the whole
// file when no node type is given. Packs are loaded as one immutable Set;
// swapping a Set in is wholesale replacement, never a merge.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	lru "github.com/hashicorp/golang-lru/v2"

	"sable/internal/diag"
)

// Dir is the pack directory relative to the project root.
const Dir = ".sable/plugins"

const regexCacheSize = 256

// regexCache keeps compiled patterns across pack reloads. Watch mode and
// the LSP replace the whole set on every change; identical patterns
// should not recompile.
var regexCache = newRegexCache()

func newRegexCache() *lru.Cache[string, *regexp.Regexp] {
	cache, err := lru.New[string, *regexp.Regexp](regexCacheSize)
	if err != nil {
		panic(err) // размер константный, ошибка невозможна
	}
	return cache
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Add(pattern, re)
	return re, nil
}

// packFile mirrors the TOML layout of one pack.
type packFile struct {
	Name    string     `toml:"name"`
	Version string     `toml:"version"`
	Rules   []packRule `toml:"rule"`
}

type packRule struct {
	Name     string `toml:"name"`
	Severity string `toml:"severity"`
	Node     string `toml:"node"`
	Pattern  string `toml:"pattern"`
	Message  string `toml:"message"`
	Help     string `toml:"help"`
}

// Rule is one compiled pack rule.
type Rule struct {
	Name     string
	Pack     string
	Severity diag.Severity
	Node     string // grammar node type; "" matches the whole file
	Message  string
	Help     string

	re *regexp.Regexp
}

// Set is an immutable collection of compiled pack rules.
type Set struct {
	packs []string
	rules []*Rule
	// byNode раскладывает правила по типам узлов на этапе загрузки
	byNode map[string][]*Rule
	whole  []*Rule
}

// Packs lists the loaded pack names in load order.
func (s *Set) Packs() []string { return s.packs }

// Rules lists every rule across all packs.
func (s *Set) Rules() []*Rule { return s.rules }

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Load reads every *.toml pack in dir. A missing directory is an empty
// set; a malformed pack is an error naming the file.
func Load(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &Set{byNode: map[string][]*Rule{}}, nil
		}
		return nil, fmt.Errorf("plugin: read dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names) // детерминированный порядок загрузки

	set := &Set{byNode: map[string][]*Rule{}}
	seen := make(map[string]string) // rule name -> pack file
	for _, name := range names {
		path := filepath.Join(dir, name)
		var pf packFile
		if _, err := toml.DecodeFile(path, &pf); err != nil {
			return nil, fmt.Errorf("plugin: %s: %w", name, err)
		}
		if pf.Name == "" {
			pf.Name = strings.TrimSuffix(name, ".toml")
		}
		set.packs = append(set.packs, pf.Name)

		for i, pr := range pf.Rules {
			rule, err := compileRule(pf.Name, pr)
			if err != nil {
				return nil, fmt.Errorf("plugin: %s: rule %d: %w", name, i, err)
			}
			if prev, dup := seen[rule.Name]; dup {
				return nil, fmt.Errorf("plugin: %s: rule %q already defined in %s", name, rule.Name, prev)
			}
			seen[rule.Name] = name
			set.add(rule)
		}
	}
	return set, nil
}

func compileRule(pack string, pr packRule) (*Rule, error) {
	if pr.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if pr.Pattern == "" {
		return nil, fmt.Errorf("%s: missing pattern", pr.Name)
	}
	sev := diag.SevWarning
	if pr.Severity != "" {
		parsed, ok := diag.ParseSeverity(pr.Severity)
		if !ok {
			return nil, fmt.Errorf("%s: unknown severity %q", pr.Name, pr.Severity)
		}
		sev = parsed
	}
	re, err := compilePattern(pr.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pr.Name, err)
	}
	msg := pr.Message
	if msg == "" {
		msg = fmt.Sprintf("pattern %q matched", pr.Pattern)
	}
	return &Rule{
		Name:     pr.Name,
		Pack:     pack,
		Severity: sev,
		Node:     pr.Node,
		Message:  msg,
		Help:     pr.Help,
		re:       re,
	}, nil
}

func (s *Set) add(rule *Rule) {
	s.rules = append(s.rules, rule)
	if rule.Node == "" {
		s.whole = append(s.whole, rule)
		return
	}
	s.byNode[rule.Node] = append(s.byNode[rule.Node], rule)
}
