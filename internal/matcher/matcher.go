// Package matcher matches package names against exact names, shell-style
// glob patterns and Go-style "..." wildcards. Matching ignores case.
//
//	golang.org/x/sys        exact
//	golang.org/x/*          glob, * stays within one path element
//	golang.org/x/...        wildcard, also matches golang.org/x itself
package matcher

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// PatternType is the kind of a pattern.
type PatternType int

const (
	// Exact matches the name only.
	Exact PatternType = iota
	// Glob uses path.Match syntax (*, ?, []).
	Glob
	// Wildcard uses the go command's "..." syntax.
	Wildcard
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Exact:
		return "exact"
	case Glob:
		return "glob"
	case Wildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Matcher matches names against one pattern.
type Matcher interface {
	// Match reports whether name matches the pattern.
	Match(name string) bool
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the detected pattern type.
	Type() PatternType
}

type matcher struct {
	pattern     string
	folded      string
	patternType PatternType
	compiled    *regexp.Regexp
}

// New compiles pattern, detecting its type.
func New(pattern string) (Matcher, error) {
	m := &matcher{
		pattern:     pattern,
		folded:      strings.ToLower(pattern),
		patternType: detectPatternType(pattern),
	}
	switch m.patternType {
	case Glob:
		if _, err := path.Match(m.folded, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	case Wildcard:
		m.compiled = wildcardToRegex(m.folded)
	}
	return m, nil
}

// MustNew is like New but panics on error.
func MustNew(pattern string) Matcher {
	m, err := New(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// ExactName returns a matcher that treats pattern literally.
func ExactName(name string) Matcher {
	return &matcher{pattern: name, folded: strings.ToLower(name), patternType: Exact}
}

func (m *matcher) Match(name string) bool {
	name = strings.ToLower(name)
	switch m.patternType {
	case Glob:
		ok, _ := path.Match(m.folded, name)
		return ok
	case Wildcard:
		return m.compiled.MatchString(name)
	default:
		return m.folded == name
	}
}

func (m *matcher) Pattern() string { return m.pattern }

func (m *matcher) Type() PatternType { return m.patternType }

func detectPatternType(pattern string) PatternType {
	switch {
	case strings.Contains(pattern, "..."):
		return Wildcard
	case strings.ContainsAny(pattern, "*?["):
		return Glob
	default:
		return Exact
	}
}

// wildcardToRegex follows the go command: "..." matches any string, and a
// trailing "/..." also matches the empty suffix.
func wildcardToRegex(pattern string) *regexp.Regexp {
	re := regexp.QuoteMeta(pattern)
	re = strings.ReplaceAll(re, `\.\.\.`, `.*`)
	if strings.HasSuffix(re, `/.*`) {
		re = strings.TrimSuffix(re, `/.*`) + `(/.*)?`
	}
	return regexp.MustCompile(`^` + re + `$`)
}

// MultiMatcher matches a name against many patterns. Exact names are kept
// in a map; the zero value and nil match nothing.
type MultiMatcher struct {
	exact    map[string]struct{}
	patterns []Matcher
}

// NewMultiMatcher compiles every non-empty pattern.
func NewMultiMatcher(patterns []string) (*MultiMatcher, error) {
	mm := &MultiMatcher{exact: make(map[string]struct{})}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		m, err := New(p)
		if err != nil {
			return nil, err
		}
		mm.Add(m)
	}
	return mm, nil
}

// Lenient is like NewMultiMatcher but treats invalid patterns as exact names.
func Lenient(patterns []string) *MultiMatcher {
	mm := &MultiMatcher{exact: make(map[string]struct{})}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		m, err := New(p)
		if err != nil {
			m = ExactName(p)
		}
		mm.Add(m)
	}
	return mm
}

// Add adds m.
func (mm *MultiMatcher) Add(m Matcher) {
	if m.Type() == Exact {
		if mm.exact == nil {
			mm.exact = make(map[string]struct{})
		}
		mm.exact[strings.ToLower(m.Pattern())] = struct{}{}
		return
	}
	mm.patterns = append(mm.patterns, m)
}

// Match reports whether any pattern matches name.
func (mm *MultiMatcher) Match(name string) bool {
	if mm == nil {
		return false
	}
	if _, ok := mm.exact[strings.ToLower(name)]; ok {
		return true
	}
	for _, m := range mm.patterns {
		if m.Match(name) {
			return true
		}
	}
	return false
}

// MatchAll returns the names that match, in order.
func (mm *MultiMatcher) MatchAll(names ...string) []string {
	var out []string
	for _, n := range names {
		if mm.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of patterns.
func (mm *MultiMatcher) Len() int {
	if mm == nil {
		return 0
	}
	return len(mm.exact) + len(mm.patterns)
}
