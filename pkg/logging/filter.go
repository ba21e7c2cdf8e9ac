package logging

import (
	"regexp"
	"sync"

	"github.com/rs/zerolog"
)

// NoiseFilter is a zerolog hook that discards events whose level and message
// match a registered rule. Persistent rules stay active for the lifetime of
// the process; scoped rules are pushed around a noisy operation and popped
// afterward.
type NoiseFilter struct {
	mu         sync.RWMutex
	persistent []noiseRule
	scoped     []noiseRule
}

type noiseRule struct {
	level   zerolog.Level
	pattern *regexp.Regexp
}

var defaultNoise = &NoiseFilter{}

// Noise returns the process-wide noise filter attached to every logger
// created by this package.
func Noise() *NoiseFilter {
	return defaultNoise
}

// NewNoiseFilter returns an empty filter.
func NewNoiseFilter() *NoiseFilter {
	return &NoiseFilter{}
}

// Ignore registers persistent rules: events at exactly level whose message
// matches any pattern are dropped from now on. A rule already registered at
// the same level is not added twice.
func (f *NoiseFilter) Ignore(level zerolog.Level, patterns ...string) error {
	rules, err := compileRules(level, patterns)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rules {
		if !hasRule(f.persistent, r) {
			f.persistent = append(f.persistent, r)
		}
	}
	return nil
}

// Push registers scoped rules and returns the function that removes them.
// Pops must happen in reverse order of pushes.
func (f *NoiseFilter) Push(level zerolog.Level, patterns ...string) (pop func(), err error) {
	rules, err := compileRules(level, patterns)
	if err != nil {
		return func() {}, err
	}

	f.mu.Lock()
	mark := len(f.scoped)
	f.scoped = append(f.scoped, rules...)
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if mark <= len(f.scoped) {
				f.scoped = f.scoped[:mark]
			}
			f.mu.Unlock()
		})
	}, nil
}

// Len reports the number of persistent and scoped rules.
func (f *NoiseFilter) Len() (persistent, scoped int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.persistent), len(f.scoped)
}

// Reset removes every rule.
func (f *NoiseFilter) Reset() {
	f.mu.Lock()
	f.persistent = nil
	f.scoped = nil
	f.mu.Unlock()
}

// Suppressed reports whether an event would be discarded.
func (f *NoiseFilter) Suppressed(level zerolog.Level, msg string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return matchAny(f.scoped, level, msg) || matchAny(f.persistent, level, msg)
}

// Run implements zerolog.Hook.
func (f *NoiseFilter) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if f.Suppressed(level, msg) {
		e.Discard()
	}
}

func matchAny(rules []noiseRule, level zerolog.Level, msg string) bool {
	for _, r := range rules {
		if r.level == level && r.pattern.MatchString(msg) {
			return true
		}
	}
	return false
}

func hasRule(rules []noiseRule, r noiseRule) bool {
	for _, have := range rules {
		if have.level == r.level && have.pattern.String() == r.pattern.String() {
			return true
		}
	}
	return false
}

func compileRules(level zerolog.Level, patterns []string) ([]noiseRule, error) {
	rules := make([]noiseRule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		rules = append(rules, noiseRule{level: level, pattern: re})
	}
	return rules, nil
}
