package loader

import (
	"context"
	"sync"
)

// StaticLoader is a Loader backed by registered metadata. Embedders use it to
// describe modules the build information cannot see; tests use it as a fake.
type StaticLoader struct {
	mu      sync.RWMutex
	modules map[string]Module
	errs    map[string]error
}

// NewStaticLoader returns a loader that knows the given modules, keyed by path.
func NewStaticLoader(modules ...Module) *StaticLoader {
	l := &StaticLoader{
		modules: make(map[string]Module),
		errs:    make(map[string]error),
	}
	for _, m := range modules {
		l.Register(m)
	}
	return l
}

// Register adds or replaces m.
func (l *StaticLoader) Register(m Module) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modules[m.Path] = m
	delete(l.errs, m.Path)
}

// Fail makes loading key fail with err.
func (l *StaticLoader) Fail(key string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs[key] = err
	delete(l.modules, key)
}

// Load implements Loader.
func (l *StaticLoader) Load(ctx context.Context, key string) (Module, error) {
	if err := ctx.Err(); err != nil {
		return Module{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err, ok := l.errs[key]; ok {
		return Module{}, err
	}
	m, ok := l.modules[key]
	if !ok {
		return Module{}, NewLoadError(key, "no such module")
	}
	return m, nil
}
