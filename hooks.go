package vercheck

import (
	"sync"

	"github.com/agentstation/vercheck/pkg/reconcile"
)

// Hook function types for snapshot events
type (
	// SnapshotHook is called once the snapshot has been built
	SnapshotHook func(s *Snapshot)

	// WarningHook is called for every reconciliation warning, in order
	WarningHook func(w reconcile.Warning)
)

// hooks manages callbacks fired when the snapshot is built
type hooks struct {
	mu         sync.RWMutex
	onSnapshot []SnapshotHook
	onWarning  []WarningHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnSnapshot registers a callback for when the snapshot is built
func (h *hooks) OnSnapshot(fn SnapshotHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSnapshot = append(h.onSnapshot, fn)
}

// OnWarning registers a callback for each warning of the snapshot
func (h *hooks) OnWarning(fn WarningHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onWarning = append(h.onWarning, fn)
}

// trigger fires the hooks for a freshly built snapshot. The hook lists are
// copied first so hooks may register more hooks.
func (h *hooks) trigger(s *Snapshot) {
	h.mu.RLock()
	onWarning := append([]WarningHook(nil), h.onWarning...)
	onSnapshot := append([]SnapshotHook(nil), h.onSnapshot...)
	h.mu.RUnlock()

	for _, w := range s.Result.Warnings {
		for _, hook := range onWarning {
			hook(w)
		}
	}
	for _, hook := range onSnapshot {
		hook(s)
	}
}
