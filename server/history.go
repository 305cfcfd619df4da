package server

import (
	"context"
	"sync"

	"github.com/petal-labs/anther/tool"
)

// History stores recent invocation records for the read-only listing
// endpoint. Records are telemetry, not application state.
type History interface {
	tool.Recorder
	List(ctx context.Context, limit int) ([]tool.InvocationRecord, error)
}

const defaultHistoryLimit = 50

// MemoryHistory is the in-memory history used by tests and no-history
// runs. It keeps at most cap records, newest first.
type MemoryHistory struct {
	mu      sync.Mutex
	records []tool.InvocationRecord
	cap     int
}

// NewMemoryHistory creates an in-memory history keeping up to capacity
// records (0 means 1000).
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryHistory{cap: capacity}
}

// Record stores one invocation, evicting the oldest beyond capacity.
func (h *MemoryHistory) Record(_ context.Context, rec tool.InvocationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, rec)
	if len(h.records) > h.cap {
		h.records = h.records[len(h.records)-h.cap:]
	}
}

// List returns up to limit records, newest first.
func (h *MemoryHistory) List(_ context.Context, limit int) ([]tool.InvocationRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]tool.InvocationRecord, 0, limit)
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}
