package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable request ids.
//
// The n-th call returns prefix-000n, so log lines and recorded requests can
// be compared byte for byte across runs.
//
// Thread-safety: SequentialIDs is safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs returns a generator. An empty prefix becomes "req".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "req"
	}
	return &SequentialIDs{prefix: prefix}
}

// Next returns the next id.
func (g *SequentialIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
