package cache

import (
	"context"
	"fmt"
	"sync"

	app "github.com/letterdesk/backend/internal/application/letters"
)

// MemorySequenceGuard implements the sequence guard in process memory.
// It serializes allocation within a single instance and serves tests;
// multi-replica deployments need the Redis guard.
type MemorySequenceGuard struct {
	mu       sync.Mutex
	reserved map[string]struct{}
}

// Ensure MemorySequenceGuard implements SequenceGuard
var _ app.SequenceGuard = (*MemorySequenceGuard)(nil)

// NewMemorySequenceGuard returns an empty guard.
func NewMemorySequenceGuard() *MemorySequenceGuard {
	return &MemorySequenceGuard{reserved: make(map[string]struct{})}
}

// Reserve claims a (company, year, sequence) triple.
func (g *MemorySequenceGuard) Reserve(ctx context.Context, companyID string, year, sequence int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := guardKey(companyID, year, sequence)
	if _, taken := g.reserved[key]; taken {
		return false, nil
	}
	g.reserved[key] = struct{}{}
	return true, nil
}

// Release frees a reservation.
func (g *MemorySequenceGuard) Release(ctx context.Context, companyID string, year, sequence int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.reserved, guardKey(companyID, year, sequence))
	return nil
}

func guardKey(companyID string, year, sequence int) string {
	return fmt.Sprintf("%s:%d:%d", companyID, year, sequence)
}
