package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bescout/fantasy-events/internal/domain/wallet"
)

// Rail is an in-memory payment rail that honors idempotency keys, for dev
// mode and tests.
type Rail struct {
	mu      sync.Mutex
	applied map[string]wallet.CreditRequest
	seq     int
}

func NewRail() *Rail {
	return &Rail{applied: make(map[string]wallet.CreditRequest)}
}

func (r *Rail) Credit(_ context.Context, req wallet.CreditRequest) (wallet.CreditOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.IdempotencyKey == "" {
		return wallet.CreditOutcome{}, fmt.Errorf("idempotency key is required")
	}

	if _, seen := r.applied[req.IdempotencyKey]; seen {
		return wallet.CreditOutcome{Applied: false, RailRef: "mem-" + req.IdempotencyKey}, nil
	}

	r.seq++
	r.applied[req.IdempotencyKey] = req

	return wallet.CreditOutcome{Applied: true, RailRef: fmt.Sprintf("mem-%d", r.seq)}, nil
}

// CreditedTotal sums all applied credits for a user.
func (r *Rail) CreditedTotal(userID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, req := range r.applied {
		if req.UserID == userID {
			total += req.Amount
		}
	}

	return total
}

// CreditCount returns how many distinct credits were applied.
func (r *Rail) CreditCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.applied)
}
