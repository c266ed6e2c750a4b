package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"virtual-wallet/internal/core/ports"
)

var errStorageDown = errors.New("storage unavailable")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// recordingReporter captures reported operations for assertions.
type recordingReporter struct {
	mu   sync.Mutex
	ops  []string
	errs []error
}

func (r *recordingReporter) Report(_ context.Context, op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

func (r *recordingReporter) lastOp() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ops) == 0 {
		return ""
	}
	return r.ops[len(r.ops)-1]
}

// plainPINHasher verifies PINs by plain comparison, so PIN policy tests
// skip the argon2 cost.
type plainPINHasher struct{}

func (plainPINHasher) Hash(pin string) (string, error) { return "plain:" + pin, nil }

func (plainPINHasher) Verify(pin, hash string) (bool, error) {
	return hash == "plain:"+pin, nil
}

// flakyStore fails Set for selected keys.
type flakyStore struct {
	ports.SnapshotStore
	failKey func(string) bool
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failKey(key) {
		return errStorageDown
	}
	return f.SnapshotStore.Set(ctx, key, value)
}

// countingStore counts writes going through to the wrapped store.
type countingStore struct {
	ports.SnapshotStore
	sets int
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.SnapshotStore.Set(ctx, key, value)
}
