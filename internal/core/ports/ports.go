package ports

import "context"

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// SnapshotStore is the key/value persistence façade every component
// depends on. Records are JSON snapshots keyed by entity class plus
// business key. Get returns nil, nil when the key is absent.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Reporter is the fire-and-forget error sink. Report never returns an
// error and never affects the caller's control flow.
type Reporter interface {
	Report(ctx context.Context, op string, err error)
}

// PINHasher hashes and verifies wallet PINs.
type PINHasher interface {
	Hash(pin string) (string, error)
	Verify(pin string, hash string) (bool, error)
}
