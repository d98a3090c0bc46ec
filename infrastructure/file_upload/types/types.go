package types

import "context"

// SnapshotStore keeps violation evidence images. Names may contain "/" to group files per candidate.
type SnapshotStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}
