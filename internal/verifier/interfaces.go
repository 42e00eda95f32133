package verifier

import (
	"context"
	"time"
)

// BlobStore persists reports and serialized timestamp dumps.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
	GetObject(ctx context.Context, path string) ([]byte, error)
}

// Publisher fans run summaries out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// IDGenerator issues run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Clock supplies the run's start and finish times and the frozen instant
// scenarios see as "now".
type Clock interface {
	Now() time.Time
}
