// Package blob abstracts the object store that holds claim evidence. The
// claims core only needs two operations; provisioning details stay behind
// this interface.
package blob

import "context"

// Store writes immutable objects into named containers.
type Store interface {
	// EnsureContainer provisions the container if it does not exist yet.
	// Called lazily on first use; idempotent.
	EnsureContainer(ctx context.Context, container string) error
	// PutObject writes data and returns the stable URL of the object.
	PutObject(ctx context.Context, container, key, contentType string, data []byte) (string, error)
}
