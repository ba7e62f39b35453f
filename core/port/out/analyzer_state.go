package out

import "context"

// StateStore is a namespaced key-value store with JSON values.
//
// The history append built on top of it is a plain read-modify-write:
// concurrent appenders race and the last writer wins. That limitation is
// deliberate and documented where the append happens; callers must not
// rely on completeness of the sequence under concurrency.
type StateStore interface {
	// Get unmarshals the value at (namespace, key) into dest.
	// Returns false when the key is absent.
	Get(ctx context.Context, namespace, key string, dest any) (bool, error)

	// Set stores value at (namespace, key), replacing any previous value.
	Set(ctx context.Context, namespace, key string, value any) error

	// Delete removes the key. Absent keys are not an error.
	Delete(ctx context.Context, namespace, key string) error
}
