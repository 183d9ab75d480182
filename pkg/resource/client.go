package resource

import "context"

// Client performs the backend calls a Model needs. Implementations map onto a
// REST-ish resource API: {root} for create, {root}/{id} for read, update and
// delete. The pkg/rest package provides the HTTP implementation; tests use
// in-memory stubs.
type Client interface {
	// Create persists a new record and returns the backend representation,
	// which carries the assigned identifier.
	Create(ctx context.Context, root string, attrs map[string]any) (map[string]any, error)
	// Update persists changes to an existing record and returns the backend
	// representation, when the backend provides one (nil is acceptable).
	Update(ctx context.Context, root, id string, attrs map[string]any) (map[string]any, error)
	// Fetch reads one record.
	Fetch(ctx context.Context, root, id string) (map[string]any, error)
	// Delete removes one record. Backends may soft-delete; the model only
	// cares that the record is gone from its collection.
	Delete(ctx context.Context, root, id string) error
}
