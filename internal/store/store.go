// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/dmoralestech/todo-service/internal/model"
)

// Store errors.
var (
	ErrNotFound    = errors.New("todo not found")
	ErrInvalidID   = errors.New("invalid todo ID")
	ErrEmptyText   = errors.New("todo text cannot be empty")
	ErrEmptyUpdate = errors.New("update must supply at least one field")
)

// Store defines the interface for TODO storage operations.
//
// Implementations guarantee that ID uniqueness and insertion order are
// preserved across all operations, and that a failed write never partially
// applies.
type Store interface {
	// List returns a snapshot of all items in insertion order.
	List(ctx context.Context) ([]model.Todo, error)

	// ListFiltered returns a snapshot of the items matching the filter,
	// preserving their relative order from the full collection.
	ListFiltered(ctx context.Context, filter model.Filter) ([]model.Todo, error)

	// Stats returns aggregate counts derived from the current collection.
	Stats(ctx context.Context) (model.Stats, error)

	// Get retrieves an item by its ID.
	Get(ctx context.Context, id string) (*model.Todo, error)

	// Create adds a new item with the given text and returns it.
	// The store assigns the ID and CreatedAt and trims the text.
	Create(ctx context.Context, text string) (*model.Todo, error)

	// Update merges the supplied fields into an existing item and stamps
	// UpdatedAt. ID and CreatedAt are never altered.
	Update(ctx context.Context, id string, req model.UpdateRequest) (*model.Todo, error)

	// Toggle flips the completion state of an item and stamps UpdatedAt.
	Toggle(ctx context.Context, id string) (*model.Todo, error)

	// Delete removes an item by its ID and returns the removed ID.
	Delete(ctx context.Context, id string) (string, error)
}

// Closer is implemented by stores holding external resources.
type Closer interface {
	Close() error
}
