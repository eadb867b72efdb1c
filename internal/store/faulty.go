package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dmoralestech/todo-service/internal/faults"
	"github.com/dmoralestech/todo-service/internal/model"
)

// FaultInjectingStore decorates a Store with simulated network latency and
// randomized transient failures, governed by a faults.Policy.
//
// The fault gate runs before delegating, so a rejected write never touches
// the inner store and can never partially apply.
type FaultInjectingStore struct {
	inner  Store
	policy faults.Policy
}

// NewFaultInjecting wraps inner with the given fault policy.
func NewFaultInjecting(inner Store, policy faults.Policy) *FaultInjectingStore {
	return &FaultInjectingStore{
		inner:  inner,
		policy: policy,
	}
}

// simulate stalls for the policy's delay, honoring ctx cancellation, then
// asks the policy whether the operation should fail.
func (s *FaultInjectingStore) simulate(ctx context.Context, operation string) error {
	if delay := s.policy.Delay(); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		}
	}

	return s.policy.Fail(operation)
}

// List returns a snapshot of all items in insertion order.
func (s *FaultInjectingStore) List(ctx context.Context) ([]model.Todo, error) {
	if err := s.simulate(ctx, "fetch todos"); err != nil {
		return nil, err
	}

	return s.inner.List(ctx)
}

// ListFiltered returns a snapshot of the items matching the filter.
func (s *FaultInjectingStore) ListFiltered(ctx context.Context, filter model.Filter) ([]model.Todo, error) {
	if err := s.simulate(ctx, "fetch todos"); err != nil {
		return nil, err
	}

	return s.inner.ListFiltered(ctx, filter)
}

// Stats returns aggregate counts derived from the current collection.
func (s *FaultInjectingStore) Stats(ctx context.Context) (model.Stats, error) {
	if err := s.simulate(ctx, "fetch stats"); err != nil {
		return model.Stats{}, err
	}

	return s.inner.Stats(ctx)
}

// Get retrieves an item by its ID.
func (s *FaultInjectingStore) Get(ctx context.Context, id string) (*model.Todo, error) {
	if err := s.simulate(ctx, "fetch todo"); err != nil {
		return nil, err
	}

	return s.inner.Get(ctx, id)
}

// Create adds a new item with the given text and returns it.
func (s *FaultInjectingStore) Create(ctx context.Context, text string) (*model.Todo, error) {
	if err := s.simulate(ctx, "add todo"); err != nil {
		return nil, err
	}

	return s.inner.Create(ctx, text)
}

// Update merges the supplied fields into an existing item.
func (s *FaultInjectingStore) Update(ctx context.Context, id string, req model.UpdateRequest) (*model.Todo, error) {
	if err := s.simulate(ctx, "update todo"); err != nil {
		return nil, err
	}

	return s.inner.Update(ctx, id, req)
}

// Toggle flips the completion state of an item.
func (s *FaultInjectingStore) Toggle(ctx context.Context, id string) (*model.Todo, error) {
	if err := s.simulate(ctx, "toggle todo"); err != nil {
		return nil, err
	}

	return s.inner.Toggle(ctx, id)
}

// Delete removes an item by its ID and returns the removed ID.
func (s *FaultInjectingStore) Delete(ctx context.Context, id string) (string, error) {
	if err := s.simulate(ctx, "delete todo"); err != nil {
		return "", err
	}

	return s.inner.Delete(ctx, id)
}
