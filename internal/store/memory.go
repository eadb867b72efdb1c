package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmoralestech/todo-service/internal/model"
)

// MemoryStore implements Store with in-memory storage.
//
// Items are kept in a map keyed by ID, with a separate slice tracking
// insertion order so that List returns items in the order they were created.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]model.Todo
	order []string
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]model.Todo),
	}
}

// List returns a snapshot of all items in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Todo, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list todos: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(model.FilterAll), nil
}

// ListFiltered returns a snapshot of the items matching the filter.
func (s *MemoryStore) ListFiltered(ctx context.Context, filter model.Filter) ([]model.Todo, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list filtered todos: %w", ctx.Err())
	default:
	}

	if _, err := model.ParseFilter(string(filter)); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(filter), nil
}

// Stats returns aggregate counts derived from the current collection.
func (s *MemoryStore) Stats(ctx context.Context) (model.Stats, error) {
	select {
	case <-ctx.Done():
		return model.Stats{}, fmt.Errorf("todo stats: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.Stats{Total: len(s.items)}
	for _, item := range s.items {
		if item.Completed {
			stats.Completed++
		} else {
			stats.Active++
		}
	}

	return stats, nil
}

// Get retrieves an item by its ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Todo, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get todo: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}

	return &item, nil
}

// Create adds a new item with the given text and returns it.
func (s *MemoryStore) Create(ctx context.Context, text string) (*model.Todo, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create todo: %w", ctx.Err())
	default:
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := model.Todo{
		ID:        uuid.New().String(),
		Text:      text,
		Completed: false,
		CreatedAt: time.Now().UTC(),
	}

	s.items[item.ID] = item
	s.order = append(s.order, item.ID)

	return &item, nil
}

// Update merges the supplied fields into an existing item.
func (s *MemoryStore) Update(ctx context.Context, id string, req model.UpdateRequest) (*model.Todo, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update todo: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	if req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		return nil, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}

	if req.Text != nil {
		item.Text = strings.TrimSpace(*req.Text)
	}
	if req.Completed != nil {
		item.Completed = *req.Completed
	}

	now := time.Now().UTC()
	item.UpdatedAt = &now

	// Position in the order slice is unchanged.
	s.items[id] = item

	return &item, nil
}

// Toggle flips the completion state of an item.
func (s *MemoryStore) Toggle(ctx context.Context, id string) (*model.Todo, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("toggle todo: %w", ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}

	item.Completed = !item.Completed
	now := time.Now().UTC()
	item.UpdatedAt = &now

	s.items[id] = item

	return &item, nil
}

// Delete removes an item by its ID and returns the removed ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("delete todo: %w", ctx.Err())
	default:
	}

	if id == "" {
		return "", ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return "", ErrNotFound
	}

	delete(s.items, id)

	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return id, nil
}

// snapshotLocked copies the items matching the filter in insertion order.
// Callers must hold at least the read lock.
func (s *MemoryStore) snapshotLocked(filter model.Filter) []model.Todo {
	items := make([]model.Todo, 0, len(s.order))
	for _, id := range s.order {
		item := s.items[id]
		if filter.Matches(item) {
			items = append(items, item)
		}
	}

	return items
}
