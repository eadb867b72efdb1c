// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"strings"
	"time"
)

// Validation errors for TODO items.
var (
	ErrEmptyText     = errors.New("text cannot be empty")
	ErrTextTooLong   = errors.New("text cannot exceed 500 characters")
	ErrInvalidFilter = errors.New("filter must be one of: all, active, completed")
)

// MaxTextLength is the maximum accepted length of a TODO's display text.
const MaxTextLength = 500

// Todo represents a single TODO list item.
//
// UpdatedAt is nil until the item is mutated for the first time.
type Todo struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Filter selects a derived view of the TODO collection.
type Filter string

// Supported filter values.
const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter converts a raw string into a Filter.
// An empty string means "all". Unknown values yield ErrInvalidFilter.
func ParseFilter(raw string) (Filter, error) {
	switch Filter(raw) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", ErrInvalidFilter
	}
}

// Matches reports whether the item belongs to the filtered view.
func (f Filter) Matches(item Todo) bool {
	switch f {
	case FilterActive:
		return !item.Completed
	case FilterCompleted:
		return item.Completed
	default:
		return true
	}
}

// Stats holds aggregate counts over the TODO collection.
// Active + Completed always equals Total.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// CreateRequest is the payload for creating a TODO item.
type CreateRequest struct {
	Text string `json:"text"`
}

// Validate checks the create payload. The text is trimmed before checking,
// matching the trimming the store applies on write.
func (r *CreateRequest) Validate() error {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return ErrEmptyText
	}

	if len(text) > MaxTextLength {
		return ErrTextTooLong
	}

	return nil
}

// UpdateRequest is the payload for partially updating a TODO item.
// Nil fields are left untouched; the item's ID and CreatedAt are never
// modified regardless of the payload.
type UpdateRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Validate checks the supplied fields of the update payload.
func (r *UpdateRequest) Validate() error {
	if r.Text != nil {
		text := strings.TrimSpace(*r.Text)
		if text == "" {
			return ErrEmptyText
		}
		if len(text) > MaxTextLength {
			return ErrTextTooLong
		}
	}

	return nil
}

// IsEmpty reports whether the update supplies no fields at all.
func (r *UpdateRequest) IsEmpty() bool {
	return r.Text == nil && r.Completed == nil
}

// APIResponse is a generic wrapper for API responses.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error API response.
func NewErrorResponse[T any](errMsg string) APIResponse[T] {
	return APIResponse[T]{
		Success: false,
		Error:   errMsg,
	}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// DeleteResponse confirms a deletion by echoing the removed ID.
type DeleteResponse struct {
	ID string `json:"id"`
}

// Event types published on the live event feed.
const (
	EventTodoCreated = "todo_created"
	EventTodoUpdated = "todo_updated"
	EventTodoDeleted = "todo_deleted"
)

// Event describes a change to the TODO collection, sent over WebSocket.
type Event struct {
	Type      string    `json:"type"`
	Todo      *Todo     `json:"todo,omitempty"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTodoEvent creates an event carrying the affected item.
func NewTodoEvent(eventType string, todo Todo) Event {
	return Event{
		Type:      eventType,
		Todo:      &todo,
		ID:        todo.ID,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeleteEvent creates an event for a removed item.
func NewDeleteEvent(id string) Event {
	return Event{
		Type:      EventTodoDeleted,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}
