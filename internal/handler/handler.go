// Package handler provides HTTP request handlers for the TODO service API.
package handler

import "github.com/dmoralestech/todo-service/internal/model"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Publisher receives change events after successful write operations.
// A nil Publisher disables the event feed.
type Publisher interface {
	Publish(event model.Event)
}
