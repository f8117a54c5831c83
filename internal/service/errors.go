// Package service provides application-level services for managing tasks,
// schedule recommendations, and reminders.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrTaskNotFound indicates the requested task does not exist for the user.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNoExtractor indicates task extraction from text is not configured
	// and no fallback is available either.
	ErrNoExtractor = errors.New("no task extractor configured")

	// ErrSlotConflict indicates a confirmed time slot overlaps an existing
	// task. API layer should map this to HTTP 409 Conflict.
	ErrSlotConflict = errors.New("time slot conflicts with an existing task")
)

// Invalidator is the slice of the cache API the services need for write
// invalidation.
type Invalidator interface {
	InvalidateAll()
}
