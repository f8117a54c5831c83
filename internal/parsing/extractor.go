// Package parsing turns free-form text into task drafts. A language-model
// backed Extractor does the heavy lifting; when it is unavailable or fails,
// a deterministic keyword parser produces degraded drafts so task creation
// from text never hard-fails on model trouble alone.
package parsing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/domain"
)

// Extractor defines the interface for extracting task drafts from text.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Extractor interface {
	// ExtractTasks interprets the text relative to the reference time and
	// returns one structured draft per task it describes, or an error if
	// extraction fails (see the package errors for specific conditions).
	// Text naming several tasks ("meeting at 3pm and dinner at 8pm") yields
	// several drafts.
	ExtractTasks(ctx context.Context, text string, now time.Time) ([]*domain.TaskDraft, error)
}

// Matcher selects which of the given tasks a free-form deletion description
// refers to. It returns the IDs of the matched tasks; an empty slice means
// nothing matched.
type Matcher interface {
	MatchTasks(ctx context.Context, description string, tasks []*domain.Task, now time.Time) ([]uuid.UUID, error)
}

// Common errors returned by the parsing package
var (
	// ErrEmptyInput is returned when there is no text to extract from
	ErrEmptyInput = errors.New("no text to extract tasks from")

	// ErrExtractionFailed is returned when extraction fails for any general reason
	ErrExtractionFailed = errors.New("failed to extract tasks from text")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during task extraction")
)

// Source identifies which path produced a result.
type Source string

const (
	// SourceModel marks results produced by the language model.
	SourceModel Source = "model"

	// SourceFallback marks degraded results produced by the keyword parser.
	SourceFallback Source = "fallback"
)

// Result pairs extracted drafts with the path that produced them so callers
// can tell full extractions from degraded ones.
type Result struct {
	Drafts []*domain.TaskDraft
	Source Source
}
