// Package gemini implements the parsing.Extractor interface using Google's
// Gemini API to turn free text into structured task drafts.
package gemini

import "time"

// promptData represents the data passed to the prompt template
type promptData struct {
	Text string
	Now  string
}

// responseSchema represents the expected JSON structure returned by the model
type responseSchema struct {
	// Title is the short name of the task
	Title string `json:"title"`

	// Start is the task start in RFC 3339 format
	Start string `json:"start"`

	// End is the optional task end in RFC 3339 format
	End string `json:"end,omitempty"`

	// Priority is one of low, medium, high
	Priority string `json:"priority,omitempty"`

	// ReminderOffset names the reminder lead time, e.g. before_15min
	ReminderOffset string `json:"reminder_offset,omitempty"`

	// IsImportant flags tasks the user called out as important
	IsImportant bool `json:"is_important,omitempty"`

	// Recurrence is present only for repeating tasks
	Recurrence *recurrenceSchema `json:"recurrence,omitempty"`
}

// recurrenceSchema mirrors the domain recurrence rule in the model response
type recurrenceSchema struct {
	Frequency  string `json:"frequency"`
	Interval   int    `json:"interval"`
	DaysOfWeek []int  `json:"days_of_week,omitempty"`
	DayOfMonth *int   `json:"day_of_month,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	Count      *int   `json:"count,omitempty"`
}

// parseRFC3339 reads a model-supplied timestamp, tolerating a date-only form.
func parseRFC3339(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
