package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/parsing"
)

// matchPromptTemplate instructs the model to pick which of the listed tasks
// a deletion description refers to and answer with a JSON array of task IDs.
const matchPromptTemplate = `You are a scheduling assistant. The user wants to delete tasks matching a
description. The current time is {{.Now}}. Resolve relative dates against it.

Existing tasks:
{{.Tasks}}

Description:
{{.Description}}

Respond with a JSON array of the "id" values of every task the description
refers to, and nothing else. Understand fuzzy phrasing: "clear my afternoon"
means every task between 12:00 and 18:00 today, "cancel the meeting" matches
tasks whose title is about a meeting, "I don't want to run anymore" matches
running or workout tasks. Return [] when nothing matches.`

// matchPromptData is the data passed to the match prompt template.
type matchPromptData struct {
	Now         string
	Tasks       string
	Description string
}

// matchTaskInfo is how an existing task is presented to the model.
type matchTaskInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
	Priority string `json:"priority"`
}

// MatchTasks asks the model which of the given tasks the description refers
// to. It implements parsing.Matcher. IDs the model invents are dropped.
func (e *Extractor) MatchTasks(ctx context.Context, description string, tasks []*domain.Task, now time.Time) ([]uuid.UUID, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	prompt, err := e.buildMatchPrompt(description, tasks, now)
	if err != nil {
		return nil, err
	}

	raw, err := e.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseMatchResponse(raw, tasks)
}

func (e *Extractor) buildMatchPrompt(description string, tasks []*domain.Task, now time.Time) (string, error) {
	if description == "" {
		return "", parsing.ErrEmptyInput
	}

	infos := make([]matchTaskInfo, 0, len(tasks))
	for _, task := range tasks {
		info := matchTaskInfo{
			ID:       task.ID.String(),
			Title:    task.Title,
			Start:    task.Start.Format(time.RFC3339),
			Priority: string(task.Priority),
		}
		if task.End != nil {
			info.End = task.End.Format(time.RFC3339)
		}
		infos = append(infos, info)
	}

	encoded, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode task list: %w", err)
	}

	var buf bytes.Buffer
	err = e.matchTmpl.Execute(&buf, matchPromptData{
		Now:         now.Format(time.RFC3339),
		Tasks:       string(encoded),
		Description: description,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute match prompt template: %w", err)
	}
	return buf.String(), nil
}

// parseMatchResponse reads the model's ID array, keeping only IDs that name
// one of the candidate tasks.
func parseMatchResponse(raw string, tasks []*domain.Task) ([]uuid.UUID, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", parsing.ErrInvalidResponse, err)
	}

	known := make(map[uuid.UUID]struct{}, len(tasks))
	for _, task := range tasks {
		known[task.ID] = struct{}{}
	}

	var matched []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bad task ID %q", parsing.ErrInvalidResponse, raw)
		}
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		matched = append(matched, id)
	}
	return matched, nil
}
