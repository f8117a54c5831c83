package gemini

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/parsing"
)

func matchCandidates(t *testing.T) []*domain.Task {
	t.Helper()
	userID := uuid.New()
	meeting, err := domain.NewTask(userID, "Team meeting", time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	dinner, err := domain.NewTask(userID, "Dinner with Sam", time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	return []*domain.Task{meeting, dinner}
}

func TestBuildMatchPrompt(t *testing.T) {
	t.Parallel()

	e := testExtractor(t)
	tasks := matchCandidates(t)
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	prompt, err := e.buildMatchPrompt("cancel the meeting", tasks, now)
	require.NoError(t, err)
	assert.Contains(t, prompt, "cancel the meeting")
	assert.Contains(t, prompt, tasks[0].ID.String())
	assert.Contains(t, prompt, "Team meeting")
	assert.Contains(t, prompt, "2025-03-10T08:00:00Z")

	_, err = e.buildMatchPrompt("", tasks, now)
	assert.ErrorIs(t, err, parsing.ErrEmptyInput)
}

func TestParseMatchResponse(t *testing.T) {
	t.Parallel()

	tasks := matchCandidates(t)

	ids, err := parseMatchResponse(fmt.Sprintf(`["%s"]`, tasks[0].ID), tasks)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tasks[0].ID}, ids)

	ids, err = parseMatchResponse(`[]`, tasks)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseMatchResponse_DropsUnknownAndDuplicateIDs(t *testing.T) {
	t.Parallel()

	tasks := matchCandidates(t)
	raw := fmt.Sprintf(`["%s", "%s", "%s"]`, tasks[1].ID, uuid.New(), tasks[1].ID)

	ids, err := parseMatchResponse(raw, tasks)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tasks[1].ID}, ids)
}

func TestParseMatchResponse_Invalid(t *testing.T) {
	t.Parallel()

	tasks := matchCandidates(t)

	_, err := parseMatchResponse(`the model rambled instead`, tasks)
	assert.ErrorIs(t, err, parsing.ErrInvalidResponse)

	_, err = parseMatchResponse(`["not-a-uuid"]`, tasks)
	assert.ErrorIs(t, err, parsing.ErrInvalidResponse)
}
