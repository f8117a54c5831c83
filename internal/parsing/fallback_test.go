package parsing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttime/smarttime-api/internal/domain"
)

// Monday morning reference point for all relative-date assertions.
var parserNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func extract(t *testing.T, text string) *domain.TaskDraft {
	t.Helper()
	drafts, err := NewFallbackParser().ExtractTasks(context.Background(), text, parserNow)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	return drafts[0]
}

func TestFallbackParser_DefaultsToTomorrowMorning(t *testing.T) {
	t.Parallel()

	draft := extract(t, "Write the quarterly summary")

	assert.Equal(t, "Write the quarterly summary", draft.Title)
	assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), draft.Start)
	assert.Equal(t, domain.PriorityMedium, draft.Priority)
	assert.Nil(t, draft.End)
}

func TestFallbackParser_ExplicitClockTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "pm time with tomorrow",
			text: "dentist at 3pm tomorrow",
			want: time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC),
		},
		{
			name: "24h clock with minutes",
			text: "sprint planning tomorrow 13:30",
			want: time.Date(2025, 3, 11, 13, 30, 0, 0, time.UTC),
		},
		{
			name: "bare time still ahead today",
			text: "call the bank at 10am",
			want: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "bare time already past rolls to tomorrow",
			text: "stretch at 7am",
			want: time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			draft := extract(t, tc.text)
			assert.Equal(t, tc.want, draft.Start)
		})
	}
}

func TestFallbackParser_WeekdayResolvesForward(t *testing.T) {
	t.Parallel()

	// Reference day is a Monday, so friday is four days out.
	draft := extract(t, "submit expenses on friday")
	assert.Equal(t, time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC), draft.Start)

	// Naming the current weekday means next week, not today.
	draft = extract(t, "laundry on monday")
	assert.Equal(t, time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC), draft.Start)
}

func TestFallbackParser_DaypartWords(t *testing.T) {
	t.Parallel()

	draft := extract(t, "gym tomorrow evening")
	assert.Equal(t, 19, draft.Start.Hour())

	draft = extract(t, "errands tomorrow afternoon")
	assert.Equal(t, 15, draft.Start.Hour())

	draft = extract(t, "movie tonight")
	assert.Equal(t, time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC), draft.Start)
}

func TestFallbackParser_Duration(t *testing.T) {
	t.Parallel()

	draft := extract(t, "deep work tomorrow for 2 hours")
	require.NotNil(t, draft.End)
	assert.Equal(t, draft.Start.Add(2*time.Hour), *draft.End)

	draft = extract(t, "standup tomorrow for 30 minutes")
	require.NotNil(t, draft.End)
	assert.Equal(t, draft.Start.Add(30*time.Minute), *draft.End)
}

func TestFallbackParser_PriorityKeywords(t *testing.T) {
	t.Parallel()

	draft := extract(t, "urgent: renew the certificate tomorrow")
	assert.Equal(t, domain.PriorityHigh, draft.Priority)
	assert.True(t, draft.IsImportant)

	draft = extract(t, "clean the garage whenever")
	assert.Equal(t, domain.PriorityLow, draft.Priority)
	assert.False(t, draft.IsImportant)
}

func TestFallbackParser_MultipleTasks(t *testing.T) {
	t.Parallel()

	drafts, err := NewFallbackParser().ExtractTasks(context.Background(), "meeting at 3pm and dinner at 8pm", parserNow)
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, "meeting at 3pm", drafts[0].Title)
	assert.Equal(t, time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), drafts[0].Start)
	assert.Equal(t, "dinner at 8pm", drafts[1].Title)
	assert.Equal(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), drafts[1].Start)
}

func TestFallbackParser_MultipleTasksShareDate(t *testing.T) {
	t.Parallel()

	// The date appears only in the first segment but anchors both tasks.
	drafts, err := NewFallbackParser().ExtractTasks(context.Background(),
		"tomorrow standup at 10am, then lunch at 12pm", parserNow)
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC), drafts[0].Start)
	assert.Equal(t, time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC), drafts[1].Start)
}

func TestFallbackParser_SeparatorVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"semicolon", "pack bags tomorrow; book the taxi tomorrow", 2},
		{"comma and", "water plants tomorrow, and sweep the porch tomorrow", 2},
		{"and then", "warm up at 6pm and then run at 7pm", 2},
		{"three segments", "dishes at 5pm, vacuum at 6pm and laundry at 7pm", 3},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			drafts, err := NewFallbackParser().ExtractTasks(context.Background(), tc.text, parserNow)
			require.NoError(t, err)
			assert.Len(t, drafts, tc.want)
		})
	}
}

func TestFallbackParser_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := NewFallbackParser().ExtractTasks(context.Background(), "   ", parserNow)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestFallbackParser_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	draft := extract(t, "  water   the \n plants tomorrow ")
	assert.Equal(t, "water the plants tomorrow", draft.Title)
}