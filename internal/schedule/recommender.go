// Package schedule recommends conflict-free time slots for a piece of work
// given the user's existing commitments. The recommender is deterministic
// for a fixed clock and operates purely on in-memory structures.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/smarttime/smarttime-api/internal/domain"
)

const (
	// scanDays is how many calendar days ahead candidate slots are drawn from.
	scanDays = 7

	// todayCutoffHour is the local hour past which today is skipped entirely.
	todayCutoffHour = 18

	// maxRecommendations caps the returned slot list.
	maxRecommendations = 5

	baselineScore = 5

	// fallbackHour is used for the single fallback slot when every candidate
	// conflicts with the existing schedule.
	fallbackHour  = 9
	fallbackScore = 3
)

// hourProfile maps descriptive keywords in a work request to the candidate
// start hours that suit that kind of work.
type hourProfile struct {
	keywords []string
	hours    []int
}

var hourProfiles = []hourProfile{
	{
		// Creative work leans on fresh morning focus.
		keywords: []string{"creative", "design", "write", "writing", "draft", "brainstorm"},
		hours:    []int{9, 10},
	},
	{
		keywords: []string{"meeting", "discussion", "call", "sync", "interview", "presentation"},
		hours:    []int{10, 14, 15},
	},
	{
		keywords: []string{"study", "learn", "read", "reading", "research", "review"},
		hours:    []int{9, 19, 20},
	},
}

// defaultHours is the morning/afternoon mix used when no profile matches.
var defaultHours = []int{9, 14, 16}

// Recommender produces ranked candidate time slots for work requests.
type Recommender struct {
	timeFunc func() time.Time // Injectable for testing
}

// Option customizes a Recommender.
type Option func(*Recommender)

// WithTimeFunc overrides the clock used to anchor the scan window.
func WithTimeFunc(fn func() time.Time) Option {
	return func(r *Recommender) {
		r.timeFunc = fn
	}
}

// NewRecommender creates a Recommender using the real clock unless overridden.
func NewRecommender(opts ...Option) *Recommender {
	r := &Recommender{timeFunc: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend returns up to five candidate slots for the request, scored 1-10
// and sorted by descending score with earlier starts winning ties. Returned
// slots never overlap any task in existingTasks. When every candidate
// conflicts, a single low-scored fallback slot on the following morning is
// returned instead of failing.
func (r *Recommender) Recommend(req *domain.WorkRequest, existingTasks []*domain.Task) ([]domain.TimeSlot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeFunc()
	duration := req.Duration()
	hours := candidateHours(req)

	var slots []domain.TimeSlot
	for day := 0; day < scanDays; day++ {
		if day == 0 && now.Hour() >= todayCutoffHour {
			continue
		}
		date := now.AddDate(0, 0, day)

		for _, hour := range hours {
			start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, now.Location())
			slot := domain.TimeSlot{Start: start, End: start.Add(duration)}

			if conflicts(&slot, existingTasks) {
				continue
			}

			slot.Score, slot.Reason = score(req, start, hour)
			slots = append(slots, slot)
		}
	}

	if len(slots) == 0 {
		return []domain.TimeSlot{fallbackSlot(now, duration)}, nil
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Score != slots[j].Score {
			return slots[i].Score > slots[j].Score
		}
		return slots[i].Start.Before(slots[j].Start)
	})

	if len(slots) > maxRecommendations {
		slots = slots[:maxRecommendations]
	}
	return slots, nil
}

// candidateHours picks start hours by keyword-matching the request's
// description and preference tags against the hour profiles.
func candidateHours(req *domain.WorkRequest) []int {
	text := strings.ToLower(req.Description + " " + strings.Join(req.Preferences, " "))
	for _, p := range hourProfiles {
		for _, kw := range p.keywords {
			if strings.Contains(text, kw) {
				return p.hours
			}
		}
	}
	return defaultHours
}

// conflicts reports whether the slot half-open-overlaps any existing task.
func conflicts(slot *domain.TimeSlot, tasks []*domain.Task) bool {
	for _, t := range tasks {
		if slot.Overlaps(t) {
			return true
		}
	}
	return false
}

// score rates a surviving slot: a baseline of five, a bonus for peak focus
// hours, an urgency bonus as the deadline closes in, and a priority
// adjustment, clamped to [1,10].
func score(req *domain.WorkRequest, start time.Time, hour int) (int, string) {
	s := baselineScore
	reasons := []string{fmt.Sprintf("free %s slot at %02d:00 with no conflicts",
		strings.ToLower(start.Weekday().String()), hour)}

	switch {
	case hour >= 9 && hour <= 11:
		s += 2
		reasons = append(reasons, "morning focus hours")
	case hour >= 14 && hour <= 16:
		s++
		reasons = append(reasons, "productive afternoon window")
	}

	if req.Deadline != nil {
		until := req.Deadline.Sub(start)
		if until <= 24*time.Hour {
			s += 3
			reasons = append(reasons, "due within a day")
		} else if until <= 72*time.Hour {
			s++
			reasons = append(reasons, "deadline approaching")
		}
	}

	switch req.Priority {
	case domain.PriorityHigh:
		s++
	case domain.PriorityLow:
		s--
	}

	if s > 10 {
		s = 10
	}
	if s < 1 {
		s = 1
	}

	return s, strings.Join(reasons, "; ")
}

// fallbackSlot proposes the following morning when the whole scan conflicts.
func fallbackSlot(now time.Time, duration time.Duration) domain.TimeSlot {
	tomorrow := now.AddDate(0, 0, 1)
	start := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(),
		fallbackHour, 0, 0, 0, now.Location())
	return domain.TimeSlot{
		Start:  start,
		End:    start.Add(duration),
		Score:  fallbackScore,
		Reason: "default suggestion: the schedule is full, earliest open morning",
	}
}
