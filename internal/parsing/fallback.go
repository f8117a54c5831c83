package parsing

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/smarttime/smarttime-api/internal/domain"
)

// defaultHour is used when the text carries no usable time of day.
const defaultHour = 9

// FallbackParser is a deterministic keyword-based extractor used when the
// language model is unavailable. It understands a small set of English
// date, time, duration and priority phrases; anything it cannot read falls
// back to tomorrow morning.
type FallbackParser struct{}

// NewFallbackParser creates a FallbackParser.
func NewFallbackParser() *FallbackParser {
	return &FallbackParser{}
}

var (
	clockRe    = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clock24Re  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	hoursRe    = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`)
	minutesRe  = regexp.MustCompile(`\b(\d+)\s*(?:minutes?|mins?)\b`)
	weekdayRe  = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	whitespace = regexp.MustCompile(`\s+`)

	// Connectors that separate tasks in one sentence. "and then" must come
	// before its "and"/"then" components so it is consumed in one piece.
	separatorRe = regexp.MustCompile(`(?i)\s*(?:;|,\s*(?:and\s+then\s+|and\s+|then\s+)?|\s+and\s+then\s+|\s+and\s+|\s+then\s+)\s*`)
)

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Ordered so that "afternoon" wins over its "noon" substring.
var daypartHours = []struct {
	word string
	hour int
}{
	{"afternoon", 15},
	{"morning", 9},
	{"noon", 12},
	{"evening", 19},
	{"night", 21},
}

var highPriorityWords = []string{"urgent", "asap", "critical", "important", "immediately"}
var lowPriorityWords = []string{"whenever", "someday", "low priority", "no rush"}

// ExtractTasks parses the text into drafts without calling any external
// service. It implements Extractor so it can stand in for the model. Text
// joining several tasks with commas, "and", or "then" yields one draft per
// segment; a date named anywhere in the text applies to segments that carry
// no date of their own.
func (p *FallbackParser) ExtractTasks(ctx context.Context, text string, now time.Time) ([]*domain.TaskDraft, error) {
	cleaned := strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if cleaned == "" {
		return nil, ErrEmptyInput
	}

	// Resolve a shared day once so "tomorrow: standup at 10 and lunch at 12"
	// lands both tasks on the same date.
	sharedDay, sharedDayKnown := parseDay(strings.ToLower(cleaned), now)

	var drafts []*domain.TaskDraft
	for _, segment := range separatorRe.Split(cleaned, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		drafts = append(drafts, p.parseSegment(segment, now, sharedDay, sharedDayKnown))
	}
	if len(drafts) == 0 {
		return nil, ErrEmptyInput
	}
	return drafts, nil
}

// parseSegment turns one task segment into a draft.
func (p *FallbackParser) parseSegment(title string, now time.Time, sharedDay time.Time, sharedDayKnown bool) *domain.TaskDraft {
	lower := strings.ToLower(title)

	day, dayKnown := parseDay(lower, now)
	if !dayKnown && sharedDayKnown {
		day, dayKnown = sharedDay, true
	}
	hour, minute, timeKnown := parseTime(lower)

	if !timeKnown {
		hour, minute = defaultHour, 0
	}
	if !dayKnown {
		day = now.AddDate(0, 0, 1)
		if timeKnown {
			// A bare time means today when it is still ahead of us.
			candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if candidate.After(now) {
				day = now
			}
		}
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())

	draft := &domain.TaskDraft{
		Title:    title,
		Start:    start,
		Priority: domain.PriorityMedium,
	}

	if d, ok := parseDuration(lower); ok {
		end := start.Add(d)
		draft.End = &end
	}

	for _, w := range highPriorityWords {
		if strings.Contains(lower, w) {
			draft.Priority = domain.PriorityHigh
			draft.IsImportant = true
			break
		}
	}
	for _, w := range lowPriorityWords {
		if strings.Contains(lower, w) {
			draft.Priority = domain.PriorityLow
			draft.IsImportant = false
			break
		}
	}

	return draft
}

// parseDay resolves relative date words against the reference time.
func parseDay(lower string, now time.Time) (time.Time, bool) {
	switch {
	case strings.Contains(lower, "day after tomorrow"):
		return now.AddDate(0, 0, 2), true
	case strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1), true
	case strings.Contains(lower, "today") || strings.Contains(lower, "tonight"):
		return now, true
	case strings.Contains(lower, "next week"):
		return now.AddDate(0, 0, 7), true
	}

	if m := weekdayRe.FindStringSubmatch(lower); m != nil {
		target := weekdayNames[m[1]]
		days := (int(target) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return now.AddDate(0, 0, days), true
	}

	return time.Time{}, false
}

// parseTime finds an explicit clock time or a daypart word.
func parseTime(lower string) (hour, minute int, ok bool) {
	if m := clockRe.FindStringSubmatch(lower); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if m[3] == "pm" && hour < 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		if hour <= 23 && minute <= 59 {
			return hour, minute, true
		}
	}

	if m := clock24Re.FindStringSubmatch(lower); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return hour, minute, true
		}
	}

	for _, dp := range daypartHours {
		if strings.Contains(lower, dp.word) {
			return dp.hour, 0, true
		}
	}

	return 0, 0, false
}

// parseDuration reads "for 2 hours" / "30 minutes" phrases.
func parseDuration(lower string) (time.Duration, bool) {
	var total time.Duration

	if m := hoursRe.FindStringSubmatch(lower); m != nil {
		if h, err := strconv.ParseFloat(m[1], 64); err == nil {
			total += time.Duration(h * float64(time.Hour))
		}
	}
	if m := minutesRe.FindStringSubmatch(lower); m != nil {
		if min, err := strconv.Atoi(m[1]); err == nil {
			total += time.Duration(min) * time.Minute
		}
	}

	if total <= 0 {
		return 0, false
	}
	return total, true
}
