package parsing

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/domain"
)

// wordRe picks candidate title keywords out of a deletion description.
var wordRe = regexp.MustCompile(`[a-z]+`)

// matchStopwords are description words that carry deletion intent or
// grammar rather than task content, so they never count as title keywords.
var matchStopwords = map[string]struct{}{
	"delete": {}, "remove": {}, "cancel": {}, "drop": {}, "clear": {},
	"all": {}, "every": {}, "everything": {}, "the": {}, "a": {}, "an": {},
	"my": {}, "of": {}, "for": {}, "on": {}, "in": {}, "at": {}, "to": {},
	"task": {}, "tasks": {}, "appointment": {}, "appointments": {},
	"event": {}, "events": {}, "plan": {}, "plans": {}, "schedule": {},
	"today": {}, "tonight": {}, "tomorrow": {}, "week": {}, "this": {},
	"next": {}, "day": {}, "after": {}, "and": {}, "then": {},
	"morning": {}, "afternoon": {}, "evening": {}, "night": {}, "noon": {},
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
	"important": {}, "urgent": {}, "unimportant": {}, "priority": {},
	"dont": {}, "don": {}, "t": {}, "want": {}, "need": {}, "anymore": {},
}

// scopeWords signal that every task inside the other constraints should
// match, even without a title keyword.
var scopeWords = map[string]struct{}{
	"all": {}, "every": {}, "everything": {}, "clear": {},
}

// daypartRanges maps daypart words to inclusive start / exclusive end hours.
var daypartRanges = []struct {
	word       string
	from, upto int
}{
	{"afternoon", 12, 18},
	{"morning", 6, 12},
	{"evening", 18, 24},
	{"tonight", 18, 24},
	{"night", 18, 24},
}

// MatchTasks selects tasks to delete using local keyword and date matching.
// It implements Matcher so it can stand in for the model. A task matches
// when it satisfies every constraint the description names: a date or date
// range, a time of day, a priority, and title keywords. A description with
// no recognizable constraint matches nothing rather than guessing.
func (p *FallbackParser) MatchTasks(ctx context.Context, description string, tasks []*domain.Task, now time.Time) ([]uuid.UUID, error) {
	lower := strings.ToLower(strings.TrimSpace(description))
	if lower == "" {
		return nil, ErrEmptyInput
	}

	tokens := wordRe.FindAllString(lower, -1)
	from, to, hasRange := parseDayRange(lower, now)
	daypartFrom, daypartUpto, hasDaypart := parseDaypart(lower)
	priority, hasPriority := parseTargetPriority(lower)
	keywords := titleKeywords(tokens)
	broad := false
	for _, tok := range tokens {
		if _, ok := scopeWords[tok]; ok {
			broad = true
			break
		}
	}

	if !hasRange && !hasDaypart && !hasPriority && len(keywords) == 0 {
		return nil, nil
	}

	var matched []uuid.UUID
	for _, task := range tasks {
		if hasRange && (task.Start.Before(from) || !task.Start.Before(to)) {
			continue
		}
		if hasDaypart {
			h := task.Start.Hour()
			if h < daypartFrom || h >= daypartUpto {
				continue
			}
		}
		if hasPriority && task.Priority != priority {
			continue
		}
		if len(keywords) > 0 {
			if !titleContainsAny(task.Title, keywords) {
				continue
			}
		} else if !broad && !hasRange && !hasDaypart {
			// Priority alone only matches with a broad scope word.
			continue
		}
		matched = append(matched, task.ID)
	}
	return matched, nil
}

// parseDayRange resolves a date phrase into a half-open [from, to) range.
func parseDayRange(lower string, now time.Time) (time.Time, time.Time, bool) {
	start := midnightOf(now)
	switch {
	case strings.Contains(lower, "day after tomorrow"):
		from := start.AddDate(0, 0, 2)
		return from, from.AddDate(0, 0, 1), true
	case strings.Contains(lower, "tomorrow"):
		from := start.AddDate(0, 0, 1)
		return from, from.AddDate(0, 0, 1), true
	case strings.Contains(lower, "today") || strings.Contains(lower, "tonight"):
		return start, start.AddDate(0, 0, 1), true
	case strings.Contains(lower, "next week"):
		from := mondayOf(start).AddDate(0, 0, 7)
		return from, from.AddDate(0, 0, 7), true
	case strings.Contains(lower, "this week"):
		from := mondayOf(start)
		return from, from.AddDate(0, 0, 7), true
	}

	if m := weekdayRe.FindStringSubmatch(lower); m != nil {
		target := weekdayNames[m[1]]
		days := (int(target) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		from := start.AddDate(0, 0, days)
		return from, from.AddDate(0, 0, 1), true
	}

	return time.Time{}, time.Time{}, false
}

func parseDaypart(lower string) (int, int, bool) {
	for _, dp := range daypartRanges {
		if strings.Contains(lower, dp.word) {
			return dp.from, dp.upto, true
		}
	}
	return 0, 0, false
}

func parseTargetPriority(lower string) (domain.Priority, bool) {
	switch {
	case strings.Contains(lower, "unimportant") || strings.Contains(lower, "low priority"):
		return domain.PriorityLow, true
	case strings.Contains(lower, "important") || strings.Contains(lower, "urgent"):
		return domain.PriorityHigh, true
	}
	return "", false
}

// titleKeywords extracts the content words a task title must contain.
func titleKeywords(tokens []string) []string {
	var keywords []string
	for _, word := range tokens {
		if len(word) < 3 {
			continue
		}
		if _, skip := matchStopwords[word]; skip {
			continue
		}
		if _, skip := scopeWords[word]; skip {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

func titleContainsAny(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return midnightOf(t).AddDate(0, 0, -offset)
}
