package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/smarttime/smarttime-api/internal/config"
	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/parsing"
	"github.com/smarttime/smarttime-api/internal/retry"
)

// promptTemplate instructs the model to answer with a JSON array of objects
// matching responseSchema, one per task the text describes. The reference
// time anchors relative phrases.
const promptTemplate = `You are a scheduling assistant. Extract every task from the text below.
The current time is {{.Now}}. Resolve relative dates against it.

Respond with a JSON array and nothing else, one element per task, each using
this shape:
{
  "title": "short task name",
  "start": "RFC 3339 timestamp",
  "end": "RFC 3339 timestamp, omit if unknown",
  "priority": "low | medium | high",
  "reminder_offset": "none | at_time | before_5min | before_15min | before_30min | before_1hour | before_1day",
  "is_important": false,
  "recurrence": {
    "frequency": "daily | weekly | monthly | yearly",
    "interval": 1,
    "days_of_week": [0],
    "day_of_month": 1,
    "end_date": "RFC 3339 timestamp",
    "count": 10
  }
}
Text naming several activities ("meeting at 3pm and dinner at 8pm") yields
several elements. Omit "recurrence" entirely unless the task repeats.
days_of_week uses 0 for Monday through 6 for Sunday.

Text:
{{.Text}}`

// Extractor implements the parsing.Extractor interface using
// Google's Gemini API.
type Extractor struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// tmpl is the parsed template for extraction prompts
	tmpl *template.Template

	// matchTmpl is the parsed template for deletion-match prompts
	matchTmpl *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// NewExtractor creates an Extractor from the LLM configuration. It fails
// when the API key or model name is missing.
func NewExtractor(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Extractor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", parsing.ErrExtractionFailed)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", parsing.ErrExtractionFailed)
	}

	tmpl, err := template.New("task").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	matchTmpl, err := template.New("match").Parse(matchPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse match prompt template: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Extractor{
		logger:    logger,
		config:    cfg,
		tmpl:      tmpl,
		matchTmpl: matchTmpl,
		client:    client,
		model:     cfg.ModelName,
	}, nil
}

// ExtractTasks sends the text to the model and maps the JSON reply onto
// task drafts, one per task the text describes. Transient API failures are
// retried with exponential backoff; malformed or blocked responses fail
// immediately.
func (e *Extractor) ExtractTasks(ctx context.Context, text string, now time.Time) ([]*domain.TaskDraft, error) {
	prompt, err := e.buildPrompt(text, now)
	if err != nil {
		return nil, err
	}

	raw, err := e.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return e.parseResponse(raw)
}

func (e *Extractor) buildPrompt(text string, now time.Time) (string, error) {
	if text == "" {
		return "", parsing.ErrEmptyInput
	}

	var buf bytes.Buffer
	err := e.tmpl.Execute(&buf, promptData{
		Text: text,
		Now:  now.Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// callWithRetry makes the API call under the configured backoff policy.
// API transport errors are treated as transient; safety blocks and
// malformed bodies are permanent.
func (e *Extractor) callWithRetry(ctx context.Context, prompt string) (string, error) {
	policy := retry.Config{
		MaxAttempts:    e.config.MaxRetries + 1,
		InitialBackoff: time.Duration(e.config.RetryDelaySeconds) * time.Second,
		MaxBackoff:     8 * time.Second,
	}
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = time.Second
	}

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var text string
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		e.logger.DebugContext(ctx, "calling gemini", "model", e.model)

		resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), genCfg)
		if err != nil {
			e.logger.WarnContext(ctx, "gemini call failed", "error", err)
			return retry.Transient(fmt.Errorf("%w: %v", parsing.ErrTransientFailure, err))
		}

		if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return fmt.Errorf("%w: no content generated", parsing.ErrInvalidResponse)
		}
		if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return fmt.Errorf("%w: finish reason safety", parsing.ErrContentBlocked)
		}

		text = resp.Text()
		if text == "" {
			return fmt.Errorf("%w: empty response text", parsing.ErrInvalidResponse)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// parseResponse maps the model's JSON reply onto domain drafts.
func (e *Extractor) parseResponse(raw string) ([]*domain.TaskDraft, error) {
	var schemas []responseSchema
	if err := json.Unmarshal([]byte(raw), &schemas); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", parsing.ErrInvalidResponse, err)
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("%w: no tasks in response", parsing.ErrInvalidResponse)
	}

	drafts := make([]*domain.TaskDraft, 0, len(schemas))
	for _, schema := range schemas {
		draft, err := mapDraft(schema)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// mapDraft converts one response element into a domain draft.
func mapDraft(schema responseSchema) (*domain.TaskDraft, error) {
	if schema.Title == "" {
		return nil, fmt.Errorf("%w: missing title", parsing.ErrInvalidResponse)
	}

	start, err := parseRFC3339(schema.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start time %q", parsing.ErrInvalidResponse, schema.Start)
	}

	draft := &domain.TaskDraft{
		Title:       schema.Title,
		Start:       start,
		Priority:    domain.PriorityMedium,
		IsImportant: schema.IsImportant,
	}

	if schema.End != "" {
		end, err := parseRFC3339(schema.End)
		if err != nil {
			return nil, fmt.Errorf("%w: bad end time %q", parsing.ErrInvalidResponse, schema.End)
		}
		draft.End = &end
	}

	if schema.Priority != "" {
		p := domain.Priority(schema.Priority)
		if !p.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", parsing.ErrInvalidResponse, schema.Priority)
		}
		draft.Priority = p
	}

	if schema.ReminderOffset != "" {
		r := domain.ReminderOffset(schema.ReminderOffset)
		if !r.Valid() {
			return nil, fmt.Errorf("%w: unknown reminder offset %q", parsing.ErrInvalidResponse, schema.ReminderOffset)
		}
		draft.ReminderOffset = r
	}

	if schema.Recurrence != nil {
		rule, err := mapRecurrence(schema.Recurrence)
		if err != nil {
			return nil, err
		}
		draft.RecurrenceRule = rule
		draft.IsRecurring = true
	}

	return draft, nil
}

func mapRecurrence(s *recurrenceSchema) (*domain.RecurrenceRule, error) {
	rule := &domain.RecurrenceRule{
		Frequency:  domain.Frequency(s.Frequency),
		Interval:   s.Interval,
		DaysOfWeek: s.DaysOfWeek,
		DayOfMonth: s.DayOfMonth,
		Count:      s.Count,
	}
	if rule.Interval == 0 {
		rule.Interval = 1
	}

	if s.EndDate != "" {
		end, err := parseRFC3339(s.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad recurrence end date %q", parsing.ErrInvalidResponse, s.EndDate)
		}
		rule.EndDate = &end
	}

	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", parsing.ErrInvalidResponse, err)
	}
	return rule, nil
}
