// Package extract turns a create/update request into a validated draft by
// asking the language model for structured slots and validating its output.
// One model call per invocation; a failed extraction ends the user's turn
// with an apology rather than a fabricated event.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aryanma11ick/Neura/internal/llm"
	"github.com/aryanma11ick/Neura/internal/timeparse"
)

// ErrExtraction marks a model reply that could not be turned into a usable
// draft. Callers convert it into a user-visible apology.
var ErrExtraction = errors.New("could not extract event details")

// EventDraft is a transient, validated extraction for a create request.
// End is always after Start.
type EventDraft struct {
	Title        string
	Start        time.Time
	End          time.Time
	Description  string
	Attendees    []string
	WantMeetLink bool
}

// UpdateDraft is a validated extraction for an update request. Nil fields
// leave the matched event's corresponding field unchanged.
type UpdateDraft struct {
	MatchTitle  string
	NewStart    *time.Time
	NewEnd      *time.Time
	Description string
}

// Result holds exactly one of the two draft kinds.
type Result struct {
	Create *EventDraft
	Update *UpdateDraft
}

// meetWords in the request text flag that the event should carry a meeting link.
var meetWords = []string{"google meet", "video call", "call", "meet with", "meeting"}

// payload mirrors the model's wire shapes for both actions.
type payload struct {
	Action       string   `json:"action"`
	Summary      string   `json:"summary"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	MatchSummary string   `json:"match_summary"`
	NewStartTime string   `json:"new_start_time"`
	NewEndTime   string   `json:"new_end_time"`
	Description  string   `json:"description"`
	Attendees    []string `json:"attendees"`
}

// Extractor asks the model for event slots and validates the reply.
type Extractor struct {
	completer   llm.Completer
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

func NewExtractor(completer llm.Completer, temperature float64, timeout time.Duration, logger *zap.Logger) *Extractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{
		completer:   completer,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// Extract performs one model call and validates the structured reply against
// now's location. All failure modes return an error wrapping ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, text string, now time.Time) (*Result, error) {
	if e.completer == nil {
		return nil, fmt.Errorf("%w: no model configured", ErrExtraction)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.completer.Complete(ctx, systemPrompt(now), text, e.temperature)
	if err != nil {
		e.logger.Warn("slot extraction model call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	span, ok := llm.ExtractObject(reply)
	if !ok {
		e.logger.Warn("extraction reply had no JSON object", zap.String("reply", reply))
		return nil, fmt.Errorf("%w: reply contained no JSON object", ErrExtraction)
	}

	var p payload
	if err := json.Unmarshal([]byte(span), &p); err != nil {
		e.logger.Warn("extraction reply JSON unparsable", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	switch p.Action {
	case "create_event":
		draft, err := buildEventDraft(&p, text, now)
		if err != nil {
			return nil, err
		}
		return &Result{Create: draft}, nil
	case "update_event":
		draft, err := buildUpdateDraft(&p, now)
		if err != nil {
			return nil, err
		}
		return &Result{Update: draft}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrExtraction, p.Action)
	}
}

func buildEventDraft(p *payload, requestText string, now time.Time) (*EventDraft, error) {
	loc := now.Location()

	start, err := timeparse.ParseStamp(p.StartTime, loc)
	if err != nil {
		// No usable start means the whole request fails; never fabricate one.
		return nil, fmt.Errorf("%w: create without parsable start time", ErrExtraction)
	}

	end, err := timeparse.ParseStamp(p.EndTime, loc)
	if err != nil || !end.After(start) {
		end = start.Add(time.Hour)
	}

	title := strings.TrimSpace(p.Summary)
	if title == "" {
		title = "Untitled Event"
	}

	return &EventDraft{
		Title:        title,
		Start:        start,
		End:          end,
		Description:  strings.TrimSpace(p.Description),
		Attendees:    p.Attendees,
		WantMeetLink: wantsMeetLink(requestText),
	}, nil
}

func buildUpdateDraft(p *payload, now time.Time) (*UpdateDraft, error) {
	title := strings.TrimSpace(p.MatchSummary)
	if title == "" {
		return nil, fmt.Errorf("%w: update without a match title", ErrExtraction)
	}

	loc := now.Location()
	draft := &UpdateDraft{
		MatchTitle:  title,
		Description: strings.TrimSpace(p.Description),
	}

	if start, err := timeparse.ParseStamp(p.NewStartTime, loc); err == nil {
		draft.NewStart = &start
	}
	if end, err := timeparse.ParseStamp(p.NewEndTime, loc); err == nil {
		draft.NewEnd = &end
	}

	return draft, nil
}

func wantsMeetLink(text string) bool {
	m := strings.ToLower(text)
	for _, w := range meetWords {
		if strings.Contains(m, w) {
			return true
		}
	}
	return false
}
