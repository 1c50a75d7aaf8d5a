// Package intent maps free-form message text onto the assistant's closed set
// of intents. The language model is the primary path; a deterministic keyword
// table covers every model failure, so classification itself can never fail.
package intent

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aryanma11ick/Neura/internal/llm"
)

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	LinkAccount  Intent = "link_account"
	CreateEvent  Intent = "create_event"
	UpdateEvent  Intent = "update_event"
	ShowSchedule Intent = "show_schedule"
	CasualChat   Intent = "casual_chat"
)

// linkGoogleAlias is the wire value some model replies use for LinkAccount.
const linkGoogleAlias = "link_google"

// Valid reports whether v is one of the known intents.
func Valid(v Intent) bool {
	switch v {
	case LinkAccount, CreateEvent, UpdateEvent, ShowSchedule, CasualChat:
		return true
	}
	return false
}

// Classifier resolves message text to an Intent.
type Classifier struct {
	completer llm.Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// NewClassifier creates a classifier. completer may be nil, in which case only
// the keyword fallback runs.
func NewClassifier(completer llm.Completer, timeout time.Duration, logger *zap.Logger) *Classifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Classifier{completer: completer, timeout: timeout, logger: logger}
}

type intentReply struct {
	Intent string `json:"intent"`
}

// Classify returns a valid Intent for any input. Model failures of every kind
// (transport, timeout, unparsable reply, out-of-enum value) degrade silently
// to the keyword table.
func (c *Classifier) Classify(ctx context.Context, text string) Intent {
	result, ok := c.classifyWithModel(ctx, text)
	if !ok {
		result = classifyByKeywords(text)
	}

	// Linking words alone are weaker evidence than an explicit time or meeting
	// expression; prefer creating the event.
	if result == LinkAccount && HasSchedulingEvidence(text) {
		c.logger.Debug("overriding link_account intent", zap.String("text", text))
		return CreateEvent
	}

	return result
}

func (c *Classifier) classifyWithModel(ctx context.Context, text string) (Intent, bool) {
	if c.completer == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.completer.Complete(ctx, systemPrompt, text, 0)
	if err != nil {
		c.logger.Warn("intent model call failed, using keyword fallback", zap.Error(err))
		return "", false
	}

	span, ok := llm.ExtractObject(reply)
	if !ok {
		c.logger.Warn("intent reply had no JSON object", zap.String("reply", reply))
		return "", false
	}

	var parsed intentReply
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		c.logger.Warn("intent reply JSON unparsable", zap.Error(err))
		return "", false
	}

	value := Intent(strings.TrimSpace(parsed.Intent))
	if value == linkGoogleAlias {
		value = LinkAccount
	}
	if !Valid(value) {
		c.logger.Warn("intent reply out of enum", zap.String("intent", parsed.Intent))
		return "", false
	}

	return value, true
}

var (
	linkWords   = []string{"link", "connect", "authorize", "authorise", "login", "log in", "sign in"}
	createWords = []string{"add ", "create", "book", "schedule a", "set up", "new event", "new meeting"}
	updateWords = []string{"update", "move", "change", "reschedule", "postpone", "shift"}
	viewWords   = []string{"show", "my schedule", "calendar", "agenda", "what's on", "whats on", "events"}
)

// classifyByKeywords is the deterministic non-model path. Checks run in fixed
// priority order; anything unmatched is casual chat.
func classifyByKeywords(text string) Intent {
	m := strings.ToLower(text)
	switch {
	case containsAny(m, linkWords):
		return LinkAccount
	case containsAny(m, createWords):
		return CreateEvent
	case containsAny(m, updateWords):
		return UpdateEvent
	case containsAny(m, viewWords):
		return ShowSchedule
	default:
		return CasualChat
	}
}

// IsLinkRequest reports whether text contains an explicit linking word. Used
// to short-circuit the link flow ahead of full classification.
func IsLinkRequest(text string) bool {
	return containsAny(strings.ToLower(text), linkWords)
}

var timeOfDayPattern = regexp.MustCompile(`\b\d{1,2}(:\d{2})?\s?(am|pm)\b|\b\d{1,2}:\d{2}\b`)

// HasSchedulingEvidence reports whether text carries an explicit meeting or
// time expression.
func HasSchedulingEvidence(text string) bool {
	m := strings.ToLower(text)
	if strings.Contains(m, "meeting") || strings.Contains(m, "tomorrow") {
		return true
	}
	return timeOfDayPattern.MatchString(m)
}

func containsAny(text string, values []string) bool {
	for _, v := range values {
		if strings.Contains(text, v) {
			return true
		}
	}
	return false
}
