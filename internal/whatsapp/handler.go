package whatsapp

import (
	"time"

	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"

	"github.com/aryanma11ick/Neura/internal/identity"
)

// Inbound is one user message ready for assistant processing. Sender is the
// canonical identity ("+<digits>").
type Inbound struct {
	Sender    string
	Text      string
	Timestamp time.Time
}

type Handler struct {
	messageChan chan Inbound
	logger      *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		messageChan: make(chan Inbound, 100),
		logger:      logger,
	}
}

func (h *Handler) MessageChan() <-chan Inbound {
	return h.messageChan
}

func (h *Handler) HandleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		h.handleMessage(v)
	}
}

func (h *Handler) handleMessage(msg *events.Message) {
	text := extractText(msg)
	if text == "" {
		return
	}

	// Only direct messages; the assistant has no group story.
	if msg.Info.IsGroup || msg.Info.IsFromMe {
		return
	}

	sender := identity.Normalize(msg.Info.Sender.User)

	h.logger.Info("inbound message",
		zap.String("sender", sender),
		zap.Int("length", len(text)))

	select {
	case h.messageChan <- Inbound{
		Sender:    sender,
		Text:      text,
		Timestamp: msg.Info.Timestamp,
	}:
	default:
		h.logger.Warn("message channel full, dropping message", zap.String("sender", sender))
	}
}

func extractText(msg *events.Message) string {
	m := msg.Message
	if m == nil {
		return ""
	}

	if m.GetConversation() != "" {
		return m.GetConversation()
	}

	if ext := m.GetExtendedTextMessage(); ext != nil {
		return ext.GetText()
	}

	return ""
}
