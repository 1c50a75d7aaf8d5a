package whatsapp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

func directMessage(user, text string) *events.Message {
	msg := &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Sender: types.NewJID(user, types.DefaultUserServer),
			},
			Timestamp: time.Now(),
		},
		Message: &waE2E.Message{
			Conversation: proto.String(text),
		},
	}
	return msg
}

func TestHandlerForwardsDirectMessage(t *testing.T) {
	h := NewHandler(zap.NewNop())

	h.HandleEvent(directMessage("919876543210", "schedule a meeting tomorrow at 3pm"))

	select {
	case in := <-h.MessageChan():
		assert.Equal(t, "+919876543210", in.Sender)
		assert.Equal(t, "schedule a meeting tomorrow at 3pm", in.Text)
	default:
		t.Fatal("expected a message on the channel")
	}
}

func TestHandlerSkipsGroupAndEmpty(t *testing.T) {
	h := NewHandler(zap.NewNop())

	grp := directMessage("919876543210", "hello")
	grp.Info.MessageSource.IsGroup = true
	h.HandleEvent(grp)

	empty := directMessage("919876543210", "")
	h.HandleEvent(empty)

	mine := directMessage("919876543210", "hello")
	mine.Info.MessageSource.IsFromMe = true
	h.HandleEvent(mine)

	require.Empty(t, h.MessageChan())
}

func TestExtractTextExtendedMessage(t *testing.T) {
	msg := directMessage("919876543210", "")
	msg.Message = &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String("move jogging to 8am"),
		},
	}
	assert.Equal(t, "move jogging to 8am", extractText(msg))
}
