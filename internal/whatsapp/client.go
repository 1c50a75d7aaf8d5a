package whatsapp

import (
	"context"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/aryanma11ick/Neura/internal/identity"
)

// Client owns the whatsmeow connection: it receives user messages through the
// handler and sends replies.
type Client struct {
	WAClient  *whatsmeow.Client
	handler   *Handler
	container *sqlstore.Container
	logger    *zap.Logger
}

func NewClient(handler *Handler, dbPath string, logger *zap.Logger) (*Client, error) {
	dbLog := waLog.Stdout("Database", "WARN", true)
	clientLog := waLog.Stdout("Client", "WARN", true)

	container, err := sqlstore.New(context.Background(), "sqlite3", "file:"+dbPath+"?_foreign_keys=on", dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to create whatsapp session store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	waClient := whatsmeow.NewClient(deviceStore, clientLog)

	c := &Client{
		WAClient:  waClient,
		handler:   handler,
		container: container,
		logger:    logger,
	}

	if handler != nil {
		waClient.AddEventHandler(handler.HandleEvent)
	}

	return c, nil
}

// Connect establishes the WhatsApp session. A device that has never paired
// goes through the QR login flow; the code is rendered to a PNG for scanning.
func (c *Client) Connect(ctx context.Context) error {
	if c.WAClient.Store.ID != nil {
		if err := c.WAClient.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		c.logger.Info("whatsapp connected")
		return nil
	}

	qrChan, err := c.WAClient.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := c.WAClient.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			DisplayQR(evt.Code)
			c.logger.Info("scan the QR code with WhatsApp to pair")
		case "success":
			c.logger.Info("whatsapp paired and connected")
			return nil
		default:
			c.logger.Warn("whatsapp pairing event", zap.String("event", evt.Event))
		}
	}

	return fmt.Errorf("QR channel closed before pairing completed")
}

// Send delivers body to a user identity. Used for turn replies, link
// confirmations and reminders alike.
func (c *Client) Send(ctx context.Context, recipient, body string) error {
	user := identity.Bare(recipient)
	if user == "" {
		return fmt.Errorf("invalid recipient: %q", recipient)
	}

	jid := types.NewJID(user, types.DefaultUserServer)
	_, err := c.WAClient.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to send whatsapp message to %s: %w", recipient, err)
	}

	return nil
}

func (c *Client) Disconnect() {
	c.WAClient.Disconnect()
	c.logger.Info("whatsapp disconnected")
}
