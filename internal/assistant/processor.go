package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aryanma11ick/Neura/internal/database"
	"github.com/aryanma11ick/Neura/internal/extract"
	"github.com/aryanma11ick/Neura/internal/gcal"
	"github.com/aryanma11ick/Neura/internal/intent"
	"github.com/aryanma11ick/Neura/internal/llm"
	"github.com/aryanma11ick/Neura/internal/match"
	"github.com/aryanma11ick/Neura/internal/server"
	"github.com/aryanma11ick/Neura/internal/timeparse"
	"github.com/aryanma11ick/Neura/internal/whatsapp"
)

const (
	defaultWorkerCount = 2
	updateLookahead    = 90 * 24 * time.Hour
)

// Calendar is the slice of the Google Calendar client the assistant needs.
type Calendar interface {
	Refresh(ctx context.Context, cred *database.Credential) (*database.Credential, bool, error)
	ListRange(ctx context.Context, cred *database.Credential, timeMin, timeMax time.Time) ([]gcal.Event, error)
	Insert(ctx context.Context, cred *database.Credential, input gcal.EventInput) (*gcal.CreatedEvent, error)
	Update(ctx context.Context, cred *database.Credential, eventID string, patch gcal.EventPatch) error
}

// Sender delivers replies back to the user.
type Sender interface {
	Send(ctx context.Context, recipient, body string) error
}

// Reminders books one-shot event reminders.
type Reminders interface {
	Schedule(user, title string, start time.Time, meetLink string, lead time.Duration)
}

// Processor consumes inbound messages and drives a full conversational turn
// for each: classify, act on the calendar, always reply.
type Processor struct {
	db         *database.DB
	calendar   Calendar
	classifier *intent.Classifier
	extractor  *extract.Extractor
	completer  llm.Completer
	sender     Sender
	reminders  Reminders
	msgChan    <-chan whatsapp.Inbound
	logger     *zap.Logger

	loc          *time.Location
	baseURL      string
	reminderLead time.Duration
	chatTimeout  time.Duration
	workerCount  int
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type ProcessorConfig struct {
	DB           *database.DB
	Calendar     Calendar
	Classifier   *intent.Classifier
	Extractor    *extract.Extractor
	Completer    llm.Completer
	Sender       Sender
	Reminders    Reminders
	MsgChan      <-chan whatsapp.Inbound
	Logger       *zap.Logger
	Location     *time.Location
	BaseURL      string
	ReminderLead time.Duration
	ChatTimeout  time.Duration
}

func NewProcessor(cfg ProcessorConfig) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	chatTimeout := cfg.ChatTimeout
	if chatTimeout <= 0 {
		chatTimeout = 30 * time.Second
	}

	return &Processor{
		db:           cfg.DB,
		calendar:     cfg.Calendar,
		classifier:   cfg.Classifier,
		extractor:    cfg.Extractor,
		completer:    cfg.Completer,
		sender:       cfg.Sender,
		reminders:    cfg.Reminders,
		msgChan:      cfg.MsgChan,
		logger:       cfg.Logger,
		loc:          cfg.Location,
		baseURL:      cfg.BaseURL,
		reminderLead: cfg.ReminderLead,
		chatTimeout:  chatTimeout,
		workerCount:  defaultWorkerCount,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches the worker pool.
func (p *Processor) Start() {
	p.logger.Info("assistant processor started", zap.Int("workers", p.workerCount))
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.processLoop()
	}
}

// Stop drains the workers.
func (p *Processor) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("assistant processor stopped")
}

func (p *Processor) processLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case msg, ok := <-p.msgChan:
			if !ok {
				p.logger.Info("message channel closed")
				return
			}
			p.processMessage(msg)
		}
	}
}

// processMessage runs one conversational turn. A panic in any handler is
// contained to the turn, and the user always gets some reply.
func (p *Processor) processMessage(msg whatsapp.Inbound) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("recovered from panic in turn",
				zap.String("sender", msg.Sender), zap.Any("panic", r))
			p.reply(msg.Sender, replyCalendarFailed)
		}
	}()

	// Explicit linking words skip the model round trip entirely, unless the
	// message also carries scheduling evidence ("connect me with X at 5pm").
	if intent.IsLinkRequest(msg.Text) && !intent.HasSchedulingEvidence(msg.Text) {
		p.handleLink(msg.Sender)
		return
	}

	it := p.classifier.Classify(p.ctx, msg.Text)
	p.logger.Info("classified turn",
		zap.String("sender", msg.Sender), zap.String("intent", string(it)))

	switch it {
	case intent.LinkAccount:
		p.handleLink(msg.Sender)
	case intent.CreateEvent, intent.UpdateEvent:
		p.handleCalendarChange(msg)
	case intent.ShowSchedule:
		p.handleShowSchedule(msg)
	default:
		p.handleChat(msg)
	}
}

func (p *Processor) handleLink(user string) {
	cred, err := p.db.GetCredential(user)
	if err != nil {
		p.logger.Error("credential lookup failed", zap.String("user", user), zap.Error(err))
		p.reply(user, replyCalendarFailed)
		return
	}
	if cred != nil {
		p.reply(user, replyAlreadyLinked())
		return
	}
	p.reply(user, replyLinkInstruction(server.AuthURL(p.baseURL, user)))
}

// credential fetches and refreshes the user's Google credential, persisting
// any rotated token. A nil credential with nil error means the user has not
// linked yet.
func (p *Processor) credential(ctx context.Context, user string) (*database.Credential, error) {
	cred, err := p.db.GetCredential(user)
	if err != nil || cred == nil {
		return nil, err
	}

	fresh, changed, err := p.calendar.Refresh(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if changed {
		if err := p.db.UpsertCredential(user, fresh); err != nil {
			p.logger.Warn("failed to persist refreshed token",
				zap.String("user", user), zap.Error(err))
		}
	}
	return fresh, nil
}

// handleCalendarChange covers both create and update turns. The extraction
// decides which one actually happens; the model sees the full message and
// its verdict on create-vs-update is more reliable than keyword routing.
func (p *Processor) handleCalendarChange(msg whatsapp.Inbound) {
	user := msg.Sender

	cred, err := p.credential(p.ctx, user)
	if err != nil {
		p.logger.Error("credential unavailable", zap.String("user", user), zap.Error(err))
		p.reply(user, replyCalendarFailed)
		return
	}
	if cred == nil {
		p.reply(user, replyLinkRequired)
		return
	}

	now := p.now().In(p.loc)
	result, err := p.extractor.Extract(p.ctx, msg.Text, now)
	if err != nil {
		p.logger.Warn("extraction failed", zap.String("user", user), zap.Error(err))
		p.reply(user, replyExtractionFailed)
		return
	}

	switch {
	case result.Create != nil:
		p.createEvent(user, cred, result.Create, now)
	case result.Update != nil:
		p.updateEvent(user, cred, result.Update, now)
	default:
		p.reply(user, replyExtractionFailed)
	}
}

func (p *Processor) createEvent(user string, cred *database.Credential, draft *extract.EventDraft, now time.Time) {
	start, end, err := timeparse.EnsureFuture(draft.Start, draft.End, now, timeparse.StepDay)
	if err != nil {
		p.logger.Warn("could not push event into the future",
			zap.String("user", user), zap.Time("start", draft.Start), zap.Error(err))
		p.reply(user, replyExtractionFailed)
		return
	}

	created, err := p.calendar.Insert(p.ctx, cred, gcal.EventInput{
		Title:        draft.Title,
		Description:  draft.Description,
		Start:        start,
		End:          end,
		Attendees:    draft.Attendees,
		WantMeetLink: draft.WantMeetLink,
	})
	if err != nil {
		p.logger.Error("event insert failed", zap.String("user", user), zap.Error(err))
		p.reply(user, replyCalendarFailed)
		return
	}

	if p.reminders != nil {
		p.reminders.Schedule(user, draft.Title, start, created.MeetLink, p.reminderLead)
	}

	p.reply(user, replyEventCreated(draft.Title, start, created.MeetLink))
}

func (p *Processor) updateEvent(user string, cred *database.Credential, draft *extract.UpdateDraft, now time.Time) {
	if draft.MatchTitle == "" {
		p.reply(user, replyUpdateNeedsTarget())
		return
	}

	events, err := p.calendar.ListRange(p.ctx, cred, now, now.Add(updateLookahead))
	if err != nil {
		p.logger.Error("event list failed", zap.String("user", user), zap.Error(err))
		p.reply(user, replyCalendarFailed)
		return
	}

	titles := make([]string, len(events))
	for i, ev := range events {
		titles[i] = ev.Title
	}

	title, ok := match.BestTitle(draft.MatchTitle, titles)
	if !ok {
		p.reply(user, replyNoMatch(draft.MatchTitle))
		return
	}

	var target gcal.Event
	for _, ev := range events {
		if ev.Title == title {
			target = ev
			break
		}
	}

	patch := gcal.EventPatch{Description: draft.Description}
	moved := false

	if draft.NewStart != nil {
		newStart := *draft.NewStart
		newEnd := newStart.Add(target.End.Sub(target.Start))
		if draft.NewEnd != nil {
			newEnd = *draft.NewEnd
		}
		newStart, newEnd, err = timeparse.EnsureFuture(newStart, newEnd, now, timeparse.StepYear)
		if err != nil {
			p.logger.Warn("could not push updated times into the future",
				zap.String("user", user), zap.Error(err))
			p.reply(user, replyExtractionFailed)
			return
		}
		patch.NewStart = &newStart
		patch.NewEnd = &newEnd
		moved = true
	} else if draft.NewEnd != nil {
		patch.NewEnd = draft.NewEnd
	}

	if err := p.calendar.Update(p.ctx, cred, target.ID, patch); err != nil {
		p.logger.Error("event update failed", zap.String("user", user), zap.Error(err))
		p.reply(user, replyCalendarFailed)
		return
	}

	if moved {
		p.reply(user, replyEventMoved(title, *patch.NewStart))
	} else {
		p.reply(user, replyEventUpdated(title))
	}
}

func (p *Processor) handleShowSchedule(msg whatsapp.Inbound) {
	user := msg.Sender

	cred, err := p.credential(p.ctx, user)
	if err != nil {
		p.logger.Error("credential unavailable", zap.String("user", user), zap.Error(err))
		p.reply(user, replyCalendarFailed)
		return
	}
	if cred == nil {
		p.reply(user, replyLinkRequired)
		return
	}

	now := p.now().In(p.loc)
	day := timeparse.Resolve(msg.Text, now)
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, p.loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	events, err := p.calendar.ListRange(p.ctx, cred, dayStart, dayEnd)
	if err != nil {
		p.logger.Error("event list failed", zap.String("user", user), zap.Error(err))
		p.reply(user, replyCalendarFailed)
		return
	}

	p.reply(user, replySchedule(dayStart, events))
}

func (p *Processor) handleChat(msg whatsapp.Inbound) {
	reply := replyChatFallback

	if p.completer != nil {
		ctx, cancel := context.WithTimeout(p.ctx, p.chatTimeout)
		defer cancel()

		answer, err := p.completer.Complete(ctx, chatSystemPrompt, msg.Text, 0.7)
		if err != nil {
			p.logger.Warn("chat completion failed", zap.String("user", msg.Sender), zap.Error(err))
		} else if answer != "" {
			reply = answer
		}
	}

	p.reply(msg.Sender, reply)
}

func (p *Processor) reply(user, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.sender.Send(ctx, user, body); err != nil {
		p.logger.Error("failed to send reply", zap.String("user", user), zap.Error(err))
	}
}
