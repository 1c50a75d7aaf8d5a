package assistant

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Digest sends every linked user their day's schedule on a cron cadence.
type Digest struct {
	processor *Processor
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewDigest(processor *Processor, loc *time.Location, logger *zap.Logger) *Digest {
	return &Digest{
		processor: processor,
		cron:      cron.New(cron.WithLocation(loc)),
		logger:    logger,
	}
}

// Start registers the digest job. spec is a standard 5-field cron expression,
// e.g. "0 8 * * *" for 8am daily.
func (d *Digest) Start(spec string) error {
	if _, err := d.cron.AddFunc(spec, d.run); err != nil {
		return err
	}
	d.cron.Start()
	d.logger.Info("daily digest scheduled", zap.String("cron", spec))
	return nil
}

func (d *Digest) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
}

func (d *Digest) run() {
	users, err := d.processor.db.ListLinkedUsers()
	if err != nil {
		d.logger.Error("digest: failed to list linked users", zap.Error(err))
		return
	}

	d.logger.Info("sending daily digest", zap.Int("users", len(users)))

	p := d.processor
	for _, user := range users {
		cred, err := p.credential(p.ctx, user)
		if err != nil || cred == nil {
			d.logger.Warn("digest: skipping user", zap.String("user", user), zap.Error(err))
			continue
		}

		now := p.now().In(p.loc)
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.loc)
		dayEnd := dayStart.Add(24 * time.Hour)

		events, err := p.calendar.ListRange(p.ctx, cred, dayStart, dayEnd)
		if err != nil {
			d.logger.Warn("digest: event list failed", zap.String("user", user), zap.Error(err))
			continue
		}

		p.reply(user, "☀️ Good morning! "+replySchedule(dayStart, events))
	}
}
