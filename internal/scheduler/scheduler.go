// Package scheduler fires once per minute and delivers quotes to every user
// whose local wall clock matches their configured send time.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/inqilobchi/iqtibosbot/internal/batch"
	"github.com/inqilobchi/iqtibosbot/internal/domain"
	"github.com/inqilobchi/iqtibosbot/internal/quotes"
)

// Sender is the slice of the transport the scheduler needs.
// telegram.Router implements it.
type Sender interface {
	SendQuotePhoto(userID int64, png []byte, caption string) error
	BotUsername() string
}

// Store is the slice of the repository the scheduler needs.
type Store interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListChannels(ctx context.Context) ([]domain.Channel, error)
	MarkSent(ctx context.Context, id int64, date string) error
}

// Admitter reports whether a user passes the mandatory-subscription gate.
type Admitter interface {
	Admitted(userID int64, channels []string) bool
}

// Picker selects one quote for a language.
type Picker interface {
	Pick(ctx context.Context, lang domain.Language) (*domain.Quote, error)
}

// Renderer turns quote text into an image.
type Renderer interface {
	Render(text, identity string) ([]byte, error)
}

// Scheduler runs the per-minute delivery pipeline.
type Scheduler struct {
	store    Store
	gate     Admitter
	picker   Picker
	renderer Renderer
	sender   Sender
	batcher  *batch.Batcher[domain.User]
	log      *zap.Logger

	// channelOverride, when non-empty, replaces the stored channel list as
	// the single mandatory subscription.
	channelOverride string

	cron *cron.Cron
	now  func() time.Time
}

func New(store Store, g Admitter, picker Picker, renderer Renderer, sender Sender,
	batcher *batch.Batcher[domain.User], channelOverride string, log *zap.Logger) *Scheduler {
	return &Scheduler{
		store:           store,
		gate:            g,
		picker:          picker,
		renderer:        renderer,
		sender:          sender,
		batcher:         batcher,
		channelOverride: channelOverride,
		log:             log,
		now:             time.Now,
	}
}

// Start registers the minute job and launches the cron loop. Ticks are
// serialized: a tick that is still draining its batches when the next minute
// fires causes that next tick to be skipped, not stacked.
func (s *Scheduler) Start(ctx context.Context) error {
	cronLog := cron.PrintfLogger(zap.NewStdLog(s.log.Named("cron")))
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLog),
		cron.Recover(cronLog),
	))
	if _, err := s.cron.AddFunc("* * * * *", func() { s.tick(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// tick performs one scheduling cycle. Errors are contained here; the loop
// must survive any single bad cycle.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().UTC()

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.log.Error("list users failed", zap.Error(err))
		return
	}

	channels, err := s.mandatoryChannels(ctx)
	if err != nil {
		s.log.Error("list channels failed", zap.Error(err))
		return
	}

	var candidates []domain.User
	for i := range users {
		if domain.IsSendCandidate(now, &users[i]) {
			candidates = append(candidates, users[i])
		}
	}
	if len(candidates) == 0 {
		return
	}
	s.log.Info("tick", zap.Int("candidates", len(candidates)))

	s.batcher.Run(ctx, candidates, func(ctx context.Context, u domain.User) error {
		return s.deliver(ctx, now, u, channels)
	})
}

// mandatoryChannels returns the handles the gate must check: the single
// override when configured, the stored list otherwise.
func (s *Scheduler) mandatoryChannels(ctx context.Context) ([]string, error) {
	if s.channelOverride != "" {
		return []string{s.channelOverride}, nil
	}
	chs, err := s.store.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	handles := make([]string, 0, len(chs))
	for _, ch := range chs {
		handles = append(handles, ch.Username)
	}
	return handles, nil
}

// deliver runs the per-user pipeline: gate, pick, render, send, stamp.
// A user who unsubscribed after onboarding is skipped silently.
func (s *Scheduler) deliver(ctx context.Context, now time.Time, u domain.User, channels []string) error {
	if !s.gate.Admitted(u.ID, channels) {
		return nil
	}

	q, err := s.picker.Pick(ctx, u.Lang)
	if errors.Is(err, quotes.ErrNoQuotes) {
		return nil
	}
	if err != nil {
		return err
	}

	png, err := s.renderer.Render(q.Text, s.sender.BotUsername())
	if err != nil {
		return err
	}

	if err := s.sender.SendQuotePhoto(u.ID, png, q.Text); err != nil {
		return err
	}

	date, err := domain.LocalDate(now, u.Timezone)
	if err != nil {
		return err
	}
	if err := s.store.MarkSent(ctx, u.ID, date); err != nil {
		return err
	}

	s.log.Info("quote delivered",
		zap.Int64("user", u.ID),
		zap.String("send_time", u.SendTime),
		zap.String("tz", u.Timezone),
	)
	return nil
}
