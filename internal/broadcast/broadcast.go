package broadcast

import (
	"context"
	"fmt"
	"time"

	"finanzazen-telegram-bot/internal/content"
	"finanzazen-telegram-bot/lib/helpers"
	"finanzazen-telegram-bot/lib/translation"

	log "github.com/sirupsen/logrus"
)

// Notifier delivers a message to a chat.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// Subscribers yields every registered chat id.
type Subscribers interface {
	AllSubscribers() ([]int64, error)
}

// Broadcaster sends one random phrase from the static content list to
// every subscriber once a day at a fixed hour.
type Broadcaster struct {
	subscribers Subscribers
	notifier    Notifier
	phrases     *content.List
	hour        int

	// OnSent, when set, is called once per delivered message.
	OnSent func()

	now func() time.Time
}

func New(subscribers Subscribers, notifier Notifier, phrases *content.List, hour int) *Broadcaster {
	return &Broadcaster{
		subscribers: subscribers,
		notifier:    notifier,
		phrases:     phrases,
		hour:        hour,
		now:         time.Now,
	}
}

// Start schedules daily runs until the context is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	go func() {
		for {
			timer := time.NewTimer(b.untilNextRun())
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				b.Run()
			}
		}
	}()
	log.Infof("daily broadcast scheduled at %02d:00", b.hour)
}

func (b *Broadcaster) untilNextRun() time.Duration {
	now := b.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), b.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Run sends one broadcast. A delivery failure for one subscriber never
// prevents delivery to the rest.
func (b *Broadcaster) Run() {
	subscribers, err := b.subscribers.AllSubscribers()
	if err != nil {
		log.Errorf("failed to load subscribers: %v", err)
		return
	}
	if len(subscribers) == 0 {
		return
	}

	text := fmt.Sprintf(
		"🌅 *%s*\n\n_%s_",
		helpers.EscapeMarkdownV2(translation.Translate("Thought of the day")),
		helpers.EscapeMarkdownV2(b.phrases.Random()),
	)

	var delivered int
	for _, chatID := range subscribers {
		if err := b.notifier.Notify(chatID, text); err != nil {
			log.Errorf("failed to broadcast to chat %d: %v", chatID, err)
			continue
		}
		delivered++
		if b.OnSent != nil {
			b.OnSent()
		}
	}

	log.Infof("daily broadcast delivered to %d/%d subscribers", delivered, len(subscribers))
}
