package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// outboxKey is the Redis list holding queued messages, newest first.
const outboxKey = "mail:outbox"

// popTimeout bounds each blocking pop so the worker notices shutdown.
const popTimeout = 5 * time.Second

// Outbox is the producer side of the queue. It satisfies the appointment
// service's Notifier: enqueue failures are logged and dropped, never
// surfaced into the request.
type Outbox struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewOutbox(client *redis.Client, log zerolog.Logger) *Outbox {
	return &Outbox{client: client, log: log}
}

func (o *Outbox) Notify(ctx context.Context, to, subject, body, subheading string) {
	if err := o.Enqueue(ctx, Message{To: to, Subject: subject, Body: body, Subheading: subheading}); err != nil {
		o.log.Error().Err(err).Str("to", to).Str("subject", subject).
			Msg("mail enqueue failed, notification dropped")
		return
	}
	o.log.Info().Str("to", to).Str("subject", subject).Msg("mail queued")
}

func (o *Outbox) Enqueue(ctx context.Context, m Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}
	if err := o.client.LPush(ctx, outboxKey, payload).Err(); err != nil {
		return fmt.Errorf("push mail message: %w", err)
	}
	return nil
}

// Worker is the consumer side: it drains the outbox and hands each
// message to the sender with bounded retries.
type Worker struct {
	client      *redis.Client
	sender      Sender
	log         zerolog.Logger
	maxAttempts int
	sleep       func(time.Duration)
}

func NewWorker(client *redis.Client, sender Sender, maxAttempts int, log zerolog.Logger) *Worker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Worker{
		client:      client,
		sender:      sender,
		log:         log,
		maxAttempts: maxAttempts,
		sleep:       time.Sleep,
	}
}

// Run blocks until the context is done, popping and delivering messages.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Msg("mail worker running")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("mail worker stopping")
			return ctx.Err()
		default:
		}

		res, err := w.client.BRPop(ctx, popTimeout, outboxKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // queue idle
			}
			if ctx.Err() != nil {
				w.log.Info().Msg("mail worker stopping")
				return ctx.Err()
			}
			w.log.Error().Err(err).Msg("outbox pop failed")
			w.sleep(time.Second)
			continue
		}

		// BRPop returns [key, value]
		if len(res) == 2 {
			w.deliver([]byte(res[1]))
		}
	}
}

// deliver tries the sender up to maxAttempts times. A message that still
// fails is logged and dropped; mail is best-effort by contract.
func (w *Worker) deliver(payload []byte) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		w.log.Error().Err(err).Msg("discarding malformed outbox payload")
		return
	}

	var err error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err = w.sender.Send(m); err == nil {
			w.log.Info().Str("to", m.To).Str("subject", m.Subject).
				Int("attempt", attempt).Msg("mail delivered")
			return
		}
		w.log.Warn().Err(err).Str("to", m.To).Int("attempt", attempt).Msg("mail delivery failed")
		if attempt < w.maxAttempts {
			w.sleep(time.Duration(attempt) * time.Second)
		}
	}

	w.log.Error().Err(err).Str("to", m.To).Str("subject", m.Subject).
		Int("attempts", w.maxAttempts).Msg("giving up on mail delivery")
}
