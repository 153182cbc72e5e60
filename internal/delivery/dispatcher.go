// Package delivery pushes accepted events to matched consumers' webhooks.
// Delivery is best-effort: the broker's acceptance of an event never depends
// on whether any consumer was reachable.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"pinksync/internal/event"
	"pinksync/internal/platform/metrics"
	"pinksync/internal/subscription"
)

// Task is one accepted event paired with the subscriptions it matched.
type Task struct {
	Event   event.Event
	Matches []subscription.Subscription
}

// payload is the wire shape POSTed to consumer webhooks.
type payload struct {
	EventID        string         `json:"event_id"`
	AppID          string         `json:"app_id"`
	UserID         string         `json:"user_id,omitempty"`
	Intent         string         `json:"intent"`
	Timestamp      time.Time      `json:"timestamp"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Signature      string         `json:"signature"`
	SubscriptionID string         `json:"subscription_id"`
}

// Dispatcher fans deliveries out over a bounded worker pool. Deliver is
// non-blocking; when the inbox is full the task is dropped and counted.
type Dispatcher struct {
	inbox   chan Task
	client  *http.Client
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewDispatcher(workers int, timeout time.Duration, buffer int, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		inbox:   make(chan Task, buffer),
		client:  &http.Client{Timeout: timeout},
		workers: workers,
		metrics: m,
		logger:  logger,
	}
}

// Deliver implements the broker's delivery sink.
func (d *Dispatcher) Deliver(ev event.Event, matches []subscription.Subscription) {
	select {
	case d.inbox <- Task{Event: ev, Matches: matches}:
	default:
		d.metrics.IncWebhookDelivery("dropped")
		d.logger.Warn("delivery inbox full, task dropped",
			"event_id", ev.EventID,
			"matches", len(matches),
		)
	}
}

// Run consumes tasks until the context is canceled. Each matched
// subscription gets its own POST; one slow consumer cannot starve the rest
// beyond the pool bound.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case task := <-d.inbox:
					for _, sub := range task.Matches {
						d.post(ctx, task.Event, sub)
					}
				}
			}
		})
	}
	return g.Wait()
}

func (d *Dispatcher) post(ctx context.Context, ev event.Event, sub subscription.Subscription) {
	body, err := json.Marshal(payload{
		EventID:        ev.EventID,
		AppID:          string(ev.AppID),
		UserID:         string(ev.UserID),
		Intent:         ev.Intent.String(),
		Timestamp:      ev.Timestamp,
		Metadata:       ev.Metadata,
		Signature:      ev.Signature,
		SubscriptionID: sub.SubscriptionID,
	})
	if err != nil {
		d.metrics.IncWebhookDelivery("failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.WebhookURL, bytes.NewReader(body))
	if err != nil {
		d.metrics.IncWebhookDelivery("failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-PinkSync-Signature", ev.Signature)

	resp, err := d.client.Do(req)
	if err != nil {
		d.metrics.IncWebhookDelivery("failed")
		d.logger.WarnContext(ctx, "webhook delivery failed",
			"event_id", ev.EventID,
			"subscription_id", sub.SubscriptionID,
			"error", err,
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		d.metrics.IncWebhookDelivery("ok")
		return
	}
	d.metrics.IncWebhookDelivery("failed")
	d.logger.WarnContext(ctx, "webhook delivery rejected",
		"event_id", ev.EventID,
		"subscription_id", sub.SubscriptionID,
		"status", fmt.Sprintf("%d", resp.StatusCode),
	)
}
