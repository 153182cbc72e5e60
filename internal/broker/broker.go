// Package broker is the façade that ties event intake, signing, compliance
// accounting, and subscription matching into one atomic unit per application.
package broker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pinksync/internal/audit"
	"pinksync/internal/capability"
	"pinksync/internal/compliance"
	"pinksync/internal/event"
	"pinksync/internal/platform/metrics"
	"pinksync/internal/signature"
	"pinksync/internal/subscription"
	id "pinksync/pkg/domain"
	dErrors "pinksync/pkg/domain-errors"
)

// DeliverySink receives an accepted event with its matched subscriptions for
// asynchronous webhook delivery. Implementations must not block.
type DeliverySink interface {
	Deliver(ev event.Event, matches []subscription.Subscription)
}

// StreamSink publishes accepted events to the event stream. Implementations
// must not block the submission path on broker unavailability.
type StreamSink interface {
	Publish(ctx context.Context, ev event.Event)
}

// Broker coordinates the submission pipeline. All state mutation for one
// application happens under that application's lock, so observers never see
// an event stored without its compliance counter bumped.
type Broker struct {
	events        event.Store
	engine        *compliance.Engine
	capabilities  *capability.Service
	subscriptions *subscription.Service
	delivery      DeliverySink // optional
	stream        StreamSink   // optional
	auditor       *audit.Publisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
	tracer        trace.Tracer

	locks appLocks
}

// Options carries the optional collaborators.
type Options struct {
	Delivery DeliverySink
	Stream   StreamSink
	Auditor  *audit.Publisher
	Metrics  *metrics.Metrics
}

func New(
	events event.Store,
	engine *compliance.Engine,
	capabilities *capability.Service,
	subscriptions *subscription.Service,
	logger *slog.Logger,
	opts Options,
) *Broker {
	return &Broker{
		events:        events,
		engine:        engine,
		capabilities:  capabilities,
		subscriptions: subscriptions,
		delivery:      opts.Delivery,
		stream:        opts.Stream,
		auditor:       opts.Auditor,
		metrics:       opts.Metrics,
		logger:        logger,
		tracer:        otel.Tracer("pinksync/broker"),
	}
}

// SubmitInput carries an already-parsed event submission.
type SubmitInput struct {
	AppID     id.AppID
	UserID    id.UserID
	Intent    id.Intent
	Timestamp time.Time // zero means "now"
	Metadata  map[string]any
	LevelHint id.ComplianceLevel
}

// SubmitResult is the outcome of one accepted submission.
type SubmitResult struct {
	Event       event.Event
	EventsCount int64
	Matched     []subscription.Subscription
}

// SubmitEvent runs the full intake pipeline for one event: sign, store,
// bump the compliance counter, and match subscription filters. Matching uses
// the application's compliance level as it stood before this event's own
// counter increment, so an event can never cause its own match.
func (b *Broker) SubmitEvent(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	ctx, span := b.tracer.Start(ctx, "broker.SubmitEvent",
		trace.WithAttributes(
			attribute.String("app_id", string(in.AppID)),
			attribute.String("intent", in.Intent.String()),
		))
	defer span.End()

	unlock := b.locks.lock(in.AppID)
	defer unlock()

	res, err := b.submitLocked(ctx, in)
	if err != nil {
		b.metrics.IncEventsRejected()
		b.emitAudit(audit.Event{
			Action: audit.ActionEventRejected,
			AppID:  in.AppID,
			Detail: err.Error(),
		})
		return SubmitResult{}, err
	}

	b.metrics.IncEventsAccepted()
	b.metrics.ObserveMatches(len(res.Matched))
	b.emitAudit(audit.Event{
		Action: audit.ActionEventAccepted,
		AppID:  in.AppID,
		Detail: res.Event.EventID,
	})
	b.logger.InfoContext(ctx, "event accepted",
		"event_id", res.Event.EventID,
		"app_id", in.AppID,
		"intent", in.Intent,
		"matched", len(res.Matched),
	)

	if b.delivery != nil && len(res.Matched) > 0 {
		b.delivery.Deliver(res.Event, res.Matched)
	}
	if b.stream != nil {
		b.stream.Publish(ctx, res.Event)
	}
	return res, nil
}

// submitLocked is the critical section. The caller holds the app lock.
func (b *Broker) submitLocked(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	now := in.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// Level as of before this event counts toward anything.
	preLevel, err := b.engine.CurrentLevel(ctx, in.AppID)
	if err != nil {
		return SubmitResult{}, err
	}

	ev := event.Event{
		EventID:   "evt_" + uuid.NewString(),
		AppID:     in.AppID,
		UserID:    in.UserID,
		Intent:    in.Intent,
		Timestamp: now,
		Metadata:  in.Metadata,
		LevelHint: in.LevelHint,
	}
	ev.Signature = signature.Sign(ev.EventID, ev.AppID, ev.Intent, ev.Timestamp)

	if err := b.events.Append(ctx, ev); err != nil {
		return SubmitResult{}, dErrors.Wrap(dErrors.CodeInternal, "append event", err)
	}

	count, err := b.engine.RecordEvent(ctx, in.AppID, now)
	if err != nil {
		return SubmitResult{}, err
	}

	matched, err := b.subscriptions.Match(ctx, in.AppID, in.Intent, preLevel, now)
	if err != nil {
		return SubmitResult{}, err
	}

	return SubmitResult{Event: ev, EventsCount: count, Matched: matched}, nil
}

// BatchResult reports per-item outcomes for a batch submission. Items are
// independent; one failure does not roll back its siblings.
type BatchResult struct {
	Accepted []SubmitResult
	Rejected []BatchRejection
}

type BatchRejection struct {
	Index int
	Err   error
}

// SubmitBatch submits events in order. Each item goes through the same
// pipeline as a single submission.
func (b *Broker) SubmitBatch(ctx context.Context, ins []SubmitInput) BatchResult {
	var out BatchResult
	for i, in := range ins {
		res, err := b.SubmitEvent(ctx, in)
		if err != nil {
			out.Rejected = append(out.Rejected, BatchRejection{Index: i, Err: err})
			continue
		}
		out.Accepted = append(out.Accepted, res)
	}
	return out
}

// GetCompliance derives the current compliance report for an application.
func (b *Broker) GetCompliance(ctx context.Context, appID id.AppID) (compliance.Report, error) {
	unlock := b.locks.lock(appID)
	defer unlock()
	return b.engine.Derive(ctx, appID)
}

// ListEvents returns the application's accepted events in acceptance order.
func (b *Broker) ListEvents(ctx context.Context, appID id.AppID) ([]event.Event, error) {
	return b.events.ListByApp(ctx, appID)
}

// DeclareCapability registers or replaces an application's declaration.
func (b *Broker) DeclareCapability(ctx context.Context, in capability.DeclareInput) (capability.Declaration, error) {
	decl, err := b.capabilities.Declare(ctx, in, time.Now().UTC())
	if err != nil {
		return capability.Declaration{}, err
	}
	b.metrics.IncCapabilityDeclared()
	b.emitAudit(audit.Event{
		Action: audit.ActionCapabilityDeclared,
		AppID:  in.AppID,
	})
	return decl, nil
}

// QueryCapabilities lists declarations matching the filter.
func (b *Broker) QueryCapabilities(ctx context.Context, filter capability.QueryFilter) ([]capability.Declaration, error) {
	return b.capabilities.Query(ctx, filter)
}

// CreateSubscription registers a consumer's subscription.
func (b *Broker) CreateSubscription(ctx context.Context, in subscription.SubscribeInput) (subscription.Subscription, error) {
	sub, err := b.subscriptions.Subscribe(ctx, in, time.Now().UTC())
	if err != nil {
		return subscription.Subscription{}, err
	}
	b.metrics.IncSubscriptionsCreated()
	b.emitAudit(audit.Event{
		Action:     audit.ActionSubscriptionCreated,
		ConsumerID: in.ConsumerID,
		Detail:     sub.SubscriptionID,
	})
	return sub, nil
}

// RecordViolation appends an audited violation to the application's state.
func (b *Broker) RecordViolation(ctx context.Context, appID id.AppID, auditorID string, v compliance.Violation) error {
	unlock := b.locks.lock(appID)
	defer unlock()

	if err := b.engine.RecordViolation(ctx, appID, v); err != nil {
		return err
	}
	b.metrics.IncViolationsRecorded()
	b.emitAudit(audit.Event{
		Action:  audit.ActionViolationRecorded,
		AppID:   appID,
		ActorID: auditorID,
		Detail:  v.Type,
	})
	return nil
}

func (b *Broker) emitAudit(ev audit.Event) {
	if b.auditor == nil {
		return
	}
	if !b.auditor.Emit(ev) {
		b.logger.Warn("audit inbox full, event dropped", "action", ev.Action)
	}
}
