package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aakashv8900/commercesignal/infrastructure/metrics"
	"github.com/aakashv8900/commercesignal/internal/app/domain/alert"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/storage"
)

// Engine evaluates subscriptions against metric pairs, persists fired
// events before dispatch, and reports delivery outcome.
type Engine struct {
	store  storage.Store
	sender *Sender
}

func NewEngine(store storage.Store, sender *Sender) *Engine {
	return &Engine{store: store, sender: sender}
}

// ProcessMetric evaluates every active subscription for productID and
// dispatches any fired triggers. An event row is always created before
// the channel send, so a send failure still leaves a record. A single
// subscription's delivery failure does not stop the rest from evaluating;
// only a store error aborts the batch.
func (e *Engine) ProcessMetric(ctx context.Context, productID string, current commerce.DailyMetric, previous *commerce.DailyMetric, now time.Time) error {
	subs, err := e.store.ListActiveAlertSubscriptionsForProduct(ctx, productID)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if sub.AlertType == alert.TypeArbitrage {
			continue // arbitrage triggers are evaluated by ProcessArbitrage
		}

		result := Evaluate(sub, current, previous)
		if !result.Fired {
			continue
		}
		if err := e.dispatch(ctx, sub, result, now); err != nil {
			if _, ok := err.(deliveryError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ProcessArbitrage evaluates every active arbitrage subscription for
// productID against an externally-computed margin.
func (e *Engine) ProcessArbitrage(ctx context.Context, productID string, marginPercent float64, now time.Time) error {
	subs, err := e.store.ListActiveAlertSubscriptionsForProduct(ctx, productID)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if sub.AlertType != alert.TypeArbitrage {
			continue
		}
		result := EvaluateArbitrage(sub, marginPercent)
		if !result.Fired {
			continue
		}
		if err := e.dispatch(ctx, sub, result, now); err != nil {
			if _, ok := err.(deliveryError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// deliveryError marks a dispatch failure as having happened after the
// event row was already persisted, so callers processing a batch of
// subscriptions can keep going instead of aborting on one bad channel.
type deliveryError struct{ err error }

func (d deliveryError) Error() string { return d.err.Error() }
func (d deliveryError) Unwrap() error { return d.err }

// dispatch persists the fired event before invoking the channel send, per
// the append-only AlertEventStore contract: a send failure still leaves a
// record of the trigger having fired. The store has no method that writes a
// delivery outcome onto an existing row (its only in-place change is
// AcknowledgeAlertEvent), so the delivery outcome travels only through the
// returned error, not back into the persisted event.
func (e *Engine) dispatch(ctx context.Context, sub alert.Subscription, result alert.TriggerResult, now time.Time) error {
	event := alert.Event{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		EventType:      result.EventType,
		EventData:      result.EventData,
		PreviousValue:  result.PreviousValue,
		CurrentValue:   result.CurrentValue,
		Message:        result.Message,
		TriggeredAt:    now,
	}

	created, err := e.store.CreateAlertEvent(ctx, event)
	if err != nil {
		return err
	}
	metrics.Global().RecordAlertTriggered(string(sub.AlertType))

	deliveryStart := time.Now()
	sendErr := e.sender.Send(ctx, sub, created, now)
	status := "ok"
	if sendErr != nil {
		status = "failed"
	}
	metrics.Global().RecordAlertDelivery(string(sub.Channel), status, time.Since(deliveryStart))
	if sendErr != nil {
		return deliveryError{sendErr}
	}
	return nil
}

// GetRecentCount lets callers throttle by counting how many events a
// subscription has fired in the last `hours`.
func (e *Engine) GetRecentCount(ctx context.Context, subscriptionID string, hours int, now time.Time) (int, error) {
	since := now.Add(-time.Duration(hours) * time.Hour)
	return e.store.CountAlertEventsSince(ctx, subscriptionID, since)
}
