package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aakashv8900/commercesignal/internal/app/domain/alert"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/storage"
)

func TestEvaluatePriceDrop_FiresOnThresholdValue(t *testing.T) {
	threshold := 50.0
	sub := alert.Subscription{AlertType: alert.TypePriceDrop, ThresholdValue: &threshold}
	current := commerce.DailyMetric{Price: 45}

	result := Evaluate(sub, current, nil)
	require.True(t, result.Fired)
	require.Equal(t, "price_below_threshold", result.EventType)
}

func TestEvaluatePriceDrop_NoFireAboveThreshold(t *testing.T) {
	threshold := 50.0
	sub := alert.Subscription{AlertType: alert.TypePriceDrop, ThresholdValue: &threshold}
	current := commerce.DailyMetric{Price: 60}

	result := Evaluate(sub, current, nil)
	require.False(t, result.Fired)
}

func TestEvaluateStockout_FiresOnTransitionToOutOfStock(t *testing.T) {
	sub := alert.Subscription{AlertType: alert.TypeStockout}
	previous := commerce.DailyMetric{InStock: true}
	current := commerce.DailyMetric{InStock: false}

	result := Evaluate(sub, current, &previous)
	require.True(t, result.Fired)
	require.Equal(t, "stockout", result.EventType)
}

func TestEvaluateRankChange_FiresOnBandCrossing(t *testing.T) {
	sub := alert.Subscription{AlertType: alert.TypeRankChange}
	prevRank, curRank := 600, 80
	previous := commerce.DailyMetric{Rank: &prevRank}
	current := commerce.DailyMetric{Rank: &curRank}

	result := Evaluate(sub, current, &previous)
	require.True(t, result.Fired)
	require.Equal(t, "entered_top_rank", result.EventType)
}

func TestEvaluateArbitrage_FiresAtOrAboveThreshold(t *testing.T) {
	sub := alert.Subscription{AlertType: alert.TypeArbitrage}
	result := EvaluateArbitrage(sub, 18.0)
	require.True(t, result.Fired)
	require.Equal(t, "arbitrage_opportunity", result.EventType)
}

func TestEvaluateArbitrage_NoFireBelowThreshold(t *testing.T) {
	sub := alert.Subscription{AlertType: alert.TypeArbitrage}
	result := EvaluateArbitrage(sub, 5.0)
	require.False(t, result.Fired)
}

func TestSender_MCPQueueChannelQueuesPayload(t *testing.T) {
	queue := NewMCPQueue()
	sender := NewSender(queue)
	sub := alert.Subscription{UserID: "user-1", Channel: alert.ChannelMCPQueue}
	event := alert.Event{ID: "evt-1", EventType: "stockout"}

	err := sender.Send(context.Background(), sub, event, time.Now())
	require.NoError(t, err)

	pending := queue.GetPendingAlerts("user-1")
	require.Len(t, pending, 1)
	require.Equal(t, "stockout", pending[0].EventType)
}

func TestSender_WebhookChannelPostsJSONAndSucceedsOn2xx(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewSender(NewMCPQueue())
	sub := alert.Subscription{Channel: alert.ChannelWebhook, WebhookURL: server.URL}
	event := alert.Event{ID: "evt-2", EventType: "price_below_threshold"}

	err := sender.Send(context.Background(), sub, event, time.Now())
	require.NoError(t, err)
	require.Equal(t, "evt-2", received.EventID)
}

func TestSender_WebhookChannelDoesNotRetryNon2xx(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewSender(NewMCPQueue())
	sub := alert.Subscription{Channel: alert.ChannelWebhook, WebhookURL: server.URL}

	err := sender.Send(context.Background(), sub, alert.Event{ID: "evt-3"}, time.Now())
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestSender_UnknownChannelReturnsError(t *testing.T) {
	sender := NewSender(NewMCPQueue())
	sub := alert.Subscription{Channel: "carrier_pigeon"}

	err := sender.Send(context.Background(), sub, alert.Event{}, time.Now())
	require.Error(t, err)
}

func TestEngine_ProcessMetricPersistsEventAndDeliversToMCPQueue(t *testing.T) {
	store := storage.NewMemory()
	ctx := context.Background()

	sub, err := store.CreateAlertSubscription(ctx, alert.Subscription{
		UserID:    "user-1",
		AlertType: alert.TypeStockout,
		ProductID: "prod-1",
		Channel:   alert.ChannelMCPQueue,
		IsActive:  true,
	})
	require.NoError(t, err)

	queue := NewMCPQueue()
	engine := NewEngine(store, NewSender(queue))

	previous := commerce.DailyMetric{InStock: true}
	current := commerce.DailyMetric{InStock: false}
	now := time.Now()

	err = engine.ProcessMetric(ctx, "prod-1", current, &previous, now)
	require.NoError(t, err)

	events, err := store.ListAlertEvents(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "stockout", events[0].EventType)

	pending := queue.GetPendingAlerts("user-1")
	require.Len(t, pending, 1)
}

func TestEngine_ProcessMetricSkipsArbitrageSubscriptions(t *testing.T) {
	store := storage.NewMemory()
	ctx := context.Background()

	_, err := store.CreateAlertSubscription(ctx, alert.Subscription{
		UserID:    "user-1",
		AlertType: alert.TypeArbitrage,
		ProductID: "prod-1",
		Channel:   alert.ChannelMCPQueue,
		IsActive:  true,
	})
	require.NoError(t, err)

	engine := NewEngine(store, NewSender(NewMCPQueue()))
	err = engine.ProcessMetric(ctx, "prod-1", commerce.DailyMetric{InStock: false}, nil, time.Now())
	require.NoError(t, err)
}

func TestEngine_GetRecentCountReflectsPersistedEvents(t *testing.T) {
	store := storage.NewMemory()
	ctx := context.Background()
	now := time.Now()

	sub, err := store.CreateAlertSubscription(ctx, alert.Subscription{
		UserID:    "user-1",
		AlertType: alert.TypeStockout,
		ProductID: "prod-1",
		Channel:   alert.ChannelMCPQueue,
		IsActive:  true,
	})
	require.NoError(t, err)

	_, err = store.CreateAlertEvent(ctx, alert.Event{SubscriptionID: sub.ID, TriggeredAt: now})
	require.NoError(t, err)

	engine := NewEngine(store, NewSender(NewMCPQueue()))
	count, err := engine.GetRecentCount(ctx, sub.ID, 24, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
