package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	svcerrors "github.com/aakashv8900/commercesignal/infrastructure/errors"
	"github.com/aakashv8900/commercesignal/infrastructure/httputil"
	"github.com/aakashv8900/commercesignal/infrastructure/utils"
	"github.com/aakashv8900/commercesignal/internal/app/domain/alert"
)

const webhookTimeout = 10 * time.Second
const webhookMaxAttempts = 3

type webhookPayload struct {
	SubscriptionID string    `json:"subscription_id"`
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Message        string    `json:"message"`
	Data           any       `json:"data"`
	Timestamp      time.Time `json:"timestamp"`
}

// MCPQueue is the in-memory, process-wide per-user queue backing the
// "mcp_queue" channel. Safe for concurrent appends from different
// subscriptions.
type MCPQueue struct {
	mu     sync.Mutex
	queues map[string][]webhookPayload
}

func NewMCPQueue() *MCPQueue {
	return &MCPQueue{queues: make(map[string][]webhookPayload)}
}

func (q *MCPQueue) push(userID string, payload webhookPayload) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queues[userID] = append(q.queues[userID], payload)
}

// GetPendingAlerts returns (and does not clear) a user's queued alerts.
func (q *MCPQueue) GetPendingAlerts(userID string) []webhookPayload {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]webhookPayload, len(q.queues[userID]))
	copy(out, q.queues[userID])
	return out
}

// ClearAlerts empties a user's queue.
func (q *MCPQueue) ClearAlerts(userID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.queues, userID)
}

// Sender delivers a fired alert event over the subscription's channel.
type Sender struct {
	httpClient *http.Client
	queue      *MCPQueue
}

func NewSender(queue *MCPQueue) *Sender {
	client := &http.Client{Transport: httputil.DefaultTransportWithMinTLS12()}
	return &Sender{httpClient: httputil.CopyHTTPClientWithTimeout(client, webhookTimeout, true), queue: queue}
}

// Send dispatches event over sub's configured channel and reports delivery
// outcome. Event must already be persisted by the caller before Send runs,
// so a send failure still leaves an event record.
func (s *Sender) Send(ctx context.Context, sub alert.Subscription, event alert.Event, now time.Time) error {
	payload := webhookPayload{
		SubscriptionID: sub.ID,
		EventID:        event.ID,
		EventType:      event.EventType,
		Message:        utils.Coalesce(event.Message, event.CurrentValue),
		Data:           event.EventData,
		Timestamp:      now,
	}

	switch sub.Channel {
	case alert.ChannelWebhook:
		return s.sendWebhook(ctx, sub.WebhookURL, payload)
	case alert.ChannelMCPQueue:
		s.queue.push(sub.UserID, payload)
		return nil
	case alert.ChannelEmail:
		return nil // placeholder channel, always successful
	default:
		return svcerrors.UnknownChannel(string(sub.Channel))
	}
}

func (s *Sender) sendWebhook(ctx context.Context, rawURL string, payload webhookPayload) error {
	normalized, _, err := httputil.NormalizeWebhookURL(rawURL)
	if err != nil {
		return svcerrors.DeliveryFailed("webhook", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < webhookMaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, normalized, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue // network error: retry
		}
		resp.Body.Close()
		if resp.StatusCode < 300 {
			return nil
		}
		// non-2xx does not retry
		return svcerrors.DeliveryFailed("webhook", nil).WithDetails("status", resp.StatusCode)
	}
	return svcerrors.DeliveryFailed("webhook", lastErr)
}
