// Package alerts implements trigger evaluation and channel dispatch for
// alert subscriptions.
package alerts

import (
	"fmt"
	"math"

	"github.com/aakashv8900/commercesignal/internal/app/domain/alert"
	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

var rankBands = []int{100, 500, 1000, 5000, 10000, 50000, 100000}

const defaultTrendChangePercent = 20
const defaultArbitrageMarginPercent = 15

// Evaluate dispatches to the trigger identified by sub.AlertType. previous
// may be the zero value when no prior metric exists. Each call emits at
// most one event.
func Evaluate(sub alert.Subscription, current commerce.DailyMetric, previous *commerce.DailyMetric) alert.TriggerResult {
	switch sub.AlertType {
	case alert.TypePriceDrop:
		return evaluatePriceDrop(sub, current, previous)
	case alert.TypeStockout:
		return evaluateStockout(current, previous)
	case alert.TypeTrendChange:
		return evaluateTrendChange(sub, current, previous)
	case alert.TypeRankChange:
		return evaluateRankChange(current, previous)
	default:
		return alert.TriggerResult{}
	}
}

func evaluatePriceDrop(sub alert.Subscription, current commerce.DailyMetric, previous *commerce.DailyMetric) alert.TriggerResult {
	if sub.ThresholdValue != nil && current.Price <= *sub.ThresholdValue {
		return alert.TriggerResult{
			Fired:         true,
			EventType:     "price_below_threshold",
			EventData:     map[string]any{"price": current.Price, "threshold": *sub.ThresholdValue},
			CurrentValue:  fmt.Sprintf("%.2f", current.Price),
			Message:       fmt.Sprintf("price dropped to %.2f, at or below threshold %.2f", current.Price, *sub.ThresholdValue),
		}
	}

	if previous != nil && previous.Price > 0 && sub.ThresholdPercent != nil {
		dropPercent := (previous.Price - current.Price) / previous.Price * 100
		if dropPercent >= *sub.ThresholdPercent {
			return alert.TriggerResult{
				Fired:         true,
				EventType:     "price_drop_percent",
				EventData:     map[string]any{"drop_percent": round1(dropPercent)},
				PreviousValue: fmt.Sprintf("%.2f", previous.Price),
				CurrentValue:  fmt.Sprintf("%.2f", current.Price),
				Message:       fmt.Sprintf("price dropped %.1f%% (%.2f -> %.2f)", dropPercent, previous.Price, current.Price),
			}
		}
	}

	return alert.TriggerResult{}
}

func evaluateStockout(current commerce.DailyMetric, previous *commerce.DailyMetric) alert.TriggerResult {
	wasInStock := previous == nil || previous.InStock

	if !current.InStock && wasInStock {
		return alert.TriggerResult{
			Fired:        true,
			EventType:    "stockout",
			EventData:    map[string]any{"in_stock": false},
			CurrentValue: "out_of_stock",
			Message:      "product went out of stock",
		}
	}

	if current.InStock && previous != nil && !previous.InStock {
		return alert.TriggerResult{
			Fired:        true,
			EventType:    "back_in_stock",
			EventData:    map[string]any{"in_stock": true},
			CurrentValue: "in_stock",
			Message:      "product is back in stock",
		}
	}

	return alert.TriggerResult{}
}

func evaluateTrendChange(sub alert.Subscription, current commerce.DailyMetric, previous *commerce.DailyMetric) alert.TriggerResult {
	if previous == nil || previous.Rank == nil || current.Rank == nil || *previous.Rank == 0 {
		return alert.TriggerResult{}
	}

	threshold := defaultTrendChangePercent
	if sub.ThresholdPercent != nil {
		threshold = int(*sub.ThresholdPercent)
	}

	changePercent := float64(*previous.Rank-*current.Rank) / float64(*previous.Rank) * 100
	if math.Abs(changePercent) < float64(threshold) {
		return alert.TriggerResult{}
	}

	eventType := "rank_declining"
	if changePercent > 0 {
		eventType = "rank_improving"
	}

	return alert.TriggerResult{
		Fired:         true,
		EventType:     eventType,
		EventData:     map[string]any{"change_percent": round1(changePercent)},
		PreviousValue: fmt.Sprintf("%d", *previous.Rank),
		CurrentValue:  fmt.Sprintf("%d", *current.Rank),
		Message:       fmt.Sprintf("rank moved %.1f%% (%d -> %d)", changePercent, *previous.Rank, *current.Rank),
	}
}

func evaluateRankChange(current commerce.DailyMetric, previous *commerce.DailyMetric) alert.TriggerResult {
	if previous == nil || previous.Rank == nil || current.Rank == nil {
		return alert.TriggerResult{}
	}

	prevBand := bandFor(*previous.Rank)
	curBand := bandFor(*current.Rank)
	if prevBand == curBand {
		return alert.TriggerResult{}
	}

	eventType := "entered_top_rank"
	if *current.Rank > *previous.Rank {
		eventType = "exited_top_rank"
	}

	return alert.TriggerResult{
		Fired:         true,
		EventType:     eventType,
		EventData:     map[string]any{"previous_band": prevBand, "current_band": curBand},
		PreviousValue: fmt.Sprintf("%d", *previous.Rank),
		CurrentValue:  fmt.Sprintf("%d", *current.Rank),
		Message:       fmt.Sprintf("rank crossed a threshold band (%d -> %d)", *previous.Rank, *current.Rank),
	}
}

// bandFor returns the smallest rankBands entry the rank is at or below, or
// one past the end if it exceeds every band.
func bandFor(rank int) int {
	for _, band := range rankBands {
		if rank <= band {
			return band
		}
	}
	return rankBands[len(rankBands)-1] + 1
}

// EvaluateArbitrage fires when an externally-computed, already-USD-normalized
// margin crosses the subscription's threshold (default 15%).
func EvaluateArbitrage(sub alert.Subscription, marginPercent float64) alert.TriggerResult {
	threshold := float64(defaultArbitrageMarginPercent)
	if sub.ThresholdPercent != nil {
		threshold = *sub.ThresholdPercent
	}
	if marginPercent < threshold {
		return alert.TriggerResult{}
	}
	return alert.TriggerResult{
		Fired:        true,
		EventType:    "arbitrage_opportunity",
		EventData:    map[string]any{"margin_percent": round1(marginPercent)},
		CurrentValue: fmt.Sprintf("%.1f", marginPercent),
		Message:      fmt.Sprintf("arbitrage margin of %.1f%% exceeds threshold %.1f%%", marginPercent, threshold),
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
