package signals

import (
	"fmt"
	"time"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

const discountMinThreshold = 0.05

// DiscountEvent is a detected significant price drop below the trailing
// 7-day moving average.
type DiscountEvent struct {
	Date             time.Time
	OriginalPrice    float64
	DiscountedPrice  float64
	DiscountPercent  float64
}

// DiscountCyclePrediction is the output of the discount-cycle predictor.
type DiscountCyclePrediction struct {
	AvgCycleDays           float64
	HasCycle               bool
	NextPredictedDiscount  time.Time
	Confidence             float64
	HistoricalDiscounts    []DiscountEvent
	TypicalDiscountPercent float64
	Interpretation         string
}

// DiscountCycle walks the series with a trailing 7-day price moving average
// as baseline, detects discount events, and predicts the next one from the
// mean cycle gap. Requires at least 14 points and at least 2 events to
// predict a cycle.
func DiscountCycle(metrics []commerce.DailyMetric, now time.Time) DiscountCyclePrediction {
	if len(metrics) < 14 {
		return DiscountCyclePrediction{Interpretation: "insufficient price history (need 14+ days)"}
	}

	discounts := detectDiscounts(metrics)
	if len(discounts) < 2 {
		return DiscountCyclePrediction{
			Confidence:             0.1,
			HistoricalDiscounts:    discounts,
			TypicalDiscountPercent: avgDiscount(discounts),
			Interpretation:         "not enough discount events to detect a cycle",
		}
	}

	cycleDays, cycleStd := calculateCycle(discounts)
	lastDiscount := discounts[len(discounts)-1]
	nextPredicted := lastDiscount.Date.AddDate(0, 0, int(cycleDays))

	confidence := discountConfidence(len(discounts), cycleStd, cycleDays)
	typical := avgDiscount(discounts)

	return DiscountCyclePrediction{
		AvgCycleDays:           round1(cycleDays),
		HasCycle:               true,
		NextPredictedDiscount:  nextPredicted,
		Confidence:             confidence,
		HistoricalDiscounts:    discounts,
		TypicalDiscountPercent: typical,
		Interpretation:         interpretDiscountCycle(cycleDays, nextPredicted, typical, confidence, now),
	}
}

func detectDiscounts(metrics []commerce.DailyMetric) []DiscountEvent {
	var discounts []DiscountEvent
	if len(metrics) < 7 {
		return discounts
	}

	for i := 7; i < len(metrics); i++ {
		var baselinePrices []float64
		for _, m := range metrics[i-7 : i] {
			baselinePrices = append(baselinePrices, m.Price)
		}
		baseline := mean(baselinePrices)
		current := metrics[i].Price

		if baseline <= 0 {
			continue
		}
		discountPct := (baseline - current) / baseline
		if discountPct < discountMinThreshold {
			continue
		}
		if len(discounts) == 0 || metrics[i].Date.Sub(discounts[len(discounts)-1].Date).Hours()/24 > 3 {
			discounts = append(discounts, DiscountEvent{
				Date:            metrics[i].Date,
				OriginalPrice:   baseline,
				DiscountedPrice: current,
				DiscountPercent: round1(discountPct * 100),
			})
		}
	}
	return discounts
}

func calculateCycle(discounts []DiscountEvent) (avgGap, stdGap float64) {
	if len(discounts) < 2 {
		return 0, 0
	}
	var gaps []float64
	for i := 1; i < len(discounts); i++ {
		gaps = append(gaps, discounts[i].Date.Sub(discounts[i-1].Date).Hours()/24)
	}
	return mean(gaps), stddev(gaps)
}

func discountConfidence(numEvents int, cycleStd, cycleAvg float64) float64 {
	var base float64
	switch {
	case numEvents >= 5:
		base = 0.7
	case numEvents >= 3:
		base = 0.5
	default:
		base = 0.3
	}

	consistency := 0.5
	if cycleAvg > 0 {
		ratio := cycleStd / cycleAvg
		if ratio > 0.5 {
			ratio = 0.5
		}
		consistency = 1.0 - ratio
	}

	confidence := base*consistency + 0.2
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

func avgDiscount(discounts []DiscountEvent) float64 {
	if len(discounts) == 0 {
		return 0
	}
	var pcts []float64
	for _, d := range discounts {
		pcts = append(pcts, d.DiscountPercent)
	}
	return mean(pcts)
}

func interpretDiscountCycle(cycleDays float64, nextPredicted time.Time, typicalDiscount, confidence float64, now time.Time) string {
	daysUntil := int(nextPredicted.Sub(now).Hours() / 24)

	var timing string
	switch {
	case daysUntil < 0:
		timing = "may have already started or is imminent"
	case daysUntil <= 7:
		timing = fmt.Sprintf("expected within %d days", daysUntil)
	case daysUntil <= 30:
		timing = fmt.Sprintf("expected in ~%d weeks", daysUntil/7)
	default:
		timing = fmt.Sprintf("expected around %s", nextPredicted.Format("Jan 2"))
	}

	var confText string
	switch {
	case confidence > 0.7:
		confText = "high confidence"
	case confidence > 0.4:
		confText = "moderate confidence"
	default:
		confText = "low confidence"
	}

	return fmt.Sprintf("%s: ~%.0f-day discount cycle detected. Next discount (%.0f%% typical) %s.", confText, cycleDays, typicalDiscount, timing)
}
