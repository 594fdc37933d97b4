package scheduler

import (
	"context"
	"time"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
	"github.com/aakashv8900/commercesignal/internal/app/services/extractors"
)

// ingestProduct upserts the Product identified by rec's natural key and
// appends one DailyMetric observation, returning the newly-created metric
// and the prior metric (nil if this product had none). Each call commits one
// product on its own, with no batching across products. The product upsert
// and the metric append are separate store calls, not one transaction: if
// the append fails, the upserted product row stays and no metric is written.
func (s *Scheduler) ingestProduct(ctx context.Context, rec *extractors.ProductRecord, now time.Time) (commerce.DailyMetric, *commerce.DailyMetric, error) {
	product, err := s.store.FindProductByExternalID(ctx, rec.Platform, rec.ExternalID)
	if err != nil {
		product = commerce.Product{
			Platform:   rec.Platform,
			ExternalID: rec.ExternalID,
			URL:        rec.URL,
			Title:      rec.Title,
			Category:   rec.Category,
			Brand:      rec.Brand,
			ImageURL:   rec.ImageURL,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		product, err = s.store.CreateProduct(ctx, product)
		if err != nil {
			return commerce.DailyMetric{}, nil, err
		}
	} else {
		product.URL = rec.URL
		product.Title = rec.Title
		product.Category = rec.Category
		product.Brand = rec.Brand
		product.ImageURL = rec.ImageURL
		product.UpdatedAt = now
		product, err = s.store.UpdateProduct(ctx, product)
		if err != nil {
			return commerce.DailyMetric{}, nil, err
		}
	}

	var previous *commerce.DailyMetric
	if prev, err := s.store.LatestDailyMetric(ctx, product.ID); err == nil {
		previous = &prev
	}

	metric := commerce.DailyMetric{
		ProductID:       product.ID,
		Date:            now.Truncate(24 * time.Hour),
		Price:           rec.Price,
		OriginalPrice:   rec.OriginalPrice,
		DiscountPercent: rec.DiscountPercent,
		Rank:            rec.Rank,
		Reviews:         rec.Reviews,
		Rating:          rec.Rating,
		SellerCount:     rec.SellerCount,
		InStock:         rec.InStock,
		DeliveryDays:    rec.DeliveryDays,
		BuyboxOwner:     rec.BuyboxOwner,
		CreatedAt:       now,
	}
	metric.Normalize()

	created, err := s.store.CreateDailyMetric(ctx, metric)
	if err != nil {
		return commerce.DailyMetric{}, previous, err
	}
	return created, previous, nil
}
