package subscribers

import (
	"context"
	"encoding/json"
	"time"

	gosharedevents "github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"product-schema-service/internal/events"
)

// ProductCache drops cached product snapshots
type ProductCache interface {
	InvalidateProduct(ctx context.Context, tenantID string, productID uuid.UUID)
}

// ProductCacheSubscriber evicts cached products when the catalog changes them,
// so structured data never lags behind a product edit by the cache TTL
type ProductCacheSubscriber struct {
	subscriber *gosharedevents.Subscriber
	cache      ProductCache
	logger     *logrus.Entry
	cancel     context.CancelFunc
}

// NewProductCacheSubscriber creates a new product event subscriber
func NewProductCacheSubscriber(natsURL string, cache ProductCache, logger *logrus.Logger) (*ProductCacheSubscriber, error) {
	config := gosharedevents.DefaultSubscriberConfig(natsURL, "product-schema-service-cache")
	config.Name = "product-schema-service-cache-subscriber"
	config.DeliverPolicy = "new"
	config.MaxDeliver = 3
	config.AckWait = 30 * time.Second

	subscriber, err := gosharedevents.NewSubscriber(config, logger)
	if err != nil {
		return nil, err
	}

	return &ProductCacheSubscriber{
		subscriber: subscriber,
		cache:      cache,
		logger:     logger.WithField("component", "product-cache-subscriber"),
	}, nil
}

// Start starts listening for product events
func (s *ProductCacheSubscriber) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	subjects := []string{
		gosharedevents.ProductUpdated,
		gosharedevents.ProductPublished,
		gosharedevents.ProductArchived,
		gosharedevents.ProductDeleted,
	}

	s.logger.Info("Starting product cache event subscription...")

	// The stream is created by the products-service publisher
	if err := s.subscriber.Subscribe(ctx, gosharedevents.StreamProducts, subjects, s.handleProductMessage); err != nil {
		return err
	}

	s.logger.WithField("subjects", subjects).Info("Product cache subscriber started successfully")
	return nil
}

// handleProductMessage evicts the product named by a product event
func (s *ProductCacheSubscriber) handleProductMessage(ctx context.Context, msg *gosharedevents.Message) error {
	var event gosharedevents.ProductEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal product event")
		return nil // Don't retry for invalid data
	}

	// Identifier imports are published by this service and never touch the
	// cached product
	if event.ChangeType == events.ChangeTypeIdentifiersImported {
		return nil
	}

	productID, err := uuid.Parse(event.ProductID)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", event.ProductID).Warn("Invalid product ID in product event")
		return nil
	}

	s.cache.InvalidateProduct(ctx, event.TenantID, productID)

	s.logger.WithFields(logrus.Fields{
		"event_type": event.EventType,
		"tenant_id":  event.TenantID,
		"product_id": productID.String(),
	}).Debug("Evicted cached product")
	return nil
}

// Stop stops the product cache subscriber
func (s *ProductCacheSubscriber) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.subscriber != nil {
		s.subscriber.Close()
	}
	s.logger.Info("Product cache subscriber stopped")
}
