package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/identifiers"
)

// ChangeTypeIdentifiersImported marks product.updated events raised by an
// identifier import
const ChangeTypeIdentifiersImported = "identifiers_imported"

// Publisher wraps the go-shared events publisher for identifier events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new identifier events publisher
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "product-schema-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	// Ensure the products stream exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "identifier-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// IdentifierChange describes the identifier values of one product or
// variation before and after an import row was applied
type IdentifierChange struct {
	EntityID string
	Kind     catalog.Kind
	SKU      string
	Name     string
	Old      identifiers.Set
	New      identifiers.Set
}

// PublishIdentifiersImported publishes a product.updated event for an
// imported row. Rows that changed nothing are not published.
func (p *Publisher) PublishIdentifiersImported(ctx context.Context, tenantID, actorID string, change IdentifierChange) error {
	event := BuildIdentifierEvent(tenantID, actorID, change)
	if len(event.ChangedFields) == 0 {
		return nil
	}
	return p.publish(ctx, event)
}

// BuildIdentifierEvent creates the ProductEvent describing change
func BuildIdentifierEvent(tenantID, actorID string, change IdentifierChange) *events.ProductEvent {
	event := events.NewProductEvent(events.ProductUpdated, tenantID)
	event.SourceID = uuid.New().String()
	event.ProductID = change.EntityID
	event.ProductName = change.Name
	event.SKU = change.SKU
	event.ActorID = actorID
	event.ChangeType = ChangeTypeIdentifiersImported

	oldValues := change.Old.Normalize()
	newValues := change.New.Normalize()

	event.OldValue = map[string]interface{}{"scope": string(identifiers.ScopeFor(change.Kind))}
	event.NewValue = map[string]interface{}{"scope": string(identifiers.ScopeFor(change.Kind))}
	for _, key := range identifiers.Keys() {
		k := string(key)
		if oldValues[k] == newValues[k] {
			continue
		}
		event.ChangedFields = append(event.ChangedFields, k)
		event.OldValue[k] = oldValues[k]
		event.NewValue[k] = newValues[k]
	}
	return event
}

// publish is a helper that logs and publishes events asynchronously
func (p *Publisher) publish(ctx context.Context, event *events.ProductEvent) error {
	// Publish asynchronously to not block the main flow
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).WithError(err).Error("Failed to publish identifier event")
		} else {
			p.logger.WithFields(logrus.Fields{
				"eventType":     event.EventType,
				"productID":     event.ProductID,
				"changedFields": event.ChangedFields,
				"tenantID":      event.TenantID,
			}).Info("Identifier event published successfully")
		}
	}()

	return nil
}
