package identifiers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/sanitize"
)

// Store persists identifier sets. SetIdentifierSet replaces the stored set.
type Store interface {
	GetIdentifierSet(ctx context.Context, entityID string, scope Scope) (Set, error)
	SetIdentifierSet(ctx context.Context, entityID string, scope Scope, set Set) error
}

// Exchange moves identifier values between tabular rows and the Store.
type Exchange struct {
	store  Store
	logger *logrus.Entry
}

// NewExchange creates an exchange backed by store.
func NewExchange(store Store, logger *logrus.Logger) *Exchange {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Exchange{
		store:  store,
		logger: logger.WithField("component", "identifier-exchange"),
	}
}

// Values reads the identifier set of entity in the scope matching its kind.
// The returned set always holds every canonical key.
func (e *Exchange) Values(ctx context.Context, entity catalog.Entity) (Set, error) {
	scope := ScopeFor(entity.Kind())
	set, err := e.store.GetIdentifierSet(ctx, entity.ID(), scope)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s identifiers of %s: %w", scope, entity.ID(), err)
	}
	return set.Normalize(), nil
}

// ExtractExportValue returns the stored value of key for entity, or "" when
// the key is unknown, unset or cannot be read.
func (e *Exchange) ExtractExportValue(ctx context.Context, entity catalog.Entity, key string) string {
	if !IsKey(key) {
		return ""
	}

	set, err := e.Values(ctx, entity)
	if err != nil {
		e.logger.WithError(err).WithField("entity_id", entity.ID()).Warn("Exporting empty identifier value")
		return ""
	}
	return set[key]
}

// ApplyImportRow merges the identifier columns of row into the stored set of
// entity. Only canonical keys present in row are written; other stored values
// are kept. Nothing is written when row has no identifier column. The entity
// is returned unchanged.
func (e *Exchange) ApplyImportRow(ctx context.Context, entity catalog.Entity, row map[string]string) (catalog.Entity, error) {
	values := make(map[string]string)
	for column, value := range row {
		if IsKey(column) {
			values[column] = sanitize.TextField(value)
		}
	}
	if len(values) == 0 {
		return entity, nil
	}

	current, err := e.Values(ctx, entity)
	if err != nil {
		return entity, err
	}

	scope := ScopeFor(entity.Kind())
	merged := current.Merge(values)
	if err := e.store.SetIdentifierSet(ctx, entity.ID(), scope, merged); err != nil {
		return entity, fmt.Errorf("failed to store %s identifiers of %s: %w", scope, entity.ID(), err)
	}

	e.logger.WithFields(logrus.Fields{
		"entity_id": entity.ID(),
		"scope":     scope,
		"columns":   len(values),
	}).Debug("Imported global identifiers")

	return entity, nil
}
