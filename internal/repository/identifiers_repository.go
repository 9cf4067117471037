package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"product-schema-service/internal/identifiers"
	"product-schema-service/internal/models"
)

// IdentifierCacheTTL is how long an identifier set stays cached
const IdentifierCacheTTL = 10 * time.Minute

// IdentifiersRepository persists global identifier sets, one record per
// entity and scope
type IdentifiersRepository struct {
	db    *gorm.DB
	cache *cache.CacheLayer
}

func NewIdentifiersRepository(db *gorm.DB, redis *redis.Client) *IdentifiersRepository {
	repo := &IdentifiersRepository{db: db}

	if redis != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: IdentifierCacheTTL,
			KeyPrefix:  "tesseract:product-schema:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redis, cacheConfig)
	}

	return repo
}

// ForTenant returns the identifier store of one tenant
func (r *IdentifiersRepository) ForTenant(tenantID string) identifiers.Store {
	return &tenantIdentifiers{repo: r, tenantID: tenantID}
}

type tenantIdentifiers struct {
	repo     *IdentifiersRepository
	tenantID string
}

func identifierCacheKey(tenantID, entityID string, scope identifiers.Scope) string {
	return fmt.Sprintf("identifiers:%s:%s:%s", tenantID, entityID, scope)
}

// GetIdentifierSet returns the stored set, or an empty set when the entity
// has none
func (t *tenantIdentifiers) GetIdentifierSet(ctx context.Context, entityID string, scope identifiers.Scope) (identifiers.Set, error) {
	if t.repo.cache == nil {
		return t.load(ctx, entityID, scope)
	}

	var set identifiers.Set
	err := t.repo.cache.GetOrSetJSON(ctx, identifierCacheKey(t.tenantID, entityID, scope), &set, IdentifierCacheTTL, func() (any, error) {
		return t.load(ctx, entityID, scope)
	})
	if err != nil {
		return nil, err
	}
	return set.Normalize(), nil
}

func (t *tenantIdentifiers) load(ctx context.Context, entityID string, scope identifiers.Scope) (identifiers.Set, error) {
	var record models.GlobalIdentifierRecord
	err := t.repo.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_id = ? AND meta_key = ?", t.tenantID, entityID, scope.StorageKey()).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return identifiers.NewSet(), nil
	}
	if err != nil {
		return nil, err
	}
	return setFromJSON(record.Values), nil
}

// SetIdentifierSet replaces the stored set. Concurrent writers race; the
// last write wins.
func (t *tenantIdentifiers) SetIdentifierSet(ctx context.Context, entityID string, scope identifiers.Scope, set identifiers.Set) error {
	record := models.GlobalIdentifierRecord{
		TenantID: t.tenantID,
		EntityID: entityID,
		MetaKey:  scope.StorageKey(),
		Values:   setToJSON(set),
	}

	err := t.repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "entity_id"}, {Name: "meta_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"values", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return err
	}

	if t.repo.cache != nil {
		_ = t.repo.cache.Delete(ctx, identifierCacheKey(t.tenantID, entityID, scope))
	}
	return nil
}

func setToJSON(set identifiers.Set) datatypes.JSONMap {
	values := make(datatypes.JSONMap, len(set))
	for k, v := range set.Normalize() {
		values[k] = v
	}
	return values
}

// setFromJSON keeps string values only.
func setFromJSON(values datatypes.JSONMap) identifiers.Set {
	set := make(identifiers.Set, len(values))
	for k, v := range values {
		if s, ok := v.(string); ok {
			set[k] = s
		}
	}
	return set.Normalize()
}
