package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/models"
)

// ProductCacheTTL is how long a loaded product stays cached
const ProductCacheTTL = 5 * time.Minute

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductsRepository(db *gorm.DB, redis *redis.Client) *ProductsRepository {
	return &ProductsRepository{
		db:    db,
		redis: redis,
	}
}

func productCacheKey(tenantID string, productID uuid.UUID) string {
	return fmt.Sprintf("product-schema:product:%s:%s", tenantID, productID.String())
}

// GetProduct retrieves a product with its variations, terms and approved
// reviews, with caching
func (r *ProductsRepository) GetProduct(ctx context.Context, tenantID string, productID uuid.UUID) (*models.Product, error) {
	cacheKey := productCacheKey(tenantID, productID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Preload("Variations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Terms", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Terms.Term").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", models.ReviewStatusApproved).Order("published_at ASC")
		}).
		First(&product).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		data, err := json.Marshal(product)
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// InvalidateProduct drops the cached copy of a product
func (r *ProductsRepository) InvalidateProduct(ctx context.Context, tenantID string, productID uuid.UUID) {
	if r.redis == nil {
		return
	}
	r.redis.Del(ctx, productCacheKey(tenantID, productID))
}

// LoadSnapshot loads a product and converts it to its catalog view
func (r *ProductsRepository) LoadSnapshot(ctx context.Context, tenantID string, productID uuid.UUID, opts SnapshotOptions) (*catalog.Snapshot, error) {
	product, err := r.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return ToSnapshot(product, opts), nil
}

// CatalogEntry identifies a product or variation in import/export files
type CatalogEntry struct {
	EntityID   string
	EntityKind catalog.Kind
	SKU        string
	Name       string
}

func (e CatalogEntry) ID() string         { return e.EntityID }
func (e CatalogEntry) Kind() catalog.Kind { return e.EntityKind }

// FindByIDOrSKU resolves an import row to a product or a variation. The id
// wins over the sku when both are given. gorm.ErrRecordNotFound is returned
// when nothing matches.
func (r *ProductsRepository) FindByIDOrSKU(ctx context.Context, tenantID, id, sku string) (*CatalogEntry, error) {
	db := r.db.WithContext(ctx)

	if id != "" {
		entityID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", id, err)
		}

		var product models.Product
		err = db.Where("tenant_id = ? AND id = ?", tenantID, entityID).First(&product).Error
		if err == nil {
			return productEntry(&product), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		var variation models.ProductVariation
		if err := db.Where("tenant_id = ? AND id = ?", tenantID, entityID).First(&variation).Error; err != nil {
			return nil, err
		}
		return r.variationEntry(ctx, &variation)
	}

	if sku == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var product models.Product
	err := db.Where("tenant_id = ? AND sku = ?", tenantID, sku).First(&product).Error
	if err == nil {
		return productEntry(&product), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var variation models.ProductVariation
	if err := db.Where("tenant_id = ? AND sku = ?", tenantID, sku).First(&variation).Error; err != nil {
		return nil, err
	}
	return r.variationEntry(ctx, &variation)
}

// ListForExport lists every product followed by its variations, ordered by
// product name
func (r *ProductsRepository) ListForExport(ctx context.Context, tenantID string) ([]CatalogEntry, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Preload("Variations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0, len(products))
	for i := range products {
		p := &products[i]
		entries = append(entries, *productEntry(p))
		for _, v := range p.Variations {
			entries = append(entries, CatalogEntry{
				EntityID:   v.ID.String(),
				EntityKind: catalog.KindVariation,
				SKU:        deref(v.SKU),
				Name:       variationName(p.Name, v),
			})
		}
	}
	return entries, nil
}

func (r *ProductsRepository) variationEntry(ctx context.Context, v *models.ProductVariation) (*CatalogEntry, error) {
	var parent models.Product
	if err := r.db.WithContext(ctx).Select("name").Where("id = ?", v.ProductID).First(&parent).Error; err != nil {
		return nil, err
	}
	return &CatalogEntry{
		EntityID:   v.ID.String(),
		EntityKind: catalog.KindVariation,
		SKU:        deref(v.SKU),
		Name:       variationName(parent.Name, v),
	}, nil
}

func productEntry(p *models.Product) *CatalogEntry {
	return &CatalogEntry{
		EntityID:   p.ID.String(),
		EntityKind: catalogKind(p.Kind),
		SKU:        deref(p.SKU),
		Name:       p.Name,
	}
}
