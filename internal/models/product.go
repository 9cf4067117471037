package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

// ProductKind is the product type. Variable products are sold through their
// variations.
type ProductKind string

const (
	ProductKindSimple   ProductKind = "simple"
	ProductKindVariable ProductKind = "variable"
	ProductKindGrouped  ProductKind = "grouped"
	ProductKindExternal ProductKind = "external"
)

// InventoryStatus represents the inventory status of a product
type InventoryStatus string

const (
	InventoryStatusInStock      InventoryStatus = "IN_STOCK"
	InventoryStatusLowStock     InventoryStatus = "LOW_STOCK"
	InventoryStatusOutOfStock   InventoryStatus = "OUT_OF_STOCK"
	InventoryStatusBackOrder    InventoryStatus = "BACK_ORDER"
	InventoryStatusDiscontinued InventoryStatus = "DISCONTINUED"
)

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// VariationAttribute is one attribute value of a variation, e.g. Color: Blue
type VariationAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Product represents a product entity
type Product struct {
	ID                   uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID             string              `json:"tenantId" gorm:"not null;index:idx_products_tenant_id;index:idx_products_tenant_sku,unique;index:idx_products_tenant_slug,unique"`
	Name                 string              `json:"name" gorm:"not null"`
	Slug                 *string             `json:"slug,omitempty" gorm:"index:idx_products_tenant_slug,unique"`
	SKU                  *string             `json:"sku,omitempty" gorm:"index:idx_products_tenant_sku,unique"`
	Kind                 ProductKind         `json:"kind" gorm:"not null;default:'simple'"`
	Description          *string             `json:"description,omitempty"`
	Price                string              `json:"price"`
	SalePrice            *string             `json:"salePrice,omitempty"`
	SaleStartsAt         *time.Time          `json:"saleStartsAt,omitempty"`
	SaleEndsAt           *time.Time          `json:"saleEndsAt,omitempty"`
	CurrencyCode         *string             `json:"currencyCode,omitempty"`
	Status               ProductStatus       `json:"status" gorm:"not null;default:'DRAFT'"`
	InventoryStatus      *InventoryStatus    `json:"inventoryStatus,omitempty"`
	FeaturedImageURL     *string             `json:"featuredImageUrl,omitempty"`
	FeaturedImageTitle   *string             `json:"featuredImageTitle,omitempty"`
	FeaturedImageCaption *string             `json:"featuredImageCaption,omitempty"`
	Variations           []*ProductVariation `json:"variations,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Terms                []ProductTerm       `json:"terms,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Reviews              []ProductReview     `json:"reviews,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
	DeletedAt            *gorm.DeletedAt     `json:"deletedAt,omitempty" gorm:"index"`
}

// ProductVariation represents one purchasable configuration of a variable product
type ProductVariation struct {
	ID              uuid.UUID                               `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID       uuid.UUID                               `json:"productId" gorm:"type:uuid;not null;index"`
	TenantID        string                                  `json:"tenantId" gorm:"not null;index"`
	SKU             *string                                 `json:"sku,omitempty" gorm:"index"`
	Attributes      datatypes.JSONSlice[VariationAttribute] `json:"attributes" gorm:"type:jsonb"`
	Price           string                                  `json:"price"`
	SalePrice       *string                                 `json:"salePrice,omitempty"`
	Description     *string                                 `json:"description,omitempty"`
	InventoryStatus *InventoryStatus                        `json:"inventoryStatus,omitempty"`
	ImageURL        *string                                 `json:"imageUrl,omitempty"`
	ImageTitle      *string                                 `json:"imageTitle,omitempty"`
	ImageCaption    *string                                 `json:"imageCaption,omitempty"`
	Enabled         *bool                                   `json:"enabled,omitempty" gorm:"default:true"`
	Position        int                                     `json:"position" gorm:"not null;default:0"`
	CreatedAt       time.Time                               `json:"createdAt"`
	UpdatedAt       time.Time                               `json:"updatedAt"`
	DeletedAt       *gorm.DeletedAt                         `json:"deletedAt,omitempty" gorm:"index"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the ProductVariation model
func (ProductVariation) TableName() string {
	return "product_variations"
}
