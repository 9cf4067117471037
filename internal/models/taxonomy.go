package models

import (
	"time"

	"github.com/google/uuid"
)

// Term is a taxonomy term such as a brand or a color
type Term struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string    `json:"tenantId" gorm:"not null;index:idx_terms_tenant_taxonomy"`
	Taxonomy  string    `json:"taxonomy" gorm:"not null;index:idx_terms_tenant_taxonomy"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductTerm assigns a term to a product. At most one term per taxonomy
// should be primary.
type ProductTerm struct {
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;primaryKey"`
	TermID    uuid.UUID `json:"termId" gorm:"type:uuid;primaryKey"`
	IsPrimary bool      `json:"isPrimary" gorm:"not null;default:false"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	Term      Term      `json:"term" gorm:"foreignKey:TermID;constraint:OnDelete:CASCADE"`
}

// ReviewStatus represents the moderation status of a review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

// ProductReview is a customer review of a product
type ProductReview struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID   uuid.UUID    `json:"productId" gorm:"type:uuid;not null;index"`
	TenantID    string       `json:"tenantId" gorm:"not null;index"`
	Author      string       `json:"author" gorm:"not null"`
	Rating      int          `json:"rating" gorm:"not null"`
	Body        string       `json:"body"`
	Status      ReviewStatus `json:"status" gorm:"not null;default:'PENDING'"`
	PublishedAt time.Time    `json:"publishedAt"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// TableName returns the table name for the Term model
func (Term) TableName() string {
	return "terms"
}

// TableName returns the table name for the ProductTerm model
func (ProductTerm) TableName() string {
	return "product_terms"
}

// TableName returns the table name for the ProductReview model
func (ProductReview) TableName() string {
	return "product_reviews"
}
