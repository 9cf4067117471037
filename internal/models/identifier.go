package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GlobalIdentifierRecord stores the global trade identifiers of a product or
// a variation. MetaKey tells the two scopes apart.
type GlobalIdentifierRecord struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID  string            `json:"tenantId" gorm:"not null;uniqueIndex:idx_global_identifiers_entity"`
	EntityID  string            `json:"entityId" gorm:"not null;uniqueIndex:idx_global_identifiers_entity"`
	MetaKey   string            `json:"metaKey" gorm:"not null;uniqueIndex:idx_global_identifiers_entity"`
	Values    datatypes.JSONMap `json:"values" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// TableName returns the table name for the GlobalIdentifierRecord model
func (GlobalIdentifierRecord) TableName() string {
	return "global_identifiers"
}
