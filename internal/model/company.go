package model

import (
	"time"

	"github.com/google/uuid"
)

// Company is an employer record owned by one HR principal.
type Company struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	OwnerID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"owner_id"`
	Owner      Profile    `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Name       string     `gorm:"type:text;not null" json:"name"`
	Domain     string     `gorm:"type:text" json:"domain"`
	Verified   bool       `gorm:"default:false" json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Jobs       []Job      `gorm:"foreignKey:CompanyID" json:"jobs,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
