package models

import (
	"time"

	"gorm.io/gorm"
)

// PetProfile represents a registered animal. Its ProfileSlug is the
// unguessable path segment of the pet's public emergency page, so it is
// random and never derived from the pet's name: renaming a pet must not
// invalidate a printed QR code.
type PetProfile struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ClientID       uint           `gorm:"not null;index" json:"client_id"`
	Client         Client         `gorm:"foreignKey:ClientID" json:"-"`
	PetName        string         `gorm:"not null" json:"pet_name"`
	Breed          string         `json:"breed"`
	Age            string         `json:"age"`
	Vaccinations   string         `gorm:"type:text" json:"vaccinations"`
	Observations   string         `gorm:"type:text" json:"observations"`
	Photo          string         `json:"photo"`
	PhotoOptimized string         `json:"photo_optimized"`
	ProfileSlug    string         `gorm:"uniqueIndex;not null" json:"profile_slug"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	IsLost         bool           `gorm:"not null;default:false" json:"is_lost"`
	OwnerMessage   string         `gorm:"type:text" json:"owner_message"` // shown publicly only while IsLost
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the PetProfile model
func (PetProfile) TableName() string {
	return "pet_profiles"
}
