package models

import (
	"time"

	"gorm.io/gorm"
)

// QROrder tracks the physical QR-code production and shipment for one
// pet. Contact and shipping fields are a snapshot of the client record
// taken at creation time; PetName and ProfileSlug are denormalized
// copies from the pet profile (PetName is kept in sync on renames).
type QROrder struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ClientID     uint       `gorm:"not null;index" json:"client_id"`
	Client       Client     `gorm:"foreignKey:ClientID" json:"-"`
	PetProfileID uint       `gorm:"not null;uniqueIndex" json:"pet_profile_id"`
	PetProfile   PetProfile `gorm:"foreignKey:PetProfileID" json:"-"`

	ClientEmail      string `gorm:"not null" json:"client_email"`
	ClientFirstName  string `json:"client_first_name"`
	ClientLastName   string `json:"client_last_name"`
	ClientPhone      string `json:"client_phone"`
	ClientAddress    string `gorm:"not null" json:"client_address"`
	ClientCity       string `gorm:"not null" json:"client_city"`
	ClientPostalCode string `gorm:"not null" json:"client_postal_code"`
	ClientCountry    string `gorm:"not null" json:"client_country"`

	PetName     string      `gorm:"not null" json:"pet_name"`
	ProfileSlug string      `gorm:"not null" json:"profile_slug"`
	Status      OrderStatus `gorm:"not null;default:'pendiente'" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the QROrder model
func (QROrder) TableName() string {
	return "qr_orders"
}
