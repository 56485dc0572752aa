package models

import (
	"time"

	"gorm.io/gorm"
)

// Client represents a registered pet owner's account record.
// It is created lazily the first time an authenticated user is seen.
type Client struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Auth0ID    string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Email      string         `gorm:"uniqueIndex;not null" json:"email"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Phone      string         `json:"phone"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	PostalCode string         `json:"postal_code"`
	Country    string         `json:"country"`
	Role       string         `gorm:"not null;default:'user'" json:"role"` // "admin" or "user"
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// IsAdmin reports whether the client has the administrator role.
func (c *Client) IsAdmin() bool {
	return c.Role == "admin"
}

// FullName returns the client's display name.
func (c *Client) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// HasCompleteAddress reports whether all shipping address fields are filled
// in. A QR order cannot be placed until the snapshot source is complete.
func (c *Client) HasCompleteAddress() bool {
	return c.Address != "" && c.City != "" && c.PostalCode != "" && c.Country != ""
}
