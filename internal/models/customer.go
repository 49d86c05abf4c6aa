package models

import (
	"time"
)

// Customer is keyed by the legacy storefront customer id. Newsletter and
// SMS independently gate the remote marketing-consent payloads.
type Customer struct {
	CustomerID int `json:"customer_id" gorm:"primaryKey;autoIncrement:false"`

	Email string `json:"email"`
	Phone string `json:"phone"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`

	Note string `json:"note" gorm:"size:2000"`
	Tags string `json:"tags"`

	Newsletter bool `json:"newsletter"`
	SMS        bool `json:"sms"`

	// Legacy id of the default address; resolved against Addresses.
	DefaultAddress *int `json:"default_address"`

	ShopifyID *string `json:"shopify_id"`

	RunID string `json:"run_id" gorm:"index"`

	Addresses []Address `json:"addresses" gorm:"foreignKey:CustomerID;references:CustomerID"`
	Orders    []Order   `json:"-" gorm:"foreignKey:CustomerID;references:CustomerID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) Synced() bool {
	return c.ShopifyID != nil && *c.ShopifyID != ""
}

// Address is keyed by the legacy address-book id. State may be derived
// from the ZIP prefix when the source row left it blank.
type Address struct {
	AddressID int `json:"address_id" gorm:"primaryKey;autoIncrement:false"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`

	CustomerID int       `json:"customer_id" gorm:"index"`
	Customer   *Customer `json:"-" gorm:"foreignKey:CustomerID;references:CustomerID"`

	RunID string `json:"run_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
