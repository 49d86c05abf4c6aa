package models

import (
	"time"
)

// PurchaseOrder is keyed by the legacy PO id and owned by a Vendor lookup.
type PurchaseOrder struct {
	POID int `json:"po_id" gorm:"primaryKey;autoIncrement:false"`

	VendorName string  `json:"vendor" gorm:"index"`
	Vendor     *Vendor `json:"-" gorm:"foreignKey:VendorName"`

	Reference string     `json:"reference"`
	OrderDate *time.Time `json:"order_date"`

	RunID string `json:"run_id" gorm:"index"`

	Details []PurchaseOrderDetail `json:"details" gorm:"foreignKey:POID;references:POID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PurchaseOrderDetail struct {
	PODetailID int `json:"po_detail_id" gorm:"primaryKey;autoIncrement:false"`

	POID          int            `json:"po_id" gorm:"index"`
	PurchaseOrder *PurchaseOrder `json:"-" gorm:"foreignKey:POID;references:POID"`

	ProductSKU string   `json:"product_sku" gorm:"index"`
	Product    *Product `json:"-" gorm:"foreignKey:ProductSKU"`

	Cost float64 `json:"cost" gorm:"type:decimal(10,2)"`

	Quantity int `json:"quantity"`
	Received int `json:"received"`

	ExpectedDate *time.Time `json:"expected_date"`
	ReceivedDate *time.Time `json:"received_date"`

	RunID string `json:"run_id" gorm:"index"`
}
