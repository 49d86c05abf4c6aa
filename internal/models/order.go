package models

import (
	"time"
)

// Lifecycle statuses carried from the legacy storefront.
const (
	OrderStatusPending         = "Pending"
	OrderStatusProcessing      = "Processing"
	OrderStatusPartialShipment = "Partial Shipment"
	OrderStatusDelivered       = "Delivered"
	OrderStatusCancelled       = "Cancelled"
)

// Order is keyed by the legacy order id. The billing address is a
// point-in-time snapshot denormalized onto the row; the shipping address
// is a reference into the address book as it stood at order time.
type Order struct {
	OrderID int `json:"order_id" gorm:"primaryKey;autoIncrement:false"`

	CustomerID int       `json:"customer_id" gorm:"index"`
	// CustomerID exists on both sides of the association, so the
	// reference must be explicit or GORM guesses the wrong direction.
	Customer   *Customer `json:"-" gorm:"foreignKey:CustomerID;references:CustomerID"`

	TotalPrice    float64 `json:"total_price" gorm:"type:decimal(10,2)"`
	ShippingPrice float64 `json:"shipping_price" gorm:"type:decimal(10,2)"`
	Tax           float64 `json:"tax" gorm:"type:decimal(10,2)"`

	ShippingMethod string     `json:"shipping_method"`
	TrackingNumber string     `json:"tracking_number"`
	OrderDate      *time.Time `json:"order_date"`
	OrderNote      string     `json:"order_note"`

	// Billing snapshot
	BillingName     string `json:"billing_name"`
	BillingCompany  string `json:"billing_company"`
	BillingAddress1 string `json:"billing_address1"`
	BillingAddress2 string `json:"billing_address2"`
	BillingCity     string `json:"billing_city"`
	BillingState    string `json:"billing_state"`
	BillingZip      string `json:"billing_zip"`
	BillingCountry  string `json:"billing_country"`

	Status string `json:"status"`

	ShippingAddressID *int `json:"shipping_address_id"`

	ShopifyID          *string `json:"shopify_id"`
	ShopifyOrderNumber *string `json:"shopify_order_number"`

	RunID string `json:"run_id" gorm:"index"`

	LineItems []LineItem `json:"line_items" gorm:"foreignKey:OrderID;references:OrderID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Order) Synced() bool {
	return o.ShopifyID != nil && *o.ShopifyID != ""
}

// LineItem joins an order to a product. Shipped greater than Quantity is
// possible in the source data and treated as a quality warning, never an
// error.
type LineItem struct {
	ID uint `json:"id" gorm:"primaryKey"`

	OrderID int    `json:"order_id" gorm:"index"`
	Order   *Order `json:"-" gorm:"foreignKey:OrderID;references:OrderID"`

	ProductSKU string   `json:"product_sku" gorm:"index"`
	Product    *Product `json:"-" gorm:"foreignKey:ProductSKU"`

	UnitPrice   float64    `json:"unit_price" gorm:"type:decimal(10,2)"`
	Quantity    int        `json:"quantity"`
	Shipped     int        `json:"shipped"`
	ShippedDate *time.Time `json:"shipped_date"`

	RunID string `json:"run_id" gorm:"index"`
}
