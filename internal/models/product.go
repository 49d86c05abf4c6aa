package models

import (
	"time"
)

// Product is the canonical post-import representation of a storefront
// product, keyed by the vendor-assigned SKU. ShopifyID stays nil until the
// first successful push and is never reassigned afterwards.
type Product struct {
	SKU string `json:"sku" gorm:"primaryKey;size:200"`

	// Primary
	Name        string `json:"name"`
	Description string `json:"description" gorm:"size:5000"`

	// Taxonomy
	TypeName   *string    `json:"type"`
	Type       *Type      `json:"-" gorm:"foreignKey:TypeName"`
	Categories []Category `json:"categories" gorm:"many2many:product_categories"`
	Tags       []Tag      `json:"tags" gorm:"many2many:product_tags"`

	// Pricing
	Price float64 `json:"price" gorm:"type:decimal(10,2)"`
	Cost  float64 `json:"cost" gorm:"type:decimal(10,2)"`

	// Inventory & shipping
	Quantity      int     `json:"quantity"`
	TrackQuantity bool    `json:"track_quantity"`
	FreeShipping  bool    `json:"free_shipping"`
	Weight        float64 `json:"weight"`
	Depth         float64 `json:"depth"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`

	// Status false means retired in the storefront.
	Status bool `json:"status"`

	// Images
	Thumbnail string `json:"thumbnail"`
	Roomset   string `json:"roomset"`

	// Ordering rules
	MinOrderQty    int `json:"min_order_qty"`
	OrderIncrement int `json:"order_increment"`

	// Datasheet enrichment
	PreArrival        string `json:"pre_arrival"`
	WarehouseLocation string `json:"warehouse_location"`
	Vintage           string `json:"vintage"`
	Country           string `json:"country"`
	Appellation       string `json:"appellation"`
	Varietal          string `json:"varietal"`
	Region            string `json:"region"`
	SubRegion         string `json:"sub_region"`
	Vineyard          string `json:"vineyard"`
	Size              string `json:"size"`
	Disgorged         string `json:"disgorged"`
	Dosage            string `json:"dosage"`
	Alc               string `json:"alc"`
	AdditionalNotes   string `json:"additional_notes"`
	WineSearcher      bool   `json:"wine_searcher"`
	Biodynamic        bool   `json:"biodynamic"`
	CellarTrackerID   string `json:"cellar_tracker_id"`

	// Critic ratings
	RatingWS string `json:"rating_ws"`
	RatingWA string `json:"rating_wa"`
	RatingVM string `json:"rating_vm"`
	RatingBH string `json:"rating_bh"`
	RatingJG string `json:"rating_jg"`
	RatingJS string `json:"rating_js"`
	RatingJD string `json:"rating_jd"`
	RatingJM string `json:"rating_jm"`
	RatingWH string `json:"rating_wh"`
	RatingVR string `json:"rating_vr"`

	// Remote platform
	ShopifyID *string `json:"shopify_id"`

	// Import generation marker
	RunID string `json:"run_id" gorm:"index"`

	LineItems []LineItem `json:"-" gorm:"foreignKey:ProductSKU"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Synced reports whether the product has been created on the remote
// platform; synced products only ever take the update path.
func (p *Product) Synced() bool {
	return p.ShopifyID != nil && *p.ShopifyID != ""
}
