package shopify

// Wire types for the admin REST resources. Only the fields the migration
// reads or writes are declared; the platform ignores absent keys.

type Product struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title,omitempty"`
	BodyHTML    string     `json:"body_html,omitempty"`
	Vendor      string     `json:"vendor,omitempty"`
	ProductType string     `json:"product_type,omitempty"`
	Handle      string     `json:"handle,omitempty"`
	Status      string     `json:"status,omitempty"`
	Tags        string     `json:"tags,omitempty"`
	PublishedAt *string    `json:"published_at,omitempty"`
	Variants    []Variant  `json:"variants,omitempty"`
	Images      []Image    `json:"images,omitempty"`
	Metafields  []Metafield `json:"metafields,omitempty"`
}

type Variant struct {
	ID                  int64   `json:"id,omitempty"`
	ProductID           int64   `json:"product_id,omitempty"`
	Price               float64 `json:"price,omitempty"`
	SKU                 string  `json:"sku,omitempty"`
	Weight              float64 `json:"weight,omitempty"`
	WeightUnit          string  `json:"weight_unit,omitempty"`
	InventoryManagement *string `json:"inventory_management"`
	InventoryQuantity   int     `json:"inventory_quantity,omitempty"`
	InventoryItemID     int64   `json:"inventory_item_id,omitempty"`
	FulfillmentService  string  `json:"fulfillment_service,omitempty"`
	Taxable             bool    `json:"taxable"`
	Option1             string  `json:"option1,omitempty"`
}

type Image struct {
	ID         int64  `json:"id,omitempty"`
	ProductID  int64  `json:"product_id,omitempty"`
	Src        string `json:"src,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Alt        string `json:"alt,omitempty"`
	Position   int    `json:"position,omitempty"`
}

type Metafield struct {
	ID        int64  `json:"id,omitempty"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type,omitempty"`
}

type Customer struct {
	ID                    int64              `json:"id,omitempty"`
	Email                 string             `json:"email,omitempty"`
	Phone                 string             `json:"phone,omitempty"`
	FirstName             string             `json:"first_name,omitempty"`
	LastName              string             `json:"last_name,omitempty"`
	Note                  string             `json:"note,omitempty"`
	Tags                  string             `json:"tags,omitempty"`
	Addresses             []CustomerAddress  `json:"addresses,omitempty"`
	EmailMarketingConsent *MarketingConsent  `json:"email_marketing_consent,omitempty"`
	SMSMarketingConsent   *MarketingConsent  `json:"sms_marketing_consent,omitempty"`
	Metafields            []Metafield        `json:"metafields,omitempty"`
}

type CustomerAddress struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Name      string `json:"name,omitempty"`
	Default   bool   `json:"default,omitempty"`
}

type MarketingConsent struct {
	State      string `json:"state"`
	OptInLevel string `json:"opt_in_level"`
}

type Order struct {
	ID                int64            `json:"id,omitempty"`
	OrderNumber       int64            `json:"order_number,omitempty"`
	Customer          *OrderCustomer   `json:"customer,omitempty"`
	Phone             string           `json:"phone,omitempty"`
	LineItems         []OrderLineItem  `json:"line_items,omitempty"`
	ShippingLines     []ShippingLine   `json:"shipping_lines,omitempty"`
	TaxLines          []TaxLine        `json:"tax_lines,omitempty"`
	TotalPrice        float64          `json:"total_price,omitempty"`
	CreatedAt         string           `json:"created_at,omitempty"`
	ShippingAddress   *CustomerAddress `json:"shipping_address,omitempty"`
	BillingAddress    *CustomerAddress `json:"billing_address,omitempty"`
	FinancialStatus   string           `json:"financial_status,omitempty"`
	FulfillmentStatus string           `json:"fulfillment_status,omitempty"`
	Note              string           `json:"note,omitempty"`
}

type OrderCustomer struct {
	ID int64 `json:"id"`
}

type OrderLineItem struct {
	VariantID int64   `json:"variant_id"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type ShippingLine struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

type TaxLine struct {
	Price float64 `json:"price"`
	Rate  float64 `json:"rate,omitempty"`
	Title string  `json:"title,omitempty"`
}

type SmartCollection struct {
	ID    int64            `json:"id,omitempty"`
	Title string           `json:"title"`
	Rules []CollectionRule `json:"rules"`
}

type CollectionRule struct {
	Column    string `json:"column"`
	Relation  string `json:"relation"`
	Condition string `json:"condition"`
}

type FulfillmentOrder struct {
	ID        int64                      `json:"id"`
	OrderID   int64                      `json:"order_id"`
	Status    string                     `json:"status"`
	LineItems []FulfillmentOrderLineItem `json:"line_items"`
}

type FulfillmentOrderLineItem struct {
	ID        int64 `json:"id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}
