package models

// Lookup entities are keyed by name and created on demand during import.

type Type struct {
	Name     string    `json:"name" gorm:"primaryKey;size:200"`
	Products []Product `json:"-" gorm:"foreignKey:TypeName"`
}

type Category struct {
	Name     string    `json:"name" gorm:"primaryKey;size:200"`
	Products []Product `json:"-" gorm:"many2many:product_categories"`
}

type Tag struct {
	Name     string    `json:"name" gorm:"primaryKey;size:200"`
	Products []Product `json:"-" gorm:"many2many:product_tags"`
}

type Vendor struct {
	Name  string `json:"name" gorm:"primaryKey;size:200"`
	State string `json:"state"`

	PurchaseOrders []PurchaseOrder `json:"-" gorm:"foreignKey:VendorName"`
}
