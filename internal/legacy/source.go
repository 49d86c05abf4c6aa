// Package legacy reads the Zen-Cart-style storefront database. All access
// is read-only and every query is a fixed join; the raw values come back
// as nullable SQL types and are coerced by the importer through the
// normalizer.
package legacy

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

type Source struct {
	db *sql.DB
}

func Connect(dsn string) (*Source, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to reach legacy database: %w", err)
	}
	return &Source{db: db}, nil
}

func (s *Source) Close() error {
	return s.db.Close()
}

type ProductRow struct {
	SKU           sql.NullInt64
	Price         sql.NullFloat64
	Image         sql.NullString
	TrackQuantity sql.NullInt64
	FreeShipping  sql.NullInt64
	MinOrderQty   sql.NullInt64
	OrderUnits    sql.NullInt64
	Status        sql.NullInt64
	Quantity      sql.NullFloat64
	Weight        sql.NullFloat64
	Name          sql.NullString
	Description   sql.NullString
	Category      sql.NullString
	Vendor        sql.NullString
	Type          sql.NullString
}

func (s *Source) Products() ([]ProductRow, error) {
	rows, err := s.db.Query(`
		SELECT
			p.products_id,
			p.products_price,
			p.products_image,
			p.products_qty_box_status,
			p.product_is_always_free_shipping,
			p.products_quantity_order_min,
			p.products_quantity_order_units,
			p.products_status,
			p.products_quantity,
			p.products_weight,
			pd.products_name,
			pd.products_description,
			c.categories_name,
			m.manufacturers_name,
			pt.type_name
		FROM products p
		LEFT JOIN products_description pd ON p.products_id = pd.products_id
		LEFT JOIN products_to_categories ptc ON p.products_id = ptc.products_id
		LEFT JOIN categories_description c ON ptc.categories_id = c.categories_id
		LEFT JOIN manufacturers m ON p.manufacturers_id = m.manufacturers_id
		LEFT JOIN product_types pt ON p.products_type = pt.type_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []ProductRow
	for rows.Next() {
		var r ProductRow
		if err := rows.Scan(
			&r.SKU, &r.Price, &r.Image, &r.TrackQuantity, &r.FreeShipping,
			&r.MinOrderQty, &r.OrderUnits, &r.Status, &r.Quantity, &r.Weight,
			&r.Name, &r.Description, &r.Category, &r.Vendor, &r.Type,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

type CustomerRow struct {
	CustomerID sql.NullInt64
	FirstName  sql.NullString
	LastName   sql.NullString
	Email      sql.NullString
	Phone      sql.NullString
	Gender     sql.NullString
	Newsletter sql.NullInt64
	DefaultID  sql.NullInt64

	AddressID     sql.NullInt64
	EntryFirst    sql.NullString
	EntryLast     sql.NullString
	EntryCompany  sql.NullString
	StreetAddress sql.NullString
	Suburb        sql.NullString
	City          sql.NullString
	State         sql.NullString
	Postcode      sql.NullString
	Country       sql.NullString
}

func (s *Source) Customers() ([]CustomerRow, error) {
	rows, err := s.db.Query(`
		SELECT
			c.customers_id,
			c.customers_firstname,
			c.customers_lastname,
			c.customers_email_address,
			c.customers_telephone,
			c.customers_gender,
			c.customers_newsletter,
			c.customers_default_address_id,
			a.address_book_id,
			a.entry_firstname,
			a.entry_lastname,
			a.entry_company,
			a.entry_street_address,
			a.entry_suburb,
			a.entry_city,
			a.entry_state,
			a.entry_postcode,
			co.countries_name
		FROM customers c
		LEFT JOIN address_book a ON c.customers_id = a.customers_id
		LEFT JOIN countries co ON a.entry_country_id = co.countries_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var result []CustomerRow
	for rows.Next() {
		var r CustomerRow
		if err := rows.Scan(
			&r.CustomerID, &r.FirstName, &r.LastName, &r.Email, &r.Phone,
			&r.Gender, &r.Newsletter, &r.DefaultID,
			&r.AddressID, &r.EntryFirst, &r.EntryLast, &r.EntryCompany,
			&r.StreetAddress, &r.Suburb, &r.City, &r.State, &r.Postcode, &r.Country,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

type OrderRow struct {
	OrderID        sql.NullInt64
	CustomerID     sql.NullInt64
	DatePurchased  sql.NullString
	Status         sql.NullString
	ShippingMethod sql.NullString

	BillingName     sql.NullString
	BillingCompany  sql.NullString
	BillingAddress1 sql.NullString
	BillingAddress2 sql.NullString
	BillingCity     sql.NullString
	BillingState    sql.NullString
	BillingZip      sql.NullString
	BillingCountry  sql.NullString

	ShippingAddressID sql.NullInt64
}

func (s *Source) Orders() ([]OrderRow, error) {
	rows, err := s.db.Query(`
		SELECT
			o.orders_id,
			o.customers_id,
			o.date_purchased,
			os.orders_status_name,
			o.shipping_method,
			o.billing_name,
			o.billing_company,
			o.billing_street_address,
			o.billing_suburb,
			o.billing_city,
			o.billing_state,
			o.billing_postcode,
			o.billing_country,
			o.customers_address_book_id
		FROM orders o
		LEFT JOIN orders_status os ON o.orders_status = os.orders_status_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []OrderRow
	for rows.Next() {
		var r OrderRow
		if err := rows.Scan(
			&r.OrderID, &r.CustomerID, &r.DatePurchased, &r.Status, &r.ShippingMethod,
			&r.BillingName, &r.BillingCompany, &r.BillingAddress1, &r.BillingAddress2,
			&r.BillingCity, &r.BillingState, &r.BillingZip, &r.BillingCountry,
			&r.ShippingAddressID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// TotalClass tags on the legacy orders_total lines.
const (
	TotalClassTotal    = "ot_total"
	TotalClassShipping = "ot_shipping"
	TotalClassTax      = "ot_tax"
)

type OrderTotalRow struct {
	Class sql.NullString
	Value sql.NullFloat64
}

// OrderTotals fetches the classified monetary lines of one order.
func (s *Source) OrderTotals(orderID int) ([]OrderTotalRow, error) {
	rows, err := s.db.Query(`
		SELECT class, value
		FROM orders_total
		WHERE orders_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order totals: %w", err)
	}
	defer rows.Close()

	var result []OrderTotalRow
	for rows.Next() {
		var r OrderTotalRow
		if err := rows.Scan(&r.Class, &r.Value); err != nil {
			return nil, fmt.Errorf("failed to scan order total row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

type LineItemRow struct {
	OrderID     sql.NullInt64
	ProductID   sql.NullInt64
	FinalPrice  sql.NullFloat64
	Quantity    sql.NullFloat64
	Shipped     sql.NullFloat64
	ShippedDate sql.NullString
}

func (s *Source) LineItems() ([]LineItemRow, error) {
	rows, err := s.db.Query(`
		SELECT
			op.orders_id,
			op.products_id,
			op.final_price,
			op.products_quantity,
			op.products_shipped,
			op.products_shipped_date
		FROM orders_products op`)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var result []LineItemRow
	for rows.Next() {
		var r LineItemRow
		if err := rows.Scan(
			&r.OrderID, &r.ProductID, &r.FinalPrice, &r.Quantity, &r.Shipped, &r.ShippedDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line item row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

type PurchaseOrderRow struct {
	POID         sql.NullInt64
	VendorName   sql.NullString
	VendorState  sql.NullString
	Reference    sql.NullString
	OrderDate    sql.NullString
	PODetailID   sql.NullInt64
	ProductID    sql.NullInt64
	Cost         sql.NullFloat64
	Quantity     sql.NullFloat64
	Received     sql.NullFloat64
	ExpectedDate sql.NullString
	ReceivedDate sql.NullString
}

func (s *Source) PurchaseOrders() ([]PurchaseOrderRow, error) {
	rows, err := s.db.Query(`
		SELECT
			po.po_id,
			v.vendors_name,
			v.vendors_state,
			po.reference,
			po.po_date,
			pod.po_detail_id,
			pod.products_id,
			pod.products_cost,
			pod.products_quantity,
			pod.products_received,
			pod.expected_date,
			pod.received_date
		FROM purchase_orders po
		LEFT JOIN vendors v ON po.vendors_id = v.vendors_id
		LEFT JOIN purchase_orders_details pod ON po.po_id = pod.po_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase orders: %w", err)
	}
	defer rows.Close()

	var result []PurchaseOrderRow
	for rows.Next() {
		var r PurchaseOrderRow
		if err := rows.Scan(
			&r.POID, &r.VendorName, &r.VendorState, &r.Reference, &r.OrderDate,
			&r.PODetailID, &r.ProductID, &r.Cost, &r.Quantity, &r.Received,
			&r.ExpectedDate, &r.ReceivedDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
