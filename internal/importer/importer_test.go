package importer

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinsync/internal/database"
	"vinsync/internal/feed"
	"vinsync/internal/legacy"
	"vinsync/internal/logger"
	"vinsync/internal/store"
)

type mockSource struct {
	products       func() ([]legacy.ProductRow, error)
	customers      func() ([]legacy.CustomerRow, error)
	orders         func() ([]legacy.OrderRow, error)
	orderTotals    func(orderID int) ([]legacy.OrderTotalRow, error)
	lineItems      func() ([]legacy.LineItemRow, error)
	purchaseOrders func() ([]legacy.PurchaseOrderRow, error)
}

func (m *mockSource) Products() ([]legacy.ProductRow, error) {
	if m.products == nil {
		return nil, nil
	}
	return m.products()
}

func (m *mockSource) Customers() ([]legacy.CustomerRow, error) {
	if m.customers == nil {
		return nil, nil
	}
	return m.customers()
}

func (m *mockSource) Orders() ([]legacy.OrderRow, error) {
	if m.orders == nil {
		return nil, nil
	}
	return m.orders()
}

func (m *mockSource) OrderTotals(orderID int) ([]legacy.OrderTotalRow, error) {
	if m.orderTotals == nil {
		return nil, nil
	}
	return m.orderTotals(orderID)
}

func (m *mockSource) LineItems() ([]legacy.LineItemRow, error) {
	if m.lineItems == nil {
		return nil, nil
	}
	return m.lineItems()
}

func (m *mockSource) PurchaseOrders() ([]legacy.PurchaseOrderRow, error) {
	if m.purchaseOrders == nil {
		return nil, nil
	}
	return m.purchaseOrders()
}

func ns(s string) sql.NullString   { return sql.NullString{String: s, Valid: true} }
func ni(n int64) sql.NullInt64     { return sql.NullInt64{Int64: n, Valid: true} }
func nf(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.New("sqlite://" + t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(db.DB)
}

// Single worker keeps the sqlite-backed tests free of writer contention.
func newTestImporter(t *testing.T, src Source, st *store.Store) *Importer {
	t.Helper()
	return New(src, st, logger.New("error"), 1)
}

func wineRow(sku int64, category string) legacy.ProductRow {
	return legacy.ProductRow{
		SKU:           ni(sku),
		Price:         nf(99.99),
		Image:         ns("petrus.jpg"),
		TrackQuantity: ni(1),
		FreeShipping:  ni(1),
		MinOrderQty:   ni(1),
		OrderUnits:    ni(1),
		Status:        ni(1),
		Quantity:      nf(12),
		Weight:        nf(3),
		Name:          ns("Petrus"),
		Description:   ns("Pomerol"),
		Category:      ns(category),
		Vendor:        ns("Importer LLC"),
		Type:          ns("Product - Wine"),
	}
}

func TestImportProductsMergesJoinDuplicates(t *testing.T) {
	st := newTestStore(t)
	src := &mockSource{products: func() ([]legacy.ProductRow, error) {
		return []legacy.ProductRow{
			wineRow(1001, "Bordeaux"),
			wineRow(1001, "<b>Red</b>"),
		}, nil
	}}

	report, err := newTestImporter(t, src, st).ImportProducts()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 0, report.Skipped)

	p, err := st.FindProductBySKU("1001")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Petrus", p.Name)
	require.NotNil(t, p.TypeName)
	assert.Equal(t, "Wine", *p.TypeName)

	var categories []string
	for _, c := range p.Categories {
		categories = append(categories, c.Name)
	}
	assert.ElementsMatch(t, []string{"Bordeaux", "Red"}, categories)

	var tags []string
	for _, tag := range p.Tags {
		tags = append(tags, tag.Name)
	}
	assert.ElementsMatch(t, []string{"Wine", "Bordeaux", "Red", "Free Shipping"}, tags)
}

func TestImportProductsIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	src := &mockSource{products: func() ([]legacy.ProductRow, error) {
		return []legacy.ProductRow{wineRow(1001, "Bordeaux"), wineRow(1002, "Burgundy")}, nil
	}}

	_, err := newTestImporter(t, src, st).ImportProducts()
	require.NoError(t, err)
	_, err = newTestImporter(t, src, st).ImportProducts()
	require.NoError(t, err)

	products, err := st.AllProducts()
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.Len(t, p.Categories, 1)
	}
}

func TestImportProductsDeletesStaleGenerations(t *testing.T) {
	st := newTestStore(t)

	first := &mockSource{products: func() ([]legacy.ProductRow, error) {
		return []legacy.ProductRow{wineRow(1001, "Bordeaux"), wineRow(1002, "Burgundy")}, nil
	}}
	_, err := newTestImporter(t, first, st).ImportProducts()
	require.NoError(t, err)

	// The product dropped from the source must go; the survivor keeps its row.
	second := &mockSource{products: func() ([]legacy.ProductRow, error) {
		return []legacy.ProductRow{wineRow(1002, "Burgundy")}, nil
	}}
	_, err = newTestImporter(t, second, st).ImportProducts()
	require.NoError(t, err)

	gone, err := st.FindProductBySKU("1001")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := st.FindProductBySKU("1002")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestEnrichProductsMergesBySKU(t *testing.T) {
	st := newTestStore(t)
	src := &mockSource{products: func() ([]legacy.ProductRow, error) {
		return []legacy.ProductRow{wineRow(1001, "Bordeaux")}, nil
	}}
	imp := newTestImporter(t, src, st)
	_, err := imp.ImportProducts()
	require.NoError(t, err)

	report, err := imp.EnrichProducts([]feed.Row{
		{Fields: map[string]string{
			"sku":     "1001",
			"name":    "Petrus",
			"vintage": "2015",
			"status":  "On",
			"size":    "dm",
			"region":  "Pomerol",
			"image_2": "petrus-table.jpg",
		}},
		{Fields: map[string]string{"sku": "9999", "name": "Ghost"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, report.NotFound)

	p, err := st.FindProductBySKU("1001")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "2015 Petrus", p.Name)
	assert.Equal(t, "3L Double Magnum", p.Size)
	assert.Equal(t, "Pomerol", p.Region)
	assert.Equal(t, "petrus-table.jpg", p.Roomset)
	assert.True(t, p.Status)

	// Importer-owned fields survive the merge untouched.
	assert.Equal(t, 99.99, p.Price)
	assert.Equal(t, 12, p.Quantity)

	ghost, err := st.FindProductBySKU("9999")
	require.NoError(t, err)
	assert.Nil(t, ghost)
}

func TestTranslateSize(t *testing.T) {
	cases := map[string]string{
		"s":       "750ml",
		"dm":      "3L Double Magnum",
		"jer":     "4.5L Jeroboam",
		" IMP ":   "6L Imperial",
		"magnumx": "magnumx",
		"":        "",
	}
	for code, want := range cases {
		assert.Equal(t, want, TranslateSize(code), "code %q", code)
	}
}

func TestZipState(t *testing.T) {
	cases := map[string]string{
		"10001": "NY",
		"90210": "CA",
		"02134": "MA",
		"33109": "FL",
		"99501": "AK",
		"00000": "",
		"ABCDE": "",
		"12":    "",
	}
	for zip, want := range cases {
		assert.Equal(t, want, ZipState(zip), "zip %q", zip)
	}
}

func TestImportCustomersDerivesMissingState(t *testing.T) {
	st := newTestStore(t)
	src := &mockSource{customers: func() ([]legacy.CustomerRow, error) {
		base := legacy.CustomerRow{
			CustomerID: ni(7),
			FirstName:  ns("Ada"),
			LastName:   ns("Byron"),
			Email:      ns("ada@example.com"),
			Phone:      ns("+1 555 0100"),
			Gender:     ns("f"),
			Newsletter: ni(1),
			DefaultID:  ni(71),
		}
		withZip := base
		withZip.AddressID = ni(71)
		withZip.StreetAddress = ns("1 Main St")
		withZip.City = ns("New York")
		withZip.Postcode = ns("10001")
		withZip.Country = ns("United States")

		abroad := base
		abroad.AddressID = ni(72)
		abroad.StreetAddress = ns("5 High St")
		abroad.City = ns("London")
		abroad.Postcode = ns("SW1A")
		abroad.Country = ns("United Kingdom")

		return []legacy.CustomerRow{withZip, abroad}, nil
	}}

	report, err := newTestImporter(t, src, st).ImportCustomers()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)

	c, err := st.FindCustomer(7)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "ada@example.com", c.Email)
	require.NotNil(t, c.DefaultAddress)
	assert.Equal(t, 71, *c.DefaultAddress)
	require.Len(t, c.Addresses, 2)

	domestic, err := st.FindAddress(71)
	require.NoError(t, err)
	require.NotNil(t, domestic)
	assert.Equal(t, "NY", domestic.State)

	// No derivation outside the US.
	foreign, err := st.FindAddress(72)
	require.NoError(t, err)
	require.NotNil(t, foreign)
	assert.Equal(t, "", foreign.State)
}

func TestImportOrdersClassifiesTotals(t *testing.T) {
	st := newTestStore(t)
	src := &mockSource{
		products: func() ([]legacy.ProductRow, error) {
			return []legacy.ProductRow{wineRow(1001, "Bordeaux")}, nil
		},
		customers: func() ([]legacy.CustomerRow, error) {
			return []legacy.CustomerRow{{CustomerID: ni(7), Email: ns("ada@example.com")}}, nil
		},
		orders: func() ([]legacy.OrderRow, error) {
			return []legacy.OrderRow{
				{OrderID: ni(1), CustomerID: ni(7), DatePurchased: ns("2024-03-01 10:30:00"), Status: ns("Delivered")},
				{OrderID: ni(2), CustomerID: ni(7), Status: ns("Pending")},
				{OrderID: ni(3), CustomerID: ni(7), Status: ns("Processing")},
			}, nil
		},
		orderTotals: func(orderID int) ([]legacy.OrderTotalRow, error) {
			switch orderID {
			case 1:
				return []legacy.OrderTotalRow{
					{Class: ns(legacy.TotalClassTotal), Value: nf(150)},
					{Class: ns(legacy.TotalClassShipping), Value: nf(25)},
					{Class: ns(legacy.TotalClassTax), Value: nf(12.5)},
				}, nil
			case 3:
				return []legacy.OrderTotalRow{
					{Class: ns(legacy.TotalClassShipping), Value: nf(10)},
				}, nil
			}
			return nil, nil
		},
		lineItems: func() ([]legacy.LineItemRow, error) {
			return []legacy.LineItemRow{
				{OrderID: ni(1), ProductID: ni(1001), FinalPrice: nf(150), Quantity: nf(2), Shipped: nf(3), ShippedDate: ns("2024-03-05 00:00:00")},
				{OrderID: ni(1), ProductID: ni(4242), FinalPrice: nf(10), Quantity: nf(1)},
			}, nil
		},
	}

	imp := newTestImporter(t, src, st)
	_, err := imp.ImportProducts()
	require.NoError(t, err)
	_, err = imp.ImportCustomers()
	require.NoError(t, err)

	report, err := imp.ImportOrders()
	require.NoError(t, err)
	assert.Equal(t, 3, report.Imported)

	full, err := st.FindOrder(1)
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.Equal(t, 150.0, full.TotalPrice)
	assert.Equal(t, 25.0, full.ShippingPrice)
	assert.Equal(t, 12.5, full.Tax)
	require.NotNil(t, full.OrderDate)
	assert.Equal(t, "Delivered", full.Status)

	// The line naming an unknown product is dropped; the over-shipped one
	// lands with its source figures intact.
	require.Len(t, full.LineItems, 1)
	assert.Equal(t, "1001", full.LineItems[0].ProductSKU)
	assert.Equal(t, 2, full.LineItems[0].Quantity)
	assert.Equal(t, 3, full.LineItems[0].Shipped)

	empty, err := st.FindOrder(2)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Equal(t, 0.0, empty.TotalPrice)
	assert.Equal(t, 0.0, empty.ShippingPrice)
	assert.Equal(t, 0.0, empty.Tax)

	shippingOnly, err := st.FindOrder(3)
	require.NoError(t, err)
	require.NotNil(t, shippingOnly)
	assert.Equal(t, 0.0, shippingOnly.TotalPrice)
	assert.Equal(t, 10.0, shippingOnly.ShippingPrice)
	assert.Equal(t, 0.0, shippingOnly.Tax)
}

func TestImportOrdersSkipsUnknownCustomer(t *testing.T) {
	st := newTestStore(t)
	src := &mockSource{orders: func() ([]legacy.OrderRow, error) {
		return []legacy.OrderRow{{OrderID: ni(1), CustomerID: ni(404), Status: ns("Pending")}}, nil
	}}

	report, err := newTestImporter(t, src, st).ImportOrders()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{"1"}, report.FailedKeys)
}

func TestImportPurchaseOrders(t *testing.T) {
	st := newTestStore(t)
	src := &mockSource{
		products: func() ([]legacy.ProductRow, error) {
			return []legacy.ProductRow{wineRow(1001, "Bordeaux")}, nil
		},
		purchaseOrders: func() ([]legacy.PurchaseOrderRow, error) {
			return []legacy.PurchaseOrderRow{
				{
					POID: ni(31), VendorName: ns("Grand Cru Imports"), VendorState: ns("CA"),
					Reference: ns("PO-31"), OrderDate: ns("2024-01-15"),
					PODetailID: ni(311), ProductID: ni(1001),
					Cost: nf(60), Quantity: nf(24), Received: nf(12),
				},
				{
					POID: ni(31), VendorName: ns("Grand Cru Imports"), VendorState: ns("CA"),
					Reference: ns("PO-31"), OrderDate: ns("2024-01-15"),
					PODetailID: ni(312), ProductID: ni(5555),
					Cost: nf(40), Quantity: nf(6),
				},
			}, nil
		},
	}

	imp := newTestImporter(t, src, st)
	_, err := imp.ImportProducts()
	require.NoError(t, err)

	report, err := imp.ImportPurchaseOrders()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)

	details, err := st.AllPurchaseOrderDetails()
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "1001", details[0].ProductSKU)
	assert.Equal(t, 60.0, details[0].Cost)
	assert.Equal(t, 24, details[0].Quantity)
	assert.Equal(t, 12, details[0].Received)
	require.NotNil(t, details[0].PurchaseOrder)
	assert.Equal(t, "Grand Cru Imports", details[0].PurchaseOrder.VendorName)

	vendors, err := st.AllVendors()
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "CA", vendors[0].State)
}

func TestLegacyTime(t *testing.T) {
	full := legacyTime("2024-03-01 10:30:00")
	require.NotNil(t, full)
	assert.Equal(t, 2024, full.Year())

	dateOnly := legacyTime("2024-03-01")
	require.NotNil(t, dateOnly)

	assert.Nil(t, legacyTime(""))
	assert.Nil(t, legacyTime("0000-00-00 00:00:00"))
	assert.Nil(t, legacyTime("not a date"))
}
