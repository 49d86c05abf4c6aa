package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinsync/internal/database"
	"vinsync/internal/logger"
	"vinsync/internal/models"
	"vinsync/internal/shopify"
	"vinsync/internal/store"
)

type mockClient struct {
	createProduct           func(product *models.Product) (*shopify.Product, error)
	updateProductMetafields func(product *models.Product, shopifyID int64) error
	updateProductStatus     func(shopifyID int64, status string) error
	uploadImage             func(shopifyID int64, image, alt string) (*shopify.Image, error)
	setInventoryLevel       func(shopifyID int64, locationID string, available int) error
	listProductIDs          func() ([]int64, error)
	createCustomer          func(customer *models.Customer) (*shopify.Customer, error)
	createOrder             func(order *models.Order, shippingAddress *models.Address) (*shopify.Order, error)
	fulfillOrder            func(order *models.Order) (string, error)
	createSmartCollection   func(title string) (*shopify.SmartCollection, error)
}

func (m *mockClient) CreateProduct(product *models.Product) (*shopify.Product, error) {
	return m.createProduct(product)
}

func (m *mockClient) UpdateProductMetafields(product *models.Product, shopifyID int64) error {
	if m.updateProductMetafields == nil {
		return nil
	}
	return m.updateProductMetafields(product, shopifyID)
}

func (m *mockClient) UpdateProductStatus(shopifyID int64, status string) error {
	return m.updateProductStatus(shopifyID, status)
}

func (m *mockClient) UploadImage(shopifyID int64, image, alt string) (*shopify.Image, error) {
	if m.uploadImage == nil {
		return &shopify.Image{}, nil
	}
	return m.uploadImage(shopifyID, image, alt)
}

func (m *mockClient) SetInventoryLevel(shopifyID int64, locationID string, available int) error {
	if m.setInventoryLevel == nil {
		return nil
	}
	return m.setInventoryLevel(shopifyID, locationID, available)
}

func (m *mockClient) ListProductIDs() ([]int64, error) {
	return m.listProductIDs()
}

func (m *mockClient) CreateCustomer(customer *models.Customer) (*shopify.Customer, error) {
	return m.createCustomer(customer)
}

func (m *mockClient) CreateOrder(order *models.Order, shippingAddress *models.Address) (*shopify.Order, error) {
	return m.createOrder(order, shippingAddress)
}

func (m *mockClient) FulfillOrder(order *models.Order) (string, error) {
	return m.fulfillOrder(order)
}

func (m *mockClient) CreateSmartCollection(title string) (*shopify.SmartCollection, error) {
	return m.createSmartCollection(title)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.New("sqlite://" + t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(db.DB)
}

// Single worker keeps the sqlite-backed tests free of writer contention.
func newTestSync(t *testing.T, client Client, st *store.Store) *Synchronizer {
	t.Helper()
	return New(client, st, logger.New("error"), nil, 1, "loc-1")
}

func stringPtr(s string) *string { return &s }

func TestProductsCreateStampAndChain(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveProduct(&models.Product{
		SKU: "1001", Name: "Petrus", Quantity: 12, Roomset: "petrus-table.jpg", Status: true,
	}))

	var uploaded []string
	var inventory []int
	client := &mockClient{
		createProduct: func(p *models.Product) (*shopify.Product, error) {
			return &shopify.Product{ID: 555}, nil
		},
		uploadImage: func(id int64, image, alt string) (*shopify.Image, error) {
			assert.EqualValues(t, 555, id)
			uploaded = append(uploaded, image)
			return &shopify.Image{ID: 1}, nil
		},
		setInventoryLevel: func(id int64, locationID string, available int) error {
			assert.Equal(t, "loc-1", locationID)
			inventory = append(inventory, available)
			return nil
		},
	}

	report, err := newTestSync(t, client, st).Products()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded())

	p, err := st.FindProductBySKU("1001")
	require.NoError(t, err)
	require.NotNil(t, p.ShopifyID)
	assert.Equal(t, "555", *p.ShopifyID)
	assert.Equal(t, []string{"petrus-table.jpg"}, uploaded)
	assert.Equal(t, []int{12}, inventory)
}

func TestProductsImageFailureKeepsStamp(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveProduct(&models.Product{
		SKU: "1001", Name: "Petrus", Roomset: "broken.jpg",
	}))

	client := &mockClient{
		createProduct: func(p *models.Product) (*shopify.Product, error) {
			return &shopify.Product{ID: 555}, nil
		},
		uploadImage: func(id int64, image, alt string) (*shopify.Image, error) {
			return nil, errors.New("boom")
		},
	}

	report, err := newTestSync(t, client, st).Products()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded())

	p, err := st.FindProductBySKU("1001")
	require.NoError(t, err)
	require.NotNil(t, p.ShopifyID)
	assert.Equal(t, "555", *p.ShopifyID)
}

func TestProductsCreateFailureLeavesUnsynced(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveProduct(&models.Product{SKU: "1001", Name: "Petrus"}))

	client := &mockClient{
		createProduct: func(p *models.Product) (*shopify.Product, error) {
			return nil, errors.New("rate limited")
		},
	}

	report, err := newTestSync(t, client, st).Products()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed())

	// Still unsynced, so the next run retries it.
	unsynced, err := st.UnsyncedProducts()
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)
}

func TestProductsSkipAlreadySynced(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveProduct(&models.Product{
		SKU: "1001", Name: "Petrus", ShopifyID: stringPtr("555"),
	}))

	client := &mockClient{
		createProduct: func(p *models.Product) (*shopify.Product, error) {
			t.Error("synced product must not be re-created")
			return nil, errors.New("unexpected create")
		},
	}

	report, err := newTestSync(t, client, st).Products()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Completed)
}

func TestCustomersCreateAndStamp(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveCustomer(&models.Customer{CustomerID: 7, Email: "ada@example.com"}))

	client := &mockClient{
		createCustomer: func(c *models.Customer) (*shopify.Customer, error) {
			return &shopify.Customer{ID: 909}, nil
		},
	}

	report, err := newTestSync(t, client, st).Customers()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded())

	c, err := st.FindCustomer(7)
	require.NoError(t, err)
	require.NotNil(t, c.ShopifyID)
	assert.Equal(t, "909", *c.ShopifyID)
}

func TestOrdersRequireSyncedCustomer(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveCustomer(&models.Customer{CustomerID: 7, Email: "ada@example.com"}))
	require.NoError(t, st.SaveOrder(&models.Order{OrderID: 1, CustomerID: 7, Status: models.OrderStatusPending}))

	client := &mockClient{
		createOrder: func(o *models.Order, a *models.Address) (*shopify.Order, error) {
			t.Error("order must not be pushed before its customer")
			return nil, errors.New("unexpected create")
		},
	}

	report, err := newTestSync(t, client, st).Orders()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed())
}

func TestOrdersStampIDAndNumber(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveCustomer(&models.Customer{
		CustomerID: 7, Email: "ada@example.com", ShopifyID: stringPtr("909"),
	}))
	require.NoError(t, st.SaveOrder(&models.Order{OrderID: 1, CustomerID: 7, Status: models.OrderStatusPending}))

	client := &mockClient{
		createOrder: func(o *models.Order, a *models.Address) (*shopify.Order, error) {
			return &shopify.Order{ID: 4001, OrderNumber: 1042}, nil
		},
	}

	report, err := newTestSync(t, client, st).Orders()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded())

	o, err := st.FindOrder(1)
	require.NoError(t, err)
	require.NotNil(t, o.ShopifyID)
	assert.Equal(t, "4001", *o.ShopifyID)
	require.NotNil(t, o.ShopifyOrderNumber)
	assert.Equal(t, "1042", *o.ShopifyOrderNumber)
}

func TestCollectionTitlesDedupeTagsAndTypes(t *testing.T) {
	st := newTestStore(t)
	lookups := st.NewLookupCache()
	wine, err := lookups.Type("Wine")
	require.NoError(t, err)
	bordeaux, err := lookups.Tag("Bordeaux")
	require.NoError(t, err)
	wineTag, err := lookups.Tag("Wine")
	require.NoError(t, err)

	require.NoError(t, st.SaveProduct(&models.Product{
		SKU: "1001", Name: "Petrus", TypeName: &wine.Name,
		Tags: []models.Tag{*bordeaux, *wineTag},
	}))
	require.NoError(t, st.SaveProduct(&models.Product{
		SKU: "1002", Name: "Lafite", TypeName: &wine.Name,
		Tags: []models.Tag{*bordeaux},
	}))

	titles, err := newTestSync(t, &mockClient{}, st).CollectionTitles()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bordeaux", "Wine"}, titles)
}

func TestClassifyStatus(t *testing.T) {
	active := &models.Product{SKU: "1", Status: true}
	inactive := &models.Product{SKU: "2", Status: false}

	assert.Equal(t, "active", classifyStatus(active, 0))
	assert.Equal(t, "draft", classifyStatus(inactive, 2))
	assert.Equal(t, "archived", classifyStatus(inactive, 0))
	assert.Equal(t, "archived", classifyStatus(nil, 0))
}

func TestReconcileStatusCountsAndPushes(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveProduct(&models.Product{
		SKU: "1001", Name: "Petrus", Status: true, ShopifyID: stringPtr("100"),
	}))
	require.NoError(t, st.SaveProduct(&models.Product{
		SKU: "1002", Name: "Lafite", Status: false, ShopifyID: stringPtr("200"),
	}))

	// 1002 sits on an open order, so it drafts instead of archiving.
	require.NoError(t, st.SaveCustomer(&models.Customer{CustomerID: 7}))
	require.NoError(t, st.SaveOrder(&models.Order{OrderID: 1, CustomerID: 7, Status: models.OrderStatusPending}))
	require.NoError(t, st.ReplaceOrderLineItems(1, []models.LineItem{
		{OrderID: 1, ProductSKU: "1002", Quantity: 1},
	}))

	pushed := map[int64]string{}
	client := &mockClient{
		listProductIDs: func() ([]int64, error) {
			// 300 has no canonical product left.
			return []int64{100, 200, 300}, nil
		},
		updateProductStatus: func(id int64, status string) error {
			pushed[id] = status
			return nil
		},
	}

	counts, report, err := newTestSync(t, client, st).ReconcileStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 1, counts.Active)
	assert.Equal(t, 1, counts.Draft)
	assert.Equal(t, 1, counts.Archived)
	assert.Equal(t, map[int64]string{100: "active", 200: "draft", 300: "archived"}, pushed)
}

func TestFulfillmentsOnlyTargetShippedOrders(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.SaveCustomer(&models.Customer{CustomerID: 7}))

	require.NoError(t, st.SaveOrder(&models.Order{
		OrderID: 1, CustomerID: 7, Status: models.OrderStatusPartialShipment,
		ShopifyID: stringPtr("4001"),
	}))
	require.NoError(t, st.ReplaceOrderLineItems(1, []models.LineItem{
		{OrderID: 1, ProductSKU: "1001", Quantity: 2, Shipped: 1},
	}))

	require.NoError(t, st.SaveOrder(&models.Order{
		OrderID: 2, CustomerID: 7, Status: models.OrderStatusPending,
		ShopifyID: stringPtr("4002"),
	}))
	require.NoError(t, st.ReplaceOrderLineItems(2, []models.LineItem{
		{OrderID: 2, ProductSKU: "1001", Quantity: 1, Shipped: 0},
	}))

	var fulfilled []int
	client := &mockClient{
		fulfillOrder: func(o *models.Order) (string, error) {
			fulfilled = append(fulfilled, o.OrderID)
			return "gid://shopify/Fulfillment/1", nil
		},
	}

	report, err := newTestSync(t, client, st).Fulfillments()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded())
	assert.Equal(t, []int{1}, fulfilled)
}
