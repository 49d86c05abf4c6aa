package export

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinsync/internal/database"
	"vinsync/internal/logger"
	"vinsync/internal/models"
	"vinsync/internal/store"
)

func newTestExporter(t *testing.T) (*Exporter, *store.Store) {
	t.Helper()
	db, err := database.New("sqlite://" + t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := store.New(db.DB)
	return New(st, logger.New("error"), t.TempDir()), st
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSuppliersExport(t *testing.T) {
	e, st := newTestExporter(t)
	lookups := st.NewLookupCache()
	_, err := lookups.Vendor("Grand Cru Imports", "CA")
	require.NoError(t, err)
	_, err = lookups.Vendor("Burgundy Direct", "NY")
	require.NoError(t, err)

	path, err := e.Suppliers()
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "State"}, rows[0])
	assert.Equal(t, []string{"Burgundy Direct", "NY"}, rows[1])
	assert.Equal(t, []string{"Grand Cru Imports", "CA"}, rows[2])
}

func TestPurchaseOrdersExportGroupsAndSums(t *testing.T) {
	e, st := newTestExporter(t)
	lookups := st.NewLookupCache()
	_, err := lookups.Vendor("Grand Cru Imports", "CA")
	require.NoError(t, err)

	require.NoError(t, st.SaveProduct(&models.Product{SKU: "1001", Name: "Petrus"}))
	require.NoError(t, st.SavePurchaseOrder(&models.PurchaseOrder{
		POID: 31, VendorName: "Grand Cru Imports", Reference: "PO-31",
	}))

	received := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.SavePurchaseOrderDetail(&models.PurchaseOrderDetail{
		PODetailID: 311, POID: 31, ProductSKU: "1001",
		Cost: 60, Quantity: 12, Received: 12, ReceivedDate: &received,
	}))
	require.NoError(t, st.SavePurchaseOrderDetail(&models.PurchaseOrderDetail{
		PODetailID: 312, POID: 31, ProductSKU: "1001",
		Cost: 60, Quantity: 6,
	}))
	// Zero quantity never exports.
	require.NoError(t, st.SavePurchaseOrderDetail(&models.PurchaseOrderDetail{
		PODetailID: 313, POID: 31, ProductSKU: "1001", Cost: 60, Quantity: 0,
	}))

	path, err := e.PurchaseOrders()
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"31", "Grand Cru Imports", "Default Warehouse", "VinsRare Shopify",
		"18", "60.00", "1001", "12", "PO-31", "02/10/2024", "closed",
	}, rows[1])
}

func TestOrderShipmentsExport(t *testing.T) {
	e, st := newTestExporter(t)
	require.NoError(t, st.SaveCustomer(&models.Customer{CustomerID: 7}))
	require.NoError(t, st.SaveProduct(&models.Product{SKU: "1001", Name: "Petrus"}))
	require.NoError(t, st.SaveOrder(&models.Order{
		OrderID: 1, CustomerID: 7, Status: models.OrderStatusPartialShipment,
		ShippingMethod: "FedEx Ground", ShippingPrice: 25,
	}))
	require.NoError(t, st.ReplaceOrderLineItems(1, []models.LineItem{
		{OrderID: 1, ProductSKU: "1001", Quantity: 3, Shipped: 2},
		{OrderID: 1, ProductSKU: "1001", Quantity: 1, Shipped: 0},
	}))

	path, err := e.OrderShipments()
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"VinsRare Shopify", "1", "Custom", "FedEx Ground", "#",
		"25.00", "1001", "2", "Default Warehouse",
	}, rows[1])
}
