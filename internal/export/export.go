// Package export writes the warehouse-facing CSV files: the supplier
// list, open purchase orders and order shipments. Layouts follow what the
// 3PL's import expects, so column order is fixed.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vinsync/internal/logger"
	"vinsync/internal/models"
	"vinsync/internal/store"
)

const (
	storeName        = "VinsRare Shopify"
	defaultWarehouse = "Default Warehouse"
)

type Exporter struct {
	store   *store.Store
	logger  *logger.Logger
	fileDir string
}

func New(st *store.Store, log *logger.Logger, fileDir string) *Exporter {
	return &Exporter{store: st, logger: log, fileDir: fileDir}
}

func (e *Exporter) write(name string, rows [][]string) (string, error) {
	if err := os.MkdirAll(e.fileDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(e.fileDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	e.logger.Info("Wrote %d rows to %s", len(rows)-1, path)
	return path, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("01/02/2006")
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Suppliers writes the vendor list.
func (e *Exporter) Suppliers() (string, error) {
	vendors, err := e.store.AllVendors()
	if err != nil {
		return "", err
	}

	rows := [][]string{{"Name", "State"}}
	for _, vendor := range vendors {
		rows = append(rows, []string{vendor.Name, vendor.State})
	}
	return e.write("suppliers.csv", rows)
}

type poLine struct {
	detail   models.PurchaseOrderDetail
	quantity int
}

// PurchaseOrders writes one row per purchase order and SKU with detail
// quantities summed. A PO whose detail has a received date exports as
// closed, otherwise as sent.
func (e *Exporter) PurchaseOrders() (string, error) {
	details, err := e.store.AllPurchaseOrderDetails()
	if err != nil {
		return "", err
	}

	combined := map[string]*poLine{}
	var order []string
	for _, detail := range details {
		if detail.Quantity <= 0 || detail.PurchaseOrder == nil {
			continue
		}
		key := fmt.Sprintf("%d/%s", detail.POID, detail.ProductSKU)
		line, ok := combined[key]
		if !ok {
			line = &poLine{detail: detail}
			combined[key] = line
			order = append(order, key)
		}
		line.quantity += detail.Quantity
	}

	rows := [][]string{{
		"PO #", "Supplier", "Warehouse", "Store", "Quantity", "Rate",
		"SKU", "Received", "Memo", "Arrival date", "Status",
	}}
	for _, key := range order {
		line := combined[key]
		detail := line.detail

		status := "sent"
		if detail.ReceivedDate != nil {
			status = "closed"
		}
		rows = append(rows, []string{
			strconv.Itoa(detail.POID),
			detail.PurchaseOrder.VendorName,
			defaultWarehouse,
			storeName,
			strconv.Itoa(line.quantity),
			formatAmount(detail.Cost),
			detail.ProductSKU,
			strconv.Itoa(detail.Received),
			detail.PurchaseOrder.Reference,
			formatDate(detail.ReceivedDate),
			status,
		})
	}
	return e.write("purchase-orders.csv", rows)
}

// OrderShipments writes one row per order and SKU for every line with
// shipped stock.
func (e *Exporter) OrderShipments() (string, error) {
	orders, err := e.store.AllOrders()
	if err != nil {
		return "", err
	}

	rows := [][]string{{
		"Store", "Order #", "Carrier", "Service", "Tracking #",
		"Cost", "SKU", "Quantity", "Warehouse",
	}}
	for _, order := range orders {
		for _, line := range order.LineItems {
			if line.Shipped <= 0 {
				continue
			}
			tracking := order.TrackingNumber
			if tracking == "" {
				tracking = "#"
			}
			rows = append(rows, []string{
				storeName,
				strconv.Itoa(order.OrderID),
				"Custom",
				order.ShippingMethod,
				tracking,
				formatAmount(order.ShippingPrice),
				line.ProductSKU,
				strconv.Itoa(line.Shipped),
				defaultWarehouse,
			})
		}
	}
	return e.write("order-shipments.csv", rows)
}
