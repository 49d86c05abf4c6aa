package importer

import (
	"fmt"
	"time"

	"vinsync/internal/legacy"
	"vinsync/internal/models"
	"vinsync/internal/normalize"
	"vinsync/internal/pool"
)

// legacyTime parses the storefront's SQL datetime columns. Bare dates also
// appear; anything else yields nil.
func legacyTime(value string) *time.Time {
	text := normalize.Text(value)
	if text == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, text); err == nil {
			return &parsed
		}
	}
	return nil
}

// ImportOrders pulls the legacy order history with line items and the
// classified monetary totals, then diff-deletes rows from earlier
// generations. An order referencing a customer that never imported is
// skipped; a line item referencing an unknown product is dropped from its
// order with a warning.
func (i *Importer) ImportOrders() (*Report, error) {
	rows, err := i.source.Orders()
	if err != nil {
		return nil, err
	}
	lineRows, err := i.source.LineItems()
	if err != nil {
		return nil, err
	}

	linesByOrder := make(map[int64][]legacy.LineItemRow)
	for _, line := range lineRows {
		if !line.OrderID.Valid {
			continue
		}
		linesByOrder[line.OrderID.Int64] = append(linesByOrder[line.OrderID.Int64], line)
	}

	report := &Report{}
	var tasks []pool.Task
	for _, row := range rows {
		if !row.OrderID.Valid {
			continue
		}
		orderID := row.OrderID.Int64
		lines := linesByOrder[orderID]
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("order %d", orderID),
			Run: func() error {
				if err := i.importOrder(row, lines); err != nil {
					i.logger.Error("order %d: %v", orderID, err)
					report.skip(fmt.Sprintf("%d", orderID))
					return err
				}
				report.imported()
				return nil
			},
		})
	}
	pool.Run(i.workers, tasks)

	if err := i.store.DeleteStaleOrders(i.runID); err != nil {
		return report, err
	}
	i.logger.Info("Imported %d orders (%d skipped)", report.Imported, report.Skipped)
	return report, nil
}

func (i *Importer) importOrder(row legacy.OrderRow, lines []legacy.LineItemRow) error {
	orderID := int(row.OrderID.Int64)

	customer, err := i.store.FindCustomer(int(row.CustomerID.Int64))
	if err != nil {
		return err
	}
	if customer == nil {
		return fmt.Errorf("customer %d not found", row.CustomerID.Int64)
	}

	total, shipping, tax, err := i.orderTotals(orderID)
	if err != nil {
		return err
	}

	order := &models.Order{
		OrderID:    orderID,
		CustomerID: customer.CustomerID,

		TotalPrice:    total,
		ShippingPrice: shipping,
		Tax:           tax,

		ShippingMethod: normalize.Text(row.ShippingMethod.String),
		OrderDate:      legacyTime(row.DatePurchased.String),

		BillingName:     normalize.Text(row.BillingName.String),
		BillingCompany:  normalize.Text(row.BillingCompany.String),
		BillingAddress1: normalize.Text(row.BillingAddress1.String),
		BillingAddress2: normalize.Text(row.BillingAddress2.String),
		BillingCity:     normalize.Text(row.BillingCity.String),
		BillingState:    normalize.Text(row.BillingState.String),
		BillingZip:      normalize.Text(row.BillingZip.String),
		BillingCountry:  normalize.Text(row.BillingCountry.String),

		Status: normalize.Text(row.Status.String),

		RunID: i.runID,
	}
	if row.ShippingAddressID.Valid && row.ShippingAddressID.Int64 != 0 {
		addressID := int(row.ShippingAddressID.Int64)
		order.ShippingAddressID = &addressID
	}

	if err := i.store.SaveOrder(order); err != nil {
		return err
	}

	var items []models.LineItem
	for _, line := range lines {
		sku := fmt.Sprintf("%d", line.ProductID.Int64)
		product, err := i.store.FindProductBySKU(sku)
		if err != nil {
			return err
		}
		if product == nil {
			i.logger.Warn("order %d: product %s not found, line dropped", orderID, sku)
			continue
		}

		quantity := normalize.Int(line.Quantity.Float64)
		shipped := normalize.Int(line.Shipped.Float64)
		if shipped > quantity {
			i.logger.Warn("order %d: product %s shipped %d of %d", orderID, sku, shipped, quantity)
		}

		items = append(items, models.LineItem{
			OrderID:     orderID,
			ProductSKU:  sku,
			UnitPrice:   normalize.Float(line.FinalPrice.Float64),
			Quantity:    quantity,
			Shipped:     shipped,
			ShippedDate: legacyTime(line.ShippedDate.String),
			RunID:       i.runID,
		})
	}
	return i.store.ReplaceOrderLineItems(orderID, items)
}

// orderTotals folds an order's classified total lines into the three
// scalar amounts. A class with no line is zero.
func (i *Importer) orderTotals(orderID int) (total, shipping, tax float64, err error) {
	rows, err := i.source.OrderTotals(orderID)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, row := range rows {
		value := normalize.Float(row.Value.Float64)
		switch row.Class.String {
		case legacy.TotalClassTotal:
			total = value
		case legacy.TotalClassShipping:
			shipping = value
		case legacy.TotalClassTax:
			tax = value
		}
	}
	return total, shipping, tax, nil
}
