package importer

import (
	"fmt"

	"vinsync/internal/legacy"
	"vinsync/internal/models"
	"vinsync/internal/normalize"
	"vinsync/internal/pool"
)

// poDraft accumulates the join-duplicated rows for one purchase order.
// The detail join emits one row per ordered product.
type poDraft struct {
	row     legacy.PurchaseOrderRow
	details []legacy.PurchaseOrderRow
}

// ImportPurchaseOrders pulls open and historical supplier purchase orders
// with their per-product detail lines, creating vendors on demand, then
// diff-deletes rows from earlier generations. A detail naming a product
// that never imported is dropped with a warning.
func (i *Importer) ImportPurchaseOrders() (*Report, error) {
	rows, err := i.source.PurchaseOrders()
	if err != nil {
		return nil, err
	}

	drafts := make(map[int64]*poDraft)
	var order []int64
	for _, row := range rows {
		if !row.POID.Valid {
			continue
		}
		d, ok := drafts[row.POID.Int64]
		if !ok {
			d = &poDraft{row: row}
			drafts[row.POID.Int64] = d
			order = append(order, row.POID.Int64)
		}
		if row.PODetailID.Valid {
			d.details = append(d.details, row)
		}
	}

	report := &Report{}
	tasks := make([]pool.Task, 0, len(order))
	for _, id := range order {
		draft := drafts[id]
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("purchase order %d", id),
			Run: func() error {
				if err := i.importPurchaseOrder(draft); err != nil {
					i.logger.Error("purchase order %d: %v", id, err)
					report.skip(fmt.Sprintf("%d", id))
					return err
				}
				report.imported()
				return nil
			},
		})
	}
	pool.Run(i.workers, tasks)

	if err := i.store.DeleteStalePurchaseOrders(i.runID); err != nil {
		return report, err
	}
	i.logger.Info("Imported %d purchase orders (%d skipped)", report.Imported, report.Skipped)
	return report, nil
}

func (i *Importer) importPurchaseOrder(draft *poDraft) error {
	row := draft.row

	vendor, err := i.lookups.Vendor(
		normalize.Text(row.VendorName.String),
		normalize.Text(row.VendorState.String),
	)
	if err != nil {
		return err
	}
	if vendor == nil {
		return fmt.Errorf("no vendor name")
	}

	po := &models.PurchaseOrder{
		POID:       int(row.POID.Int64),
		VendorName: vendor.Name,
		Reference:  normalize.Text(row.Reference.String),
		OrderDate:  legacyTime(row.OrderDate.String),
		RunID:      i.runID,
	}
	if err := i.store.SavePurchaseOrder(po); err != nil {
		return err
	}

	for _, detailRow := range draft.details {
		sku := fmt.Sprintf("%d", detailRow.ProductID.Int64)
		product, err := i.store.FindProductBySKU(sku)
		if err != nil {
			return err
		}
		if product == nil {
			i.logger.Warn("purchase order %d: product %s not found, detail dropped", po.POID, sku)
			continue
		}

		detail := &models.PurchaseOrderDetail{
			PODetailID: int(detailRow.PODetailID.Int64),
			POID:       po.POID,
			ProductSKU: sku,

			Cost:     normalize.Float(detailRow.Cost.Float64),
			Quantity: normalize.Int(detailRow.Quantity.Float64),
			Received: normalize.Int(detailRow.Received.Float64),

			ExpectedDate: legacyTime(detailRow.ExpectedDate.String),
			ReceivedDate: legacyTime(detailRow.ReceivedDate.String),

			RunID: i.runID,
		}
		if err := i.store.SavePurchaseOrderDetail(detail); err != nil {
			return err
		}
	}
	return nil
}
