package importer

import (
	"fmt"
	"strings"

	"vinsync/internal/feed"
	"vinsync/internal/legacy"
	"vinsync/internal/models"
	"vinsync/internal/normalize"
	"vinsync/internal/pool"
)

// productDraft accumulates the join-duplicated legacy rows for one SKU.
// The category join emits one row per category; every other column repeats.
type productDraft struct {
	row        legacy.ProductRow
	categories []string
}

// ImportProducts pulls the full legacy product catalog, one canonical
// product per SKU with categories merged across join duplicates, then
// diff-deletes products left over from earlier generations.
func (i *Importer) ImportProducts() (*Report, error) {
	rows, err := i.source.Products()
	if err != nil {
		return nil, err
	}

	drafts := make(map[int64]*productDraft)
	var order []int64
	for _, row := range rows {
		if !row.SKU.Valid {
			continue
		}
		d, ok := drafts[row.SKU.Int64]
		if !ok {
			d = &productDraft{row: row}
			drafts[row.SKU.Int64] = d
			order = append(order, row.SKU.Int64)
		}
		if category := cleanCategory(row.Category.String); category != "" {
			d.categories = append(d.categories, category)
		}
	}

	report := &Report{}
	tasks := make([]pool.Task, 0, len(order))
	for _, sku := range order {
		draft := drafts[sku]
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("product %d", sku),
			Run: func() error {
				if err := i.importProduct(draft); err != nil {
					i.logger.Error("product %d: %v", sku, err)
					report.skip(fmt.Sprintf("%d", sku))
					return err
				}
				report.imported()
				return nil
			},
		})
	}
	pool.Run(i.workers, tasks)

	if err := i.store.DeleteStaleProducts(i.runID); err != nil {
		return report, err
	}
	i.logger.Info("Imported %d products (%d skipped)", report.Imported, report.Skipped)
	return report, nil
}

func (i *Importer) importProduct(draft *productDraft) error {
	row := draft.row

	typeName := cleanType(row.Type.String)
	productType, err := i.lookups.Type(typeName)
	if err != nil {
		return err
	}

	var categories []models.Category
	tagNames := []string{}
	if typeName != "" {
		tagNames = append(tagNames, typeName)
	}
	for _, name := range draft.categories {
		category, err := i.lookups.Category(name)
		if err != nil {
			return err
		}
		if category != nil {
			categories = append(categories, *category)
			tagNames = append(tagNames, name)
		}
	}
	if row.FreeShipping.Int64 == 1 {
		tagNames = append(tagNames, "Free Shipping")
	}

	var tags []models.Tag
	for _, name := range tagNames {
		tag, err := i.lookups.Tag(name)
		if err != nil {
			return err
		}
		if tag != nil {
			tags = append(tags, *tag)
		}
	}

	product := &models.Product{
		SKU:         fmt.Sprintf("%d", row.SKU.Int64),
		Name:        normalize.Text(row.Name.String),
		Description: normalize.Text(row.Description.String),

		Categories: categories,
		Tags:       tags,

		Price: normalize.Float(row.Price.Float64),

		Quantity:      normalize.Int(row.Quantity.Float64),
		TrackQuantity: row.TrackQuantity.Int64 == 1,
		FreeShipping:  row.FreeShipping.Int64 == 1,
		Weight:        normalize.Float(row.Weight.Float64),

		Status: row.Status.Int64 == 1,

		Thumbnail: normalize.Text(row.Image.String),

		MinOrderQty:    normalize.Int(row.MinOrderQty.Int64),
		OrderIncrement: normalize.Int(row.OrderUnits.Int64),

		RunID: i.runID,
	}
	if productType != nil {
		product.TypeName = &productType.Name
	}

	return i.store.SaveProduct(product)
}

// cleanType strips the storefront's "Product - " display prefix off a
// product-type name.
func cleanType(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(normalize.Text(name), "Product - ", ""))
}

// cleanCategory strips the bold markup some legacy category names carry.
func cleanCategory(name string) string {
	clean := strings.ReplaceAll(normalize.Text(name), "<b>", "")
	clean = strings.ReplaceAll(clean, "</b>", "")
	return strings.TrimSpace(clean)
}

// enrichmentColumns maps plainly-copied datasheet fields onto product
// columns. Name, vintage, type, status, size and the roomset image need
// special handling and stay out of this table.
var enrichmentColumns = map[string]string{
	"pre_arrival":        "pre_arrival",
	"warehouse_location": "warehouse_location",
	"country":            "country",
	"appellation":        "appellation",
	"varietal":           "varietal",
	"region":             "region",
	"sub_region":         "sub_region",
	"vineyard":           "vineyard",
	"disgorged":          "disgorged",
	"dosage":             "dosage",
	"alc":                "alc",
	"additional_notes":   "additional_notes",
	"cellar_tracker_id":  "cellar_tracker_id",
	"rating_ws":          "rating_ws",
	"rating_wa":          "rating_wa",
	"rating_vm":          "rating_vm",
	"rating_bh":          "rating_bh",
	"rating_jg":          "rating_jg",
	"rating_js":          "rating_js",
	"rating_jd":          "rating_jd",
	"rating_jm":          "rating_jm",
	"rating_wh":          "rating_wh",
	"rating_vr":          "rating_vr",
}

// EnrichProducts merges datasheet rows onto already-imported products by
// SKU. A row with no matching product is counted, reported NOT FOUND and
// never creates one. Only columns the datasheet actually covers are
// written, so importer-owned fields survive the merge.
func (i *Importer) EnrichProducts(rows []feed.Row) (*Report, error) {
	report := &Report{}

	for _, row := range rows {
		sku := fmt.Sprintf("%d", normalize.Int(row.Fields["sku"]))

		product, err := i.store.FindProductBySKU(sku)
		if err != nil {
			return report, err
		}
		if product == nil {
			i.logger.Warn("%s NOT FOUND", sku)
			report.notFound()
			continue
		}

		updates := map[string]interface{}{}

		name := normalize.Text(row.Fields["name"])
		vintage := normalize.Text(row.Fields["vintage"])
		if name != "" {
			updates["name"] = strings.TrimSpace(vintage + " " + name)
		}
		updates["vintage"] = vintage

		if status, ok := row.Fields["status"]; ok {
			updates["status"] = normalize.Text(status) == "On"
		}

		if typeName := normalize.Text(row.Fields["type"]); typeName != "" {
			productType, err := i.lookups.Type(typeName)
			if err != nil {
				return report, err
			}
			updates["type_name"] = productType.Name
		}

		if size, ok := row.Fields["size"]; ok {
			updates["size"] = TranslateSize(normalize.Text(size))
		}
		if image, ok := row.Fields["image_2"]; ok {
			updates["roomset"] = normalize.Text(image)
		}
		if searcher, ok := row.Fields["wine_searcher"]; ok {
			updates["wine_searcher"] = normalize.Text(searcher) != ""
		}
		if biodynamic, ok := row.Fields["biodynamic"]; ok {
			updates["biodynamic"] = normalize.Text(biodynamic) != ""
		}

		for field, column := range enrichmentColumns {
			if value, ok := row.Fields[field]; ok {
				updates[column] = normalize.Text(value)
			}
		}

		if err := i.store.UpdateProductFields(sku, updates); err != nil {
			i.logger.Error("product %s: %v", sku, err)
			report.skip(sku)
			continue
		}
		report.imported()
	}

	i.logger.Info("Enriched %d products (%d not found)", report.Imported, report.NotFound)
	return report, nil
}
