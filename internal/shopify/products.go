package shopify

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vinsync/internal/models"
	"vinsync/internal/normalize"
)

const storeVendor = "Vins Rare"

var titleCaser = cases.Title(language.English)

// productMetafieldKeys is the explicit allowlist of custom fields pushed
// to the storefront. Anything not named here stays internal.
func productMetafields(p *models.Product) []Metafield {
	pairs := []struct {
		key   string
		value string
	}{
		{"min_order_qty", normalize.Text(p.MinOrderQty)},
		{"order_increment", normalize.Text(p.OrderIncrement)},

		{"pre_arrival", p.PreArrival},

		{"warehouse_location", p.WarehouseLocation},
		{"year", p.Vintage},
		{"country", p.Country},
		{"appellation", p.Appellation},
		{"rating_ws", p.RatingWS},
		{"rating_wa", p.RatingWA},
		{"rating_vm", p.RatingVM},
		{"rating_bh", p.RatingBH},
		{"rating_jg", p.RatingJG},
		{"rating_js", p.RatingJS},
		{"additional_notes", p.AdditionalNotes},
		{"size", p.Size},
		{"wine_searcher", normalize.Text(p.WineSearcher)},
		{"cellar_tracker_id", p.CellarTrackerID},

		{"varietal", p.Varietal},
		{"region", p.Region},
		{"sub_region", p.SubRegion},
		{"vineyard", p.Vineyard},
		{"disgorged", p.Disgorged},
		{"dosage", p.Dosage},
		{"alc", p.Alc},
		{"biodynamic", normalize.Text(p.Biodynamic)},
		{"rating_jd", p.RatingJD},
		{"rating_jm", p.RatingJM},
		{"rating_wh", p.RatingWH},
		{"rating_vr", p.RatingVR},

		{"depth", normalize.Text(p.Depth)},
		{"width", normalize.Text(p.Width)},
		{"height", normalize.Text(p.Height)},
	}

	metafields := make([]Metafield, 0, len(pairs))
	for _, pair := range pairs {
		metafields = append(metafields, Metafield{
			Namespace: "custom",
			Key:       pair.key,
			Value:     pair.value,
		})
	}
	return metafields
}

// BuildProductPayload translates a canonical product into the remote
// shape: base product, one variant, the metafield allowlist, and the
// thumbnail in first position when present.
func BuildProductPayload(p *models.Product) Product {
	tags := make([]string, 0, len(p.Categories)+len(p.Tags))
	for _, category := range p.Categories {
		tags = append(tags, category.Name)
	}
	for _, tag := range p.Tags {
		tags = append(tags, tag.Name)
	}

	productType := ""
	if p.TypeName != nil {
		productType = *p.TypeName
	}

	status := "active"
	if !p.Status {
		status = "draft"
	}

	var inventoryManagement *string
	if p.TrackQuantity {
		managed := "shopify"
		inventoryManagement = &managed
	}

	payload := Product{
		Title:       titleCaser.String(p.Name),
		BodyHTML:    p.Description,
		Vendor:      storeVendor,
		ProductType: productType,
		Tags:        strings.Join(tags, ","),
		Status:      status,
		Variants: []Variant{{
			Price:               p.Price,
			SKU:                 p.SKU,
			Weight:              p.Weight,
			WeightUnit:          "lb",
			InventoryManagement: inventoryManagement,
			InventoryQuantity:   p.Quantity,
			FulfillmentService:  "manual",
			Taxable:             false,
		}},
		Metafields: productMetafields(p),
	}

	if p.Thumbnail != "" {
		payload.Images = []Image{{Src: p.Thumbnail, Position: 1}}
	}

	return payload
}

// ListProductIDs pages through the remote catalog and accumulates every
// product id.
func (c *Client) ListProductIDs() ([]int64, error) {
	var ids []int64
	pageInfo := ""

	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("fields", "id")
		if pageInfo != "" {
			query.Set("page_info", pageInfo)
		}

		var resp struct {
			Products []Product `json:"products"`
		}
		header, err := c.do("GET", "products.json", query, nil, &resp)
		if err != nil {
			return nil, err
		}

		c.logger.Info("Fetched %d Products", len(resp.Products))
		for _, product := range resp.Products {
			ids = append(ids, product.ID)
		}

		pageInfo = nextPageInfo(header)
		if pageInfo == "" || len(resp.Products) == 0 {
			return ids, nil
		}
	}
}

func (c *Client) GetProduct(id int64) (*Product, error) {
	var resp struct {
		Product Product `json:"product"`
	}
	if _, err := c.do("GET", fmt.Sprintf("products/%d.json", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (c *Client) CreateProduct(product *models.Product) (*Product, error) {
	payload := struct {
		Product Product `json:"product"`
	}{Product: BuildProductPayload(product)}

	var resp struct {
		Product Product `json:"product"`
	}
	if _, err := c.do("POST", "products.json", nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

// UpdateProductMetafields refreshes the values of the allowlisted keys on
// an already-created product.
func (c *Client) UpdateProductMetafields(product *models.Product, shopifyID int64) error {
	var existing struct {
		Metafields []Metafield `json:"metafields"`
	}
	if _, err := c.do("GET", fmt.Sprintf("products/%d/metafields.json", shopifyID), nil, nil, &existing); err != nil {
		return err
	}

	for _, metafield := range productMetafields(product) {
		for _, current := range existing.Metafields {
			if current.Key != metafield.Key {
				continue
			}
			current.Value = metafield.Value
			payload := struct {
				Metafield Metafield `json:"metafield"`
			}{Metafield: current}
			if _, err := c.do("PUT", fmt.Sprintf("metafields/%d.json", current.ID), nil, payload, nil); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

func (c *Client) UpdateProductStatus(shopifyID int64, status string) error {
	payload := struct {
		Product Product `json:"product"`
	}{Product: Product{ID: shopifyID, Status: status}}
	_, err := c.do("PUT", fmt.Sprintf("products/%d.json", shopifyID), nil, payload, nil)
	return err
}

func (c *Client) DeleteProduct(id int64) error {
	_, err := c.do("DELETE", fmt.Sprintf("products/%d.json", id), nil, nil, nil)
	return err
}

// UploadImage attaches a secondary image to a product. Local paths are
// sent base64-encoded; anything else is passed through as a source URL.
func (c *Client) UploadImage(shopifyID int64, image, alt string) (*Image, error) {
	img := Image{Alt: alt, Position: 2}

	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		img.Src = image
	} else {
		data, err := os.ReadFile(image)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", image, err)
		}
		img.Attachment = base64.StdEncoding.EncodeToString(data)
		img.Filename = filepath.Base(image)
	}

	payload := struct {
		Image Image `json:"image"`
	}{Image: img}

	var resp struct {
		Image Image `json:"image"`
	}
	if _, err := c.do("POST", fmt.Sprintf("products/%d/images.json", shopifyID), nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Image, nil
}

// SetInventoryLevel pins the available quantity of every variant of a
// product at the configured location.
func (c *Client) SetInventoryLevel(shopifyID int64, locationID string, available int) error {
	product, err := c.GetProduct(shopifyID)
	if err != nil {
		return err
	}

	// The API documents location_id as an integer; the configured value
	// arrives as an env string.
	var location interface{} = locationID
	if id, err := strconv.ParseInt(locationID, 10, 64); err == nil {
		location = id
	}

	for _, variant := range product.Variants {
		payload := map[string]interface{}{
			"location_id":       location,
			"inventory_item_id": variant.InventoryItemID,
			"available":         available,
		}
		if _, err := c.do("POST", "inventory_levels/set.json", nil, payload, nil); err != nil {
			return fmt.Errorf("failed updating inventory for product %d: %w", shopifyID, err)
		}
		c.logger.Info("Product %d Inventory updated to %d", shopifyID, available)
	}
	return nil
}
