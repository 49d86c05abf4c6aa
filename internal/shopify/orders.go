package shopify

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"vinsync/internal/models"
)

// FinancialStatusFor maps the canonical lifecycle status onto the remote
// financial status. Unknown statuses fail open to pending so an order is
// never rejected for an unmapped lifecycle value. The second return is
// the fulfillment status, set only for cancelled orders.
func FinancialStatusFor(status string) (string, string) {
	switch status {
	case models.OrderStatusCancelled:
		return "refunded", "restocked"
	case models.OrderStatusDelivered, models.OrderStatusPartialShipment, models.OrderStatusProcessing:
		return "paid", ""
	case models.OrderStatusPending:
		return "pending", ""
	default:
		return "pending", ""
	}
}

func (c *Client) ListOrderIDs() ([]int64, error) {
	var ids []int64
	pageInfo := ""

	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("status", "any")
		query.Set("fields", "id")
		if pageInfo != "" {
			query.Set("page_info", pageInfo)
		}

		var resp struct {
			Orders []Order `json:"orders"`
		}
		header, err := c.do("GET", "orders.json", query, nil, &resp)
		if err != nil {
			return nil, err
		}

		c.logger.Info("Fetched %d Orders", len(resp.Orders))
		for _, order := range resp.Orders {
			ids = append(ids, order.ID)
		}

		pageInfo = nextPageInfo(header)
		if pageInfo == "" || len(resp.Orders) == 0 {
			return ids, nil
		}
	}
}

func (c *Client) GetOrder(id int64) (*Order, error) {
	var resp struct {
		Order Order `json:"order"`
	}
	if _, err := c.do("GET", fmt.Sprintf("orders/%d.json", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// BuildOrderPayload assembles the remote order. Line items resolve to the
// remote product's first variant; a line whose product has no usable
// remote id is skipped with a warning rather than failing the order.
func (c *Client) BuildOrderPayload(order *models.Order, shippingAddress *models.Address) Order {
	payload := Order{
		Note: fmt.Sprintf("Zencart Order ID: %d", order.OrderID),
	}

	if order.Customer != nil && order.Customer.Synced() {
		if id, err := strconv.ParseInt(*order.Customer.ShopifyID, 10, 64); err == nil {
			payload.Customer = &OrderCustomer{ID: id}
		}
		payload.Phone = order.Customer.Phone
	}

	for _, item := range order.LineItems {
		if item.Product == nil || !item.Product.Synced() {
			c.logger.Warn("Order %d: line item %s has no remote product, skipping", order.OrderID, item.ProductSKU)
			continue
		}
		remoteID, err := strconv.ParseInt(*item.Product.ShopifyID, 10, 64)
		if err != nil {
			c.logger.Warn("Order %d: line item %s has invalid remote id %q, skipping", order.OrderID, item.ProductSKU, *item.Product.ShopifyID)
			continue
		}
		remoteProduct, err := c.GetProduct(remoteID)
		if err != nil || len(remoteProduct.Variants) == 0 {
			c.logger.Warn("Order %d: failed to resolve variant for %s: %v", order.OrderID, item.ProductSKU, err)
			continue
		}
		payload.LineItems = append(payload.LineItems, OrderLineItem{
			VariantID: remoteProduct.Variants[0].ID,
			Price:     item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	if order.ShippingPrice >= 0 {
		title := order.ShippingMethod
		if title == "" {
			title = "FedEx"
		}
		payload.ShippingLines = []ShippingLine{{Title: title, Price: order.ShippingPrice}}
	}
	payload.TaxLines = []TaxLine{{Price: order.Tax}}
	payload.TotalPrice = order.TotalPrice
	if order.OrderDate != nil {
		payload.CreatedAt = order.OrderDate.Format(time.RFC3339)
	}

	if shippingAddress != nil {
		addr := &CustomerAddress{
			FirstName: shippingAddress.FirstName,
			LastName:  shippingAddress.LastName,
			Company:   shippingAddress.Company,
			Address1:  shippingAddress.Address1,
			Address2:  shippingAddress.Address2,
			City:      shippingAddress.City,
			Province:  shippingAddress.State,
			Zip:       shippingAddress.Zip,
			Country:   shippingAddress.Country,
		}
		if order.Customer != nil {
			addr.Phone = order.Customer.Phone
		}
		payload.ShippingAddress = addr
	}

	payload.BillingAddress = &CustomerAddress{
		Name:     order.BillingName,
		Company:  order.BillingCompany,
		Address1: order.BillingAddress1,
		Address2: order.BillingAddress2,
		City:     order.BillingCity,
		Province: order.BillingState,
		Zip:      order.BillingZip,
		Country:  order.BillingCountry,
	}

	payload.FinancialStatus, payload.FulfillmentStatus = FinancialStatusFor(order.Status)

	return payload
}

func (c *Client) CreateOrder(order *models.Order, shippingAddress *models.Address) (*Order, error) {
	body := struct {
		Order Order `json:"order"`
	}{Order: c.BuildOrderPayload(order, shippingAddress)}

	var resp struct {
		Order Order `json:"order"`
	}
	if _, err := c.do("POST", "orders.json", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

func (c *Client) DeleteOrder(id int64) error {
	_, err := c.do("DELETE", fmt.Sprintf("orders/%d.json", id), nil, nil, nil)
	return err
}
