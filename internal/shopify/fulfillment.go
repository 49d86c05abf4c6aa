package shopify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"vinsync/internal/models"
)

const fulfillmentCreateMutation = `
	mutation fulfillmentCreateV2($fulfillment: FulfillmentV2Input!) {
		fulfillmentCreateV2(fulfillment: $fulfillment) {
			fulfillment {
				id
				status
			}
			userErrors {
				field
				message
			}
		}
	}
`

const fulfillmentEventCreateMutation = `
	mutation fulfillmentEventCreate($fulfillmentEvent: FulfillmentEventInput!) {
		fulfillmentEventCreate(fulfillmentEvent: $fulfillmentEvent) {
			fulfillmentEvent {
				id
				status
				message
			}
			userErrors {
				field
				message
			}
		}
	}
`

type graphQLError struct {
	Message string `json:"message"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// graphql posts one GraphQL document to the admin endpoint.
func (c *Client) graphql(query string, variables map[string]interface{}, data interface{}) error {
	payload := map[string]interface{}{
		"query":     query,
		"variables": variables,
	}

	var resp struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if _, err := c.do("POST", "graphql.json", nil, payload, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", resp.Errors[0].Message)
	}
	return json.Unmarshal(resp.Data, data)
}

func (c *Client) fulfillmentOrders(orderID int64) ([]FulfillmentOrder, error) {
	var resp struct {
		FulfillmentOrders []FulfillmentOrder `json:"fulfillment_orders"`
	}
	if _, err := c.do("GET", fmt.Sprintf("orders/%d/fulfillment_orders.json", orderID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.FulfillmentOrders, nil
}

func (c *Client) variantSKU(variantID int64) (string, error) {
	var resp struct {
		Variant Variant `json:"variant"`
	}
	if _, err := c.do("GET", fmt.Sprintf("variants/%d.json", variantID), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Variant.SKU, nil
}

// FulfillOrder runs the two-step fulfillment sequence: create a
// fulfillment over the subset of the order's fulfillment-order line items
// whose SKU matches a shipped canonical line, then mark it delivered with
// the shipped date. No qualifying line items is a no-op, not an error.
func (c *Client) FulfillOrder(order *models.Order) (string, error) {
	if !order.Synced() {
		return "", fmt.Errorf("order %d has no remote id", order.OrderID)
	}
	remoteID, err := strconv.ParseInt(*order.ShopifyID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("order %d has invalid remote id %q", order.OrderID, *order.ShopifyID)
	}

	fos, err := c.fulfillmentOrders(remoteID)
	if err != nil {
		return "", err
	}

	var open *FulfillmentOrder
	for i := range fos {
		if fos[i].Status == "open" || fos[i].Status == "in_progress" {
			open = &fos[i]
			break
		}
	}
	if open == nil {
		return "", nil
	}

	var lineItems []map[string]interface{}
	var shippedDate *time.Time
	for _, foLineItem := range open.LineItems {
		sku, err := c.variantSKU(foLineItem.VariantID)
		if err != nil {
			return "", err
		}

		for _, lineItem := range order.LineItems {
			if lineItem.Shipped > 0 && lineItem.ProductSKU == sku {
				lineItems = append(lineItems, map[string]interface{}{
					"id":       fmt.Sprintf("gid://shopify/FulfillmentOrderLineItem/%d", foLineItem.ID),
					"quantity": lineItem.Shipped,
				})
				shippedDate = lineItem.ShippedDate
				break
			}
		}
	}

	if len(lineItems) == 0 {
		return "", nil
	}

	var created struct {
		FulfillmentCreateV2 struct {
			Fulfillment *struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"fulfillment"`
			UserErrors []userError `json:"userErrors"`
		} `json:"fulfillmentCreateV2"`
	}
	err = c.graphql(fulfillmentCreateMutation, map[string]interface{}{
		"fulfillment": map[string]interface{}{
			"lineItemsByFulfillmentOrder": map[string]interface{}{
				"fulfillmentOrderId":        fmt.Sprintf("gid://shopify/FulfillmentOrder/%d", open.ID),
				"fulfillmentOrderLineItems": lineItems,
			},
			"notifyCustomer": false,
		},
	}, &created)
	if err != nil {
		return "", err
	}
	if created.FulfillmentCreateV2.Fulfillment == nil {
		return "", fmt.Errorf("fulfillment rejected: %v", created.FulfillmentCreateV2.UserErrors)
	}

	fulfillmentID := created.FulfillmentCreateV2.Fulfillment.ID
	c.logger.Info("Created fulfillment %s for order %d", fulfillmentID, order.OrderID)

	event := map[string]interface{}{
		"fulfillmentId": fulfillmentID,
		"status":        "DELIVERED",
	}
	if shippedDate != nil {
		event["happenedAt"] = shippedDate.Format(time.RFC3339)
	}

	var eventResp struct {
		FulfillmentEventCreate struct {
			FulfillmentEvent *struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"fulfillmentEvent"`
			UserErrors []userError `json:"userErrors"`
		} `json:"fulfillmentEventCreate"`
	}
	err = c.graphql(fulfillmentEventCreateMutation, map[string]interface{}{
		"fulfillmentEvent": event,
	}, &eventResp)
	if err != nil {
		return "", err
	}
	if eventResp.FulfillmentEventCreate.FulfillmentEvent == nil {
		return "", fmt.Errorf("fulfillment event rejected: %v", eventResp.FulfillmentEventCreate.UserErrors)
	}

	return fulfillmentID, nil
}

// CreateSmartCollection creates one smart collection with a single tag
// equality rule. The operation is batch and non-incremental; callers own
// any dedupe of titles.
func (c *Client) CreateSmartCollection(title string) (*SmartCollection, error) {
	payload := struct {
		SmartCollection SmartCollection `json:"smart_collection"`
	}{SmartCollection: SmartCollection{
		Title: title,
		Rules: []CollectionRule{{
			Column:    "tag",
			Relation:  "equals",
			Condition: title,
		}},
	}}

	var resp struct {
		SmartCollection SmartCollection `json:"smart_collection"`
	}
	if _, err := c.do("POST", "smart_collections.json", nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.SmartCollection, nil
}
