package shopify

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"vinsync/internal/models"
)

func customerMetafields(customer *models.Customer) []Metafield {
	return []Metafield{
		{Namespace: "custom", Key: "gender", Value: customer.Gender},
	}
}

// BuildCustomerPayload assembles the full customer payload: contact info,
// the address book with the default flagged, and the marketing consents
// each gated by its own flag. SMS consent additionally requires a phone.
func BuildCustomerPayload(customer *models.Customer) Customer {
	addresses := make([]CustomerAddress, 0, len(customer.Addresses))
	for _, address := range customer.Addresses {
		addr := CustomerAddress{
			FirstName: address.FirstName,
			LastName:  address.LastName,
			Company:   address.Company,
			Address1:  address.Address1,
			Address2:  address.Address2,
			City:      address.City,
			Province:  address.State,
			Zip:       address.Zip,
			Country:   address.Country,
		}
		if customer.DefaultAddress != nil && address.AddressID == *customer.DefaultAddress {
			addr.Default = true
		}
		addresses = append(addresses, addr)
	}

	payload := Customer{
		Email:     strings.ReplaceAll(customer.Email, " ", ""),
		Phone:     customer.Phone,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Note:      customer.Note,
		Tags:      customer.Tags,
		Addresses: addresses,
	}

	if customer.Newsletter {
		payload.EmailMarketingConsent = &MarketingConsent{
			State:      "subscribed",
			OptInLevel: "confirmed_opt_in",
		}
	}
	if customer.SMS && customer.Phone != "" {
		payload.SMSMarketingConsent = &MarketingConsent{
			State:      "subscribed",
			OptInLevel: "single_opt_in",
		}
	}

	return payload
}

// DegradeCustomerPayload strips the phone-dependent fields for the retry
// after a validation rejection.
func DegradeCustomerPayload(payload Customer) Customer {
	payload.Phone = ""
	payload.SMSMarketingConsent = nil
	return payload
}

func (c *Client) ListCustomerIDs() ([]int64, error) {
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
			Customers []Customer `json:"customers"`
		}
		header, err := c.do("GET", "customers.json", query, nil, &resp)
		if err != nil {
			return nil, err
		}

		c.logger.Info("Fetched %d Customers", len(resp.Customers))
		for _, customer := range resp.Customers {
			ids = append(ids, customer.ID)
		}

		pageInfo = nextPageInfo(header)
		if pageInfo == "" || len(resp.Customers) == 0 {
			return ids, nil
		}
	}
}

// CreateCustomer pushes the full payload first; on a validation rejection
// it retries once with the degraded payload. Both rejections are logged
// with the platform's structured error list.
func (c *Client) CreateCustomer(customer *models.Customer) (*Customer, error) {
	payload := BuildCustomerPayload(customer)
	payload.Metafields = customerMetafields(customer)

	created, err := c.createCustomer(payload)
	if err == nil {
		return created, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Validation() {
		return nil, err
	}

	c.logger.Error("Customer %d: %s", customer.CustomerID, string(apiErr.Errors))

	degraded := DegradeCustomerPayload(payload)
	created, err = c.createCustomer(degraded)
	if err != nil {
		if errors.As(err, &apiErr) {
			c.logger.Error("Customer %d: %s", customer.CustomerID, string(apiErr.Errors))
		}
		return nil, err
	}
	return created, nil
}

func (c *Client) createCustomer(payload Customer) (*Customer, error) {
	body := struct {
		Customer Customer `json:"customer"`
	}{Customer: payload}

	var resp struct {
		Customer Customer `json:"customer"`
	}
	if _, err := c.do("POST", "customers.json", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Customer, nil
}

func (c *Client) DeleteCustomer(id int64) error {
	_, err := c.do("DELETE", fmt.Sprintf("customers/%d.json", id), nil, nil, nil)
	return err
}
