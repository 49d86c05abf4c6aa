package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinsync/internal/models"
)

func TestBuildProductPayload(t *testing.T) {
	typeName := "Red Wine"
	product := &models.Product{
		SKU:         "1001",
		Name:        "chateau margaux",
		Description: "A classic.",
		TypeName:    &typeName,
		Categories:  []models.Category{{Name: "Bordeaux"}},
		Tags:        []models.Tag{{Name: "Free Shipping"}},
		Price:       199.99,
		Quantity:    12,
		Weight:      3,
		Status:      true,
		Thumbnail:   "https://cdn.example.com/margaux.jpg",

		TrackQuantity: true,
		Vintage:       "2015",
		Region:        "Bordeaux",
		Depth:         4,
		Width:         4,
		Height:        12,
	}

	payload := BuildProductPayload(product)

	assert.Equal(t, "Chateau Margaux", payload.Title)
	assert.Equal(t, "A classic.", payload.BodyHTML)
	assert.Equal(t, "Vins Rare", payload.Vendor)
	assert.Equal(t, "Red Wine", payload.ProductType)
	assert.Equal(t, "Bordeaux,Free Shipping", payload.Tags)
	assert.Equal(t, "active", payload.Status)

	require.Len(t, payload.Variants, 1)
	variant := payload.Variants[0]
	assert.Equal(t, "1001", variant.SKU)
	assert.Equal(t, 199.99, variant.Price)
	assert.Equal(t, "lb", variant.WeightUnit)
	require.NotNil(t, variant.InventoryManagement)
	assert.Equal(t, "shopify", *variant.InventoryManagement)
	assert.Equal(t, 12, variant.InventoryQuantity)
	assert.False(t, variant.Taxable)

	require.Len(t, payload.Images, 1)
	assert.Equal(t, 1, payload.Images[0].Position)

	keys := make(map[string]string)
	for _, metafield := range payload.Metafields {
		assert.Equal(t, "custom", metafield.Namespace)
		keys[metafield.Key] = metafield.Value
	}
	assert.Equal(t, "2015", keys["year"])
	assert.Equal(t, "Bordeaux", keys["region"])
	assert.Equal(t, "12", keys["height"])
	_, leaked := keys["run_id"]
	assert.False(t, leaked, "internal fields must not reach the storefront")
}

func TestBuildProductPayloadInactive(t *testing.T) {
	payload := BuildProductPayload(&models.Product{SKU: "1", Name: "x", Status: false})
	assert.Equal(t, "draft", payload.Status)
	require.Len(t, payload.Variants, 1)
	assert.Nil(t, payload.Variants[0].InventoryManagement)
}

func TestBuildCustomerPayloadDefaultAddress(t *testing.T) {
	defaultID := 11
	customer := &models.Customer{
		CustomerID:     7,
		Email:          "test@example.com",
		Phone:          "+15551234567",
		FirstName:      "Pat",
		Newsletter:     true,
		SMS:            true,
		DefaultAddress: &defaultID,
		Addresses: []models.Address{
			{AddressID: 10, City: "Boston", State: "MA"},
			{AddressID: 11, City: "New York", State: "NY"},
		},
	}

	payload := BuildCustomerPayload(customer)

	require.Len(t, payload.Addresses, 2)
	assert.False(t, payload.Addresses[0].Default)
	assert.True(t, payload.Addresses[1].Default)
	require.NotNil(t, payload.EmailMarketingConsent)
	assert.Equal(t, "confirmed_opt_in", payload.EmailMarketingConsent.OptInLevel)
	require.NotNil(t, payload.SMSMarketingConsent)
	assert.Equal(t, "single_opt_in", payload.SMSMarketingConsent.OptInLevel)
}

func TestBuildCustomerPayloadSMSRequiresPhone(t *testing.T) {
	payload := BuildCustomerPayload(&models.Customer{CustomerID: 7, SMS: true})
	assert.Nil(t, payload.SMSMarketingConsent)
}

func TestFinancialStatusMapping(t *testing.T) {
	tests := []struct {
		status          string
		wantFinancial   string
		wantFulfillment string
	}{
		{models.OrderStatusCancelled, "refunded", "restocked"},
		{models.OrderStatusDelivered, "paid", ""},
		{models.OrderStatusPartialShipment, "paid", ""},
		{models.OrderStatusProcessing, "paid", ""},
		{models.OrderStatusPending, "pending", ""},
		{"Some Future Status", "pending", ""},
		{"", "pending", ""},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			financial, fulfillment := FinancialStatusFor(tt.status)
			assert.Equal(t, tt.wantFinancial, financial)
			assert.Equal(t, tt.wantFulfillment, fulfillment)
		})
	}
}

func TestDegradeCustomerPayload(t *testing.T) {
	full := Customer{
		Email:               "a@example.com",
		Phone:               "+15551234567",
		SMSMarketingConsent: &MarketingConsent{State: "subscribed"},
		EmailMarketingConsent: &MarketingConsent{
			State: "subscribed",
		},
	}

	degraded := DegradeCustomerPayload(full)

	assert.Empty(t, degraded.Phone)
	assert.Nil(t, degraded.SMSMarketingConsent)
	assert.NotNil(t, degraded.EmailMarketingConsent)
	assert.Equal(t, "a@example.com", degraded.Email)
}
