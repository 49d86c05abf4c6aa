// Package shipping pushes per-product weight and carton dimensions to the
// third-party shipping-rate service. The service throttles aggressively,
// so calls pace themselves on a fixed-interval limiter and each product
// costs at most one GET and one POST.
package shipping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vinsync/internal/logger"
	"vinsync/internal/models"
)

// Attributes is the service's per-product shipping profile. Dimensions are
// inches, weight is pounds.
type Attributes struct {
	SKU    string  `json:"sku"`
	Weight float64 `json:"weight"`
	Depth  float64 `json:"depth"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Matches reports whether the remote profile already carries the product's
// figures, in which case the POST is skipped.
func (a Attributes) Matches(p *models.Product) bool {
	return a.Weight == p.Weight && a.Depth == p.Depth && a.Width == p.Width && a.Height == p.Height
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    <-chan time.Time
	logger     *logger.Logger
}

func NewClient(baseURL, apiKey string, delay time.Duration, log *logger.Logger) *Client {
	if delay <= 0 {
		delay = time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    time.Tick(delay),
		logger:     log,
	}
}

func (c *Client) do(method, path string, payload, out interface{}) error {
	<-c.limiter

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("shipping api error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil && len(raw) > 0 {
		return json.Unmarshal(raw, out)
	}
	return nil
}

// GetAttributes fetches the remote profile; an unknown SKU comes back as
// the zero profile, not an error, so the first push still happens.
func (c *Client) GetAttributes(sku string) (Attributes, error) {
	var attrs Attributes
	err := c.do("GET", fmt.Sprintf("/products/%s/attributes", sku), nil, &attrs)
	if err != nil && strings.Contains(err.Error(), "error 404") {
		return Attributes{SKU: sku}, nil
	}
	return attrs, err
}

func (c *Client) PutAttributes(attrs Attributes) error {
	return c.do("POST", fmt.Sprintf("/products/%s/attributes", attrs.SKU), attrs, nil)
}

// SyncProduct reconciles one product's shipping profile. Returns true when
// a push happened, false when the remote side already matched.
func (c *Client) SyncProduct(p *models.Product) (bool, error) {
	current, err := c.GetAttributes(p.SKU)
	if err != nil {
		return false, err
	}
	if current.Matches(p) {
		c.logger.Debug("Product %s shipping attributes unchanged", p.SKU)
		return false, nil
	}

	attrs := Attributes{
		SKU:    p.SKU,
		Weight: p.Weight,
		Depth:  p.Depth,
		Width:  p.Width,
		Height: p.Height,
	}
	if err := c.PutAttributes(attrs); err != nil {
		return false, err
	}
	c.logger.Info("Updated shipping attributes for product %s", p.SKU)
	return true, nil
}
