// Package shopify is the typed adapter to the commerce platform's REST and
// GraphQL admin APIs. Every call runs inside a session that checks an
// access token out of the pool and returns it when the request finishes,
// so concurrency degree and token rate-limit budget stay decoupled.
package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"vinsync/internal/logger"
)

const pageSize = 250

type Client struct {
	baseURL    string
	apiVersion string
	tokens     *TokenPool
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, apiVersion, primaryToken string, threadTokens []string, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiVersion: apiVersion,
		tokens:     NewTokenPool(primaryToken, threadTokens),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
	}
}

// TokenPool hands out access tokens checkout/checkin style. Callers block
// until a token is free, which caps in-flight requests per token at one.
type TokenPool struct {
	tokens chan string
}

func NewTokenPool(primary string, pool []string) *TokenPool {
	if len(pool) == 0 {
		pool = []string{primary}
	}
	ch := make(chan string, len(pool))
	for _, token := range pool {
		ch <- token
	}
	return &TokenPool{tokens: ch}
}

func (p *TokenPool) Checkout() string {
	return <-p.tokens
}

func (p *TokenPool) Checkin(token string) {
	p.tokens <- token
}

func (p *TokenPool) Size() int {
	return cap(p.tokens)
}

// APIError carries the platform's structured error list alongside the
// HTTP status, so callers can log the actual validation messages and
// branch on rejection class.
type APIError struct {
	StatusCode int
	Errors     json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, string(e.Errors))
}

// Validation reports whether the request was rejected by payload
// validation rather than transport or auth.
func (e *APIError) Validation() bool {
	return e.StatusCode == http.StatusUnprocessableEntity || e.StatusCode == http.StatusBadRequest
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL, c.apiVersion, path)
}

// do executes one session-scoped request. The Link response header is
// returned for cursor pagination.
func (c *Client) do(method, path string, query url.Values, payload, out interface{}) (http.Header, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	token := c.tokens.Checkout()
	defer c.tokens.Checkin(token)

	req.Header.Set("X-Shopify-Access-Token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed struct {
			Errors json.RawMessage `json:"errors"`
		}
		if json.Unmarshal(respBody, &parsed) == nil && len(parsed.Errors) > 0 {
			apiErr.Errors = parsed.Errors
		} else {
			apiErr.Errors = respBody
		}
		return nil, apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}

var nextLinkPattern = regexp.MustCompile(`<[^>]*[?&]page_info=([^&>]+)[^>]*>;\s*rel="next"`)

// nextPageInfo extracts the next-page cursor from a Link header; empty
// when the listing is exhausted.
func nextPageInfo(header http.Header) string {
	link := header.Get("Link")
	if link == "" {
		return ""
	}
	match := nextLinkPattern.FindStringSubmatch(link)
	if match == nil {
		return ""
	}
	return match[1]
}
