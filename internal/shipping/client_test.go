package shipping

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinsync/internal/logger"
	"vinsync/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", time.Millisecond, logger.New("error"))
}

func TestSyncProductPushesChangedAttributes(t *testing.T) {
	var posted *Attributes
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "/products/1001/attributes", r.URL.Path)

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(Attributes{SKU: "1001", Weight: 1})
		case http.MethodPost:
			var attrs Attributes
			require.NoError(t, json.NewDecoder(r.Body).Decode(&attrs))
			posted = &attrs
			w.WriteHeader(http.StatusOK)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))

	pushed, err := client.SyncProduct(&models.Product{
		SKU: "1001", Weight: 3, Depth: 13, Width: 13, Height: 13,
	})
	require.NoError(t, err)
	assert.True(t, pushed)
	require.NotNil(t, posted)
	assert.Equal(t, Attributes{SKU: "1001", Weight: 3, Depth: 13, Width: 13, Height: 13}, *posted)
}

func TestSyncProductSkipsWhenRemoteMatches(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Fatal("matching attributes must not be re-pushed")
		}
		json.NewEncoder(w).Encode(Attributes{SKU: "1001", Weight: 3, Depth: 13, Width: 13, Height: 13})
	}))

	pushed, err := client.SyncProduct(&models.Product{
		SKU: "1001", Weight: 3, Depth: 13, Width: 13, Height: 13,
	})
	require.NoError(t, err)
	assert.False(t, pushed)
}

func TestSyncProductPushesUnknownSKU(t *testing.T) {
	var posted bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		case http.MethodPost:
			posted = true
			w.WriteHeader(http.StatusCreated)
		}
	}))

	pushed, err := client.SyncProduct(&models.Product{SKU: "1001", Weight: 3})
	require.NoError(t, err)
	assert.True(t, pushed)
	assert.True(t, posted)
}

func TestDoReportsAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))

	_, err := client.SyncProduct(&models.Product{SKU: "1001"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
