package usda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/dietledger/backend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(logger.Discard(), ClientConfig{APIKey: "test-api-key", BaseURL: baseURL})
	c.backoffBase = time.Millisecond
	return c
}

func TestNewClient(t *testing.T) {
	client := NewClient(logger.Discard(), ClientConfig{APIKey: "test-api-key", BaseURL: "https://api.example.com"})

	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, 10, client.rateLimiter.Burst())
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		retry    int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, exponentialBackoff(500*time.Millisecond, tt.retry))
	}
}

func TestSearchFoods_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/foods/search", r.URL.Path)
		assert.Equal(t, "rolled oats", r.URL.Query().Get("query"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "10", r.URL.Query().Get("pageSize"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.USDASearchResponse{
			Foods:     []domain.USDAFood{{FdcID: 173904, Description: "Oats", DataType: "SR Legacy"}},
			TotalHits: 1,
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchFoods(context.Background(), "rolled oats")

	require.NoError(t, err)
	require.Len(t, result.Foods, 1)
	assert.Equal(t, 173904, result.Foods[0].FdcID)
}

func TestSearchFoods_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.USDASearchResponse{})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchFoods(context.Background(), "nothing")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestSearchFoods_Retries(t *testing.T) {
	tests := []struct {
		name     string
		failWith int
		failures int32
		wantErr  bool
		wantHits int32
	}{
		{"server error then success", http.StatusInternalServerError, 2, false, 3},
		{"too many requests then success", http.StatusTooManyRequests, 1, false, 2},
		{"all attempts fail", http.StatusBadGateway, 5, true, 3},
		{"client error is not retried", http.StatusBadRequest, 5, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&attempts, 1) <= tt.failures {
					w.WriteHeader(tt.failWith)
					return
				}
				_ = json.NewEncoder(w).Encode(domain.USDASearchResponse{
					Foods: []domain.USDAFood{{FdcID: 1, Description: "ok"}},
				})
			}))
			defer server.Close()

			result, err := newTestClient(server.URL).SearchFoods(context.Background(), "q")

			if tt.wantErr {
				assert.Nil(t, result)
				assert.ErrorIs(t, err, domain.ErrUSDAAPIFailure)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, result)
			}
			assert.Equal(t, tt.wantHits, atomic.LoadInt32(&attempts))
		})
	}
}

func TestSearchFoods_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).SearchFoods(context.Background(), "q")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestSearchFoods_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := newTestClient(server.URL).SearchFoods(ctx, "slow")

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestSearchFoods_RequestCreationError(t *testing.T) {
	result, err := newTestClient("://invalid-url").SearchFoods(context.Background(), "q")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create request")
}

func TestGetFoodDetails_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/food/173904", r.URL.Path)
		assert.Equal(t, "abridged", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"fdcId": 173904,
			"description": "Oats",
			"dataType": "SR Legacy",
			"foodNutrients": [
				{"number": "208", "name": "Energy", "amount": 389, "unitName": "kcal"},
				{"number": "203", "name": "Protein", "amount": 16.89, "unitName": "g"}
			]
		}`))
	}))
	defer server.Close()

	food, err := newTestClient(server.URL).GetFoodDetails(context.Background(), 173904)

	require.NoError(t, err)
	assert.Equal(t, 173904, food.FdcID)
	require.Len(t, food.Nutrients, 2)
	assert.Equal(t, "Protein", food.Nutrients[1].DisplayName())
	require.NotNil(t, food.Nutrients[1].Quantity())
	assert.InDelta(t, 16.89, *food.Nutrients[1].Quantity(), 1e-9)
}

func TestGetFoodDetails_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	food, err := newTestClient(server.URL).GetFoodDetails(context.Background(), 1)

	assert.Nil(t, food)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestReadLimitedBody(t *testing.T) {
	body, err := readLimitedBody(strings.NewReader("short content"), 1000)
	require.NoError(t, err)
	assert.Equal(t, "short content", string(body))

	body, err = readLimitedBody(strings.NewReader(strings.Repeat("0123456789", 100)), 100)
	require.NoError(t, err)
	assert.Len(t, body, 100)
}
