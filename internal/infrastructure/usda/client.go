package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxAttempts      = 3
	maxErrorBodySize = 1 << 10
	defaultPageSize  = 10
)

// ClientConfig holds USDA client settings
type ClientConfig struct {
	APIKey          string
	BaseURL         string
	RequestsPerHour int // USDA allows 1000 per key
	Timeout         time.Duration
}

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	backoffBase time.Duration
	log         *slog.Logger
}

// NewClient creates a new USDA API client
func NewClient(log *slog.Logger, cfg ClientConfig) *Client {
	perHour := cfg.RequestsPerHour
	if perHour <= 0 {
		perHour = 1000
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		rateLimiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), 10),
		backoffBase: 500 * time.Millisecond,
		log:         log.With("component", "usda_client"),
	}
}

// SearchFoods searches for foods in the USDA database. An empty result is
// ErrProductNotFound.
func (c *Client) SearchFoods(ctx context.Context, query string) (*domain.USDASearchResponse, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("dataType", "Foundation,SR Legacy,Survey (FNDDS),Branded")
	params.Add("pageSize", strconv.Itoa(defaultPageSize))
	reqURL := fmt.Sprintf("%s/v1/foods/search?%s", c.baseURL, params.Encode())

	var resp domain.USDASearchResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}
	if len(resp.Foods) == 0 {
		c.log.DebugContext(ctx, "no foods found", slog.String("query", query))
		return nil, domain.ErrProductNotFound
	}

	c.log.DebugContext(ctx, "foods found",
		slog.String("query", query),
		slog.Int("count", len(resp.Foods)),
	)
	return &resp, nil
}

// GetFoodDetails retrieves the abridged nutrient list of one food by FDC ID
func (c *Client) GetFoodDetails(ctx context.Context, fdcID int) (*domain.USDAFood, error) {
	params := url.Values{}
	params.Add("api_key", c.apiKey)
	params.Add("format", "abridged")
	reqURL := fmt.Sprintf("%s/v1/food/%d?%s", c.baseURL, fdcID, params.Encode())

	var food domain.USDAFood
	if err := c.getJSON(ctx, reqURL, &food); err != nil {
		return nil, err
	}
	return &food, nil
}

// getJSON issues a rate limited GET and decodes the body into out. Transport
// errors, 429 and 5xx are retried; 404 maps to ErrProductNotFound.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, exponentialBackoff(c.backoffBase, attempt-1)); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
			}
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "DietLedger/1.0")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
			c.log.WarnContext(ctx, "request failed", slog.Int("attempt", attempt), slog.Any("error", err))
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrProductNotFound

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			body, _ := readLimitedBody(resp.Body, maxErrorBodySize)
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUSDAAPIFailure, resp.StatusCode)
			c.log.WarnContext(ctx, "retryable API error",
				slog.Int("attempt", attempt),
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(body)),
			)

		default:
			body, _ := readLimitedBody(resp.Body, maxErrorBodySize)
			resp.Body.Close()
			return fmt.Errorf("%w: status %d, body: %s", domain.ErrUSDAAPIFailure, resp.StatusCode, string(body))
		}
	}

	c.log.ErrorContext(ctx, "all retries failed", slog.Any("error", lastErr))
	return lastErr
}

// exponentialBackoff doubles base for every retry: base, 2*base, 4*base...
func exponentialBackoff(base time.Duration, retry int) time.Duration {
	return base << (retry - 1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// readLimitedBody reads at most limit bytes from r.
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
