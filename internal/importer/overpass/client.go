package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/CommonsAtlas/CA-Backend/internal/importer/httpretry"
	"github.com/CommonsAtlas/CA-Backend/internal/importer/provider"
)

// DefaultEndpoint is the public Overpass interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// Client executes Overpass queries with retry and decodes the JSON payload.
type Client struct {
	endpoint  string
	userAgent string
	retry     *httpretry.Client
}

// NewClient creates an Overpass client for the given interpreter endpoint.
func NewClient(endpoint, userAgent string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:  endpoint,
		userAgent: userAgent,
		retry:     httpretry.New(),
	}
}

// SetRetryDelay overrides the backoff base delay. Tests use 1ms.
func (c *Client) SetRetryDelay(d time.Duration) {
	c.retry.BaseDelay = d
}

// Query POSTs an Overpass query and decodes the response.
func (c *Client) Query(ctx context.Context, query string) (*Response, error) {
	start := time.Now()

	body, err := c.retry.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest("POST", c.endpoint, strings.NewReader(query))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/plain")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	provider.LogResponse("overpass", http.StatusOK, time.Since(start), len(resp.Elements))
	return &resp, nil
}

// QueryIDs runs a query that only returns ids (out ids;) and extracts them
// in response order.
func (c *Client) QueryIDs(ctx context.Context, query string) ([]int64, error) {
	resp, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Type == "relation" {
			ids = append(ids, el.ID)
		}
	}
	return ids, nil
}
