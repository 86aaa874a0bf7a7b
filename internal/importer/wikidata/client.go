package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CommonsAtlas/CA-Backend/internal/importer/httpretry"
	"github.com/CommonsAtlas/CA-Backend/internal/importer/provider"
)

const (
	// DefaultEndpoint is the Wikidata action API.
	DefaultEndpoint = "https://www.wikidata.org/w/api.php"

	// BatchSize is the maximum ids per wbgetentities call.
	BatchSize = 50

	// batchDelay paces consecutive batches.
	batchDelay = 100 * time.Millisecond

	// commonsCategoryProperty is the Wikidata property holding the
	// Wikimedia Commons category name.
	commonsCategoryProperty = "P373"
)

// Client fetches Commons categories for Q-ids in paced batches.
type Client struct {
	endpoint  string
	userAgent string
	retry     *httpretry.Client
}

// NewClient creates a Wikidata client. userAgent is required by the
// service's robot policy.
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

// FetchCommonsCategories returns a partial map from wikidata id to Commons
// category. Ids keep their Q prefix end-to-end. Missing entities and ids
// without a P373 claim are simply absent from the map. A failed batch is
// logged and contributes nothing; the pipeline continues.
func (c *Client) FetchCommonsCategories(ctx context.Context, ids []string) map[string]string {
	ids = dedupe(ids)
	categories := make(map[string]string, len(ids))

	totalBatches := (len(ids) + BatchSize - 1) / BatchSize
	for i := 0; i < len(ids); i += BatchSize {
		end := i + BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]
		batchNum := i/BatchSize + 1
		provider.LogBatch("wikidata", batchNum, totalBatches, len(batch))

		if err := c.fetchBatch(ctx, batch, categories); err != nil {
			provider.LogError("wikidata", fmt.Sprintf("batch %d failed", batchNum), err)
		}

		if end < len(ids) {
			select {
			case <-time.After(batchDelay):
			case <-ctx.Done():
				return categories
			}
		}
	}

	return categories
}

func (c *Client) fetchBatch(ctx context.Context, batch []string, categories map[string]string) error {
	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("ids", strings.Join(batch, "|"))
	params.Set("props", "claims")

	fullURL := c.endpoint + "?" + params.Encode()

	body, err := c.retry.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest("GET", fullURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("wikidata request: %w", err)
	}

	var resp entitiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode wikidata response: %w", err)
	}

	for id, entity := range resp.Entities {
		if entity.Missing {
			continue
		}
		claims := entity.Claims[commonsCategoryProperty]
		if len(claims) == 0 {
			continue
		}
		if category := claims[0].MainSnak.DataValue.Value; category != "" {
			categories[id] = category
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
