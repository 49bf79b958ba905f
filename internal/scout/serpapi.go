package scout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"leadswarm/internal/webutil"
)

// SearchResult is one organic hit from the search backend.
type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// SearchProvider abstracts the search backend so tests can stub it.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, offset, num int) ([]SearchResult, error)
}

// SerpAPIClient talks to the serpapi.com Google-search JSON endpoint.
type SerpAPIClient struct {
	APIKey  string
	BaseURL string // override in tests; default https://serpapi.com
	hc      *http.Client
	limiter *webutil.HostLimiter
}

func NewSerpAPIClient(apiKey string, limiter *webutil.HostLimiter) *SerpAPIClient {
	return &SerpAPIClient{
		APIKey:  apiKey,
		BaseURL: "https://serpapi.com",
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (c *SerpAPIClient) Name() string { return "serpapi" }

type serpAPIResponse struct {
	OrganicResults []SearchResult `json:"organic_results"`
	Error          string         `json:"error"`
}

func (c *SerpAPIClient) Search(ctx context.Context, query string, offset, num int) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", query)
	q.Set("api_key", c.APIKey)
	q.Set("num", strconv.Itoa(num))
	q.Set("start", strconv.Itoa(offset))

	endpoint := c.BaseURL + "/search.json?" + q.Encode()

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	req.Header.Set("User-Agent", "leadswarm/1.0 (+local)")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("serpapi status %d", res.StatusCode)
	}

	var parsed serpAPIResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("serpapi decode: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("serpapi: %s", parsed.Error)
	}

	return parsed.OrganicResults, nil
}
