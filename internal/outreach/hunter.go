package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// EmailEnricher resolves a contact address for a bare domain.
type EmailEnricher interface {
	FindEmail(ctx context.Context, domain string) (string, error)
}

// HunterClient queries the Hunter.io domain-search API.
type HunterClient struct {
	APIKey  string
	BaseURL string // test override
	hc      *http.Client
}

func NewHunterClient(apiKey string) *HunterClient {
	return &HunterClient{
		APIKey:  apiKey,
		BaseURL: "https://api.hunter.io",
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

type hunterResponse struct {
	Data struct {
		Emails []struct {
			Value string `json:"value"`
		} `json:"emails"`
	} `json:"data"`
	Errors []struct {
		Details string `json:"details"`
	} `json:"errors"`
}

// FindEmail returns the first address Hunter knows for the domain, or "" when
// the domain has none on record.
func (c *HunterClient) FindEmail(ctx context.Context, domain string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("hunter api key not set")
	}

	q := url.Values{}
	q.Set("domain", domain)
	q.Set("api_key", c.APIKey)
	endpoint := c.BaseURL + "/v2/domain-search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("hunter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("hunter status %d for %s", resp.StatusCode, domain)
	}

	var parsed hunterResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("hunter decode: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return "", fmt.Errorf("hunter: %s", parsed.Errors[0].Details)
	}
	if len(parsed.Data.Emails) == 0 {
		return "", nil
	}
	return parsed.Data.Emails[0].Value, nil
}
