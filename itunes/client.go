package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept for logging
const maxErrorBody = 512

func Init(endpoint, country string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint:   endpoint,
		Country:    country,
		UserAgent:  "previewcli",
		HttpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) buildParams(p SearchParams) url.Values {
	params := url.Values{}
	params.Set("term", p.Term)
	if p.Media != "" {
		params.Set("media", p.Media)
	}
	if p.Entity != "" {
		params.Set("entity", p.Entity)
	}
	country := p.Country
	if country == "" {
		country = c.Country
	}
	if country != "" {
		params.Set("country", country)
	}
	if p.Limit > 0 {
		params.Set("limit", strconv.Itoa(p.Limit))
	}
	return params
}

// Search performs a single GET against the search endpoint and returns the
// decoded results untouched.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]Result, error) {
	requestUrl := fmt.Sprintf("%s?%s", c.Endpoint, c.buildParams(p).Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.HttpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var body SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return body.Results, nil
}
