// Package websearch provides the Tavily web search client.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSearch marks web search failures (network, non-2xx, malformed body).
// The retrieval layer absorbs it into a diagnostic context block.
var ErrSearch = errors.New("web search failed")

const defaultEndpoint = "https://api.tavily.com/search"

// Client searches the web through Tavily.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the Tavily endpoint (used in tests).
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// NewClient creates a search client. An empty apiKey is allowed: Search then
// returns a placeholder snippet instead of calling the service.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search returns up to maxResults human-readable snippets for query, each
// formatted "title - content (url)". When no key is configured or the service
// finds nothing, a single placeholder snippet is returned instead of an empty
// list, so downstream context assembly always has something to show. Errors
// wrap ErrSearch.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if !c.Configured() {
		return []string{fmt.Sprintf("(Chưa cấu hình TAVILY_API_KEY, không thể tìm kiếm %q)", query)}, nil
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrSearch, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSearch, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSearch, resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearch, err)
	}

	snippets := make([]string, 0, maxResults)
	for _, item := range result.Results {
		if len(snippets) >= maxResults {
			break
		}
		snippets = append(snippets, fmt.Sprintf("%s - %s (%s)", item.Title, item.Content, item.URL))
	}
	if len(snippets) == 0 {
		snippets = append(snippets, fmt.Sprintf("(Không tìm thấy kết quả cho %q)", query))
	}
	return snippets, nil
}
