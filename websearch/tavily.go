// Package websearch supplements the local corpus with live web results
// when retrieval alone cannot answer a question.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// TavilyAPIURL is the Tavily search endpoint.
	TavilyAPIURL = "https://api.tavily.com"

	// DefaultMaxResults is the default number of results per search.
	DefaultMaxResults = 8
)

// Result is a single web search hit. Providers return hits either as bare
// snippet strings or as objects with a content field; both decode to the
// same shape.
type Result struct {
	Title   string
	URL     string
	Content string
}

// UnmarshalJSON accepts both a bare string and an object form.
func (r *Result) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var snippet string
		if err := json.Unmarshal(data, &snippet); err != nil {
			return err
		}
		*r = Result{Content: snippet}
		return nil
	}

	var obj struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = Result{Title: obj.Title, URL: obj.URL, Content: obj.Content}
	return nil
}

// MergeSnippets joins the non-empty result contents into one block of
// text, separated by blank lines.
func MergeSnippets(results []Result) string {
	snippets := make([]string, 0, len(results))
	for _, res := range results {
		if res.Content != "" {
			snippets = append(snippets, res.Content)
		}
	}
	return strings.Join(snippets, "\n\n")
}

// Searcher runs a web search for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// TavilyClient is a Searcher backed by the Tavily search API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
	logger     *slog.Logger
}

// TavilyOption configures a TavilyClient.
type TavilyOption func(*TavilyClient)

// WithTavilyAPIKey sets the API key, overriding the TAVILY_API_KEY
// environment variable.
func WithTavilyAPIKey(apiKey string) TavilyOption {
	return func(c *TavilyClient) {
		c.apiKey = apiKey
	}
}

// WithTavilyBaseURL sets a custom API base URL.
func WithTavilyBaseURL(baseURL string) TavilyOption {
	return func(c *TavilyClient) {
		c.baseURL = baseURL
	}
}

// WithTavilyMaxResults sets the number of results per search.
func WithTavilyMaxResults(n int) TavilyOption {
	return func(c *TavilyClient) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// WithTavilyHTTPClient sets a custom HTTP client.
func WithTavilyHTTPClient(client *http.Client) TavilyOption {
	return func(c *TavilyClient) {
		c.httpClient = client
	}
}

// WithTavilyLogger sets the logger.
func WithTavilyLogger(logger *slog.Logger) TavilyOption {
	return func(c *TavilyClient) {
		c.logger = logger
	}
}

// NewTavilyClient creates a TavilyClient. The API key defaults to the
// TAVILY_API_KEY environment variable.
func NewTavilyClient(opts ...TavilyOption) (*TavilyClient, error) {
	c := &TavilyClient{
		apiKey:     os.Getenv("TAVILY_API_KEY"),
		baseURL:    TavilyAPIURL,
		maxResults: DefaultMaxResults,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		return nil, fmt.Errorf("tavily API key is required (set TAVILY_API_KEY)")
	}
	return c, nil
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []Result `json:"results"`
}

// Search runs a web search and returns the raw results.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]Result, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	c.logger.Debug("web search completed", "query", query, "results", len(parsed.Results))
	return parsed.Results, nil
}

// Ensure TavilyClient implements the interface.
var _ Searcher = (*TavilyClient)(nil)
