package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samachar-app/samachar/pkg/httpclient"
)

// Client issues requests against the NewsAPI contract. It is transport-thin:
// callers own parameter validation and response mapping policy.
type Client struct {
	http    httpclient.Client
	apiKey  string
	baseURL string
}

// New builds a Client. A nil http client falls back to a tuned resty client,
// an empty baseURL falls back to the production endpoint.
func New(client httpclient.Client, apiKey, baseURL string) *Client {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    client,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// HeadlinesQuery parameterizes /top-headlines. Sources is mutually exclusive
// with Country and Category per the upstream contract; when Sources is set the
// caller must leave the others empty.
type HeadlinesQuery struct {
	Country  string
	Category string
	Sources  string
	Language string
	Page     int
}

// EverythingQuery parameterizes /everything.
type EverythingQuery struct {
	Query    string
	SortBy   string
	Language string
	From     string
	Page     int
}

// SourcesQuery parameterizes /sources.
type SourcesQuery struct {
	Category string
	Language string
	Country  string
}

// TopHeadlines fetches one page of headlines.
func (c *Client) TopHeadlines(ctx context.Context, q HeadlinesQuery) ([]RawArticle, error) {
	values := url.Values{}
	if q.Sources != "" {
		values.Set("sources", q.Sources)
	} else {
		if q.Country != "" {
			values.Set("country", q.Country)
		}
		if q.Category != "" {
			values.Set("category", q.Category)
		}
		if q.Language != "" {
			values.Set("language", q.Language)
		}
	}
	setPage(values, q.Page)

	env, err := c.get(ctx, "/top-headlines", values)
	if err != nil {
		return nil, err
	}
	return env.Articles, nil
}

// Everything runs a free-text search.
func (c *Client) Everything(ctx context.Context, q EverythingQuery) ([]RawArticle, error) {
	values := url.Values{}
	values.Set("q", q.Query)
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.Language != "" {
		values.Set("language", q.Language)
	}
	if q.From != "" {
		values.Set("from", q.From)
	}
	setPage(values, q.Page)

	env, err := c.get(ctx, "/everything", values)
	if err != nil {
		return nil, err
	}
	return env.Articles, nil
}

// ListSources lists upstream-declared sources.
func (c *Client) ListSources(ctx context.Context, q SourcesQuery) ([]RawSource, error) {
	values := url.Values{}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.Language != "" {
		values.Set("language", q.Language)
	}
	if q.Country != "" {
		values.Set("country", q.Country)
	}

	env, err := c.get(ctx, "/sources", values)
	if err != nil {
		return nil, err
	}
	return env.Sources, nil
}

// get executes the request and decodes the response envelope. A transport
// error, a non-200 status or a non-ok envelope all surface as errors; callers
// decide how to degrade.
func (c *Client) get(ctx context.Context, path string, values url.Values) (*Envelope, error) {
	values.Set("apiKey", c.apiKey)

	resp, err := c.http.Get(ctx, c.baseURL+path, values, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	body := resp.Body()
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode() != http.StatusOK {
			return nil, &APIError{HTTPStatus: resp.StatusCode(), Message: responseSnippet(body)}
		}
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}

	if env.Status != "ok" || resp.StatusCode() != http.StatusOK {
		return nil, &APIError{HTTPStatus: resp.StatusCode(), Code: env.Code, Message: env.Message}
	}
	return &env, nil
}

func setPage(values url.Values, page int) {
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
