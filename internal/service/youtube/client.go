package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nkiryanov/montevideo/internal/logger"
)

const (
	DefaultAddr = "https://youtube.googleapis.com"

	CodeRetryAfter = "retry-after"
	CodeUnknown    = "unknown"

	defaultRetryAfter     = 60 * time.Second
	defaultRequestTimeout = 5 * time.Second
)

type Error struct {
	Code string

	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %s, retry_after: %s, error: %v", e.Code, e.RetryAfter, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code string, retryAfter time.Duration, err error) *Error {
	return &Error{
		Code:       code,
		RetryAfter: retryAfter,
		Err:        err,
	}
}

// Subset of YouTube Data API v3 video resource
type Item struct {
	ID      string  `json:"id"`
	Snippet Snippet `json:"snippet"`
}

type Snippet struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ChannelTitle string   `json:"channelTitle"`
	Tags         []string `json:"tags"`
}

type listResponse struct {
	Items []Item `json:"items"`
}

type Client struct {
	Addr   string
	APIKey string

	client *http.Client
	logger logger.Logger
}

func NewClient(addr string, apiKey string, logger logger.Logger) *Client {
	if addr == "" {
		addr = DefaultAddr
	}

	return &Client{
		Addr:   strings.TrimRight(addr, "/"),
		APIKey: apiKey,
		client: &http.Client{},
		logger: logger,
	}
}

// Most popular videos chart. API returns first page of 5 items by default
func (c *Client) MostPopular(ctx context.Context) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("chart", "mostPopular")
	query.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+"/youtube/v3/videos?"+query.Encode(), nil)
	if err != nil {
		return nil, NewError(CodeUnknown, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewError(CodeUnknown, 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		return c.processSuccess(resp)
	case http.StatusTooManyRequests, http.StatusForbidden:
		// Quota exceeded is reported as 403
		return nil, c.processThrottled(resp)
	default:
		c.logger.Warn("Failed to get most popular videos", "status_code", resp.StatusCode)
		return nil, NewError(CodeUnknown, 0, fmt.Errorf("unknown status code %d", resp.StatusCode))
	}
}

func (c *Client) processSuccess(resp *http.Response) ([]Item, error) {
	var list listResponse
	err := json.NewDecoder(resp.Body).Decode(&list)
	if err != nil {
		c.logger.Warn("Failed to decode response", "error", err)
		return nil, NewError(CodeUnknown, 0, fmt.Errorf("failed to decode response: %w", err))
	}

	c.logger.Debug("YouTube response", "items", len(list.Items))
	return list.Items, nil
}

func (c *Client) processThrottled(resp *http.Response) error {
	retryAfter := defaultRetryAfter

	header := resp.Header.Get("Retry-After")
	if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && seconds > 0 {
		retryAfter = time.Duration(seconds) * time.Second
	}

	c.logger.Warn("YouTube api throttled", "status_code", resp.StatusCode, "retry_after", retryAfter)
	return NewError(CodeRetryAfter, retryAfter, fmt.Errorf("status code %d, retry after %s", resp.StatusCode, retryAfter))
}
