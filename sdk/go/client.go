package openhourssdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal openhours HTTP API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Facts are the temporal facts derived for a resolution.
type Facts struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	DayName string `json:"day_of_week_name"`
	DayNum  int    `json:"day_of_week_num"`
	Minutes int    `json:"minutes"`
}

// Verdict is the decision outcome.
type Verdict struct {
	Path        string `json:"decision_path"`
	Message     string `json:"message"`
	HolidayName string `json:"holiday_name,omitempty"`
	HolidayDay  string `json:"holiday_day,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Resolution is one completed resolution.
type Resolution struct {
	ID       string  `json:"id"`
	Facts    Facts   `json:"generated"`
	Verdict  Verdict `json:"decision"`
	NoResult bool    `json:"no_result"`
}

// LookupTable is a reference table (header + rows).
type LookupTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Resolve resolves the given timestamp. Pass an empty string for a random
// instant from the server's configured year.
func (c *Client) Resolve(ctx context.Context, timestamp string) (Resolution, error) {
	body := map[string]any{}
	if timestamp != "" {
		body["timestamp"] = timestamp
	}
	var resp Resolution
	err := c.do(ctx, http.MethodPost, "v0/resolutions", body, &resp)
	return resp, err
}

// BusinessHours returns the business-hours reference table.
func (c *Client) BusinessHours(ctx context.Context) (LookupTable, error) {
	return c.lookup(ctx, "business-hours")
}

// PublicHolidays returns the public-holiday reference table.
func (c *Client) PublicHolidays(ctx context.Context) (LookupTable, error) {
	return c.lookup(ctx, "public-holidays")
}

func (c *Client) lookup(ctx context.Context, name string) (LookupTable, error) {
	var resp LookupTable
	err := c.do(ctx, http.MethodGet, "v0/lookups/"+url.PathEscape(name), nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
