package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/danngalann/astroweather/internal/modules/weather/types"
)

// ErrNotFound matches a StatusError for an unknown location.
var ErrNotFound = errors.New("location not found")

// StatusError is returned for any non-2xx response from the weather backend.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather backend %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// maxErrorBody bounds how much of an error response ends up in logs and pages.
const maxErrorBody = 512

// truncateBody cuts msg to maxErrorBody bytes on a rune boundary.
func truncateBody(msg string) string {
	if len(msg) <= maxErrorBody {
		return msg
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + "…"
}

// Client talks to the weather backend. Every request waits on a token bucket
// so bursts of page renders cannot hammer the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for baseURL. rps may be fractional.
func NewClient(baseURL string, timeout time.Duration, rps float64, burst int) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// OverviewPath and LocationPath are the backend routes the client calls.
func OverviewPath() string { return "/weather" }

func LocationPath(slug string) string { return "/weather/" + url.PathEscape(slug) }

// FetchAllRaw returns the undecoded body of GET /weather.
func (c *Client) FetchAllRaw(ctx context.Context) ([]byte, error) {
	return c.get(ctx, OverviewPath())
}

// FetchLocationRaw returns the undecoded body of GET /weather/{slug}.
func (c *Client) FetchLocationRaw(ctx context.Context, slug string) ([]byte, error) {
	if slug == "" {
		return nil, errors.New("empty location slug")
	}
	return c.get(ctx, LocationPath(slug))
}

func (c *Client) FetchAll(ctx context.Context) ([]types.WeatherData, error) {
	body, err := c.FetchAllRaw(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeAll(body)
}

func (c *Client) FetchLocation(ctx context.Context, slug string) (types.WeatherData, error) {
	body, err := c.FetchLocationRaw(ctx, slug)
	if err != nil {
		return types.WeatherData{}, err
	}
	return DecodeLocation(body)
}

func DecodeAll(body []byte) ([]types.WeatherData, error) {
	var out []types.WeatherData
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode weather list: %w", err)
	}
	return out, nil
}

func DecodeLocation(body []byte) (types.WeatherData, error) {
	var out types.WeatherData
	if err := json.Unmarshal(body, &out); err != nil {
		return types.WeatherData{}, fmt.Errorf("decode weather: %w", err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := truncateBody(strings.TrimSpace(string(body)))
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Body: msg}
	}
	return body, nil
}
