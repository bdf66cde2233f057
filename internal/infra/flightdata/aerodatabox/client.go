package aerodatabox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/flightpulse/internal/domain/flightstatus"
	"github.com/yanqian/flightpulse/internal/domain/upstream"
)

const (
	defaultBaseURL  = "https://aerodatabox.p.rapidapi.com"
	defaultHost     = "aerodatabox.p.rapidapi.com"
	defaultCodeType = "icao"
	defaultTimeout  = 10 * time.Second
	providerName    = "aerodatabox"

	// windowLayout is the local-time format of airport query bounds.
	windowLayout = "2006-01-02T15:04"
)

// Options configures the client.
type Options struct {
	BaseURL  string
	Host     string
	APIKey   string
	CodeType string
	Timeout  time.Duration
}

// Client fetches flight status data from AeroDataBox over RapidAPI.
type Client struct {
	baseURL    string
	host       string
	apiKey     string
	codeType   string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(opts Options) *Client {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = defaultHost
	}
	codeType := strings.ToLower(strings.TrimSpace(opts.CodeType))
	if codeType == "" {
		codeType = defaultCodeType
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(base, "/"),
		host:     host,
		apiKey:   opts.APIKey,
		codeType: codeType,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchFlightByNumber returns every departing leg the provider knows for
// number on date. An arrivals group in the payload is ignored.
func (c *Client) FetchFlightByNumber(ctx context.Context, number, date string) ([]flightstatus.FlightRecord, error) {
	path := fmt.Sprintf("/flights/number/%s/%s", url.PathEscape(number), url.PathEscape(date))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return c.normalize(body, false)
}

// FetchFlightsForAirport returns departures followed by arrivals within [start, end].
func (c *Client) FetchFlightsForAirport(ctx context.Context, airport string, start, end time.Time) ([]flightstatus.FlightRecord, error) {
	path := fmt.Sprintf("/flights/airports/%s/%s/%s/%s",
		c.codeType,
		url.PathEscape(airport),
		start.Format(windowLayout),
		end.Format(windowLayout),
	)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return c.normalize(body, true)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build flight request: %w", err)
	}
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.NewFailure(providerName, upstream.KindTransportError, 0, nil, fmt.Errorf("flight request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, upstream.MaxBodyBytes))
		return nil, upstream.NewFailure(providerName, kindForStatus(resp.StatusCode), resp.StatusCode, payload, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstream.NewFailure(providerName, upstream.KindTransportError, resp.StatusCode, nil, fmt.Errorf("read flight response: %w", err))
	}
	return body, nil
}

func (c *Client) normalize(body []byte, withArrivals bool) ([]flightstatus.FlightRecord, error) {
	records, err := normalizeFlights(body, withArrivals)
	if err != nil {
		return nil, upstream.NewFailure(providerName, upstream.KindMalformedResponse, http.StatusOK, body, err)
	}
	return records, nil
}

func kindForStatus(status int) upstream.Kind {
	switch status {
	case http.StatusTooManyRequests:
		return upstream.KindRateLimited
	case http.StatusNotFound:
		return upstream.KindNotFound
	default:
		return upstream.KindTransportError
	}
}
