package openweather

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

	"github.com/yanqian/flightpulse/internal/domain/prediction"
	"github.com/yanqian/flightpulse/internal/domain/upstream"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	defaultTimeout = 10 * time.Second
	providerName   = "openweather"
)

// Client fetches current conditions from the OpenWeatherMap API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchWeather retrieves metric weather for a city name.
func (c *Client) FetchWeather(ctx context.Context, city string) (prediction.WeatherSnapshot, error) {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return prediction.WeatherSnapshot{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return prediction.WeatherSnapshot{}, upstream.NewFailure(providerName, upstream.KindTransportError, 0, nil, fmt.Errorf("weather request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, upstream.MaxBodyBytes))
		return prediction.WeatherSnapshot{}, upstream.NewFailure(providerName, upstream.KindTransportError, resp.StatusCode, payload, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return prediction.WeatherSnapshot{}, upstream.NewFailure(providerName, upstream.KindTransportError, resp.StatusCode, nil, fmt.Errorf("read weather response: %w", err))
	}

	snapshot, err := decodeSnapshot(body)
	if err != nil {
		return prediction.WeatherSnapshot{}, upstream.NewFailure(providerName, upstream.KindMalformedResponse, resp.StatusCode, body, err)
	}
	return snapshot, nil
}

type apiResponse struct {
	Visibility *float64 `json:"visibility"`
	Wind       *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Rain *struct {
		OneHour *float64 `json:"1h"`
	} `json:"rain"`
}

func decodeSnapshot(body []byte) (prediction.WeatherSnapshot, error) {
	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return prediction.WeatherSnapshot{}, fmt.Errorf("decode weather response: %w", err)
	}
	if raw.Wind == nil || raw.Wind.Speed == nil {
		return prediction.WeatherSnapshot{}, errors.New("weather response missing wind.speed")
	}
	if raw.Main == nil || raw.Main.Temp == nil {
		return prediction.WeatherSnapshot{}, errors.New("weather response missing main.temp")
	}
	if raw.Visibility == nil {
		return prediction.WeatherSnapshot{}, errors.New("weather response missing visibility")
	}

	precipitation := 0.0
	if raw.Rain != nil && raw.Rain.OneHour != nil {
		precipitation = *raw.Rain.OneHour
	}

	return prediction.WeatherSnapshot{
		WindSpeed:       *raw.Wind.Speed,
		VisibilityKM:    *raw.Visibility / 1000,
		PrecipitationMM: precipitation,
		TemperatureC:    *raw.Main.Temp,
		PressureHPA:     prediction.DefaultPressureHPA,
	}, nil
}
