// Package openmeteo reads current temperatures from the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/cep-weather-service/internal/domain"
	"github.com/couchcryptid/cep-weather-service/internal/observability"
)

// DefaultBaseURL is the public Open-Meteo API host.
const DefaultBaseURL = "https://api.open-meteo.com"

const service = "weather"

// Client implements domain.WeatherProvider using the Open-Meteo forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a weather client. Each request is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentTemperature returns the first hourly temperature_2m value at the
// given coordinates, or nil when the forecast has none.
func (c *Client) CurrentTemperature(ctx context.Context, lat, lng domain.Coordinate) (*float64, error) {
	params := url.Values{
		"latitude":  {lat.String()},
		"longitude": {lng.String()},
		"hourly":    {"temperature_2m"},
	}
	u := c.baseURL + "/v1/forecast?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		c.logger.Debug("weather query rejected", "lat", lat.Value, "lng", lng.Value, "status", resp.StatusCode)
		return nil, fmt.Errorf("weather API status %d: %s: %w", resp.StatusCode, body, domain.ErrWeatherQueryFailed)
	}

	var fc forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	c.metrics.UpstreamRequests.WithLabelValues(service, "success").Inc()
	return fc.current(), nil
}

// Open-Meteo response types.

type forecastResponse struct {
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	HourlyUnits map[string]string `json:"hourly_units"`
	Hourly      *hourly           `json:"hourly"`
}

type hourly struct {
	Time          []string   `json:"time"`
	Temperature2M []*float64 `json:"temperature_2m"`
}

// current picks index 0 of the hourly temperature sequence. Open-Meteo uses
// null for hours it has no value for.
func (f forecastResponse) current() *float64 {
	if f.Hourly == nil || len(f.Hourly.Temperature2M) == 0 {
		return nil
	}
	return f.Hourly.Temperature2M[0]
}
