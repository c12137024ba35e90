// Package awesomeapi resolves postal codes through the AwesomeAPI CEP service.
package awesomeapi

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

// DefaultBaseURL is the public AwesomeAPI CEP endpoint.
const DefaultBaseURL = "https://cep.awesomeapi.com.br"

const service = "address"

// Client implements domain.AddressResolver using the AwesomeAPI CEP service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an address lookup client. Each request is bounded by timeout.
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

// ResolveAddress fetches the address record for a normalized postal code.
// Any non-2xx status is reported as domain.ErrAddressNotFound.
func (c *Client) ResolveAddress(ctx context.Context, code string) (domain.AddressRecord, error) {
	u := fmt.Sprintf("%s/json/%s", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.AddressRecord{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return domain.AddressRecord{}, fmt.Errorf("address request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.UpstreamRequests.WithLabelValues(service, "not_found").Inc()
		c.logger.Debug("address lookup rejected", "code", code, "status", resp.StatusCode)
		return domain.AddressRecord{}, fmt.Errorf("address API status %d: %s: %w", resp.StatusCode, body, domain.ErrAddressNotFound)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(service, "error").Inc()
		return domain.AddressRecord{}, fmt.Errorf("decode address response: %w", err)
	}

	c.metrics.UpstreamRequests.WithLabelValues(service, "success").Inc()
	return r.toRecord(code), nil
}

// AwesomeAPI response types.

type response struct {
	CEP         string            `json:"cep"`
	Code        string            `json:"code"`
	AddressType string            `json:"address_type"`
	AddressName string            `json:"address_name"`
	Address     string            `json:"address"`
	District    string            `json:"district"`
	City        string            `json:"city"`
	State       string            `json:"state"`
	Lat         domain.Coordinate `json:"lat"`
	Lng         domain.Coordinate `json:"lng"`
	CityIBGE    string            `json:"city_ibge"`
	DDD         string            `json:"ddd"`
}

func (r response) toRecord(requested string) domain.AddressRecord {
	code := r.CEP
	if code == "" {
		code = r.Code
	}
	if code == "" {
		code = requested
	}
	return domain.AddressRecord{
		Code:        code,
		Address:     r.Address,
		District:    r.District,
		City:        r.City,
		State:       r.State,
		Lat:         r.Lat,
		Lng:         r.Lng,
		AddressType: r.AddressType,
		AddressName: r.AddressName,
		CityIBGE:    r.CityIBGE,
		DDD:         r.DDD,
	}
}
