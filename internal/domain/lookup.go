package domain

import "context"

// AddressResolver resolves a normalized postal code to an address record.
type AddressResolver interface {
	// ResolveAddress returns ErrAddressNotFound (wrapped) when the service
	// answers with a non-success status.
	ResolveAddress(ctx context.Context, code string) (AddressRecord, error)
}

// WeatherProvider reads the current temperature at a coordinate pair.
type WeatherProvider interface {
	// CurrentTemperature returns the temperature in degrees Celsius, or nil
	// when the forecast carries no hourly data. A non-success status yields
	// ErrWeatherQueryFailed (wrapped).
	CurrentTemperature(ctx context.Context, lat, lng Coordinate) (*float64, error)
}
