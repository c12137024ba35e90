package domain

import "errors"

// Lookup failures. Adapters wrap these with %w so callers can match them with errors.Is.
var (
	ErrAddressNotFound        = errors.New("address not found")
	ErrCoordinatesUnavailable = errors.New("coordinates unavailable")
	ErrWeatherQueryFailed     = errors.New("weather query failed")

	// ErrInvalidCodeFormat is raised by hosting surfaces that soft-validate
	// input before submitting it.
	ErrInvalidCodeFormat = errors.New("invalid code format")
)

// ErrorKind identifies a failure class in view states, metrics and events.
type ErrorKind string

const (
	KindNone                   ErrorKind = ""
	KindAddressNotFound        ErrorKind = "address_not_found"
	KindCoordinatesUnavailable ErrorKind = "coordinates_unavailable"
	KindWeatherQueryFailed     ErrorKind = "weather_query_failed"
	KindInvalidCodeFormat      ErrorKind = "invalid_code_format"
	KindUnknown                ErrorKind = "unknown"
)

// User-facing messages, one per error kind.
const (
	MsgAddressNotFound        = "CEP não encontrado"
	MsgCoordinatesUnavailable = "Latitude ou Longitude não disponíveis para este CEP"
	MsgWeatherQueryFailed     = "Erro ao consultar clima"
	MsgInvalidCodeFormat      = "CEP inválido: use o formato 12345-678"
	MsgUnknown                = "Erro ao consultar dados"
)

// Classify maps an error to its kind and user-facing message. A nil error
// yields KindNone and an empty message.
func Classify(err error) (ErrorKind, string) {
	switch {
	case err == nil:
		return KindNone, ""
	case errors.Is(err, ErrAddressNotFound):
		return KindAddressNotFound, MsgAddressNotFound
	case errors.Is(err, ErrCoordinatesUnavailable):
		return KindCoordinatesUnavailable, MsgCoordinatesUnavailable
	case errors.Is(err, ErrWeatherQueryFailed):
		return KindWeatherQueryFailed, MsgWeatherQueryFailed
	case errors.Is(err, ErrInvalidCodeFormat):
		return KindInvalidCodeFormat, MsgInvalidCodeFormat
	default:
		return KindUnknown, MsgUnknown
	}
}
