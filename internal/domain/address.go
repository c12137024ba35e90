package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AddressRecord is the result of resolving a postal code.
type AddressRecord struct {
	Code     string     `json:"code"`
	Address  string     `json:"address"`
	District string     `json:"district"`
	City     string     `json:"city"`
	State    string     `json:"state"`
	Lat      Coordinate `json:"lat"`
	Lng      Coordinate `json:"lng"`

	// Optional fields some address providers include.
	AddressType string `json:"address_type,omitempty"`
	AddressName string `json:"address_name,omitempty"`
	CityIBGE    string `json:"city_ibge,omitempty"`
	DDD         string `json:"ddd,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are usable.
func (a AddressRecord) HasCoordinates() bool {
	return a.Lat.Valid && a.Lng.Valid
}

// Coordinate is a latitude or longitude that upstream services encode either
// as a JSON number or as a numeric string.
type Coordinate struct {
	Value float64
	Valid bool
}

// NewCoordinate returns a Coordinate for v. Zero, NaN and infinities are not valid.
func NewCoordinate(v float64) Coordinate {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Coordinate{}
	}
	return Coordinate{Value: v, Valid: true}
}

// String formats the coordinate for use in a query string. Invalid
// coordinates render as the empty string.
func (c Coordinate) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// UnmarshalJSON accepts a number, a numeric string, an empty string or null.
// Strings that do not parse leave the coordinate invalid rather than failing
// the whole payload.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	*c = Coordinate{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode coordinate: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		*c = NewCoordinate(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode coordinate: %w", err)
	}
	*c = NewCoordinate(v)
	return nil
}

// MarshalJSON writes a number, or null when the coordinate is not valid.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(c.String()), nil
}
