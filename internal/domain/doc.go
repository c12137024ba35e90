// Package domain models a postal-code (CEP) weather lookup: the raw code a user
// types, the address record resolved from it, and the temperature read at the
// record's coordinates.
//
// # Postal Codes
//
// A Brazilian CEP has eight digits and is usually written with a hyphen after
// the fifth digit:
//
//	"01001-000"  ->  "01001000"
//
// Users type it in many shapes ("01001 000", "01.001-000"). [Normalize] keeps
// the digits and drops everything else, so the lookup key is always digit-only.
// It may be empty when the input had no digits at all.
//
// The form accepts at most nine characters and soft-validates against
// `\d{5}-?\d{3}` (see [ValidCodeFormat]). That check belongs to the hosting
// surface; submissions themselves never reject input.
//
// # Coordinates
//
// The address service reports latitude and longitude as JSON strings
// ("-23.5502") for most codes, as numbers for some, and as null or "" when the
// code has no geocode. [Coordinate] accepts all of these. A coordinate that is
// missing, empty, unparsable or exactly zero is not [Coordinate.Valid], and a
// record without both coordinates cannot be used for a weather query.
//
// # Temperature
//
// The weather service returns an hourly forecast whose first
// `temperature_2m` entry is taken as the current temperature in degrees
// Celsius. An empty sequence is a valid outcome: the lookup succeeds with no
// temperature.
//
// # View State
//
// Every submission produces a [ViewState]. It starts in flight with every
// result field cleared and ends either with an address (and possibly a
// temperature) or with a single error message, never both. InFlight is false
// on every terminal state.
package domain
