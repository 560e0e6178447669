package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RegionMode selects which of the three geo-restriction parameters a query
// uses. The API cannot mix modes in a single call.
type RegionMode int

const (
	// ModeCountry restricts to a whole country, e.g. "US".
	ModeCountry RegionMode = iota
	// ModeSubdivision restricts to one or more ISO-3166-2 subdivisions,
	// e.g. "US-CA". The only mode that accepts multiple values.
	ModeSubdivision
	// ModeDMA restricts to a single Nielsen media-market code.
	ModeDMA
)

// Region is the geographic restriction for a sampling run. Exactly one of
// Codes or DMA is set; use the constructors rather than struct literals.
type Region struct {
	Codes []string
	DMA   int
}

// Country returns a country-wide region, e.g. Country("US").
func Country(code string) Region {
	return Region{Codes: []string{code}}
}

// Subdivisions returns a region restricted to one or more ISO-3166-2
// subdivision codes, e.g. Subdivisions("US-CA", "US-NY").
func Subdivisions(codes ...string) Region {
	out := make([]string, len(codes))
	copy(out, codes)
	return Region{Codes: out}
}

// DMA returns a region restricted to a Nielsen media-market code.
// Lists are not supported in this mode.
func DMA(code int) Region {
	return Region{DMA: code}
}

// ParseRegion interprets a CLI/config region string: "US" for a country,
// "US-CA" or "US-CA,US-NY" for subdivisions, or digits for a DMA code.
// Anything else (a typo'd DMA code like "511a", a malformed code) is a
// configuration error; a bad region must never reach the network, where
// the permanent upstream rejection would look transient to the retry loop.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Region{}, &ConfigError{Field: "region", Reason: "region is required"}
	}
	if code, err := strconv.Atoi(s); err == nil {
		return DMA(code), nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 && !strings.Contains(parts[0], "-") {
		if !isCountryCode(parts[0]) {
			return Region{}, &ConfigError{Field: "region", Reason: fmt.Sprintf("%q is not a country code, subdivision code, or DMA integer", s)}
		}
		return Country(parts[0]), nil
	}
	region := Subdivisions(parts...)
	if err := region.Validate(); err != nil {
		return Region{}, err
	}
	return region, nil
}

// isCountryCode reports whether s is a two-letter ISO-3166-1 style code.
func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// isSubdivisionCode reports whether s is an ISO-3166-2 style code: a
// two-letter country prefix, a hyphen, and a non-empty remainder.
func isSubdivisionCode(s string) bool {
	return len(s) > 3 && isCountryCode(s[:2]) && s[2] == '-'
}

// Mode returns which geo-restriction parameter this region maps to.
// Only meaningful on a validated region.
func (r Region) Mode() RegionMode {
	if len(r.Codes) == 0 {
		return ModeDMA
	}
	if len(r.Codes) == 1 && !strings.Contains(r.Codes[0], "-") {
		return ModeCountry
	}
	return ModeSubdivision
}

// Validate checks the region before any network activity. A region that is
// neither a code list nor a positive DMA integer is a configuration error;
// in particular a would-be DMA supplied as anything but an integer can
// never reach this type, mirroring the upstream API's requirement.
func (r Region) Validate() error {
	if len(r.Codes) == 0 {
		if r.DMA <= 0 {
			return &ConfigError{Field: "region", Reason: "a country code, subdivision code(s), or a DMA integer is required"}
		}
		return nil
	}
	if r.DMA != 0 {
		return &ConfigError{Field: "region", Reason: "cannot combine codes with a DMA code"}
	}
	for _, c := range r.Codes {
		if c == "" {
			return &ConfigError{Field: "region", Reason: "region codes must be non-empty"}
		}
	}
	if len(r.Codes) == 1 && !strings.Contains(r.Codes[0], "-") {
		if !isCountryCode(r.Codes[0]) {
			return &ConfigError{Field: "region", Reason: fmt.Sprintf("%q is not a country code; DMA codes must be integers", r.Codes[0])}
		}
		return nil
	}
	// Everything else must be subdivision codes; only this mode accepts
	// multiple values.
	for _, c := range r.Codes {
		if !isSubdivisionCode(c) {
			return &ConfigError{Field: "region", Reason: fmt.Sprintf("%q is not a subdivision code; country codes cannot be listed", c)}
		}
	}
	return nil
}

// Label returns the region's filesystem-safe name, used in output paths.
// Subdivision lists are joined with "+".
func (r Region) Label() string {
	if len(r.Codes) == 0 {
		return strconv.Itoa(r.DMA)
	}
	return strings.Join(r.Codes, "+")
}

// Restriction returns the query-parameter value for this region. Multiple
// subdivision codes are joined as a quoted comma list, the format the
// upstream API expects.
func (r Region) Restriction() string {
	switch {
	case len(r.Codes) == 0:
		return strconv.Itoa(r.DMA)
	case len(r.Codes) == 1:
		return r.Codes[0]
	default:
		return "'" + strings.Join(r.Codes, "', '") + "'"
	}
}
