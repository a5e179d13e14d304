package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"

	geo "github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/google"
	"github.com/codingsince1985/geo-golang/mapquest/open"
)

// ErrNoGeocodeResult is returned when the provider answers without a candidate.
var ErrNoGeocodeResult = errors.New("geocoder returned no results")

// GeoResult is one candidate returned by a geocoding provider.
type GeoResult struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formattedAddress"`
	StreetName       string  `json:"streetName"`
	City             string  `json:"city"`
	StateCode        string  `json:"stateCode"`
	Zipcode          string  `json:"zipcode"`
	CountryCode      string  `json:"countryCode"`
}

// Geocoder resolves a textual address to candidate locations, best first.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]GeoResult, error)
}

// NewGeocoder returns the client for the named provider.
func NewGeocoder(provider, apiKey string) (Geocoder, error) {
	switch provider {
	case "mapquest":
		return NewProviderGeocoder("mapquest", open.Geocoder(apiKey)), nil
	case "google":
		return NewProviderGeocoder("google", google.Geocoder(apiKey)), nil
	}
	return nil, fmt.Errorf("unsupported geocoder provider %q", provider)
}

// ProviderGeocoder adapts a geo-golang provider. The forward lookup yields the
// point; a reverse lookup of that point fills in the address parts.
type ProviderGeocoder struct {
	name     string
	provider geo.Geocoder
}

func NewProviderGeocoder(name string, provider geo.Geocoder) *ProviderGeocoder {
	return &ProviderGeocoder{name: name, provider: provider}
}

type lookupResult struct {
	results []GeoResult
	err     error
}

// Geocode returns at most one candidate, or none when the provider finds nothing.
func (g *ProviderGeocoder) Geocode(ctx context.Context, address string) ([]GeoResult, error) {
	// geo-golang takes no context; the lookup keeps its own timeout.
	done := make(chan lookupResult, 1)
	go func() {
		results, err := g.lookup(address)
		done <- lookupResult{results, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", g.name, ctx.Err())
	case r := <-done:
		return r.results, r.err
	}
}

func (g *ProviderGeocoder) lookup(address string) ([]GeoResult, error) {
	loc, err := g.provider.Geocode(address)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}
	if loc == nil {
		return nil, nil
	}

	res := GeoResult{Latitude: loc.Lat, Longitude: loc.Lng}
	addr, err := g.provider.ReverseGeocode(loc.Lat, loc.Lng)
	if err != nil {
		return nil, fmt.Errorf("%s reverse: %w", g.name, err)
	}
	if addr != nil {
		res.FormattedAddress = addr.FormattedAddress
		res.StreetName = joinNonEmpty(" ", addr.HouseNumber, addr.Street)
		res.City = addr.City
		res.StateCode = addr.StateCode
		if res.StateCode == "" {
			res.StateCode = addr.State
		}
		res.Zipcode = addr.Postcode
		res.CountryCode = addr.CountryCode
	}
	return []GeoResult{res}, nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
