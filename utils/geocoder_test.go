package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	geo "github.com/codingsince1985/geo-golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	location   *geo.Location
	address    *geo.Address
	err        error
	reverseErr error
	block      chan struct{}
}

func (s *stubProvider) Geocode(string) (*geo.Location, error) {
	if s.block != nil {
		<-s.block
	}
	return s.location, s.err
}

func (s *stubProvider) ReverseGeocode(float64, float64) (*geo.Address, error) {
	return s.address, s.reverseErr
}

func TestProviderGeocoderFillsAddressParts(t *testing.T) {
	g := NewProviderGeocoder("mapquest", &stubProvider{
		location: &geo.Location{Lat: 42.35, Lng: -71.1},
		address: &geo.Address{
			FormattedAddress: "233 Bay State Rd, Boston, MA 02215, US",
			HouseNumber:      "233",
			Street:           "Bay State Rd",
			City:             "Boston",
			State:            "Massachusetts",
			StateCode:        "MA",
			Postcode:         "02215",
			CountryCode:      "US",
		},
	})

	results, err := g.Geocode(context.Background(), "233 Bay State Road Boston MA 02215")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, GeoResult{
		Latitude:         42.35,
		Longitude:        -71.1,
		FormattedAddress: "233 Bay State Rd, Boston, MA 02215, US",
		StreetName:       "233 Bay State Rd",
		City:             "Boston",
		StateCode:        "MA",
		Zipcode:          "02215",
		CountryCode:      "US",
	}, results[0])
}

func TestProviderGeocoderStateFallback(t *testing.T) {
	g := NewProviderGeocoder("google", &stubProvider{
		location: &geo.Location{Lat: 41.48, Lng: -71.52},
		address:  &geo.Address{State: "RI", CountryCode: "US"},
	})

	results, err := g.Geocode(context.Background(), "Kingston RI")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "RI", results[0].StateCode)
	assert.Empty(t, results[0].StreetName)
}

func TestProviderGeocoderNoResult(t *testing.T) {
	g := NewProviderGeocoder("google", &stubProvider{})

	results, err := g.Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProviderGeocoderErrors(t *testing.T) {
	g := NewProviderGeocoder("mapquest", &stubProvider{err: errors.New("bad key")})
	_, err := g.Geocode(context.Background(), "anywhere")
	assert.ErrorContains(t, err, "mapquest: bad key")

	g = NewProviderGeocoder("mapquest", &stubProvider{location: &geo.Location{Lat: 1, Lng: 2}, reverseErr: errors.New("quota")})
	_, err = g.Geocode(context.Background(), "anywhere")
	assert.ErrorContains(t, err, "quota")
}

func TestProviderGeocoderHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	g := NewProviderGeocoder("google", &stubProvider{block: block})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Geocode(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewGeocoderProviders(t *testing.T) {
	for _, name := range []string{"mapquest", "google"} {
		g, err := NewGeocoder(name, "key")
		require.NoError(t, err)
		assert.IsType(t, &ProviderGeocoder{}, g)
	}
}

func TestNewGeocoderRejectsUnknownProvider(t *testing.T) {
	_, err := NewGeocoder("openstreetmap", "")
	assert.Error(t, err)
}

type countingGeocoder struct {
	calls   int
	results []GeoResult
}

func (c *countingGeocoder) Geocode(context.Context, string) ([]GeoResult, error) {
	c.calls++
	return c.results, nil
}

type mapCache struct {
	values map[string][]GeoResult
	fail   bool
}

func (m *mapCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	if m.fail {
		return errors.New("redis down")
	}
	v, ok := m.values[key]
	if !ok {
		return ErrCacheMiss
	}
	*(dest.(*[]GeoResult)) = v
	return nil
}

func (m *mapCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.fail {
		return errors.New("redis down")
	}
	m.values[key] = value.([]GeoResult)
	return nil
}

func TestCachedGeocoderHitsProviderOnce(t *testing.T) {
	next := &countingGeocoder{results: []GeoResult{{Latitude: 1, Longitude: 2}}}
	cache := &mapCache{values: map[string][]GeoResult{}}
	g := NewCachedGeocoder(next, cache, time.Hour, zerolog.Nop())

	for _, addr := range []string{"02118", " 02118 "} {
		results, err := g.Geocode(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, 2.0, results[0].Longitude)
	}
	assert.Equal(t, 1, next.calls)
}

func TestCachedGeocoderSkipsEmptyResults(t *testing.T) {
	next := &countingGeocoder{}
	cache := &mapCache{values: map[string][]GeoResult{}}
	g := NewCachedGeocoder(next, cache, time.Hour, zerolog.Nop())

	g.Geocode(context.Background(), "nowhere")
	g.Geocode(context.Background(), "nowhere")
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, cache.values)
}

func TestCachedGeocoderSurvivesCacheFailure(t *testing.T) {
	next := &countingGeocoder{results: []GeoResult{{Latitude: 1}}}
	g := NewCachedGeocoder(next, &mapCache{fail: true}, time.Hour, zerolog.Nop())

	results, err := g.Geocode(context.Background(), "02118")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
