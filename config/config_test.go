package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "mapquest", cfg.GeocoderProvider)
	assert.Equal(t, int64(1000000), cfg.MaxFileUpload)
	assert.Equal(t, 24*time.Hour, cfg.GeocoderCacheTTL)
	assert.Equal(t, 1.0, cfg.RatingMin)
	assert.Equal(t, 10.0, cfg.RatingMax)
}

func TestParseRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParseRejectsInvertedRatingRange(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("RATING_MIN", "5")
	t.Setenv("RATING_MAX", "1")

	_, err := Parse()
	assert.ErrorContains(t, err, "RATING_MIN")
}

func TestParseRejectsUnknownProvider(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("GEOCODER_PROVIDER", "carrier-pigeon")

	_, err := Parse()
	assert.ErrorContains(t, err, "GEOCODER_PROVIDER")
}
