package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bootcamp-api/models"
	"bootcamp-api/services"
	"bootcamp-api/store"
	"bootcamp-api/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type pointGeocoder struct{}

func (pointGeocoder) Geocode(context.Context, string) ([]utils.GeoResult, error) {
	return []utils.GeoResult{{Latitude: 42.35, Longitude: -71.1, City: "Boston", StateCode: "MA", CountryCode: "US"}}, nil
}

func TestSeedAndDestroy(t *testing.T) {
	ctx := context.Background()
	bootcamps, courses := store.NewMemory("name"), store.NewMemory()
	v := utils.NewValidator(1, 10)
	bs := services.NewBootcampService(bootcamps, courses, pointGeocoder{}, v, services.UploadConfig{Dir: t.TempDir(), MaxSize: 1}, zerolog.Nop())
	cs := services.NewCourseService(courses, bootcamps, v, zerolog.Nop(), 0)

	n, m, err := seed(ctx, filepath.Join("..", "..", "_data"), bs, cs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 5, m)

	id, err := primitive.ObjectIDFromHex("5d713995b721c3bb38c1f5d0")
	require.NoError(t, err)
	var devworks models.Bootcamp
	require.NoError(t, bootcamps.FindOne(ctx, store.ByID(id), &devworks))
	require.NotNil(t, devworks.AverageCost)
	assert.Equal(t, 9000.0, *devworks.AverageCost)
	assert.Equal(t, "devworks-bootcamp", devworks.Slug)

	require.NoError(t, destroy(ctx, bootcamps, courses))
	for _, c := range []*store.Memory{bootcamps, courses} {
		count, err := c.Count(ctx, bson.M{})
		require.NoError(t, err)
		assert.Zero(t, count)
	}
}

func TestSeedMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bootcamps.json"), []byte("[]"), 0o644))

	_, _, err := seed(context.Background(), dir, nil, nil)
	assert.Error(t, err)
}
