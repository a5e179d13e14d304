package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"bootcamp-api/models"
	"bootcamp-api/store"
	"bootcamp-api/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	boston     = utils.GeoResult{Latitude: 42.3601, Longitude: -71.0589, FormattedAddress: "Boston, MA 02118, US", City: "Boston", StateCode: "MA", Zipcode: "02118", CountryCode: "US"}
	providence = utils.GeoResult{Latitude: 41.8240, Longitude: -71.4128, FormattedAddress: "Providence, RI 02903, US", City: "Providence", StateCode: "RI", Zipcode: "02903", CountryCode: "US"}
)

type fakeGeocoder struct {
	results map[string][]utils.GeoResult
	err     error
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) ([]utils.GeoResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	for key, res := range f.results {
		if strings.Contains(address, key) {
			return res, nil
		}
	}
	return nil, nil
}

func newFakeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{results: map[string][]utils.GeoResult{
		"Boston":     {boston},
		"02118":      {boston},
		"Providence": {providence},
		"02903":      {providence},
	}}
}

type fixture struct {
	bootcamps *store.Memory
	courses   *store.Memory
	geocoder  *fakeGeocoder
	bootcamp  *BootcampService
	course    *CourseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	v := utils.NewValidator(1, 10)
	f := &fixture{
		bootcamps: store.NewMemory("name"),
		courses:   store.NewMemory(),
		geocoder:  newFakeGeocoder(),
	}
	f.bootcamp = NewBootcampService(f.bootcamps, f.courses, f.geocoder, v, UploadConfig{Dir: t.TempDir(), MaxSize: 1024}, zerolog.Nop())
	f.course = NewCourseService(f.courses, f.bootcamps, v, zerolog.Nop(), 0)
	return f
}

func validBootcamp(name, address string) models.Bootcamp {
	return models.Bootcamp{
		Name:        name,
		Description: "Full stack web development",
		Careers:     []string{"Web Development", "UI/UX"},
		Address:     address,
		Website:     "https://devworks.com",
	}
}

func validCourse(title string, tuition float64) models.Course {
	return models.Course{
		Title:        title,
		Description:  "Learn the basics",
		Weeks:        "8",
		Tuition:      models.Float(tuition),
		MinimumSkill: "beginner",
	}
}

func (f *fixture) createBootcamp(t *testing.T, name, address string) *models.Bootcamp {
	t.Helper()
	b, err := f.bootcamp.Create(context.Background(), validBootcamp(name, address))
	require.NoError(t, err)
	return b
}

func (f *fixture) createCourse(t *testing.T, bootcampID string, title string, tuition float64) *models.Course {
	t.Helper()
	c, err := f.course.Create(context.Background(), bootcampID, validCourse(title, tuition))
	require.NoError(t, err)
	return c
}

func requireKind(t *testing.T, err error, kind utils.Kind, status int) *utils.ErrorResponse {
	t.Helper()
	require.Error(t, err)
	var er *utils.ErrorResponse
	require.True(t, errors.As(err, &er), "expected *utils.ErrorResponse, got %T: %v", err, err)
	require.Equal(t, kind, er.Kind)
	require.Equal(t, status, er.StatusCode)
	return er
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *recordingMailer) SendWelcomeEmail(to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}
