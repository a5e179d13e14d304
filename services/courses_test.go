package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"bootcamp-api/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBootcamp(t, "Devworks Bootcamp", "Boston")

	in := validCourse("  Front End Web Development ", 8000)
	in.Bootcamp = primitive.NewObjectID()
	c, err := f.course.Create(ctx, b.ID.Hex(), in)
	require.NoError(t, err)
	f.course.Wait()
	assert.Equal(t, "Front End Web Development", c.Title)
	assert.Equal(t, b.ID, c.Bootcamp)
	assert.False(t, c.CreatedAt.IsZero())

	_, err = f.course.Create(ctx, primitive.NewObjectID().Hex(), validCourse("x", 1))
	er := requireKind(t, err, utils.KindNotFound, http.StatusNotFound)
	assert.Contains(t, er.Message, "No bootcamp with the id of")

	_, err = f.course.Create(ctx, "zzz", validCourse("x", 1))
	requireKind(t, err, utils.KindCast, http.StatusNotFound)

	bad := validCourse("x", -1)
	bad.Weeks = "eight"
	bad.MinimumSkill = "expert"
	_, err = f.course.Create(ctx, b.ID.Hex(), bad)
	er = requireKind(t, err, utils.KindValidation, http.StatusBadRequest)
	assert.Contains(t, er.Message, "Weeks must be a number")
	assert.Contains(t, er.Message, "Tuition can not be negative")
	assert.Contains(t, er.Message, "Minimum skill must be beginner, intermediate or advanced")

	n, err := f.courses.Count(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListCourses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createBootcamp(t, "Devworks Bootcamp", "Boston")
	other := f.createBootcamp(t, "ModernTech Bootcamp", "Providence")
	f.createCourse(t, a.ID.Hex(), "Front End", 8000)
	f.createCourse(t, a.ID.Hex(), "Full Stack", 12000)
	f.createCourse(t, other.ID.Hex(), "UX", 5000)
	f.course.Wait()

	res, err := f.course.List(ctx, "", url.Values{"tuition[gte]": {"6000"}, "sort": {"tuition"}})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, "Front End", res.Data[0]["title"])
	parent := res.Data[0]["bootcamp"].(bson.M)
	assert.Equal(t, "Devworks Bootcamp", parent["name"])
	_, hasSlug := parent["slug"]
	assert.False(t, hasSlug)

	res, err = f.course.List(ctx, other.ID.Hex(), url.Values{})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "UX", res.Data[0]["title"])
	assert.Equal(t, other.ID, res.Data[0]["bootcamp"])

	_, err = f.course.List(ctx, "bad", url.Values{})
	requireKind(t, err, utils.KindCast, http.StatusNotFound)
}

func TestGetCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBootcamp(t, "Devworks Bootcamp", "Boston")
	c := f.createCourse(t, b.ID.Hex(), "Front End", 8000)
	f.course.Wait()

	doc, err := f.course.Get(ctx, c.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Front End", doc["title"])
	assert.Equal(t, "Devworks Bootcamp", doc["bootcamp"].(bson.M)["name"])

	_, err = f.course.Get(ctx, primitive.NewObjectID().Hex())
	requireKind(t, err, utils.KindNotFound, http.StatusNotFound)
}

func TestUpdateCourseRecomputesOnTuitionChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBootcamp(t, "Devworks Bootcamp", "Boston")
	c := f.createCourse(t, b.ID.Hex(), "Front End", 8000)
	f.course.Wait()

	other := f.createBootcamp(t, "ModernTech Bootcamp", "Providence")
	patch := []byte(`{"tuition": 9001, "bootcamp": "` + other.ID.Hex() + `"}`)
	got, err := f.course.Update(ctx, c.ID.Hex(), patch)
	require.NoError(t, err)
	f.course.Wait()
	assert.Equal(t, 9001.0, *got.Tuition)
	assert.Equal(t, b.ID, got.Bootcamp)
	assert.Equal(t, 9010.0, *averageCost(t, f, b.ID))
	assert.Nil(t, averageCost(t, f, other.ID))

	got, err = f.course.Update(ctx, c.ID.Hex(), []byte(`{"title": "Front End Basics"}`))
	require.NoError(t, err)
	assert.Equal(t, "Front End Basics", got.Title)
	assert.Equal(t, 9001.0, *got.Tuition)

	_, err = f.course.Update(ctx, c.ID.Hex(), []byte(`{"minimumSkill": "guru"}`))
	requireKind(t, err, utils.KindValidation, http.StatusBadRequest)
}

func TestDeleteCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBootcamp(t, "Devworks Bootcamp", "Boston")
	first := f.createCourse(t, b.ID.Hex(), "Front End", 100)
	f.createCourse(t, b.ID.Hex(), "Full Stack", 300)
	f.course.Wait()
	require.Equal(t, 200.0, *averageCost(t, f, b.ID))

	require.NoError(t, f.course.Delete(ctx, first.ID.Hex()))
	f.course.Wait()
	assert.Equal(t, 300.0, *averageCost(t, f, b.ID))

	requireKind(t, f.course.Delete(ctx, first.ID.Hex()), utils.KindNotFound, http.StatusNotFound)
}

func TestConcurrentCourseCreates(t *testing.T) {
	f := newFixture(t)
	b := f.createBootcamp(t, "Devworks Bootcamp", "Boston")

	const n = 20
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.course.Create(context.Background(), b.ID.Hex(), validCourse(fmt.Sprintf("Course %d", i), float64(1000+i*250)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	f.course.Wait()

	n64, err := f.courses.Count(context.Background(), bson.M{"bootcamp": b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(n), n64)

	avg := averageCost(t, f, b.ID)
	require.NotNil(t, avg)
	assert.Zero(t, math.Mod(*avg, 10))
	assert.GreaterOrEqual(t, *avg, 1000.0)
	assert.LessOrEqual(t, *avg, float64(1000+(n-1)*250))
}
