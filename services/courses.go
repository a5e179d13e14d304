package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"bootcamp-api/models"
	"bootcamp-api/query"
	"bootcamp-api/store"
	"bootcamp-api/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CourseService struct {
	courses    store.Collection
	bootcamps  store.Collection
	validator  *utils.Validator
	aggregator *CostAggregator
	logger     zerolog.Logger
	timeout    time.Duration
	now        func() time.Time

	wg sync.WaitGroup
}

// NewCourseService wires the course write paths to the cost aggregator. timeout
// bounds each background recompute.
func NewCourseService(courses, bootcamps store.Collection, v *utils.Validator, logger zerolog.Logger, timeout time.Duration) *CourseService {
	return &CourseService{
		courses:    courses,
		bootcamps:  bootcamps,
		validator:  v,
		aggregator: NewCostAggregator(courses, bootcamps),
		logger:     logger,
		timeout:    timeout,
		now:        time.Now,
	}
}

func (s *CourseService) bootcampJoin() query.Populate {
	return query.Populate{
		Path:         "bootcamp",
		From:         s.bootcamps,
		LocalField:   "bootcamp",
		ForeignField: "_id",
		Select:       []string{"name", "description"},
		JustOne:      true,
	}
}

// List returns courses through the query builder. With a bootcamp id only that
// bootcamp's courses are listed; otherwise every course carries its bootcamp.
func (s *CourseService) List(ctx context.Context, bootcampID string, values url.Values) (*query.Result, error) {
	q := query.Parse(values, models.CourseSchema)
	if bootcampID == "" {
		return query.Run(ctx, s.courses, q, s.bootcampJoin())
	}

	id, err := parseID(bootcampID)
	if err != nil {
		return nil, err
	}
	q.Filter["bootcamp"] = id
	return query.Run(ctx, s.courses, q)
}

// Get returns a single course with its bootcamp joined in.
func (s *CourseService) Get(ctx context.Context, rawID string) (bson.M, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	docs, err := s.courses.Find(ctx, store.ByID(id), store.FindOptions{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	if len(docs) == 0 {
		return nil, utils.NotFound("No course with the id of %s", rawID)
	}
	if err := s.bootcampJoin().Apply(ctx, docs); err != nil {
		return nil, err
	}
	return docs[0], nil
}

func (s *CourseService) find(ctx context.Context, id primitive.ObjectID, rawID string) (*models.Course, error) {
	var c models.Course
	if err := s.courses.FindOne(ctx, store.ByID(id), &c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("No course with the id of %s", rawID)
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &c, nil
}

// Create adds a course under an existing bootcamp and schedules the bootcamp's
// average cost recompute.
func (s *CourseService) Create(ctx context.Context, bootcampID string, c models.Course) (*models.Course, error) {
	id, err := parseID(bootcampID)
	if err != nil {
		return nil, err
	}
	n, err := s.bootcamps.Count(ctx, store.ByID(id))
	if err != nil {
		return nil, fmt.Errorf("find bootcamp: %w", err)
	}
	if n == 0 {
		return nil, utils.NotFound("No bootcamp with the id of %s", bootcampID)
	}

	c.ID = primitive.NilObjectID
	c.Bootcamp = id
	c.Title = strings.TrimSpace(c.Title)
	c.CreatedAt = s.now().UTC()
	if err := s.validator.Struct(&c); err != nil {
		return nil, err
	}

	courseID, err := s.courses.Insert(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = courseID

	s.refreshAverageCost(id)
	return &c, nil
}

// Update overlays the JSON patch on the stored course. The owning bootcamp can not
// change; a tuition change schedules a recompute.
func (s *CourseService) Update(ctx context.Context, rawID string, patch []byte) (*models.Course, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	current, err := s.find(ctx, id, rawID)
	if err != nil {
		return nil, err
	}

	next := *current
	next.Tuition = nil
	if err := json.Unmarshal(patch, &next); err != nil {
		return nil, utils.InvalidBody(err)
	}
	if next.Tuition == nil {
		next.Tuition = current.Tuition
	}
	next.ID = current.ID
	next.Bootcamp = current.Bootcamp
	next.CreatedAt = current.CreatedAt
	next.Title = strings.TrimSpace(next.Title)
	if err := s.validator.Struct(&next); err != nil {
		return nil, err
	}

	set := bson.M{
		"title":                next.Title,
		"description":          next.Description,
		"weeks":                next.Weeks,
		"tuition":              next.Tuition,
		"minimumSkill":         next.MinimumSkill,
		"scholarshipAvailable": next.ScholarshipAvailable,
	}
	var out models.Course
	if err := s.courses.Update(ctx, store.ByID(id), set, &out); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("No course with the id of %s", rawID)
		}
		return nil, err
	}

	if current.Tuition == nil || *current.Tuition != *next.Tuition {
		s.refreshAverageCost(current.Bootcamp)
	}
	return &out, nil
}

// Delete removes the course and schedules its bootcamp's recompute.
func (s *CourseService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	c, err := s.find(ctx, id, rawID)
	if err != nil {
		return err
	}

	if _, err := s.courses.Delete(ctx, store.ByID(id)); err != nil {
		return fmt.Errorf("delete course %s: %w", rawID, err)
	}
	s.refreshAverageCost(c.Bootcamp)
	return nil
}

// refreshAverageCost runs the recompute in the background. The caller is not
// affected by its outcome; failures are only logged.
func (s *CourseService) refreshAverageCost(bootcampID primitive.ObjectID) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		if err := s.aggregator.Recompute(ctx, bootcampID); err != nil {
			s.logger.Error().Err(err).Str("bootcamp", bootcampID.Hex()).Msg("average cost recompute failed")
			return
		}
		s.logger.Debug().Str("bootcamp", bootcampID.Hex()).Msg("average cost recomputed")
	}()
}

// Wait blocks until every scheduled recompute has finished.
func (s *CourseService) Wait() {
	s.wg.Wait()
}
