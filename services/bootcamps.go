package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bootcamp-api/models"
	"bootcamp-api/query"
	"bootcamp-api/store"
	"bootcamp-api/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Earth radius used to turn a distance into radians for $centerSphere.
const (
	EarthRadiusMiles = 3963.0
	EarthRadiusKm    = 6378.0
)

// UploadConfig bounds photo uploads.
type UploadConfig struct {
	Dir     string
	MaxSize int64
}

// Upload is a received file, independent of the transport that carried it.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type BootcampService struct {
	bootcamps store.Collection
	courses   store.Collection
	geocoder  utils.Geocoder
	validator *utils.Validator
	uploads   UploadConfig
	logger    zerolog.Logger
	now       func() time.Time
}

func NewBootcampService(bootcamps, courses store.Collection, geocoder utils.Geocoder, v *utils.Validator, uploads UploadConfig, logger zerolog.Logger) *BootcampService {
	return &BootcampService{
		bootcamps: bootcamps,
		courses:   courses,
		geocoder:  geocoder,
		validator: v,
		uploads:   uploads,
		logger:    logger,
		now:       time.Now,
	}
}

// List runs the query builder over bootcamps and joins each one's courses.
func (s *BootcampService) List(ctx context.Context, values url.Values) (*query.Result, error) {
	q := query.Parse(values, models.BootcampSchema)
	return query.Run(ctx, s.bootcamps, q, query.Populate{
		Path:         "courses",
		From:         s.courses,
		ForeignField: "bootcamp",
		Select:       []string{"minimumSkill", "tuition"},
	})
}

func (s *BootcampService) Get(ctx context.Context, rawID string) (*models.Bootcamp, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id, rawID)
}

func (s *BootcampService) find(ctx context.Context, id primitive.ObjectID, rawID string) (*models.Bootcamp, error) {
	var b models.Bootcamp
	if err := s.bootcamps.FindOne(ctx, store.ByID(id), &b); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("Bootcamp not found with id of %s", rawID)
		}
		return nil, fmt.Errorf("find bootcamp: %w", err)
	}
	return &b, nil
}

// Create validates the input, derives the slug and geocodes the address into a
// location before the first write. The raw address is not persisted.
func (s *BootcampService) Create(ctx context.Context, b models.Bootcamp) (*models.Bootcamp, error) {
	b.ID = primitive.NilObjectID
	return s.create(ctx, b)
}

// Import is Create for seed data: a preset id is kept so related records can refer to it.
func (s *BootcampService) Import(ctx context.Context, b models.Bootcamp) (*models.Bootcamp, error) {
	return s.create(ctx, b)
}

func (s *BootcampService) create(ctx context.Context, b models.Bootcamp) (*models.Bootcamp, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.Address = strings.TrimSpace(b.Address)
	b.Location = nil
	b.AverageCost = nil
	b.Photo = models.DefaultPhoto

	if err := s.validateNew(&b); err != nil {
		return nil, err
	}

	loc, err := s.locate(ctx, b.Address)
	if err != nil {
		return nil, err
	}
	b.Slug = utils.Slugify(b.Name)
	b.Location = loc
	b.Address = ""
	b.CreatedAt = s.now().UTC()

	id, err := s.bootcamps.Insert(ctx, b)
	if err != nil {
		return nil, err
	}
	b.ID = id

	s.logger.Info().Str("bootcamp", id.Hex()).Str("slug", b.Slug).Msg("bootcamp created")
	return &b, nil
}

func (s *BootcampService) validateNew(b *models.Bootcamp) error {
	err := s.validator.Struct(b)
	if b.Address != "" {
		return err
	}

	const msg = "Please add an address"
	if err == nil {
		return utils.ValidationFailed(msg)
	}
	var er *utils.ErrorResponse
	if errors.As(err, &er) && er.Kind == utils.KindValidation {
		return utils.ValidationFailed(er.Message, msg)
	}
	return err
}

func (s *BootcampService) geocode(ctx context.Context, address string) (utils.GeoResult, error) {
	results, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return utils.GeoResult{}, utils.UpstreamFailure("Geocoding service is unavailable", err)
	}
	if len(results) == 0 {
		er := utils.UpstreamFailure(fmt.Sprintf("Could not find a location for %s", address), utils.ErrNoGeocodeResult)
		er.StatusCode = http.StatusBadRequest
		return utils.GeoResult{}, er
	}
	return results[0], nil
}

func (s *BootcampService) locate(ctx context.Context, address string) (*models.Location, error) {
	res, err := s.geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	return &models.Location{
		Type:             "Point",
		Coordinates:      []float64{res.Longitude, res.Latitude},
		FormattedAddress: res.FormattedAddress,
		Street:           res.StreetName,
		City:             res.City,
		State:            res.StateCode,
		Zipcode:          res.Zipcode,
		Country:          res.CountryCode,
	}, nil
}

// Update overlays the JSON patch on the stored bootcamp and re-validates it. The
// location and the average cost are never changed here; the slug follows the name.
func (s *BootcampService) Update(ctx context.Context, rawID string, patch []byte) (*models.Bootcamp, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	current, err := s.find(ctx, id, rawID)
	if err != nil {
		return nil, err
	}

	next := *current
	next.Careers = append([]string(nil), current.Careers...)
	next.Location = nil
	next.AverageCost = nil
	if err := json.Unmarshal(patch, &next); err != nil {
		return nil, utils.InvalidBody(err)
	}
	next.ID = current.ID
	next.Location = current.Location
	next.AverageCost = current.AverageCost
	next.Photo = current.Photo
	next.CreatedAt = current.CreatedAt
	next.Address = ""
	next.Name = strings.TrimSpace(next.Name)

	if err := s.validator.Struct(&next); err != nil {
		return nil, err
	}
	next.Slug = current.Slug
	if next.Name != current.Name {
		next.Slug = utils.Slugify(next.Name)
	}

	set := bson.M{
		"name":          next.Name,
		"slug":          next.Slug,
		"description":   next.Description,
		"website":       next.Website,
		"phone":         next.Phone,
		"email":         next.Email,
		"careers":       next.Careers,
		"averageRating": next.AverageRating,
		"housing":       next.Housing,
		"jobAssistance": next.JobAssistance,
		"jobGuarantee":  next.JobGuarantee,
		"acceptGi":      next.AcceptGi,
	}
	var out models.Bootcamp
	if err := s.bootcamps.Update(ctx, store.ByID(id), set, &out); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("Bootcamp not found with id of %s", rawID)
		}
		return nil, err
	}
	return &out, nil
}

// Delete removes the bootcamp's courses and then the bootcamp itself. The two writes
// are not atomic; a failure between them is logged and returned.
func (s *BootcampService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if _, err := s.find(ctx, id, rawID); err != nil {
		return err
	}

	removed, err := s.courses.Delete(ctx, bson.M{"bootcamp": id})
	if err != nil {
		return fmt.Errorf("delete courses of bootcamp %s: %w", rawID, err)
	}
	s.logger.Info().Str("bootcamp", rawID).Int64("courses", removed).Msg("courses removed with bootcamp")

	if _, err := s.bootcamps.Delete(ctx, store.ByID(id)); err != nil {
		s.logger.Error().Err(err).Str("bootcamp", rawID).Msg("courses removed but bootcamp delete failed")
		return fmt.Errorf("delete bootcamp %s: %w", rawID, err)
	}
	return nil
}

// WithinRadius returns bootcamps whose location lies within distance of the zipcode.
// unit is "mi" (default) or "km".
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode, distance, unit string) ([]bson.M, error) {
	d, err := strconv.ParseFloat(distance, 64)
	if err != nil || d < 0 {
		return nil, utils.ValidationFailed("Please provide a valid distance")
	}

	radius := EarthRadiusMiles
	if strings.EqualFold(unit, "km") {
		radius = EarthRadiusKm
	}

	res, err := s.geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"location": bson.M{"$geoWithin": bson.M{
		"$centerSphere": bson.A{bson.A{res.Longitude, res.Latitude}, d / radius},
	}}}
	docs, err := s.bootcamps.Find(ctx, filter, store.FindOptions{})
	if err != nil {
		return nil, fmt.Errorf("find bootcamps in radius: %w", err)
	}
	return docs, nil
}

// UploadPhoto stores an image as photo_<id><ext> in the upload directory and records
// the file name on the bootcamp.
func (s *BootcampService) UploadPhoto(ctx context.Context, rawID string, file *Upload) (string, error) {
	id, err := parseID(rawID)
	if err != nil {
		return "", err
	}
	if _, err := s.find(ctx, id, rawID); err != nil {
		return "", err
	}
	if file == nil || file.Body == nil {
		return "", utils.UploadFailed("Please upload a file", http.StatusBadRequest, nil)
	}

	mt, err := mimetype.DetectReader(file.Body)
	if err != nil {
		return "", utils.UploadFailed("Problem with file upload", http.StatusInternalServerError, err)
	}
	if _, err := file.Body.Seek(0, io.SeekStart); err != nil {
		return "", utils.UploadFailed("Problem with file upload", http.StatusInternalServerError, err)
	}
	if !isImage(file.ContentType) || !isImage(mt.String()) {
		return "", utils.UploadFailed("Please upload an image file", http.StatusBadRequest, nil)
	}
	if file.Size > s.uploads.MaxSize {
		return "", utils.UploadFailed(fmt.Sprintf("Please upload an image less than %d", s.uploads.MaxSize), http.StatusBadRequest, nil)
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = mt.Extension()
	}
	name := fmt.Sprintf("photo_%s%s", id.Hex(), ext)

	if err := s.save(name, file.Body); err != nil {
		return "", utils.UploadFailed("Problem with file upload", http.StatusInternalServerError, err)
	}
	if err := s.bootcamps.Update(ctx, store.ByID(id), bson.M{"photo": name}, nil); err != nil {
		return "", fmt.Errorf("record photo of bootcamp %s: %w", rawID, err)
	}
	return name, nil
}

func (s *BootcampService) save(name string, body io.Reader) error {
	if err := os.MkdirAll(s.uploads.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(s.uploads.Dir, name))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}
