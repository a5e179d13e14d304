// Command seeder imports the sample bootcamps and courses, or removes every
// bootcamp and course.
//
//	seeder -i [-data _data]
//	seeder -d
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"bootcamp-api/config"
	"bootcamp-api/models"
	"bootcamp-api/services"
	"bootcamp-api/store"
	"bootcamp-api/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	importData := flag.Bool("i", false, "import the seed data")
	deleteData := flag.Bool("d", false, "delete every bootcamp and course")
	dataDir := flag.String("data", "_data", "directory holding bootcamps.json and courses.json")
	flag.Parse()

	if *importData == *deleteData {
		fmt.Fprintln(os.Stderr, "usage: seeder -i | -d [-data dir]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := utils.NewLogger(cfg.Env)
	ctx := context.Background()

	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect")
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	bootcamps := store.NewMongo(db, store.Bootcamps)
	courses := store.NewMongo(db, store.Courses)

	if *deleteData {
		if err := destroy(ctx, bootcamps, courses); err != nil {
			logger.Fatal().Err(err).Msg("delete data")
		}
		logger.Info().Msg("data destroyed")
		return
	}

	if err := store.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("ensure indexes")
	}
	geocoder, err := utils.NewGeocoder(cfg.GeocoderProvider, cfg.GeocoderAPIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("geocoder")
	}
	validate := utils.NewValidator(cfg.RatingMin, cfg.RatingMax)
	bootcampService := services.NewBootcampService(bootcamps, courses, geocoder, validate,
		services.UploadConfig{Dir: cfg.FileUploadPath, MaxSize: cfg.MaxFileUpload}, logger)
	courseService := services.NewCourseService(courses, bootcamps, validate, logger, cfg.RequestTimeout)

	n, m, err := seed(ctx, *dataDir, bootcampService, courseService)
	if err != nil {
		logger.Fatal().Err(err).Msg("import data")
	}
	logger.Info().Int("bootcamps", n).Int("courses", m).Msg("data imported")
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// seed creates the bootcamps with their ids kept, then their courses, and waits
// for the average costs to settle.
func seed(ctx context.Context, dir string, bootcamps *services.BootcampService, courses *services.CourseService) (int, int, error) {
	var bs []models.Bootcamp
	if err := readJSON(filepath.Join(dir, "bootcamps.json"), &bs); err != nil {
		return 0, 0, err
	}
	var cs []models.Course
	if err := readJSON(filepath.Join(dir, "courses.json"), &cs); err != nil {
		return 0, 0, err
	}

	for _, b := range bs {
		if _, err := bootcamps.Import(ctx, b); err != nil {
			return 0, 0, fmt.Errorf("bootcamp %q: %w", b.Name, err)
		}
	}
	for i, c := range cs {
		if _, err := courses.Create(ctx, c.Bootcamp.Hex(), c); err != nil {
			return len(bs), i, fmt.Errorf("course %q: %w", c.Title, err)
		}
	}
	courses.Wait()
	return len(bs), len(cs), nil
}

func destroy(ctx context.Context, colls ...store.Collection) error {
	for _, c := range colls {
		if _, err := c.Delete(ctx, bson.M{}); err != nil {
			return err
		}
	}
	return nil
}
