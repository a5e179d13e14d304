// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bootcamp-api/config"
	"bootcamp-api/controllers"
	"bootcamp-api/routes"
	"bootcamp-api/services"
	"bootcamp-api/store"
	"bootcamp-api/utils"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := utils.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Connect to MongoDB
	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("disconnect mongodb")
		}
	}()

	db := client.Database(cfg.MongoDB)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	bootcamps := store.NewMongo(db, store.Bootcamps)
	courses := store.NewMongo(db, store.Courses)
	users := store.NewMongo(db, store.Users)

	geocoder, err := utils.NewGeocoder(cfg.GeocoderProvider, cfg.GeocoderAPIKey)
	if err != nil {
		return err
	}
	if cfg.RedisURL != "" {
		cache, err := utils.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer cache.Close()
		geocoder = utils.NewCachedGeocoder(geocoder, cache, cfg.GeocoderCacheTTL, logger)
	}

	var mailer services.WelcomeMailer
	if es := utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender); es != nil {
		mailer = es
	}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpire)
	validate := utils.NewValidator(cfg.RatingMin, cfg.RatingMax)

	bootcampService := services.NewBootcampService(bootcamps, courses, geocoder, validate,
		services.UploadConfig{Dir: cfg.FileUploadPath, MaxSize: cfg.MaxFileUpload}, logger)
	courseService := services.NewCourseService(courses, bootcamps, validate, logger, cfg.RequestTimeout)
	userService := services.NewUserService(users, validate, tokens, mailer, logger)

	handler := routes.NewHandler(routes.Controllers{
		Bootcamps: controllers.NewBootcampController(bootcampService, cfg.RequestTimeout, cfg.MaxFileUpload),
		Courses:   controllers.NewCourseController(courseService, cfg.RequestTimeout),
		Users:     controllers.NewUserController(userService, cfg.RequestTimeout),
		Health:    &controllers.HealthController{Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) }},
		Tokens:    tokens,
		UploadDir: cfg.FileUploadPath,
	}, logger, cfg.IsDevelopment())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	courseService.Wait()
	userService.Wait()
	return nil
}
