package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"birdfinder/internal/config"
	"birdfinder/internal/ebird"
	apphttp "birdfinder/internal/http"
	"birdfinder/internal/repository/sqlite"
	"birdfinder/internal/service"
	"birdfinder/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	generated, err := cfg.EnsureSessionSecret()
	if err != nil {
		logger.Fatalf("generate session secret: %v", err)
	}
	if generated {
		logger.Warn("auth session secret not set, generated a random one; sessions will not survive a restart")
	}
	if cfg.EBird.APIKey == "" {
		logger.Warn("ebird api key not set, sighting lookups will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	repos, err := sqlite.NewRepositories(ctx, db)
	if err != nil {
		logger.Fatalf("init repositories: %v", err)
	}

	userService := service.NewUserService(repos.Users)
	sessionService := service.NewSessionService(repos.Users, repos.Sessions)
	listService := service.NewBirdListService(repos.BirdList)

	var archiveService service.ArchiveService
	if cfg.Storage.Bucket != "" {
		storageSvc, err := buildStorage(ctx, cfg, logger)
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}
		archiveService = service.NewArchiveService(listService, storageSvc, storage.UploadOptions{
			Bucket:    cfg.Storage.Bucket,
			KeyPrefix: cfg.Storage.KeyPrefix,
		})
	} else {
		logger.Info("storage bucket not set, list archiving disabled")
	}

	birds := ebird.NewClient(ebird.Config{
		BaseURL:    cfg.EBird.BaseURL,
		APIKey:     cfg.EBird.APIKey,
		MaxResults: cfg.EBird.MaxResults,
		Timeout:    cfg.EBirdTimeout(),
		Logger:     logger,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		sessionService,
		listService,
		archiveService,
		birds,
		apphttp.NewCookieStore(cfg.Auth.SessionSecret, cfg.SessionMaxAge(), cfg.Server.SecureCookies),
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           apphttp.Protect(router, cfg.Auth.SessionSecret, cfg.Server.SecureCookies, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := serve(ctx, srv, 10*time.Second, logger); err != nil {
		logger.Errorf("http server: %v", err)
		return
	}

	logger.Info("bye")
}

// serve runs srv until ctx is done or the listener fails. On cancellation
// in-flight requests get up to drain to finish.
func serve(ctx context.Context, srv *http.Server, drain time.Duration, logger *logrus.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	return nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving bird lists to s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
