package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hearthbox/internal/db"
	"hearthbox/internal/extract"
	"hearthbox/internal/notify"
	"hearthbox/internal/pipeline"
	"hearthbox/internal/server"
	"hearthbox/internal/storage"
	"hearthbox/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	s3Client := s3.NewFromConfig(awsConfig)
	documentStorage := storage.NewS3Storage(s3Client, config.StorageBucketName)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	itemRepo := store.NewIntakeItemRepository(pool)
	fieldRepo := store.NewExtractedFieldRepository(pool)
	memberRepo := store.NewMemberRepository(pool)
	assignmentRepo := store.NewAssignmentRepository(pool)

	var extractor extract.Extractor
	switch config.Extractor {
	case "textract":
		extractor = extract.NewTextractExtractor(textract.NewFromConfig(awsConfig), documentStorage.Bucket())
	default:
		extractor = extract.NewHeuristicExtractor(documentStorage)
	}

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if config.RedisURL != "" {
		redisOpts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return err
		}
		notifier = notify.NewRedisNotifier(redis.NewClient(redisOpts), config.EventChannelPrefix)
	}

	intakePipeline := pipeline.New(
		logger,
		itemRepo,
		fieldRepo,
		memberRepo,
		assignmentRepo,
		extractor,
		notifier,
	).WithRemover(documentStorage)

	srv, err := server.New(config, logger, intakePipeline)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
