package main

import (
	"context"
	"fmt"

	"hearthbox/internal/db"
	"hearthbox/internal/seed"
	"hearthbox/internal/storage"
	"hearthbox/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/k0kubun/pp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with a demo household and plant a sample document",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		documentStorage := storage.NewS3Storage(s3.NewFromConfig(awsConfig), cfg.StorageBucketName)

		memberRepo := store.NewMemberRepository(pool)

		logrus.Info("Seeding demo household...")
		householdID, members, err := seed.SeedHousehold(ctx, memberRepo)
		if err != nil {
			return fmt.Errorf("failed to seed household: %w", err)
		}

		storageKey, err := seed.PlantDocument(ctx, documentStorage, members[0])
		if err != nil {
			return fmt.Errorf("failed to plant sample document: %w", err)
		}

		pp.Println(householdID, members)
		logrus.WithFields(logrus.Fields{
			"household_id": householdID,
			"bucket":       documentStorage.Bucket(),
			"storage_key":  storageKey,
		}).Info("Household seeded; register the planted document to try analyze")

		return nil
	},
}
