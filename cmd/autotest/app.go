package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/hairizuanbinnoorazman/ui-autotest/artifact"
	"github.com/hairizuanbinnoorazman/ui-autotest/database"
	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
	"github.com/hairizuanbinnoorazman/ui-autotest/merge"
	"github.com/hairizuanbinnoorazman/ui-autotest/scriptgen"
	"github.com/hairizuanbinnoorazman/ui-autotest/storage"
	"github.com/hairizuanbinnoorazman/ui-autotest/testrun"
)

// app wires the components shared by the commands.
type app struct {
	cfg       *Config
	logger    logger.Logger
	storage   storage.BlobStorage
	db        *gorm.DB
	runs      testrun.Store
	assets    testrun.AssetStore
	artifacts *artifact.Manager
}

func newApp(cfg *Config) (*app, error) {
	log := logger.NewLogrusLogger(cfg.Log.Level)

	blobStorage, err := storage.NewBlobStorage(cfg.Storage.Type, cfg.Storage.storageSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	policy, err := merge.ParsePolicy(cfg.Artifacts.MergePolicy)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  log,
		storage: blobStorage,
	}

	var index scriptgen.Store
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		if err := database.RunMigrations(sqlDB, cfg.Database.Driver, log); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}

		a.db = db
		a.runs = testrun.NewMySQLStore(db, log)
		a.assets = testrun.NewMySQLAssetStore(db, log)
		index = scriptgen.NewMySQLStore(db, log)
	}

	a.artifacts = artifact.NewManager(blobStorage, index, log, artifact.Options{
		ScriptsDir: cfg.Artifacts.ScriptsDir,
		ReportsDir: cfg.Artifacts.ReportsDir,
		PromptsDir: cfg.Artifacts.PromptsDir,
		Policy:     policy,
	})
	return a, nil
}

func (a *app) Close() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (a *app) historyEnabled() bool {
	return a.runs != nil
}
