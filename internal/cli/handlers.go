package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/BartekS5/renewables-etl/internal/config"
	"github.com/BartekS5/renewables-etl/internal/etl"
	"github.com/BartekS5/renewables-etl/pkg/database"
	"github.com/BartekS5/renewables-etl/pkg/models"
)

var errInvalidDays = errors.New("--days must be at least 1")

// runOnce builds every component for a single run and releases them when the
// run ends, whatever its outcome.
func (a *app) runOnce(ctx context.Context, opts *RunOptions) (etl.RunSummary, error) {
	cfg := *a.cfg
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if opts.EndpointsFile != "" {
		cfg.EndpointsFile = opts.EndpointsFile
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if err := cfg.Validate(); err != nil {
		return etl.RunSummary{}, err
	}
	if opts.Days < 1 {
		return etl.RunSummary{}, errInvalidDays
	}

	reference := a.now()
	if opts.Date != "" {
		d, err := time.Parse(models.DateLayout, opts.Date)
		if err != nil {
			return etl.RunSummary{}, fmt.Errorf("invalid --date: %w", err)
		}
		reference = d
	}

	endpoints, err := config.LoadEndpoints(cfg.EndpointsFile)
	if err != nil {
		return etl.RunSummary{}, err
	}
	if endpoints, err = config.FilterEndpoints(endpoints, opts.APIs); err != nil {
		return etl.RunSummary{}, err
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	defer client.CloseIdleConnections()

	retry := etl.RetryPolicy{
		MaxAttempts:  cfg.RetryMaxAttempts,
		InitialDelay: cfg.RetryInitial,
		MaxDelay:     cfg.RetryMaxDelay,
		Multiplier:   cfg.RetryMultiplier,
	}
	extractor := etl.NewHTTPExtractor(client, cfg.BaseURL, cfg.APIKey, retry, cfg.BreakerThreshold)

	loaders := []etl.Loader{etl.NewCSVLoader(cfg.OutputDir)}

	if !opts.DryRun && cfg.SQLConnString != "" {
		db, err := database.ConnectSQL(ctx, cfg.SQLConnString)
		if err != nil {
			return etl.RunSummary{}, err
		}
		defer db.Close()

		sqlLoader := etl.NewSQLLoader(db, cfg.SQLTable)
		if err := sqlLoader.EnsureTable(ctx); err != nil {
			return etl.RunSummary{}, err
		}
		loaders = append(loaders, sqlLoader)
	}

	if !opts.DryRun && cfg.MongoConnString != "" {
		mongoClient, err := database.ConnectMongo(ctx, cfg.MongoConnString)
		if err != nil {
			return etl.RunSummary{}, err
		}
		defer database.DisconnectMongo(mongoClient)

		loaders = append(loaders, etl.NewMongoLoader(mongoClient, cfg.MongoDatabase))
	}

	pipeline := etl.NewPipeline(extractor, etl.NewTransformer(cfg.StrictSchema), endpoints, loaders...)
	pipeline.Workers = cfg.Workers
	pipeline.DryRun = opts.DryRun

	return pipeline.Run(ctx, etl.DateRange(reference, opts.Days))
}
