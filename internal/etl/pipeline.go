package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BartekS5/renewables-etl/pkg/logger"
	"github.com/BartekS5/renewables-etl/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultWindowDays is the size of the rolling window.
const DefaultWindowDays = 7

type Pipeline struct {
	Extractor   Extractor
	Transformer *Transformer
	Loaders     []Loader
	Endpoints   []models.Endpoint
	// Workers above 1 processes pairs concurrently with per-pair isolation.
	Workers int
	DryRun  bool
}

// Pair is one unit of work: an endpoint for a requested date.
type Pair struct {
	Date     time.Time
	Endpoint models.Endpoint
}

func (p Pair) String() string {
	return fmt.Sprintf("api=%s requested_date=%s", p.Endpoint.Name, models.FormatDate(p.Date))
}

// RunSummary describes the outcome of a run.
type RunSummary struct {
	RunID     string
	Pairs     int
	Succeeded int
	Failed    int
	Rows      int
	Duration  time.Duration
}

func NewPipeline(ext Extractor, tr *Transformer, endpoints []models.Endpoint, loaders ...Loader) *Pipeline {
	return &Pipeline{
		Extractor:   ext,
		Transformer: tr,
		Loaders:     loaders,
		Endpoints:   endpoints,
		Workers:     1,
	}
}

// DateRange returns the days calendar dates before today's date, oldest first:
// [today-days, today-1]. Dates are midnight UTC of the local calendar day.
func DateRange(today time.Time, days int) []time.Time {
	y, m, d := today.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	dates := make([]time.Time, 0, days)
	for i := days; i >= 1; i-- {
		dates = append(dates, base.AddDate(0, 0, -i))
	}
	return dates
}

// Pairs orders work by date, then by endpoint order.
func (p *Pipeline) Pairs(dates []time.Time) []Pair {
	pairs := make([]Pair, 0, len(dates)*len(p.Endpoints))
	for _, d := range dates {
		for _, ep := range p.Endpoints {
			pairs = append(pairs, Pair{Date: d, Endpoint: ep})
		}
	}
	return pairs
}

// Run processes every (date, endpoint) pair. Sequential runs stop at the first
// failure; concurrent runs finish all pairs and return the joined failures.
func (p *Pipeline) Run(ctx context.Context, dates []time.Time) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}
	ctx = WithRunID(ctx, summary.RunID)
	pairs := p.Pairs(dates)
	summary.Pairs = len(pairs)

	logger.Infof("Starting run %s. Pairs: %d, Workers: %d, DryRun: %v", summary.RunID, len(pairs), p.Workers, p.DryRun)
	start := time.Now()

	var err error
	if p.Workers > 1 {
		err = p.runConcurrent(ctx, pairs, &summary)
	} else {
		err = p.runSequential(ctx, pairs, &summary)
	}
	summary.Duration = time.Since(start)

	if err != nil {
		logger.Errorf("Run %s failed after %s: %d succeeded, %d failed", summary.RunID, summary.Duration, summary.Succeeded, summary.Failed)
		return summary, err
	}
	logger.Infof("Run %s finished in %s: %d pair(s), %d row(s)", summary.RunID, summary.Duration, summary.Succeeded, summary.Rows)
	return summary, nil
}

func (p *Pipeline) runSequential(ctx context.Context, pairs []Pair, summary *RunSummary) error {
	for _, pair := range pairs {
		rows, err := p.RunPair(ctx, pair)
		if err != nil {
			summary.Failed++
			return fmt.Errorf("%s: %w", pair, err)
		}
		summary.Succeeded++
		summary.Rows += rows
	}
	return nil
}

func (p *Pipeline) runConcurrent(ctx context.Context, pairs []Pair, summary *RunSummary) error {
	errs := make([]error, len(pairs))
	rows := make([]int, len(pairs))

	var g errgroup.Group
	g.SetLimit(p.Workers)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			n, err := p.RunPair(ctx, pair)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", pair, err)
				return nil
			}
			rows[i] = n
			return nil
		})
	}
	_ = g.Wait()

	for i := range pairs {
		if errs[i] != nil {
			summary.Failed++
			logger.Errorf("%v", errs[i])
			continue
		}
		summary.Succeeded++
		summary.Rows += rows[i]
	}
	return errors.Join(errs...)
}

// RunPair extracts, transforms and loads one pair, each stage finishing before
// the next starts. It returns the number of rows loaded.
func (p *Pipeline) RunPair(ctx context.Context, pair Pair) (int, error) {
	logger.Infof("Processing %s", pair)

	payload, err := p.Extractor.Extract(ctx, pair.Endpoint, pair.Date)
	if err != nil {
		return 0, err
	}

	table, err := p.Transformer.Transform(payload, pair.Endpoint)
	if err != nil {
		return 0, err
	}

	if p.DryRun {
		logger.Infof("[DRY RUN] Would load %d row(s) for %s", table.Len(), pair)
		return table.Len(), nil
	}

	for _, l := range p.Loaders {
		if err := l.Load(ctx, pair.Endpoint, table, pair.Date); err != nil {
			return 0, fmt.Errorf("%s loader: %w", l.Name(), err)
		}
	}

	logger.Infof("Loaded %d row(s) for %s", table.Len(), pair)
	return table.Len(), nil
}
