package etl

import (
	"context"
	"time"

	"github.com/BartekS5/renewables-etl/pkg/models"
)

type Extractor interface {
	Extract(ctx context.Context, ep models.Endpoint, date time.Time) (string, error)
}

type Loader interface {
	Name() string
	Load(ctx context.Context, ep models.Endpoint, table *models.Table, date time.Time) error
}

type runIDKey struct{}

// WithRunID attaches the run identifier to ctx so sinks can tag what they write.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the run identifier stored by WithRunID, or "".
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
