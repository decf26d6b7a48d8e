package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BartekS5/renewables-etl/pkg/logger"
	"github.com/BartekS5/renewables-etl/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoLoader mirrors each partition into a collection named after the endpoint.
// Documents of the same (api, requested_date) are replaced on every load.
type MongoLoader struct {
	Client   *mongo.Client
	Database string
	Timeout  time.Duration
}

func NewMongoLoader(client *mongo.Client, database string) *MongoLoader {
	return &MongoLoader{
		Client:   client,
		Database: database,
		Timeout:  30 * time.Second,
	}
}

func (m *MongoLoader) Name() string { return "mongo" }

func (m *MongoLoader) Load(ctx context.Context, ep models.Endpoint, table *models.Table, date time.Time) error {
	coll := m.Client.Database(m.Database).Collection(ep.Name)

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	filter := bson.M{"api": ep.Name, "requested_date": models.FormatDate(date)}
	del, err := coll.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("%w: mongo delete %s: %w", ErrPersistence, ep.Name, err)
	}

	docs := BuildMongoDocuments(ep, table, date, RunIDFrom(ctx))
	if len(docs) > 0 {
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("%w: mongo insert %s: %w", ErrPersistence, ep.Name, err)
		}
	}

	logger.Infof("Mongo %s.%s: replaced %d document(s) with %d", m.Database, ep.Name, del.DeletedCount, len(docs))
	return nil
}

// BuildMongoDocuments turns table rows into ordered documents tagged with the
// partition keys, the row number and the run id.
func BuildMongoDocuments(ep models.Endpoint, table *models.Table, date time.Time, runID string) []interface{} {
	day := models.FormatDate(date)
	docs := make([]interface{}, 0, table.Len())

	for i, row := range table.Rows {
		doc := bson.D{
			{Key: "api", Value: ep.Name},
			{Key: "requested_date", Value: day},
			{Key: "row", Value: i},
		}
		if runID != "" {
			doc = append(doc, bson.E{Key: "run_id", Value: runID})
		}
		for c, col := range table.Columns {
			var v any
			if c < len(row) {
				v = row[c]
			}
			doc = append(doc, bson.E{Key: col, Value: mongoValue(v)})
		}
		docs = append(docs, doc)
	}
	return docs
}

// mongoValue maps table cells to BSON-friendly values. Timestamps stay dates,
// JSON numbers become int64 or float64.
func mongoValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
