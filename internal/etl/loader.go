package etl

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BartekS5/renewables-etl/pkg/models"
	"github.com/BartekS5/renewables-etl/pkg/utils"
)

// CSVLoader writes each table to a Hive-style partitioned tree under OutputDir.
type CSVLoader struct {
	OutputDir string
}

func NewCSVLoader(outputDir string) *CSVLoader {
	return &CSVLoader{OutputDir: outputDir}
}

func (l *CSVLoader) Name() string { return "csv" }

func (l *CSVLoader) Load(_ context.Context, ep models.Endpoint, table *models.Table, date time.Time) error {
	return WritePartition(ep, table, l.OutputDir, date)
}

// PartitionDir returns output_dir/api=<name>/requested_date=<date>.
func PartitionDir(outputDir string, ep models.Endpoint, date time.Time) string {
	return filepath.Join(outputDir, "api="+ep.Name, "requested_date="+models.FormatDate(date))
}

// PartitionPath returns the CSV file path of one partition.
func PartitionPath(outputDir string, ep models.Endpoint, date time.Time) string {
	return filepath.Join(PartitionDir(outputDir, ep, date), ep.Name+".csv")
}

// WritePartition serializes table as CSV with a header row and no index column,
// replacing any previous file for the same partition. A failure may leave a
// truncated file behind.
func WritePartition(ep models.Endpoint, table *models.Table, outputDir string, date time.Time) error {
	dir := PartitionDir(outputDir, ep, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrPersistence, dir, err)
	}

	path := PartitionPath(outputDir, ep, date)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrPersistence, path, err)
	}

	if err := writeCSV(f, table); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrPersistence, path, err)
	}
	return nil
}

func writeCSV(f *os.File, table *models.Table) error {
	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return err
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = utils.FormatValue(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
