package etl

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BartekS5/renewables-etl/pkg/logger"
	"github.com/BartekS5/renewables-etl/pkg/models"
	"github.com/BartekS5/renewables-etl/pkg/utils"
)

// RawTimestampColumn is the source name of the timestamp column. The trailing
// space is part of the upstream format.
const RawTimestampColumn = "Naive_Timestamp "

// ColumnRenames maps exact source column names to canonical names.
// Columns not listed pass through unchanged.
var ColumnRenames = map[string]string{
	RawTimestampColumn:  models.ColumnNaiveTimestamp,
	" Variable":         models.ColumnVariable,
	"value":             models.ColumnValue,
	"Last Modified utc": models.ColumnLastModifiedUTC,
}

type Transformer struct {
	Validator *Validator
	// Strict turns a missing canonical column into ErrSchema instead of a warning.
	Strict bool
}

func NewTransformer(strict bool) *Transformer {
	return &Transformer{
		Validator: NewValidator(),
		Strict:    strict,
	}
}

// Transform parses a payload according to the endpoint's content type and
// renames the known source columns.
func (t *Transformer) Transform(payload string, ep models.Endpoint) (*models.Table, error) {
	var (
		table *models.Table
		err   error
	)

	switch ep.ContentType {
	case models.ContentTypeJSON:
		table, err = transformJSON(payload)
	case models.ContentTypeCSV:
		table, err = transformCSV(payload)
	default:
		return nil, fmt.Errorf("%w: %q (endpoint %s)", ErrUnsupportedFormat, string(ep.ContentType), ep.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("endpoint %s: %w", ep.Name, err)
	}

	table.RenameColumns(ColumnRenames)

	if err := t.Validator.ValidateTable(table); err != nil {
		if t.Strict {
			return nil, fmt.Errorf("endpoint %s: %w", ep.Name, err)
		}
		logger.Warnf("endpoint %s: %v", ep.Name, err)
	}
	return table, nil
}

// transformJSON reads a row-oriented JSON array and converts the raw timestamp
// column from epoch milliseconds to UTC instants.
func transformJSON(payload string) (*models.Table, error) {
	table, err := parseJSONRecords(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	idx := table.ColumnIndex(RawTimestampColumn)
	if idx < 0 {
		return nil, fmt.Errorf("%w: column %q not found", ErrParse, RawTimestampColumn)
	}

	for i, row := range table.Rows {
		if row[idx] == nil {
			continue
		}
		ts, err := utils.EpochMillisToUTC(row[idx])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d column %q: %w", ErrParse, i, RawTimestampColumn, err)
		}
		row[idx] = ts
	}
	return table, nil
}

// transformCSV reads a CSV document with a header row. Values stay text.
func transformCSV(payload string) (*models.Table, error) {
	r := csv.NewReader(strings.NewReader(payload))

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no columns to parse", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	table := models.NewTable(header...)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}

		row := make([]any, len(record))
		for i, v := range record {
			if v == "" {
				continue
			}
			row[i] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// parseJSONRecords decodes an array of objects, keeping column order as first
// seen. Missing keys become nil cells.
func parseJSONRecords(payload string) (*models.Table, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	table := models.NewTable()
	index := map[string]int{}
	var records []map[int]any

	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}

		rec := map[int]any{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("record %d: unexpected token %v", len(records), tok)
			}

			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", len(records), key, err)
			}
			val, err := decodeCell(raw)
			if err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", len(records), key, err)
			}

			col, seen := index[key]
			if !seen {
				col = len(table.Columns)
				index[key] = col
				table.Columns = append(table.Columns, key)
			}
			rec[col] = val
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level array")
	}

	table.Rows = make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(table.Columns))
		for col, v := range rec {
			row[col] = v
		}
		table.Rows[i] = row
	}
	return table, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// decodeCell turns a raw JSON value into a table cell. Nested objects and
// arrays are kept as compact JSON text.
func decodeCell(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty value")
	}

	switch trimmed[0] {
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
