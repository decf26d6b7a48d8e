package etl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/BartekS5/renewables-etl/pkg/logger"
	"github.com/BartekS5/renewables-etl/pkg/models"
	"github.com/BartekS5/renewables-etl/pkg/utils"
)

// SQLLoader mirrors the canonical columns of each partition into a SQL Server
// table. Rows of the same (api, requested_date) are replaced in one transaction.
type SQLLoader struct {
	DB    *sql.DB
	Table string
}

func NewSQLLoader(db *sql.DB, table string) *SQLLoader {
	return &SQLLoader{DB: db, Table: table}
}

func (l *SQLLoader) Name() string { return "sql" }

// EnsureTable creates the target table when it does not exist yet.
func (l *SQLLoader) EnsureTable(ctx context.Context) error {
	name := quoteIdent(l.Table)
	query := fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL
CREATE TABLE %s (
	api NVARCHAR(128) NOT NULL,
	requested_date DATE NOT NULL,
	row_num INT NOT NULL,
	run_id NVARCHAR(64) NULL,
	naive_timestamp NVARCHAR(64) NULL,
	variable NVARCHAR(256) NULL,
	value NVARCHAR(64) NULL,
	last_modified_utc NVARCHAR(64) NULL,
	CONSTRAINT %s PRIMARY KEY (api, requested_date, row_num)
)`, strings.ReplaceAll(l.Table, "'", "''"), name, quoteIdent("pk_"+l.Table))

	if _, err := l.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: create table %s: %w", ErrPersistence, l.Table, err)
	}
	return nil
}

func (l *SQLLoader) Load(ctx context.Context, ep models.Endpoint, table *models.Table, date time.Time) error {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrPersistence, err)
	}
	defer tx.Rollback()

	day := models.FormatDate(date)
	name := quoteIdent(l.Table)

	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE api = @p1 AND requested_date = @p2", name)
	res, err := tx.ExecContext(ctx, deleteQuery, ep.Name, day)
	if err != nil {
		return fmt.Errorf("%w: delete %s %s: %w", ErrPersistence, ep.Name, day, err)
	}
	deleted, _ := res.RowsAffected()

	cols := append([]string{"api", "requested_date", "row_num", "run_id"}, models.CanonicalColumns...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
	}
	insertQuery := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	rows := BuildSQLRows(ep, table, date, RunIDFrom(ctx))
	for i, args := range rows {
		if _, err := tx.ExecContext(ctx, insertQuery, args...); err != nil {
			return fmt.Errorf("%w: insert %s %s row %d: %w", ErrPersistence, ep.Name, day, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrPersistence, err)
	}

	logger.Infof("SQL %s: replaced %d row(s) with %d for %s %s", l.Table, deleted, len(rows), ep.Name, day)
	return nil
}

// BuildSQLRows returns insert arguments in column order: api, requested_date,
// row_num, run_id and the canonical columns. Absent columns and empty cells are NULL.
func BuildSQLRows(ep models.Endpoint, table *models.Table, date time.Time, runID string) [][]interface{} {
	day := models.FormatDate(date)

	var run interface{}
	if runID != "" {
		run = runID
	}

	out := make([][]interface{}, 0, table.Len())
	for i := range table.Rows {
		args := []interface{}{ep.Name, day, i, run}
		for _, col := range models.CanonicalColumns {
			v, ok := table.Value(i, col)
			if !ok || v == nil {
				args = append(args, nil)
				continue
			}
			args = append(args, utils.FormatValue(v))
		}
		out = append(out, args)
	}
	return out
}

func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
