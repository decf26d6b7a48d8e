package etl

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BartekS5/renewables-etl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *models.Table {
	tbl := models.NewTable(append(append([]string{}, models.CanonicalColumns...), "site, north")...)
	tbl.Rows = [][]any{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "solar_mw", "12.5", "2024-01-02", "a"},
		{time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), "solar_mw", nil, "2024-01-02", `say "hi"`},
	}
	return tbl
}

func TestPartitionPath(t *testing.T) {
	got := PartitionPath("output", solarEndpoint, firstJan)
	assert.Equal(t, filepath.Join("output", "api=solar", "requested_date=2024-01-01", "solar.csv"), got)
}

func TestWritePartitionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tbl := sampleTable()

	require.NoError(t, NewCSVLoader(dir).Load(context.Background(), solarEndpoint, tbl, firstJan))

	f, err := os.Open(PartitionPath(dir, solarEndpoint, firstJan))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, tbl.Len()+1)
	assert.Equal(t, tbl.Columns, records[0])
	assert.Equal(t, []string{"2024-01-01 00:00:00+00:00", "solar_mw", "12.5", "2024-01-02", "a"}, records[1])
	assert.Equal(t, []string{"2024-01-01 01:00:00+00:00", "solar_mw", "", "2024-01-02", `say "hi"`}, records[2])
}

func TestWritePartitionIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := PartitionPath(dir, solarEndpoint, firstJan)

	require.NoError(t, WritePartition(solarEndpoint, sampleTable(), dir, firstJan))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, WritePartition(solarEndpoint, sampleTable(), dir, firstJan))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestWritePartitionOverwritesPreviousContent(t *testing.T) {
	dir := t.TempDir()

	big := sampleTable()
	for i := 0; i < 50; i++ {
		big.Rows = append(big.Rows, big.Rows[0])
	}
	require.NoError(t, WritePartition(solarEndpoint, big, dir, firstJan))

	small := models.NewTable("naive_timestamp")
	small.Rows = [][]any{{"x"}}
	require.NoError(t, WritePartition(solarEndpoint, small, dir, firstJan))

	data, err := os.ReadFile(PartitionPath(dir, solarEndpoint, firstJan))
	require.NoError(t, err)
	assert.Equal(t, "naive_timestamp\nx\n", string(data))
}

func TestWritePartitionPersistenceError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o644))

	err := WritePartition(solarEndpoint, sampleTable(), blocker, firstJan)
	require.ErrorIs(t, err, ErrPersistence)
	assert.True(t, strings.Contains(err.Error(), "not-a-dir"))
}
