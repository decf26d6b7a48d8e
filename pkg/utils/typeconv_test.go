package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		in   interface{}
		want string
	}{
		"nil":            {in: nil, want: ""},
		"string":         {in: "solar", want: "solar"},
		"json number":    {in: json.Number("12.50"), want: "12.50"},
		"utc timestamp":  {in: ts, want: "2024-01-01 00:00:00+00:00"},
		"millis":         {in: ts.Add(123 * time.Millisecond), want: "2024-01-01 00:00:00.123+00:00"},
		"bool":           {in: true, want: "True"},
		"int":            {in: 42, want: "42"},
		"float":          {in: 1.5, want: "1.5"},
		"fallback slice": {in: []int{1}, want: "[1]"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatValue(tc.in))
		})
	}
}

func TestEpochMillisToUTC(t *testing.T) {
	got, err := EpochMillisToUTC(json.Number("1704067200000"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())

	got, err = EpochMillisToUTC(json.Number("1.7040672e12"))
	require.NoError(t, err)
	assert.Equal(t, int64(1704067200000), got.UnixMilli())

	_, err = EpochMillisToUTC("yesterday")
	require.Error(t, err)

	_, err = EpochMillisToUTC(json.Number("1.5"))
	require.Error(t, err)

	_, err = EpochMillisToUTC(nil)
	require.Error(t, err)
}
