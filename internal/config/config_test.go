package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BartekS5/renewables-etl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"RENEWABLES_BASE_URL", "RENEWABLES_API_KEY", "OUTPUT_DIR", "RETRY_MAX_ATTEMPTS",
	"RETRY_INITIAL_DELAY", "RETRY_MAX_DELAY", "RETRY_BACKOFF_MULTIPLIER", "HTTP_TIMEOUT",
	"BREAKER_THRESHOLD", "WORKERS", "STRICT_SCHEMA", "ENDPOINTS_FILE", "SQL_CONNECTION_STRING",
	"SQL_TABLE", "MONGO_CONNECTION_STRING", "MONGO_DATABASE", "LOG_FILE", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("RENEWABLES_API_KEY", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, 7, cfg.RetryMaxAttempts)
	assert.Equal(t, time.Duration(0), cfg.RetryInitial)
	assert.Equal(t, 30*time.Second, cfg.RetryMaxDelay)
	assert.InDelta(t, 2.0, cfg.RetryMultiplier, 0.0001)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 20, cfg.BreakerThreshold)
	assert.False(t, cfg.StrictSchema)
	assert.Equal(t, "renewables", cfg.SQLTable)
	assert.Equal(t, "renewables", cfg.MongoDatabase)
	assert.NotContains(t, cfg.String(), "secret")
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RENEWABLES_API_KEY", "secret")
	t.Setenv("RENEWABLES_BASE_URL", "https://api.example.com/")
	t.Setenv("RETRY_MAX_ATTEMPTS", "3")
	t.Setenv("RETRY_INITIAL_DELAY", "250ms")
	t.Setenv("WORKERS", "4")
	t.Setenv("STRICT_SCHEMA", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryInitial)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.StrictSchema)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := map[string]struct {
		env     map[string]string
		wantErr error
	}{
		"missing api key":  {env: map[string]string{}, wantErr: ErrMissingAPIKey},
		"zero attempts":    {env: map[string]string{"RETRY_MAX_ATTEMPTS": "0"}, wantErr: ErrInvalidMaxAttempts},
		"zero workers":     {env: map[string]string{"WORKERS": "0"}, wantErr: ErrInvalidWorkers},
		"small multiplier": {env: map[string]string{"RETRY_BACKOFF_MULTIPLIER": "0.5"}, wantErr: ErrInvalidMultiplier},
		"negative breaker": {env: map[string]string{"BREAKER_THRESHOLD": "-1"}, wantErr: ErrInvalidBreakerLimit},
		"bad duration":     {env: map[string]string{"HTTP_TIMEOUT": "soon"}},
		"bad bool":         {env: map[string]string{"STRICT_SCHEMA": "maybe"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			if name != "missing api key" {
				t.Setenv("RENEWABLES_API_KEY", "secret")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestLoadEndpoints(t *testing.T) {
	eps, err := LoadEndpoints("")
	require.NoError(t, err)
	require.Len(t, eps, 2)
	assert.Equal(t, "solar", eps[0].Name)
	assert.Equal(t, "wind", eps[1].Name)

	dir := t.TempDir()
	path := filepath.Join(dir, "endpoints.yaml")
	content := `endpoints:
  - name: wind
    path: windgen.csv
    content_type: text/csv
  - name: solar
    path: solargen.json
    content_type: application/json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	eps, err = LoadEndpoints(path)
	require.NoError(t, err)
	require.Len(t, eps, 2)
	assert.Equal(t, models.Endpoint{Name: "wind", Path: "windgen.csv", ContentType: models.ContentTypeCSV}, eps[0])
	assert.Equal(t, models.ContentTypeJSON, eps[1].ContentType)
}

func TestLoadEndpointsErrors(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]struct {
		content string
		wantErr error
	}{
		"empty list":   {content: "endpoints: []\n", wantErr: ErrNoEndpoints},
		"missing path": {content: "endpoints:\n  - name: solar\n    content_type: text/csv\n", wantErr: models.ErrValidation},
		"duplicate":    {content: "endpoints:\n  - {name: a, path: a.csv, content_type: text/csv}\n  - {name: a, path: b.csv, content_type: text/csv}\n", wantErr: models.ErrValidation},
		"invalid yaml": {content: "endpoints: [\n"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := LoadEndpoints(path)
			require.Error(t, err)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}

	_, err := LoadEndpoints(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}

func TestFilterEndpoints(t *testing.T) {
	all := DefaultEndpoints()

	got, err := FilterEndpoints(all, nil)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	got, err = FilterEndpoints(all, []string{"wind", "solar"})
	require.NoError(t, err)
	assert.Equal(t, []string{"solar", "wind"}, []string{got[0].Name, got[1].Name})

	_, err = FilterEndpoints(all, []string{"tide"})
	require.Error(t, err)
}

func TestShippedEndpointsFileMatchesDefaults(t *testing.T) {
	eps, err := LoadEndpoints("../../configs/endpoints.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoints(), eps)
}
