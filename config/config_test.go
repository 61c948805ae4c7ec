package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://file
nats:
  url: nats://file:4222
observability:
  metrics_address: ":9090"
rating:
  k_factor_new: 40
  position_factors:
    Support: 1.2
scheduler:
  enabled: true
`)
	t.Setenv("NATS_URL", "nats://env:4222")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file", cfg.Postgres.DSN)
	assert.Equal(t, "nats://env:4222", cfg.NATS.URL, "env overrides file")
	assert.Equal(t, ":9090", cfg.Observability.MetricsAddress)
	assert.Equal(t, 40, cfg.Rating.KFactorNew)
	assert.Equal(t, 24, cfg.Rating.KFactorRegular)
	assert.Equal(t, 16, cfg.Rating.KFactorExperienced)
	assert.Equal(t, 1.2, cfg.Rating.PositionFactors["Support"])
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.PollInterval)
	assert.Equal(t, "inhouse-bot", cfg.Observability.ServiceName)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
		verify  func(*testing.T, *Config)
	}{
		{
			name:    "missing database url",
			env:     map[string]string{"NATS_URL": "nats://localhost:4222"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "missing nats url",
			env:     map[string]string{"DATABASE_URL": "postgres://localhost"},
			wantErr: "NATS_URL",
		},
		{
			name: "k factors and sample rate",
			env: map[string]string{
				"DATABASE_URL":      "postgres://localhost",
				"NATS_URL":          "nats://localhost:4222",
				"RATING_K_FACTORS":  "36, 28, 20",
				"TRACE_SAMPLE_RATE": "1",
			},
			verify: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 36, cfg.Rating.KFactorNew)
				assert.Equal(t, 28, cfg.Rating.KFactorRegular)
				assert.Equal(t, 20, cfg.Rating.KFactorExperienced)
				assert.Equal(t, 1.0, cfg.Observability.TraceSampleRate)
			},
		},
		{
			name: "bad k factors",
			env: map[string]string{
				"DATABASE_URL":     "postgres://localhost",
				"NATS_URL":         "nats://localhost:4222",
				"RATING_K_FACTORS": "32,24",
			},
			wantErr: "RATING_K_FACTORS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DATABASE_URL", "NATS_URL", "RATING_K_FACTORS", "TRACE_SAMPLE_RATE"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig(missing)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}
