package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORAGE_DRIVER", StorageDriverMemory)
	v.SetDefault("LEDGER_MAX_RETRIES", 5)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"CORS_ALLOWED_ORIGINS": "http://a.example, http://b.example ,",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, 20*time.Millisecond, cfg.LedgerRetryInitialInterval)
	assert.Equal(t, uint64(5), cfg.LedgerMaxRetries)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestFromViper_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"postgres without url", map[string]any{"STORAGE_DRIVER": "postgres"}},
		{"unknown driver", map[string]any{"STORAGE_DRIVER": "sqlite"}},
		{"production without secret", map[string]any{"IS_PRODUCTION": true}},
		{"bad duration", map[string]any{"REPORT_CACHE_TTL": "soon"}},
		{"negative retries", map[string]any{"LEDGER_MAX_RETRIES": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(tt.values))
			assert.Error(t, err)
		})
	}
}
