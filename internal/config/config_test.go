package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{name: "days", input: "7d", expected: 7 * 24 * time.Hour},
		{name: "hours", input: "12h", expected: 12 * time.Hour},
		{name: "minutes", input: "90m", expected: 90 * time.Minute},
		{name: "zero days", input: "0d", wantErr: true},
		{name: "negative", input: "-1h", wantErr: true},
		{name: "garbage", input: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpiry(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRE", "")
	t.Setenv("GIN_MODE", "")
	t.Setenv("SEQUENCE_BACKEND", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, SequenceBackendPostgres, cfg.SequenceBackend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.DSN(), "sslmode=")
}

func TestLoadRequiresSecretInRelease(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GIN_MODE", "release")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownSequenceBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SEQUENCE_BACKEND", "etcd")

	_, err := Load()
	assert.Error(t, err)
}
