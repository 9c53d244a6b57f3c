package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"HOST", "PORT", "LUMIS_DB_PATH", "REALMS_PATH", "ALLOWED_ORIGINS", "LOCAL_ONLY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "lumis.db", cfg.DBPath)
	assert.Empty(t, cfg.RealmsPath)
	assert.True(t, cfg.LocalOnly)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LUMIS_DB_PATH", "/tmp/x.db")
	t.Setenv("ALLOWED_ORIGINS", "https://lumis.example,https://mirror.example")
	t.Setenv("LOCAL_ONLY", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, []string{"https://lumis.example", "https://mirror.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.LocalOnly)
}

func TestLoadConfigRejectsBadBool(t *testing.T) {
	t.Setenv("LOCAL_ONLY", "maybe")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestAllowOrigin(t *testing.T) {
	cfg := Config{AllowedOrigins: []string{"https://lumis.example"}}
	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "http://localhost:5173", want: true},
		{origin: "http://127.0.0.1:3000", want: true},
		{origin: "https://lumis.example", want: true},
		{origin: "https://evil.example", want: false},
		{origin: "http://localhost.evil.example", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.AllowOrigin(tt.origin))
		})
	}
}
