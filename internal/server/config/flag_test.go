package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{name: "all flags", args: []string{
			"-a", "127.0.0.1:8080", "-g", "127.0.0.1:9090", "-d", "db", "-storage", "memory",
			"-t", "15m", "-r", "48h", "-b", "bucket", "-e", "http://endpoint", "-u", "/tmp/up",
			"-log-level", "debug", "-log-format", "zerolog",
		},
			expected: &Config{
				HTTPAddr:        "127.0.0.1:8080",
				GRPCAddr:        "127.0.0.1:9090",
				DatabaseDSN:     "db",
				StorageBackend:  "memory",
				AccessTokenTTL:  15 * time.Minute,
				RefreshTokenTTL: 48 * time.Hour,
				S3Bucket:        "bucket",
				S3Endpoint:      "http://endpoint",
				UploadDir:       "/tmp/up",
				LogLevel:        "debug",
				LogFormat:       "zerolog",
			}},
		{name: "unknown flags are ignored", args: []string{"-x", "1", "-a", ":1", "--verbose"},
			expected: &Config{HTTPAddr: ":1"}},
		{name: "bad duration", args: []string{"-t", "soon"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
