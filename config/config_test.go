package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"defaults", Config{}, "0.0.0.0:8080"},
		{"explicit", Config{ServerHost: "127.0.0.1", ServerPort: 9000}, "127.0.0.1:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Addr())
		})
	}
}

func TestConfig_AllowedOrigins(t *testing.T) {
	cfg := Config{ServerHost: "0.0.0.0", ServerPort: 8080}
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.AllowedOrigins())

	cfg.ServerAllowedOrigins = " https://a.example , ,https://b.example"
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestIsProduction(t *testing.T) {
	origVersion, origCommit := Version, CommitHash
	defer func() { Version, CommitHash = origVersion, origCommit }()

	Version, CommitHash = "dev", ""
	assert.False(t, IsProduction())
	assert.True(t, IsDevelopment())

	Version, CommitHash = "release", "abc123"
	assert.True(t, IsProduction())
	assert.False(t, IsDevelopment())
}
