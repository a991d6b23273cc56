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

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("GENAI_BASE_URL", "")
	path := writeConfig(t, `
apis:
  genai:
    base_url: http://genai.local
workers:
  screen-candidate:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://genai.local", cfg.APIs.GenAI.BaseURL)
	assert.Equal(t, 60000, cfg.APIs.GenAI.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.Observability.HTTPAddress)
	assert.Equal(t, 86400, cfg.Classifier.Cache.TTL)
	assert.Equal(t, "us-east-1", cfg.Notifications.AWS.Region)

	wc := GetWorkerConfig(cfg, "screen-candidate")
	assert.True(t, wc.Enabled)
	assert.Equal(t, 5, wc.MaxJobsActive)
	assert.Equal(t, 120000, wc.Timeout)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_GENAI_URL", "http://expanded.local")
	path := writeConfig(t, `
apis:
  genai:
    base_url: ${TEST_GENAI_URL}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://expanded.local", cfg.APIs.GenAI.BaseURL)
}

func TestLoadFromFile_Validation(t *testing.T) {
	t.Setenv("GENAI_BASE_URL", "")

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing genai base url",
			body:    "logging:\n  level: debug\n",
			wantErr: "apis.genai.base_url is required",
		},
		{
			name: "cache without redis",
			body: `
apis:
  genai:
    base_url: http://genai.local
classifier:
  cache:
    enabled: true
`,
			wantErr: "database.redis.address is required",
		},
		{
			name: "escalation without topic",
			body: `
apis:
  genai:
    base_url: http://genai.local
notifications:
  escalation:
    enabled: true
`,
			wantErr: "notifications.escalation.topic_arn is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RECRUITER_TOPIC_ARN", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"screen-candidate": {Enabled: false}}}
	assert.False(t, IsWorkerEnabled(cfg, "screen-candidate"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
	assert.Error(t, RequireBroker(cfg))
}
