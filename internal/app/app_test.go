package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
app:
  name: tradepilot
  environment: development
  log_level: debug
database:
  password: postgres
ai_gateway:
  base_url: https://ai.gateway.local/v1
  api_key: gw-key
scraper:
  base_url: https://scraper.local
  api_key: sc-key
blog:
  sources:
    - https://www.reuters.com/markets/
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("AWS_SECRETS_ENABLED", "")

	cfg, err := LoadConfig(context.Background(), writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "gw-key", cfg.AIGateway.APIKey)
	assert.Equal(t, "paper", cfg.Strategy.DefaultBroker)
	assert.Equal(t, 8000, cfg.Blog.MaxContentChars)
}

func TestLoadConfigRejectsMissingKeys(t *testing.T) {
	t.Setenv("AWS_SECRETS_ENABLED", "")
	t.Setenv("TRADEPILOT_AI_GATEWAY_API_KEY", "")

	_, err := LoadConfig(context.Background(), writeConfig(t, "app:\n  name: tradepilot\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfigRequiresAWSSettings(t *testing.T) {
	t.Setenv("AWS_SECRETS_ENABLED", "true")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_SECRET_NAME", "")

	_, err := LoadConfig(context.Background(), writeConfig(t, testConfig))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AWS_REGION")
}
