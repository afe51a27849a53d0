package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevelAndFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLogger(buf, "debug", "production")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = newLogger(buf, "nonsense", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "ñañ...", Truncate("ñañañaña", 3))
	assert.Equal(t, "", Truncate("anything", 0))
	assert.Len(t, []rune(TruncatePayload(strings.Repeat("x", 2000))), maxPayloadLogChars+3)
}

func TestPipelineLoggerRunCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log)

	pl.LogRunCompleted("strategy", "success", 1500*time.Millisecond, logrus.Fields{"bot_id": "bot-1"})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, "strategy", logEntry["pipeline"])
	assert.Equal(t, "success", logEntry["outcome"])
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
	assert.Equal(t, "bot-1", logEntry["bot_id"])
}

func TestPipelineLoggerParseFailureTruncatesRaw(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log)

	raw := strings.Repeat("y", 4000)
	pl.LogParseFailure("blog", errors.New("unexpected end of JSON input"), raw)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, float64(4000), logEntry["raw_length"])
	assert.Less(t, len(logEntry["raw_preview"].(string)), 600)
}

func TestGatewayLoggerUpstreamError(t *testing.T) {
	log, hook := test.NewNullLogger()
	gl := NewGatewayLogger(log, "openai-compatible")

	gl.LogUpstreamError("complete", 502, strings.Repeat("e", 1000))

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "ai_gateway", entry.Data["component"])
	assert.Equal(t, "openai-compatible", entry.Data["upstream"])
	assert.Equal(t, 502, entry.Data["status_code"])
	assert.True(t, strings.HasSuffix(entry.Data["body"].(string), "..."))
}

func TestGatewayLoggerRateLimited(t *testing.T) {
	log, hook := test.NewNullLogger()
	NewGatewayLogger(log, "scraper").LogRateLimited("scrape")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "scrape", hook.LastEntry().Data["operation"])
}

func TestAuditLoggerBotStatusChange(t *testing.T) {
	log, buf := setupTestLogger()
	al := NewAuditLogger(log)

	al.LogBotStatusChange("bot-1", "generating", "error", "AI gateway rate limit exceeded")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "generating", logEntry["old_status"])
	assert.Equal(t, "error", logEntry["new_status"])
	assert.Equal(t, "AI gateway rate limit exceeded", logEntry["reason"])
}

func TestAuditLoggerPostPublished(t *testing.T) {
	log, buf := setupTestLogger()
	al := NewAuditLogger(log)

	publishedAt := time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)
	al.LogPostPublished("post-1", "fed-holds-rates-2026-03-04", "markets", publishedAt)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "fed-holds-rates-2026-03-04", logEntry["slug"])
	assert.Equal(t, "2026-03-04T08:00:00Z", logEntry["published_at"])
}
