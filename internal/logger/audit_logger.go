// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger records persisted state changes.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBotCreated logs the creation of a strategy bot.
func (al *AuditLogger) LogBotCreated(botID, strategyID, userID string) {
	al.WithFields(logrus.Fields{
		"bot_id":      botID,
		"strategy_id": strategyID,
		"user_id":     userID,
	}).Info("Strategy bot created")
}

// LogBotStatusChange logs a bot status transition.
func (al *AuditLogger) LogBotStatusChange(botID, oldStatus, newStatus, reason string) {
	entry := al.WithFields(logrus.Fields{
		"bot_id":     botID,
		"old_status": oldStatus,
		"new_status": newStatus,
	})
	if reason != "" {
		entry = entry.WithField("reason", reason)
	}
	entry.Info("Bot status changed")
}

// LogBacktestStored logs a stored backtest result.
func (al *AuditLogger) LogBacktestStored(backtestID, botID string, totalTrades int, winRate float64) {
	al.WithFields(logrus.Fields{
		"backtest_id":  backtestID,
		"bot_id":       botID,
		"total_trades": totalTrades,
		"win_rate":     winRate,
	}).Info("Backtest result stored")
}

// LogPostPublished logs a published blog post.
func (al *AuditLogger) LogPostPublished(postID, slug, category string, publishedAt time.Time) {
	al.WithFields(logrus.Fields{
		"post_id":      postID,
		"slug":         slug,
		"category":     category,
		"published_at": publishedAt.UTC().Format(time.RFC3339),
	}).Info("Blog post published")
}

// LogSlugConflict logs a slug collision and the replacement slug.
func (al *AuditLogger) LogSlugConflict(slug, retrySlug string) {
	al.WithFields(logrus.Fields{
		"slug":       slug,
		"retry_slug": retrySlug,
	}).Warn("Slug already exists, retrying with suffix")
}
