// Package logger provides pipeline-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for the strategy, blog and chart pipelines.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogStepStarted logs the start of a pipeline step.
func (pl *PipelineLogger) LogStepStarted(pipeline, step string, fields logrus.Fields) {
	pl.WithFields(fields).WithFields(logrus.Fields{
		"pipeline": pipeline,
		"step":     step,
	}).Debug("Pipeline step started")
}

// LogRunCompleted logs a finished pipeline run.
func (pl *PipelineLogger) LogRunCompleted(pipeline, outcome string, duration time.Duration, fields logrus.Fields) {
	pl.WithFields(fields).WithFields(logrus.Fields{
		"pipeline":    pipeline,
		"outcome":     outcome,
		"duration_ms": duration.Milliseconds(),
	}).Info("Pipeline run completed")
}

// LogParseFailure logs model output that could not be parsed. The raw text is truncated.
func (pl *PipelineLogger) LogParseFailure(pipeline string, err error, raw string) {
	pl.WithFields(logrus.Fields{
		"pipeline":    pipeline,
		"error":       err.Error(),
		"raw_preview": TruncatePayload(raw),
		"raw_length":  len(raw),
	}).Warn("Failed to parse model output")
}

// LogFallbackUsed logs that a deterministic fallback replaced model output.
func (pl *PipelineLogger) LogFallbackUsed(pipeline, botID string) {
	pl.WithFields(logrus.Fields{
		"pipeline": pipeline,
		"bot_id":   botID,
	}).Warn("Using fallback result")
}

// LogStepFailed logs a failed pipeline step.
func (pl *PipelineLogger) LogStepFailed(pipeline, step string, err error, fields logrus.Fields) {
	pl.WithFields(fields).WithFields(logrus.Fields{
		"pipeline": pipeline,
		"step":     step,
		"error":    err.Error(),
	}).Error("Pipeline step failed")
}
