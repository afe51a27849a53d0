package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline names used as label values.
const (
	PipelineStrategy = "strategy"
	PipelineBlog     = "blog"
	PipelineChart    = "chart"
)

// Pipeline outcomes used as label values.
const (
	OutcomeSuccess     = "success"
	OutcomeRateLimited = "rate_limited"
	OutcomeFailed      = "failed"
	OutcomeDegraded    = "degraded"
	OutcomeFallback    = "fallback"
)

var (
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline runs by outcome",
	}, []string{"pipeline", "outcome"})

	PipelineDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of pipeline runs in seconds",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	}, []string{"pipeline"})

	ParseFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_parse_failures_total",
		Help:      "Total number of model replies that could not be parsed as JSON",
	}, []string{"pipeline"})

	FallbackResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "strategy_fallback_results_total",
		Help:      "Total number of strategy runs that used the synthesized fallback result",
	})

	SlugConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blog_slug_conflicts_total",
		Help:      "Total number of blog slug collisions",
	})

	BotStatusTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bot_status_transitions_total",
		Help:      "Total number of bot status changes by target status",
	}, []string{"status"})

	BlogPostsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blog_posts_published_total",
		Help:      "Total number of published blog posts by category",
	}, []string{"category"})
)

// RecordPipelineRun records a finished pipeline run.
func RecordPipelineRun(pipeline, outcome string, durationSeconds float64) {
	PipelineRunsTotal.WithLabelValues(pipeline, outcome).Inc()
	PipelineDuration.WithLabelValues(pipeline).Observe(durationSeconds)
}

// RecordParseFailure records an unparseable model reply.
func RecordParseFailure(pipeline string) {
	ParseFailuresTotal.WithLabelValues(pipeline).Inc()
}

// RecordFallbackResult records use of the strategy fallback.
func RecordFallbackResult() {
	FallbackResultsTotal.Inc()
}

// RecordSlugConflict records a blog slug collision.
func RecordSlugConflict() {
	SlugConflictsTotal.Inc()
}

// RecordBotStatus records a bot moving into status.
func RecordBotStatus(status string) {
	BotStatusTransitionsTotal.WithLabelValues(status).Inc()
}

// RecordPostPublished records a published blog post.
func RecordPostPublished(category string) {
	BlogPostsPublishedTotal.WithLabelValues(category).Inc()
}
