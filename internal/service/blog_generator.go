package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tradepilot/tradepilot/internal/config"
	"github.com/tradepilot/tradepilot/internal/llm"
	"github.com/tradepilot/tradepilot/internal/logger"
	"github.com/tradepilot/tradepilot/internal/metrics"
	"github.com/tradepilot/tradepilot/internal/models"
	"github.com/tradepilot/tradepilot/internal/parser"
	"github.com/tradepilot/tradepilot/internal/repository"
	"github.com/tradepilot/tradepilot/internal/scraper"
)

const wordsPerMinute = 200

// articleReply is the JSON document the model is asked to return.
type articleReply struct {
	Title              string           `json:"title"`
	Slug               string           `json:"slug"`
	Excerpt            string           `json:"excerpt"`
	Content            string           `json:"content"`
	Category           string           `json:"category"`
	Tags               []string         `json:"tags"`
	MetaTitle          string           `json:"meta_title"`
	MetaDescription    string           `json:"meta_description"`
	ReadingTimeMinutes models.FlexFloat `json:"reading_time_minutes"`
}

// BlogGenerator scrapes a news source and publishes an AI-written article
type BlogGenerator struct {
	scraper scraper.Scraper
	gateway Gateway
	posts   repository.BlogPostRepository
	cfg     config.BlogConfig
	logger  *logger.PipelineLogger
	audit   *logger.AuditLogger

	now    func() time.Time
	random func() float64
	suffix func() string
}

// NewBlogGenerator creates a new blog generator
func NewBlogGenerator(
	s scraper.Scraper,
	gateway Gateway,
	posts repository.BlogPostRepository,
	cfg config.BlogConfig,
	log *logrus.Logger,
) *BlogGenerator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = scraper.DefaultSources
	}
	return &BlogGenerator{
		scraper: s,
		gateway: gateway,
		posts:   posts,
		cfg:     cfg,
		logger:  logger.NewPipelineLogger(log),
		audit:   logger.NewAuditLogger(log),
		now:     time.Now,
		random:  rand.Float64,
		suffix:  randomSlugSuffix,
	}
}

// Generate produces and publishes one article. topic is optional.
func (g *BlogGenerator) Generate(ctx context.Context, topic string) (*models.BlogPost, error) {
	start := g.now()
	outcome := metrics.OutcomeFailed
	defer func() {
		metrics.RecordPipelineRun(metrics.PipelineBlog, outcome, g.now().Sub(start).Seconds())
	}()

	sourceURL := scraper.PickSource(topic, g.cfg.Sources, g.cfg.DefaultSourceURL, g.random())
	fields := logrus.Fields{"source_url": sourceURL, "topic": topic}

	g.logger.LogStepStarted(metrics.PipelineBlog, "scrape", fields)
	page, err := g.scraper.Scrape(ctx, sourceURL)
	if err != nil {
		g.logger.LogStepFailed(metrics.PipelineBlog, "scrape", err, fields)
		if IsRateLimited(err) {
			outcome = metrics.OutcomeRateLimited
		}
		return nil, fmt.Errorf("failed to scrape %s: %w", sourceURL, err)
	}

	content := cutRunes(page.Markdown, g.cfg.MaxContentChars)

	g.logger.LogStepStarted(metrics.PipelineBlog, "generate", fields)
	reply, err := g.gateway.Complete(ctx, llm.CompletionRequest{
		Operation: metrics.PipelineBlog,
		System:    blogSystemPrompt,
		Messages:  []models.ChatMessage{{Role: "user", Content: buildBlogPrompt(topic, sourceURL, content)}},
	})
	if err != nil {
		g.logger.LogStepFailed(metrics.PipelineBlog, "generate", err, fields)
		if IsRateLimited(err) {
			outcome = metrics.OutcomeRateLimited
		}
		return nil, fmt.Errorf("failed to generate article: %w", err)
	}

	var article articleReply
	if err := parser.DecodeStripped(reply, &article); err != nil {
		metrics.RecordParseFailure(metrics.PipelineBlog)
		g.logger.LogParseFailure(metrics.PipelineBlog, err, reply)
		return nil, fmt.Errorf("failed to parse generated article: %w", err)
	}
	if strings.TrimSpace(article.Title) == "" || strings.TrimSpace(article.Content) == "" {
		g.logger.LogParseFailure(metrics.PipelineBlog, ErrIncompleteArticle, reply)
		return nil, ErrIncompleteArticle
	}

	now := g.now()
	post := g.buildPost(&article, sourceURL, now)

	if err := g.publish(ctx, post); err != nil {
		g.logger.LogStepFailed(metrics.PipelineBlog, "publish", err, fields)
		return nil, err
	}

	metrics.RecordPostPublished(string(post.Category))
	g.audit.LogPostPublished(post.ID.String(), post.Slug, string(post.Category), now)

	outcome = metrics.OutcomeSuccess
	g.logger.LogRunCompleted(metrics.PipelineBlog, outcome, g.now().Sub(start), logrus.Fields{
		"slug":     post.Slug,
		"category": post.Category,
	})
	return post, nil
}

func (g *BlogGenerator) buildPost(a *articleReply, sourceURL string, now time.Time) *models.BlogPost {
	publishedAt := now.UTC()

	readingTime := int(math.Round(a.ReadingTimeMinutes.Float64()))
	if readingTime <= 0 {
		readingTime = EstimateReadingTime(a.Content)
	}

	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return &models.BlogPost{
		Title:              strings.TrimSpace(a.Title),
		Slug:               PostSlug(a.Slug, a.Title, now),
		Excerpt:            strings.TrimSpace(a.Excerpt),
		Content:            a.Content,
		Category:           models.NormalizeCategory(a.Category),
		Tags:               tags,
		MetaTitle:          firstNonEmpty(a.MetaTitle, a.Title),
		MetaDescription:    firstNonEmpty(a.MetaDescription, a.Excerpt),
		ReadingTimeMinutes: readingTime,
		SourceURLs:         []string{sourceURL},
		Published:          true,
		PublishedAt:        &publishedAt,
	}
}

// publish inserts the post, retrying once with a random suffix on a slug collision.
func (g *BlogGenerator) publish(ctx context.Context, post *models.BlogPost) error {
	err := g.posts.Create(ctx, post)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrDuplicateKey) {
		return fmt.Errorf("failed to store blog post: %w", err)
	}

	retrySlug := post.Slug + "-" + g.suffix()
	metrics.RecordSlugConflict()
	g.audit.LogSlugConflict(post.Slug, retrySlug)

	post.Slug = retrySlug
	if err := g.posts.Create(ctx, post); err != nil {
		return fmt.Errorf("failed to store blog post after slug retry: %w", err)
	}
	return nil
}

// EstimateReadingTime returns whole minutes at 200 words per minute, at least one.
func EstimateReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

func cutRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}
