package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tradepilot/tradepilot/internal/database"
	"github.com/tradepilot/tradepilot/internal/models"
)

const (
	blogPostColumns = `id, title, slug, excerpt, content, category, tags, meta_title,
	meta_description, reading_time_minutes, source_urls, published, published_at, created_at`

	defaultListLimit = 20
	maxListLimit     = 100
)

// PostgresBlogPostRepository implements BlogPostRepository for PostgreSQL
type PostgresBlogPostRepository struct {
	pool database.Pool
}

// NewPostgresBlogPostRepository creates a new blog post repository
func NewPostgresBlogPostRepository(pool database.Pool) BlogPostRepository {
	return &PostgresBlogPostRepository{pool: pool}
}

// Create inserts a blog post. A slug collision returns an error wrapping
// models.ErrDuplicateKey.
func (r *PostgresBlogPostRepository) Create(ctx context.Context, post *models.BlogPost) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.SourceURLs == nil {
		post.SourceURLs = []string{}
	}

	query := `
		INSERT INTO blog_posts (
			id, title, slug, excerpt, content, category, tags, meta_title,
			meta_description, reading_time_minutes, source_urls, published, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		post.ID, post.Title, post.Slug, post.Excerpt, post.Content, string(post.Category), post.Tags, post.MetaTitle,
		post.MetaDescription, post.ReadingTimeMinutes, post.SourceURLs, post.Published, post.PublishedAt,
	).Scan(&post.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("blog post slug %q: %w", post.Slug, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create blog post: %w", err)
	}

	return nil
}

// GetBySlug retrieves a published blog post by slug
func (r *PostgresBlogPostRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + ` FROM blog_posts WHERE slug = $1 AND published`

	post, err := scanBlogPost(r.pool.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}
	return post, nil
}

// ListPublished returns published posts, newest first
func (r *PostgresBlogPostRepository) ListPublished(ctx context.Context, limit int) ([]*models.BlogPost, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT ` + blogPostColumns + ` FROM blog_posts WHERE published ORDER BY published_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query blog posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.BlogPost, 0, limit)
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func scanBlogPost(row pgx.Row) (*models.BlogPost, error) {
	post := &models.BlogPost{}
	var category string
	err := row.Scan(
		&post.ID, &post.Title, &post.Slug, &post.Excerpt, &post.Content, &category, &post.Tags, &post.MetaTitle,
		&post.MetaDescription, &post.ReadingTimeMinutes, &post.SourceURLs, &post.Published, &post.PublishedAt, &post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	post.Category = models.Category(category)
	return post, nil
}
