// Package service implements the strategy, blog and chart pipelines.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/tradepilot/tradepilot/internal/llm"
	"github.com/tradepilot/tradepilot/internal/scraper"
)

// Gateway is the chat-completion capability the pipelines depend on
type Gateway interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
	Stream(ctx context.Context, req llm.CompletionRequest) (io.ReadCloser, error)
}

var (
	// ErrInvalidChartRequest indicates a malformed chart prediction request
	ErrInvalidChartRequest = errors.New("invalid chart request")

	// ErrIncompleteArticle indicates the model reply lacked a title or body
	ErrIncompleteArticle = errors.New("generated article is missing title or content")
)

// statusWriteTimeout bounds status writes made after the request context is gone
const statusWriteTimeout = 5 * time.Second

// PipelineError is a strategy pipeline failure that happened after the bot row was created
type PipelineError struct {
	BotID uuid.UUID
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("strategy bot %s: %v", e.BotID, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err came from an upstream 429
func IsRateLimited(err error) bool {
	return errors.Is(err, llm.ErrRateLimited) || errors.Is(err, scraper.ErrRateLimited)
}

// detachedContext keeps request values but ignores the caller's cancellation.
func detachedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
}
