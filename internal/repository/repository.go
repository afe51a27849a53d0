package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tradepilot/tradepilot/internal/database"
)

const uniqueViolationCode = "23505"

// Repositories holds all repository implementations
type Repositories struct {
	Bot      BotRepository
	Backtest BacktestResultRepository
	BlogPost BlogPostRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(pool database.Pool) (*Repositories, error) {
	if pool == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Bot:      NewPostgresBotRepository(pool),
		Backtest: NewPostgresBacktestResultRepository(pool),
		BlogPost: NewPostgresBlogPostRepository(pool),
	}, nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
