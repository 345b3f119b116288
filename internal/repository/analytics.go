package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/folio/internal/model"
)

var ErrAnalyticsNotFound = errors.New("analytics not found")

type AnalyticsRepository interface {
	Increment(ctx context.Context, date string, counter model.Counter) error
	ByDate(ctx context.Context, date string) (*model.PortfolioAnalytics, error)
	Range(ctx context.Context, from, to string) ([]*model.PortfolioAnalytics, error)
}

type analyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// Increment adds one to counter on the row for date, creating the row with
// that counter at 1 when it does not exist. The add happens in the database
// so concurrent increments are never lost.
func (r *analyticsRepository) Increment(ctx context.Context, date string, counter model.Counter) error {
	if !counter.Valid() {
		return fmt.Errorf("unknown analytics counter %q", counter)
	}

	col := string(counter)
	query := fmt.Sprintf(`INSERT INTO portfolio_analytics (id, date, %[1]s, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (date) DO UPDATE SET
			%[1]s = portfolio_analytics.%[1]s + 1,
			updated_at = excluded.updated_at`, col)

	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), date, time.Now().UTC())
	return err
}

func (r *analyticsRepository) ByDate(ctx context.Context, date string) (*model.PortfolioAnalytics, error) {
	row := &model.PortfolioAnalytics{}
	err := r.db.GetContext(ctx, row, `SELECT * FROM portfolio_analytics WHERE date = $1`, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalyticsNotFound
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Range returns the rows between from and to inclusive, oldest first.
// Dates use model.DateLayout so lexical order is calendar order.
func (r *analyticsRepository) Range(ctx context.Context, from, to string) ([]*model.PortfolioAnalytics, error) {
	rows := []*model.PortfolioAnalytics{}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM portfolio_analytics WHERE date >= $1 AND date <= $2 ORDER BY date ASC`, from, to)
	return rows, err
}
