package service

import (
	"context"
	"strings"
	"time"

	"github.com/mileusna/useragent"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
)

const maxSummaryDays = 366

// AnalyticsSummary is the admin view of the daily counters.
type AnalyticsSummary struct {
	From   string                      `json:"from"`
	To     string                      `json:"to"`
	Days   []*model.PortfolioAnalytics `json:"days"`
	Totals AnalyticsTotals             `json:"totals"`
}

type AnalyticsTotals struct {
	Visitors        int64 `json:"visitors"`
	ResumeDownloads int64 `json:"resumeDownloads"`
	ContactSubmits  int64 `json:"contactSubmits"`
}

type AnalyticsService struct {
	analyticsRepository repository.AnalyticsRepository
	revalidator         *Revalidator
	now                 func() time.Time
}

func NewAnalyticsService(analyticsRepository repository.AnalyticsRepository, revalidator *Revalidator) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepository: analyticsRepository,
		revalidator:         revalidator,
		now:                 time.Now,
	}
}

// today is the server-local calendar day.
func (s *AnalyticsService) today() string {
	return model.Day(s.now()).Format(model.DateLayout)
}

// Increment adds one to counter on today's row, creating the row on the
// first event of the day.
func (s *AnalyticsService) Increment(ctx context.Context, counter model.Counter) error {
	if err := s.analyticsRepository.Increment(ctx, s.today(), counter); err != nil {
		return upstream("increment "+string(counter), err)
	}
	return s.revalidator.Revalidate(ctx, PathDashboardStats)
}

// TrackVisitor counts a page view unless the user agent belongs to a bot.
func (s *AnalyticsService) TrackVisitor(ctx context.Context, userAgent string) (bool, error) {
	if isBot(userAgent) {
		return false, nil
	}
	if err := s.Increment(ctx, model.CounterVisitors); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AnalyticsService) TrackResumeDownload(ctx context.Context) error {
	return s.Increment(ctx, model.CounterResumeDownloads)
}

func (s *AnalyticsService) TrackContactSubmit(ctx context.Context) error {
	return s.Increment(ctx, model.CounterContactSubmits)
}

func isBot(userAgent string) bool {
	if strings.TrimSpace(userAgent) == "" {
		return true
	}
	return useragent.Parse(userAgent).Bot
}

// Summary returns the last days days of counters, oldest first.
func (s *AnalyticsService) Summary(ctx context.Context, caller *model.User, days int) (*AnalyticsSummary, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.summary(ctx, days)
}

func (s *AnalyticsService) summary(ctx context.Context, days int) (*AnalyticsSummary, error) {
	if days <= 0 {
		days = 30
	}
	if days > maxSummaryDays {
		days = maxSummaryDays
	}

	end := model.Day(s.now())
	summary := &AnalyticsSummary{
		From: end.AddDate(0, 0, -(days - 1)).Format(model.DateLayout),
		To:   end.Format(model.DateLayout),
	}

	rows, err := s.analyticsRepository.Range(ctx, summary.From, summary.To)
	if err != nil {
		return nil, upstream("load analytics", err)
	}

	summary.Days = rows
	for _, row := range rows {
		summary.Totals.Visitors += row.TotalVisitors
		summary.Totals.ResumeDownloads += row.ResumeDownloads
		summary.Totals.ContactSubmits += row.ContactSubmits
	}
	return summary, nil
}
