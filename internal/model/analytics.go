package model

import "time"

// DateLayout is the calendar-day key of PortfolioAnalytics rows.
const DateLayout = "2006-01-02"

// Counter names a daily analytics column.
type Counter string

const (
	CounterVisitors        Counter = "total_visitors"
	CounterResumeDownloads Counter = "resume_downloads"
	CounterContactSubmits  Counter = "contact_submits"
)

func (c Counter) Valid() bool {
	switch c {
	case CounterVisitors, CounterResumeDownloads, CounterContactSubmits:
		return true
	}
	return false
}

type PortfolioAnalytics struct {
	ID              string    `db:"id" json:"id"`
	Date            string    `db:"date" json:"date"`
	TotalVisitors   int64     `db:"total_visitors" json:"totalVisitors"`
	ResumeDownloads int64     `db:"resume_downloads" json:"resumeDownloads"`
	ContactSubmits  int64     `db:"contact_submits" json:"contactSubmits"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
