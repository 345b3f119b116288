package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/testutil"
	"github.com/templui/folio/internal/validation"
)

func validMessage() validation.MessageInput {
	return validation.MessageInput{
		Name:    "Grace Hopper",
		Email:   "grace@example.com",
		Subject: "Contract work",
		Message: "Are you available in March?",
	}
}

func TestMessageSend(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	in := validMessage()
	in.Message = "<b>Hello</b> <script>alert(1)</script>are you free next month?"
	msg, err := e.messages.Send(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, model.MessageSourcePortfolio, msg.Source)
	assert.False(t, msg.Read)
	assert.NotContains(t, msg.Message, "<")
	assert.Contains(t, msg.Message, "Hello")

	today, err := e.analyticsRepo.ByDate(ctx, model.Day(time.Now()).Format(model.DateLayout))
	require.NoError(t, err)
	assert.Equal(t, int64(1), today.ContactSubmits)
}

func TestMessageSend_Validation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	in := validMessage()
	in.Message = "123456789"
	_, err := e.messages.Send(ctx, in)
	assertInvalid(t, err, "message")

	in.Message = "1234567890"
	_, err = e.messages.Send(ctx, in)
	require.NoError(t, err)

	in = validMessage()
	in.Message = "<p></p><i></i>"
	_, err = e.messages.Send(ctx, in)
	assertInvalid(t, err, "message")

	assert.Equal(t, 1, testutil.CountRows(t, e.db, "contact_messages", ""))
}

func TestMessageInbox(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.CreateAdmin(t, e.db, "admin@example.com")

	first, err := e.messages.Send(ctx, validMessage())
	require.NoError(t, err)
	_, err = e.messages.Send(ctx, validMessage())
	require.NoError(t, err)

	page, err := e.messages.List(ctx, admin, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Unread)

	read, err := e.messages.MarkRead(ctx, admin, first.ID, true)
	require.NoError(t, err)
	assert.True(t, read.Read)

	page, err = e.messages.List(ctx, admin, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Unread)

	require.NoError(t, e.messages.Delete(ctx, admin, first.ID))
	err = e.messages.Delete(ctx, admin, first.ID)
	assertKind(t, err, ErrNotFound)

	_, err = e.messages.MarkRead(ctx, nil, first.ID, true)
	assertKind(t, err, ErrUnauthorized)
}

func TestAnalytics_TrackVisitor(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.analytics.now = func() time.Time { return time.Date(2026, 3, 9, 15, 0, 0, 0, time.Local) }

	browser := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	bot := "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"

	counted, err := e.analytics.TrackVisitor(ctx, browser)
	require.NoError(t, err)
	assert.True(t, counted)

	counted, err = e.analytics.TrackVisitor(ctx, bot)
	require.NoError(t, err)
	assert.False(t, counted)

	counted, err = e.analytics.TrackVisitor(ctx, "")
	require.NoError(t, err)
	assert.False(t, counted)

	require.NoError(t, e.analytics.TrackResumeDownload(ctx))

	row, err := e.analyticsRepo.ByDate(ctx, "2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.TotalVisitors)
	assert.Equal(t, int64(1), row.ResumeDownloads)
	assert.Equal(t, int64(0), row.ContactSubmits)
}

func TestAnalytics_Summary(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.CreateAdmin(t, e.db, "admin@example.com")

	day := time.Date(2026, 3, 8, 23, 59, 0, 0, time.Local)
	e.analytics.now = func() time.Time { return day }
	require.NoError(t, e.analytics.Increment(ctx, model.CounterVisitors))
	require.NoError(t, e.analytics.Increment(ctx, model.CounterVisitors))

	day = time.Date(2026, 3, 9, 0, 1, 0, 0, time.Local)
	require.NoError(t, e.analytics.Increment(ctx, model.CounterVisitors))
	require.NoError(t, e.analytics.Increment(ctx, model.CounterContactSubmits))

	summary, err := e.analytics.Summary(ctx, admin, 7)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-03", summary.From)
	assert.Equal(t, "2026-03-09", summary.To)
	require.Len(t, summary.Days, 2)
	assert.Equal(t, "2026-03-08", summary.Days[0].Date)
	assert.Equal(t, int64(2), summary.Days[0].TotalVisitors)
	assert.Equal(t, int64(3), summary.Totals.Visitors)
	assert.Equal(t, int64(1), summary.Totals.ContactSubmits)
}
