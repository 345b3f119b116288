package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/testutil"
)

func TestAnalyticsRepository_IncrementPerDay(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalyticsRepository(testutil.TestDB(t))

	require.NoError(t, repo.Increment(ctx, "2026-03-01", model.CounterResumeDownloads))
	require.NoError(t, repo.Increment(ctx, "2026-03-01", model.CounterResumeDownloads))

	day1, err := repo.ByDate(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.EqualValues(t, 2, day1.ResumeDownloads)
	assert.EqualValues(t, 0, day1.TotalVisitors)
	assert.EqualValues(t, 0, day1.ContactSubmits)

	require.NoError(t, repo.Increment(ctx, "2026-03-02", model.CounterResumeDownloads))

	day2, err := repo.ByDate(ctx, "2026-03-02")
	require.NoError(t, err)
	assert.EqualValues(t, 1, day2.ResumeDownloads)

	day1Again, err := repo.ByDate(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.EqualValues(t, 2, day1Again.ResumeDownloads)

	rows, err := repo.Range(ctx, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-01", rows[0].Date)
}

func TestAnalyticsRepository_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalyticsRepository(testutil.TestDB(t))

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Increment(ctx, "2026-04-01", model.CounterVisitors)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	row, err := repo.ByDate(ctx, "2026-04-01")
	require.NoError(t, err)
	assert.EqualValues(t, workers, row.TotalVisitors)
}

func TestAnalyticsRepository_UnknownCounter(t *testing.T) {
	repo := NewAnalyticsRepository(testutil.TestDB(t))
	err := repo.Increment(context.Background(), "2026-04-01", model.Counter("id"))
	assert.Error(t, err)
}
