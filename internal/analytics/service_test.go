package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-cms/vitrine/internal/analytics"
)

type countingRepo struct {
	visits []analytics.Visit
	loads  int
}

func (c *countingRepo) InsertVisit(ctx context.Context, v analytics.Visit) error {
	c.visits = append(c.visits, v)
	return nil
}

func (c *countingRepo) CountVisits(ctx context.Context, rng analytics.StatsRange) (int64, error) {
	c.loads++
	return int64(len(c.visits)), nil
}

func (c *countingRepo) CountUniqueVisitors(ctx context.Context, rng analytics.StatsRange) (int64, error) {
	seen := map[string]struct{}{}
	for _, v := range c.visits {
		if v.VisitorID != "" {
			seen[v.VisitorID] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (c *countingRepo) VisitsPerDay(ctx context.Context, rng analytics.StatsRange) ([]analytics.DailyCount, error) {
	return []analytics.DailyCount{{Day: "2026-08-27", Count: int64(len(c.visits))}}, nil
}

func (c *countingRepo) TopPages(ctx context.Context, rng analytics.StatsRange, limit int) ([]analytics.PageCount, error) {
	return []analytics.PageCount{{Path: "/", Count: int64(len(c.visits))}}, nil
}

func newService(t *testing.T) (*analytics.Service, *countingRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := &countingRepo{}
	return analytics.NewService(repo, analytics.NewCache(client, time.Minute), nil), repo
}

func testRange() analytics.StatsRange {
	now := time.Now()
	return analytics.StatsRange{From: now.AddDate(0, 0, -7), To: now}
}

func TestStatsAreCached(t *testing.T) {
	service, repo := newService(t)
	repo.visits = []analytics.Visit{{Path: "/", VisitorID: "v1"}}

	first, err := service.GetStats(context.Background(), testRange())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TotalVisits)

	_, err = service.GetStats(context.Background(), testRange())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.loads)
}

func TestCaptureInvalidatesStats(t *testing.T) {
	service, repo := newService(t)

	_, err := service.GetStats(context.Background(), testRange())
	require.NoError(t, err)

	require.NoError(t, service.Capture(context.Background(), analytics.Visit{Path: "/contact", VisitorID: "v1"}))
	require.Len(t, repo.visits, 1)

	stats, err := service.GetStats(context.Background(), testRange())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVisits)
	assert.Equal(t, 2, repo.loads)
}

func TestStatsWithoutCacheClient(t *testing.T) {
	repo := &countingRepo{visits: []analytics.Visit{{Path: "/"}}}
	service := analytics.NewService(repo, nil, nil)

	stats, err := service.GetStats(context.Background(), testRange())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVisits)
}
