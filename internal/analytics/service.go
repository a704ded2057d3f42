package analytics

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

const topPagesLimit = 10

// Repository defines the aggregation queries the service relies on.
type Repository interface {
	InsertVisit(ctx context.Context, v Visit) error
	CountVisits(ctx context.Context, rng StatsRange) (int64, error)
	CountUniqueVisitors(ctx context.Context, rng StatsRange) (int64, error)
	VisitsPerDay(ctx context.Context, rng StatsRange) ([]DailyCount, error)
	TopPages(ctx context.Context, rng StatsRange, limit int) ([]PageCount, error)
}

// Service coordinates visit capture and cached aggregation.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

// NewService wires a Repository with the cache helper.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Capture stores a page view and invalidates cached stats. A failed cache
// bump only degrades freshness, so it is logged and swallowed.
func (s *Service) Capture(ctx context.Context, v Visit) error {
	if err := s.repo.InsertVisit(ctx, v); err != nil {
		return err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("analytics cache bump", slog.Any("error", err))
	}
	return nil
}

// GetStats resolves the dashboard aggregate, running the four queries in
// parallel on a cache miss.
func (s *Service) GetStats(ctx context.Context, rng StatsRange) (Stats, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "stats",
		rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	err = s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (any, error) {
		return s.loadStats(ctx, rng)
	})
	return stats, err
}

func (s *Service) loadStats(ctx context.Context, rng StatsRange) (Stats, error) {
	var (
		mu    sync.Mutex
		stats Stats
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.repo.CountVisits(ctx, rng)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TotalVisits = total
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		unique, err := s.repo.CountUniqueVisitors(ctx, rng)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.UniqueVisitors = unique
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		perDay, err := s.repo.VisitsPerDay(ctx, rng)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.PerDay = perDay
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		top, err := s.repo.TopPages(ctx, rng, topPagesLimit)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TopPages = top
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
