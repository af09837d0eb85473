package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danngalann/astroweather/internal/modules/weather/repository"
	"github.com/danngalann/astroweather/internal/modules/weather/types"
	"github.com/danngalann/astroweather/internal/modules/weather/upstream"
)

const overviewKey = "overview"

func locationKey(slug string) string { return "location:" + slug }

// Fetcher returns raw weather backend bodies.
type Fetcher interface {
	FetchAllRaw(ctx context.Context) ([]byte, error)
	FetchLocationRaw(ctx context.Context, slug string) ([]byte, error)
}

// Service serves weather payloads, keeping each backend body for the
// revalidate window. Backend failures are always returned; an expired
// body is never served in their place.
type Service struct {
	fetcher    Fetcher
	repository repository.PayloadRepository
	revalidate time.Duration
	logger     *slog.Logger
	now        func() time.Time
	group      singleflight.Group

	// gens counts invalidations per key; epoch counts full clears. A fetch
	// only stores its body if neither moved while it ran.
	genMu sync.Mutex
	gens  map[string]uint64
	epoch uint64
}

type generation struct {
	epoch uint64
	key   uint64
}

// NewService returns a service over fetcher. A revalidate of zero disables
// the cache.
func NewService(fetcher Fetcher, repo repository.PayloadRepository, revalidate time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:    fetcher,
		repository: repo,
		revalidate: revalidate,
		logger:     logger,
		now:        time.Now,
		gens:       make(map[string]uint64),
	}
}

func (s *Service) Overview(ctx context.Context) ([]types.WeatherData, error) {
	return load(ctx, s, overviewKey, s.fetcher.FetchAllRaw, upstream.DecodeAll)
}

func (s *Service) Location(ctx context.Context, slug string) (types.WeatherData, error) {
	fetch := func(ctx context.Context) ([]byte, error) {
		return s.fetcher.FetchLocationRaw(ctx, slug)
	}
	return load(ctx, s, locationKey(slug), fetch, upstream.DecodeLocation)
}

// Invalidate drops the cached body for slug together with the overview.
// An empty slug drops everything.
func (s *Service) Invalidate(ctx context.Context, slug string) error {
	s.bump(slug)
	s.group.Forget(overviewKey)
	if slug != "" {
		s.group.Forget(locationKey(slug))
	}
	if s.repository == nil {
		return nil
	}
	if slug == "" {
		if err := s.repository.DeleteAll(ctx); err != nil {
			return fmt.Errorf("invalidate all: %w", err)
		}
		s.logger.Info("weather cache cleared")
		return nil
	}

	if err := s.repository.Delete(ctx, locationKey(slug)); err != nil {
		return fmt.Errorf("invalidate %s: %w", slug, err)
	}
	if err := s.repository.Delete(ctx, overviewKey); err != nil {
		return fmt.Errorf("invalidate overview: %w", err)
	}
	s.logger.Info("weather cache invalidated", "slug", slug)
	return nil
}

func (s *Service) bump(slug string) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if slug == "" {
		s.epoch++
		return
	}
	s.gens[overviewKey]++
	s.gens[locationKey(slug)]++
}

func (s *Service) generation(key string) generation {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return generation{epoch: s.epoch, key: s.gens[key]}
}

func (s *Service) cacheEnabled() bool {
	return s.repository != nil && s.revalidate > 0
}

// cached returns the stored body for key if it is still inside the window.
func (s *Service) cached(ctx context.Context, key string) ([]byte, bool) {
	if !s.cacheEnabled() {
		return nil, false
	}
	entry, ok, err := s.repository.Get(ctx, key)
	if err != nil {
		s.logger.Warn("weather cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	age := s.now().Sub(entry.FetchedAt)
	if age < 0 || age >= s.revalidate {
		s.logger.Debug("weather cache expired", "key", key, "age", age)
		return nil, false
	}
	s.logger.Debug("weather cache hit", "key", key, "age", age)
	return entry.Body, true
}

// fetch runs one backend request per key. The shared request ignores the
// caller's cancellation and is bounded by the upstream client timeout; each
// caller still stops waiting when its own ctx is done.
func (s *Service) fetch(ctx context.Context, key string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		gen := s.generation(key)
		body, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		if !s.cacheEnabled() {
			return body, nil
		}
		if s.generation(key) != gen {
			s.logger.Debug("weather cache invalidated during fetch, not storing", "key", key)
			return body, nil
		}
		if err := s.repository.Put(fctx, key, body, s.now()); err != nil {
			s.logger.Warn("weather cache write failed", "key", key, "error", err)
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("weather fetch shared", "key", key)
		}
		return res.Val.([]byte), nil
	}
}

func load[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) ([]byte, error), decode func([]byte) (T, error)) (T, error) {
	if body, ok := s.cached(ctx, key); ok {
		out, err := decode(body)
		if err == nil {
			return out, nil
		}
		s.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		if err := s.repository.Delete(ctx, key); err != nil {
			s.logger.Warn("weather cache delete failed", "key", key, "error", err)
		}
	}

	body, err := s.fetch(ctx, key, fetch)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("fetch %s: %w", key, err)
	}
	return decode(body)
}
