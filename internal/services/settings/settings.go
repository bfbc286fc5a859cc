// Package services отвечает за настройки сайта: флаг режима листа ожидания
// с кешированием в Redis.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// CacheKey ключ флага режима листа ожидания в кеше.
const CacheKey = "settings:waiting_list_mode"

// Repository хранит единственную запись настроек.
type Repository interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, waitingListMode bool) (*models.Settings, error)
}

// Cache общий кеш между процессами.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service читает и меняет настройки сайта.
type Service struct {
	log   *slog.Logger
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// NewService создаёт Service. cache может быть nil, тогда флаг всегда читается из базы.
func NewService(log *slog.Logger, repo Repository, cache Cache, ttl time.Duration) *Service {
	return &Service{
		log:   log,
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// IsWaitingListMode сообщает, включён ли режим листа ожидания.
//
// Любая ошибка чтения трактуется как false: сайт остаётся открытым.
func (s *Service) IsWaitingListMode(ctx context.Context) bool {
	const op = "services.settings.IsWaitingListMode"
	log := s.log.With(slog.String("op", op))

	if s.cache != nil {
		var cached bool
		found, err := s.cache.Get(ctx, CacheKey, &cached)
		if err != nil {
			log.Warn("failed to read settings cache", sl.Err(err))
		}
		if found {
			return cached
		}
	}

	st, err := s.repo.GetSettings(ctx)
	if err != nil {
		log.Error("failed to read settings, waiting list mode is off", sl.Err(err))
		return false
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, CacheKey, st.IsWaitingListMode, s.ttl); err != nil {
			log.Warn("failed to write settings cache", sl.Err(err))
		}
	}
	return st.IsWaitingListMode
}

// Get возвращает запись настроек, создавая её при первом обращении.
func (s *Service) Get(ctx context.Context) (*models.Settings, error) {
	const op = "services.settings.Get"
	st, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// SetWaitingListMode сохраняет флаг и сбрасывает кеш.
func (s *Service) SetWaitingListMode(ctx context.Context, enabled bool) (*models.Settings, error) {
	const op = "services.settings.SetWaitingListMode"
	log := s.log.With(slog.String("op", op))

	st, err := s.repo.UpdateSettings(ctx, enabled)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, CacheKey); err != nil {
			log.Warn("failed to invalidate settings cache", sl.Err(err))
		}
	}
	log.Info("waiting list mode changed", slog.Bool("enabled", st.IsWaitingListMode))
	return st, nil
}
