package preference

import (
	"context"
	"time"

	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/util"
	"go.uber.org/zap"
)

// ProfileReader is the read-only view the core has of the user's skin type.
type ProfileReader interface {
	CurrentProfile(ctx context.Context) (domain.SkinTypeProfile, error)
}

// JSONStore is the subset of cache.CacheService the Redis store uses.
type JSONStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// StoredProfile is the persisted document.
type StoredProfile struct {
	SkinTypes []string  `json:"skin_types"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StaticStore serves a fixed profile, typically from configuration.
type StaticStore struct {
	profile domain.SkinTypeProfile
}

func NewStaticStore(values []string) *StaticStore {
	return &StaticStore{profile: domain.ParseSkinTypeProfile(values)}
}

func (s *StaticStore) CurrentProfile(_ context.Context) (domain.SkinTypeProfile, error) {
	return append(domain.SkinTypeProfile(nil), s.profile...), nil
}

// RedisStore reads the profile written by the preference tool. A missing
// key or a read failure falls back to the configured profile.
type RedisStore struct {
	store    JSONStore
	key      string
	fallback ProfileReader
	logger   *zap.Logger
}

func NewRedisStore(store JSONStore, key string, fallback ProfileReader, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		store:    store,
		key:      key,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *RedisStore) CurrentProfile(ctx context.Context) (domain.SkinTypeProfile, error) {
	var stored StoredProfile
	found, err := s.store.Get(ctx, s.key, &stored)
	if err != nil {
		s.logger.Warn("Failed to read skin profile, using fallback", zap.String("key", s.key), zap.Error(err))
		return s.fromFallback(ctx)
	}
	if !found {
		return s.fromFallback(ctx)
	}

	profile := domain.ParseSkinTypeProfile(stored.SkinTypes)
	s.logger.Debug("Skin profile loaded",
		zap.String("key", s.key),
		zap.String("profile", profile.String()),
		zap.String("updated_at", util.FormatKST(stored.UpdatedAt, "2006-01-02 15:04")),
	)
	return profile, nil
}

// Save writes the profile; used by the preference tool, never by the core.
func (s *RedisStore) Save(ctx context.Context, profile domain.SkinTypeProfile) error {
	values := make([]string, 0, len(profile))
	for _, tag := range profile {
		values = append(values, string(tag))
	}
	return s.store.Set(ctx, s.key, StoredProfile{SkinTypes: values, UpdatedAt: time.Now()}, 0)
}

func (s *RedisStore) fromFallback(ctx context.Context) (domain.SkinTypeProfile, error) {
	if s.fallback == nil {
		return domain.SkinTypeProfile{}, nil
	}
	return s.fallback.CurrentProfile(ctx)
}
