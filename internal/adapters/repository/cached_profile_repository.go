package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

var _ domain.ProfileRepository = (*CachedProfileRepository)(nil)

// CachedProfileRepository keeps profiles in Redis in front of the real store.
// Profiles are read on every metrics and calendar request but change only
// when the user edits onboarding answers.
type CachedProfileRepository struct {
	next  domain.ProfileRepository
	cache *redis.Client
}

func NewCachedProfileRepository(next domain.ProfileRepository, cache *redis.Client) *CachedProfileRepository {
	return &CachedProfileRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedProfileRepository) cacheKey(accountID string) string {
	return fmt.Sprintf("profile:%s", accountID)
}

func (r *CachedProfileRepository) invalidate(ctx context.Context, accountID string) {
	if err := r.cache.Del(ctx, r.cacheKey(accountID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate profile for %s: %v", accountID, err)
	}
}

func (r *CachedProfileRepository) Get(ctx context.Context, accountID string) (*domain.Profile, error) {
	key := r.cacheKey(accountID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var profile domain.Profile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}

		log.Printf("[CACHE] Corrupted profile for %s, cleaning up key", accountID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	profile, err := r.next.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(profile); err == nil {
		if setErr := r.cache.Set(ctx, key, data, 30*time.Minute).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return profile, nil
}

func (r *CachedProfileRepository) Save(ctx context.Context, accountID string, profile *domain.Profile) error {
	if err := r.next.Save(ctx, accountID, profile); err != nil {
		return err
	}
	r.invalidate(ctx, accountID)
	return nil
}

func (r *CachedProfileRepository) Delete(ctx context.Context, accountID string) error {
	if err := r.next.Delete(ctx, accountID); err != nil {
		return err
	}
	r.invalidate(ctx, accountID)
	return nil
}
