package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

var _ domain.ProfileRepository = (*KVProfileRepository)(nil)

// KVProfileRepository stores the onboarding profile as a JSON blob. A profile
// that fails to decode is treated as absent rather than fatal; the client
// re-runs onboarding in that case.
type KVProfileRepository struct {
	kv    KVStore
	clock func() time.Time
}

func NewKVProfileRepository(kv KVStore) *KVProfileRepository {
	return &KVProfileRepository{kv: kv, clock: time.Now}
}

func (r *KVProfileRepository) WithClock(clock func() time.Time) *KVProfileRepository {
	r.clock = clock
	return r
}

func profileKey(accountID string) string { return fmt.Sprintf("profile:%s", accountID) }

func (r *KVProfileRepository) Get(ctx context.Context, accountID string) (*domain.Profile, error) {
	raw, ok, err := r.kv.Get(ctx, profileKey(accountID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	var profile domain.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		log.Printf("[PROFILE] Corrupt profile for %s: %v", accountID, err)
		return nil, domain.ErrProfileNotFound
	}

	profile.ClampQuitDate(r.clock())
	return &profile, nil
}

func (r *KVProfileRepository) Save(ctx context.Context, accountID string, profile *domain.Profile) error {
	profile.UpdatedAt = r.clock().UTC()

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("profile encode failed: %w", err)
	}

	if err := r.kv.Set(ctx, profileKey(accountID), data); err != nil {
		return fmt.Errorf("profile save failed: %w", err)
	}
	return nil
}

func (r *KVProfileRepository) Delete(ctx context.Context, accountID string) error {
	return r.kv.Delete(ctx, profileKey(accountID))
}
