package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

// MetricsService computes the derived savings figures from the profile. No
// derived state is persisted or cached, so profile edits retroactively update
// every figure.
type MetricsService struct {
	profileRepo domain.ProfileRepository
	clock       func() time.Time
}

func NewMetricsService(profileRepo domain.ProfileRepository) *MetricsService {
	return &MetricsService{
		profileRepo: profileRepo,
		clock:       time.Now,
	}
}

func (s *MetricsService) WithClock(clock func() time.Time) *MetricsService {
	s.clock = clock
	return s
}

type UpdateProfileInput struct {
	QuitDate       time.Time
	WeeklySpending decimal.Decimal
	FrequencyTier  domain.FrequencyTier
}

func (s *MetricsService) Current(ctx context.Context, accountID string, loc *time.Location) (*domain.Metrics, error) {
	profile, err := s.profileRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	metrics := domain.CalculateMetrics(profile, s.clock(), loc)
	return &metrics, nil
}

func (s *MetricsService) Profile(ctx context.Context, accountID string) (*domain.Profile, error) {
	return s.profileRepo.Get(ctx, accountID)
}

func (s *MetricsService) UpdateProfile(ctx context.Context, accountID string, input UpdateProfileInput) (*domain.Profile, error) {
	profile, err := domain.NewProfile(input.QuitDate, input.WeeklySpending, input.FrequencyTier)
	if err != nil {
		return nil, err
	}

	if err := s.profileRepo.Save(ctx, accountID, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
