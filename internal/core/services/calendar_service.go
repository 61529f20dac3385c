package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

// MonthView is the renderable projection of one month.
type MonthView struct {
	Month  string                `json:"month"`
	Today  domain.DayKey         `json:"today"`
	Cells  []domain.DayCellState `json:"cells"`
	Bounds domain.MonthBounds    `json:"bounds"`
}

// CalendarService projects months from the ledger, memoizing per
// account+month. The cache is recomputed wholesale (a month is at most 42
// cells) whenever the ledger, the displayed month, or the current day changes.
type CalendarService struct {
	ledgerRepo  domain.LedgerRepository
	profileRepo domain.ProfileRepository
	clock       func() time.Time

	mu    sync.Mutex
	cache map[string]*MonthView
}

func NewCalendarService(ledgerRepo domain.LedgerRepository, profileRepo domain.ProfileRepository) *CalendarService {
	return &CalendarService{
		ledgerRepo:  ledgerRepo,
		profileRepo: profileRepo,
		clock:       time.Now,
		cache:       make(map[string]*MonthView),
	}
}

func (s *CalendarService) WithClock(clock func() time.Time) *CalendarService {
	s.clock = clock
	return s
}

// Project returns the 42-cell grid for the month, rejecting months outside
// the navigable window.
func (s *CalendarService) Project(ctx context.Context, accountID string, month domain.Month, loc *time.Location) (*MonthView, error) {
	today := domain.DayKeyFor(s.clock(), loc)

	quitDay := domain.DayKey("")
	profile, err := s.profileRepo.Get(ctx, accountID)
	switch {
	case err == nil:
		quitDay = domain.DayKeyFor(profile.QuitDate, loc)
	case errors.Is(err, domain.ErrProfileNotFound):
		// No onboarding yet: bounds fall back to the 12-month window.
	default:
		return nil, err
	}

	bounds := domain.NavigationBounds(quitDay, today)
	if !bounds.Allows(month) {
		return nil, domain.ErrMonthOutOfRange
	}

	// Today is part of the key, so every cached grid goes stale at midnight
	// without coordination.
	key := fmt.Sprintf("%s|%s|%s", accountID, month, today)

	s.mu.Lock()
	if view, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return view, nil
	}
	s.mu.Unlock()

	ledger, err := s.ledgerRepo.Load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	view := &MonthView{
		Month:  month.String(),
		Today:  today,
		Cells:  domain.ProjectMonth(ledger, month, today),
		Bounds: bounds,
	}

	s.mu.Lock()
	s.cache[key] = view
	s.mu.Unlock()

	return view, nil
}

// Invalidate drops every cached grid for the account. Wired to the check-in
// service's ledger-change notification.
func (s *CalendarService) Invalidate(accountID string) {
	prefix := accountID + "|"

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.cache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.cache, key)
		}
	}
}

// InvalidateAll drops the whole cache. Called by the midnight worker.
func (s *CalendarService) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*MonthView)
}
