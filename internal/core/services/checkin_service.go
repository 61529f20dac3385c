package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

// ResetEvent is emitted exactly when an account's streak transitions from
// active to broken.
type ResetEvent struct {
	AccountID  string    `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CheckInService owns the check-in mutator and streak reads. The ledger is
// persisted before any dependent state is recomputed or any observer notified,
// so a reader never sees a streak that predates a recorded check-in.
type CheckInService struct {
	ledgerRepo  domain.LedgerRepository
	profileRepo domain.ProfileRepository
	clock       func() time.Time

	mu        sync.Mutex
	lastState map[string]domain.StreakState
	locations map[string]*time.Location

	resets        chan ResetEvent
	ledgerChanged []func(accountID string)
}

func NewCheckInService(ledgerRepo domain.LedgerRepository, profileRepo domain.ProfileRepository) *CheckInService {
	return &CheckInService{
		ledgerRepo:  ledgerRepo,
		profileRepo: profileRepo,
		clock:       time.Now,
		lastState:   make(map[string]domain.StreakState),
		locations:   make(map[string]*time.Location),
		resets:      make(chan ResetEvent, 64),
	}
}

// WithClock replaces the wall clock, for tests.
func (s *CheckInService) WithClock(clock func() time.Time) *CheckInService {
	s.clock = clock
	return s
}

// Resets exposes the reset notification stream. Events are dropped, not
// blocked on, when no consumer keeps up.
func (s *CheckInService) Resets() <-chan ResetEvent {
	return s.resets
}

// OnLedgerChange registers a callback invoked after every successful mutation
// of an account's ledger. Used for calendar cache invalidation.
func (s *CheckInService) OnLedgerChange(fn func(accountID string)) {
	s.ledgerChanged = append(s.ledgerChanged, fn)
}

// CheckIn records today's check-in for the account. Idempotent: a second call
// on the same local day changes nothing.
func (s *CheckInService) CheckIn(ctx context.Context, accountID string, loc *time.Location) (domain.DayKey, domain.StreakState, error) {
	now := s.clock()
	today := domain.DayKeyFor(now, loc)

	ledger, err := s.ledgerRepo.Load(ctx, accountID)
	if err != nil {
		return "", domain.StreakState{}, err
	}

	// Evaluate before recording so a streak that died during the absence
	// surfaces as an explicit reset, not a silently shrunken count.
	s.evaluate(ctx, accountID, ledger, today, loc)

	if ledger.Record(today) {
		// Persist before recomputing anything. On failure the in-memory
		// copy is discarded and the previously persisted state stands.
		if err := s.ledgerRepo.Save(ctx, accountID, ledger); err != nil {
			return "", domain.StreakState{}, err
		}
		if err := s.ledgerRepo.RecordLastCheckIn(ctx, accountID, now); err != nil {
			log.Printf("[CHECKIN] Failed to record last check-in for %s: %v", accountID, err)
		}
		s.notifyLedgerChanged(accountID)
	}

	state := s.evaluate(ctx, accountID, ledger, today, loc)
	return today, state, nil
}

// Streak re-evaluates the streak from the persisted ledger. Called on app
// foregrounding, pull-to-refresh, and by the midnight sweep.
func (s *CheckInService) Streak(ctx context.Context, accountID string, loc *time.Location) (domain.StreakState, error) {
	ledger, err := s.ledgerRepo.Load(ctx, accountID)
	if err != nil {
		return domain.StreakState{}, err
	}

	today := domain.DayKeyFor(s.clock(), loc)
	return s.evaluate(ctx, accountID, ledger, today, loc), nil
}

// TotalDays counts distinct check-in days across all time.
func (s *CheckInService) TotalDays(ctx context.Context, accountID string) (int, error) {
	ledger, err := s.ledgerRepo.Load(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return ledger.Len(), nil
}

// DeleteData wipes the account's ledger (with backups) and profile. The only
// mutation besides the check-in itself.
func (s *CheckInService) DeleteData(ctx context.Context, accountID string) error {
	if err := s.ledgerRepo.Purge(ctx, accountID); err != nil {
		return err
	}
	if err := s.profileRepo.Delete(ctx, accountID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.lastState, accountID)
	delete(s.locations, accountID)
	s.mu.Unlock()

	s.notifyLedgerChanged(accountID)
	return nil
}

// Sweep re-evaluates every account seen this session. The midnight worker
// calls it so streak breaks become observable without user input.
func (s *CheckInService) Sweep(ctx context.Context) {
	s.mu.Lock()
	accounts := make(map[string]*time.Location, len(s.lastState))
	for id := range s.lastState {
		accounts[id] = s.locations[id]
	}
	s.mu.Unlock()

	for id, loc := range accounts {
		if _, err := s.Streak(ctx, id, loc); err != nil {
			log.Printf("[SWEEP] Re-evaluation failed for %s: %v", id, err)
		}
	}
}

func (s *CheckInService) evaluate(ctx context.Context, accountID string, ledger *domain.CheckInLedger, today domain.DayKey, loc *time.Location) domain.StreakState {
	state := domain.EvaluateStreak(ledger, today)

	s.mu.Lock()
	prev, seen := s.lastState[accountID]
	s.lastState[accountID] = state
	s.locations[accountID] = loc
	s.mu.Unlock()

	if !seen {
		prev = s.seedState(ctx, accountID, today, loc)
	}

	if prev.Status == domain.StreakActive && state.Status == domain.StreakBroken {
		s.publishReset(accountID)
	}

	return state
}

// seedState reconstructs whether the account looked active before this
// process started, from the stored last check-in instant. An unparseable or
// missing value conservatively counts as not active, so a defensive reset
// never fires a celebration-breaking event on corrupt state.
func (s *CheckInService) seedState(ctx context.Context, accountID string, today domain.DayKey, loc *time.Location) domain.StreakState {
	at, ok, err := s.ledgerRepo.LastCheckIn(ctx, accountID)
	if err != nil || !ok {
		return domain.StreakState{Status: domain.StreakUnset}
	}

	lastDay := domain.DayKeyFor(at, loc)
	if domain.DaysBetween(lastDay, today) <= domain.GraceDays {
		return domain.StreakState{Status: domain.StreakActive, Count: 1, LastQualifyingDay: &lastDay}
	}
	return domain.StreakState{Status: domain.StreakBroken}
}

func (s *CheckInService) publishReset(accountID string) {
	event := ResetEvent{AccountID: accountID, OccurredAt: s.clock()}
	select {
	case s.resets <- event:
	default:
		log.Printf("[CHECKIN] Reset event queue full, dropping event for %s", accountID)
	}
}

func (s *CheckInService) notifyLedgerChanged(accountID string) {
	for _, fn := range s.ledgerChanged {
		fn(accountID)
	}
}
