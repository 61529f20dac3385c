package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized access")
)

type AccountRepository interface {
	// Create persists a new account. Fails with ErrEmailAlreadyExists on a
	// duplicate email.
	Create(ctx context.Context, account *Account) error

	GetByID(ctx context.Context, id string) (*Account, error)

	GetByEmail(ctx context.Context, email string) (*Account, error)
}

// LedgerRepository owns check-in persistence. Implementations must never let a
// failed write replace the last good persisted state, and a load must recover
// from the backup copy (or degrade to an empty ledger) rather than fail.
type LedgerRepository interface {
	Load(ctx context.Context, accountID string) (*CheckInLedger, error)

	Save(ctx context.Context, accountID string, ledger *CheckInLedger) error

	// RecordLastCheckIn stores the wall-clock instant of the latest check-in,
	// used to detect streak breaks across restarts.
	RecordLastCheckIn(ctx context.Context, accountID string, at time.Time) error

	// LastCheckIn reports the stored last check-in instant. An absent or
	// unparseable value reports ok=false, never an error.
	LastCheckIn(ctx context.Context, accountID string) (at time.Time, ok bool, err error)

	// Purge removes every ledger key for the account, including backups and
	// diagnostics. This is the full-data-deletion path.
	Purge(ctx context.Context, accountID string) error
}

type ProfileRepository interface {
	// Get returns the stored profile, with a future-dated quit date already
	// clamped. Missing or unreadable profiles yield ErrProfileNotFound.
	Get(ctx context.Context, accountID string) (*Profile, error)

	Save(ctx context.Context, accountID string, profile *Profile) error

	Delete(ctx context.Context, accountID string) error
}
