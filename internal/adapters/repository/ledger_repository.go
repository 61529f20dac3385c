package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

var _ domain.LedgerRepository = (*KVLedgerRepository)(nil)

// KVLedgerRepository persists the check-in ledger as a comma-joined day key
// string. Every successful save also refreshes a backup copy; a corrupt
// primary is stashed under a diagnostic key and recovered from the backup, so
// a decode failure never costs the user the ability to check in.
type KVLedgerRepository struct {
	kv KVStore
}

func NewKVLedgerRepository(kv KVStore) *KVLedgerRepository {
	return &KVLedgerRepository{kv: kv}
}

func ledgerKey(accountID string) string        { return fmt.Sprintf("ledger:%s", accountID) }
func ledgerBackupKey(accountID string) string  { return fmt.Sprintf("ledger:%s:backup", accountID) }
func ledgerCorruptKey(accountID string) string { return fmt.Sprintf("ledger:%s:corrupt", accountID) }
func lastCheckInKey(accountID string) string   { return fmt.Sprintf("ledger:%s:last", accountID) }

func (r *KVLedgerRepository) Load(ctx context.Context, accountID string) (*domain.CheckInLedger, error) {
	raw, ok, err := r.kv.Get(ctx, ledgerKey(accountID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.NewCheckInLedger(), nil
	}

	ledger, err := domain.DecodeCheckInLedger(string(raw))
	if err == nil {
		return ledger, nil
	}

	// Primary is corrupt: keep the bytes for later inspection and fall back
	// to the backup copy.
	log.Printf("[LEDGER] Corrupt ledger for %s (%v), attempting backup recovery", accountID, err)
	if stashErr := r.kv.Set(ctx, ledgerCorruptKey(accountID), raw); stashErr != nil {
		log.Printf("[LEDGER] Failed to stash corrupt bytes for %s: %v", accountID, stashErr)
	}

	backup, ok, err := r.kv.Get(ctx, ledgerBackupKey(accountID))
	if err == nil && ok {
		if ledger, decodeErr := domain.DecodeCheckInLedger(string(backup)); decodeErr == nil {
			log.Printf("[LEDGER] Recovered ledger for %s from backup (%d days)", accountID, ledger.Len())
			return ledger, nil
		}
	}

	log.Printf("[LEDGER] Backup unusable for %s, starting from an empty ledger", accountID)
	return domain.NewCheckInLedger(), nil
}

func (r *KVLedgerRepository) Save(ctx context.Context, accountID string, ledger *domain.CheckInLedger) error {
	encoded := []byte(ledger.Encode())

	// Primary write first; if it fails the previously persisted state stands.
	if err := r.kv.Set(ctx, ledgerKey(accountID), encoded); err != nil {
		return fmt.Errorf("ledger save failed: %w", err)
	}

	// Backup refresh is best effort: a stale backup still decodes.
	if err := r.kv.Set(ctx, ledgerBackupKey(accountID), encoded); err != nil {
		log.Printf("[LEDGER] Backup refresh failed for %s: %v", accountID, err)
	}

	return nil
}

func (r *KVLedgerRepository) RecordLastCheckIn(ctx context.Context, accountID string, at time.Time) error {
	return r.kv.Set(ctx, lastCheckInKey(accountID), []byte(at.UTC().Format(time.RFC3339)))
}

func (r *KVLedgerRepository) LastCheckIn(ctx context.Context, accountID string) (time.Time, bool, error) {
	raw, ok, err := r.kv.Get(ctx, lastCheckInKey(accountID))
	if err != nil {
		return time.Time{}, false, err
	}
	if !ok {
		return time.Time{}, false, nil
	}

	at, parseErr := time.Parse(time.RFC3339, string(raw))
	if parseErr != nil {
		// Corrupt timestamp counts as no valid last check-in.
		log.Printf("[LEDGER] Unparseable last check-in for %s: %v", accountID, parseErr)
		return time.Time{}, false, nil
	}
	return at, true, nil
}

func (r *KVLedgerRepository) Purge(ctx context.Context, accountID string) error {
	keys := []string{
		ledgerKey(accountID),
		ledgerBackupKey(accountID),
		ledgerCorruptKey(accountID),
		lastCheckInKey(accountID),
	}
	for _, key := range keys {
		if err := r.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("ledger purge failed at %q: %w", key, err)
		}
	}
	return nil
}
