package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

func ledgerWith(days ...string) *domain.CheckInLedger {
	ledger := domain.NewCheckInLedger()
	for _, d := range days {
		ledger.Record(domain.DayKey(d))
	}
	return ledger
}

func TestKVLedgerRepository_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKVStore()
	repo := NewKVLedgerRepository(kv)

	require.NoError(t, repo.Save(ctx, "acct-1", ledgerWith("2025-01-01", "2025-01-03")))

	loaded, err := repo.Load(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.DayKey{"2025-01-01", "2025-01-03"}, loaded.Days())
}

func TestKVLedgerRepository_MissingLedgerLoadsEmpty(t *testing.T) {
	repo := NewKVLedgerRepository(NewInMemoryKVStore())

	loaded, err := repo.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestKVLedgerRepository_SaveRefreshesBackup(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKVStore()
	repo := NewKVLedgerRepository(kv)

	require.NoError(t, repo.Save(ctx, "acct-1", ledgerWith("2025-01-01")))

	backup, ok, err := kv.Get(ctx, "ledger:acct-1:backup")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025-01-01", string(backup))
}

func TestKVLedgerRepository_CorruptPrimaryRecoversFromBackup(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKVStore()
	repo := NewKVLedgerRepository(kv)

	require.NoError(t, repo.Save(ctx, "acct-1", ledgerWith("2025-01-01", "2025-01-02")))

	// Corrupt the primary behind the repository's back.
	require.NoError(t, kv.Set(ctx, "ledger:acct-1", []byte("2025-01-01,garbage")))

	loaded, err := repo.Load(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len(), "backup copy must win over the corrupt primary")

	// The corrupt bytes are kept for diagnosis.
	stashed, ok, err := kv.Get(ctx, "ledger:acct-1:corrupt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2025-01-01,garbage", string(stashed))
}

func TestKVLedgerRepository_DoubleCorruptionDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKVStore()
	repo := NewKVLedgerRepository(kv)

	require.NoError(t, kv.Set(ctx, "ledger:acct-1", []byte("not a ledger")))
	require.NoError(t, kv.Set(ctx, "ledger:acct-1:backup", []byte("also not a ledger")))

	loaded, err := repo.Load(ctx, "acct-1")
	require.NoError(t, err, "total corruption must not block the user from checking in")
	assert.Equal(t, 0, loaded.Len())
}

func TestKVLedgerRepository_LastCheckIn(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKVStore()
	repo := NewKVLedgerRepository(kv)

	t.Run("Absent reports not ok", func(t *testing.T) {
		_, ok, err := repo.LastCheckIn(ctx, "acct-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Round trips in UTC", func(t *testing.T) {
		at := time.Date(2025, 1, 9, 22, 30, 0, 0, time.FixedZone("CET", 3600))
		require.NoError(t, repo.RecordLastCheckIn(ctx, "acct-1", at))

		got, ok, err := repo.LastCheckIn(ctx, "acct-1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Equal(at))
	})

	t.Run("Unparseable value reports not ok, not an error", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "ledger:acct-2:last", []byte("last tuesday")))

		_, ok, err := repo.LastCheckIn(ctx, "acct-2")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestKVLedgerRepository_PurgeRemovesEveryKey(t *testing.T) {
	ctx := context.Background()
	kv := NewInMemoryKVStore()
	repo := NewKVLedgerRepository(kv)

	require.NoError(t, repo.Save(ctx, "acct-1", ledgerWith("2025-01-01")))
	require.NoError(t, repo.RecordLastCheckIn(ctx, "acct-1", time.Now()))
	require.NoError(t, kv.Set(ctx, "ledger:acct-1:corrupt", []byte("junk")))

	require.NoError(t, repo.Purge(ctx, "acct-1"))

	for _, key := range []string{"ledger:acct-1", "ledger:acct-1:backup", "ledger:acct-1:corrupt", "ledger:acct-1:last"} {
		_, ok, err := kv.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "key %s must be gone", key)
	}

	loaded, err := repo.Load(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}
