package vaultdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/vaultdb/vaulterr"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()

	db, err := Bootstrap(context.Background(), Config{
		KeysDir:        filepath.Join(dir, "keys"),
		AESPassword:    "correct horse battery staple",
		DriverName:     "sqlite",
		DataSourceName: "file:" + filepath.Join(dir, "vault.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRoundTripSearchByIndex(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.AddRecord(ctx, 42, []byte("hello"), AddOptions{})
	require.NoError(t, err)
	require.NotZero(t, id)

	matches, err := db.SearchByIndex(ctx, 42)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, []byte("hello"), matches[0].Data)

	noMatches, err := db.SearchByIndex(ctx, 43)
	require.NoError(t, err)
	require.Empty(t, noMatches)
}

func TestRangeSearch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	values := map[uint64]string{10: "a", 20: "b", 30: "c", 40: "d"}
	for v, data := range values {
		_, err := db.AddRecord(ctx, v, []byte(data), AddOptions{EnableRange: true, RangeBits: 32})
		require.NoError(t, err)
	}

	lo, hi := uint64(15), uint64(35)
	matches, err := db.SearchByRange(ctx, &lo, &hi)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	got := map[string]bool{}
	for _, m := range matches {
		got[string(m.Data)] = true
	}
	require.True(t, got["b"])
	require.True(t, got["c"])

	onlyHi := uint64(10)
	matches, err = db.SearchByRange(ctx, nil, &onlyHi)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, []byte("a"), matches[0].Data)

	onlyLo := uint64(40)
	matches, err = db.SearchByRange(ctx, &onlyLo, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, []byte("d"), matches[0].Data)
}

func TestDedupAcrossInserts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id1, err := db.AddRecord(ctx, 1, []byte("same"), AddOptions{})
	require.NoError(t, err)
	id2, err := db.AddRecord(ctx, 2, []byte("same"), AddOptions{})
	require.NoError(t, err)

	r1, err := db.GetRecord(ctx, id1)
	require.NoError(t, err)
	r2, err := db.GetRecord(ctx, id2)
	require.NoError(t, err)
	require.Equal(t, r1.Data, r2.Data)

	// reference_table row-count-stays-at-one is covered directly against
	// the SQL layer by store.TestDedupSharesReferenceRow.
}

func TestTamperedPayloadFailsAuth(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.AddRecord(ctx, 5, []byte("secret"), AddOptions{})
	require.NoError(t, err)

	row, err := db.store.Get(ctx, id)
	require.NoError(t, err)
	tampered := append([]byte(nil), row.EncryptedPayload...)
	tampered[len(tampered)-1] ^= 0xFF

	_, err = db.store.Update(ctx, id, tampered)
	require.NoError(t, err)

	_, err = db.GetRecord(ctx, id)
	require.Error(t, err)
	require.True(t, vaulterr.Is(err, vaulterr.AuthFail))
}

func TestBackupAndRestore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ids := make([]int64, 0, 5)
	for i := 0; i < 5; i++ {
		id, err := db.AddRecord(ctx, uint64(i), []byte("payload"), AddOptions{})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	backupDir := filepath.Join(t.TempDir(), "backups-out")
	require.NoError(t, os.MkdirAll(backupDir, 0o755))
	path, err := db.GenerateBackup(backupDir)
	require.NoError(t, err)

	require.NoError(t, db.RestoreBackup(path, "correct horse battery staple"))

	for _, id := range ids {
		r, err := db.GetRecord(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, r)
		require.Equal(t, []byte("payload"), r.Data)
	}
}
