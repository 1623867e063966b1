package store

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/vaultdb/index"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite", "file:"+t.TempDir()+"/vault.db", Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestEngine(t *testing.T) *index.Engine {
	t.Helper()
	params, err := index.NewParametersFromLiteral(index.DefaultParameters())
	require.NoError(t, err)

	kgen := index.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPair()
	rlk := kgen.GenRelinearizationKey(sk)

	eng, err := index.NewFullEngine(params, sk, pk, rlk, nil)
	require.NoError(t, err)
	return eng
}

func TestAddAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Add(ctx, []byte("idx"), []byte("payload"), nil)
	require.NoError(t, err)
	require.NotZero(t, id)

	r, err := db.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, r)
	require.Equal(t, []byte("payload"), r.EncryptedPayload)
}

func TestGetMissingReturnsNilNil(t *testing.T) {
	db := newTestDB(t)
	r, err := db.Get(context.Background(), 999)
	require.NoError(t, err)
	require.Nil(t, r)
}

func TestGetIsCacheFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Add(ctx, []byte("idx"), []byte("payload"), nil)
	require.NoError(t, err)

	_, err = db.Get(ctx, id)
	require.NoError(t, err)
	statsBefore := db.recordCache.Stats()

	_, err = db.Get(ctx, id)
	require.NoError(t, err)
	statsAfter := db.recordCache.Stats()

	require.Equal(t, statsBefore.HitCount+1, statsAfter.HitCount)
}

func TestDedupSharesReferenceRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Add(ctx, []byte("idx1"), []byte("same"), nil)
	require.NoError(t, err)
	_, err = db.Add(ctx, []byte("idx2"), []byte("same"), nil)
	require.NoError(t, err)

	var count int
	row := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reference_table`)
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)
}

func TestUpdateInvalidatesQueryCaches(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	eng := newTestEngine(t)

	encIdx, err := eng.EncryptInt(42)
	require.NoError(t, err)
	id, err := db.Add(ctx, encIdx, []byte("payload"), nil)
	require.NoError(t, err)

	results, err := db.SearchByIndex(ctx, eng, 42)
	require.NoError(t, err)
	require.Len(t, results, 1)

	_, err = db.Update(ctx, id, []byte("new-payload"))
	require.NoError(t, err)

	require.Equal(t, 0, db.eqCache.Stats().Size)
}

func TestDeleteCascadesBitRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	eng := newTestEngine(t)

	encBits, err := eng.EncryptForRangeQuery(20, 8)
	require.NoError(t, err)

	id, err := db.Add(ctx, []byte("idx"), []byte("payload"), encBits)
	require.NoError(t, err)

	require.NoError(t, db.Delete(ctx, id))

	var count int
	row := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM range_query_indices WHERE record_id = ?`, id)
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 0, count)

	r, err := db.Get(ctx, id)
	require.NoError(t, err)
	require.Nil(t, r)
}

func TestSearchByIndexMatchesEncryptedEquality(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	eng := newTestEngine(t)

	encIdx42, err := eng.EncryptInt(42)
	require.NoError(t, err)
	encIdx7, err := eng.EncryptInt(7)
	require.NoError(t, err)

	_, err = db.Add(ctx, encIdx42, []byte("a"), nil)
	require.NoError(t, err)
	_, err = db.Add(ctx, encIdx7, []byte("b"), nil)
	require.NoError(t, err)

	matches, err := db.SearchByIndex(ctx, eng, 42)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, []byte("a"), matches[0].EncryptedPayload)
}

func TestSearchByRangeExcludesRecordsWithoutBits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	eng := newTestEngine(t)

	encBits, err := eng.EncryptForRangeQuery(20, 8)
	require.NoError(t, err)

	_, err = db.Add(ctx, []byte("idx"), []byte("has-bits"), encBits)
	require.NoError(t, err)
	_, err = db.Add(ctx, []byte("idx2"), []byte("no-bits"), nil)
	require.NoError(t, err)

	lo, hi := uint64(15), uint64(25)
	matches, err := db.SearchByRange(ctx, eng, &lo, &hi)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, []byte("has-bits"), matches[0].EncryptedPayload)
}

func TestCleanupUnusedReferencesIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Add(ctx, []byte("idx"), []byte("payload"), nil)
	require.NoError(t, err)
	require.NoError(t, db.Delete(ctx, id))

	removed, err := db.CleanupUnusedReferences(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	removedAgain, err := db.CleanupUnusedReferences(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), removedAgain)
}

func TestGetCacheStatsTracksHitsAndMisses(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Add(ctx, []byte("idx"), []byte("payload"), nil)
	require.NoError(t, err)

	db.recordCache.Clear()
	_, err = db.Get(ctx, id) // miss, populates cache
	require.NoError(t, err)
	_, err = db.Get(ctx, id) // hit
	require.NoError(t, err)

	stats := db.GetCacheStats()
	require.Equal(t, int64(1), stats.Record.HitCount)
	require.GreaterOrEqual(t, stats.Record.MissCount, int64(1))
}
