package vaultdb

import (
	"context"
	"time"

	"github.com/luxfi/vaultdb/store"
)

// Record is the decrypted view of an encrypted_records row.
type Record struct {
	ID        int64
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddOptions controls whether a record is also indexed for range queries.
type AddOptions struct {
	EnableRange bool
	// RangeBits overrides the façade's default bit width for this record.
	RangeBits int
}

func (db *DB) rangeBitsFor(opts AddOptions) int {
	if opts.RangeBits > 0 {
		return opts.RangeBits
	}
	return db.rangeBits
}

// AddRecord encrypts indexValue and data, optionally encrypts indexValue's
// bit decomposition for range queries, and inserts one row: the index
// engine encrypts the index (and bits), the sealer encrypts the payload,
// and the record store inserts the row plus any bit rows.
func (db *DB) AddRecord(ctx context.Context, indexValue uint64, data []byte, opts AddOptions) (int64, error) {
	encIdx, err := db.engine.EncryptInt(indexValue)
	if err != nil {
		return 0, err
	}
	sealed, err := db.seal.Seal(data)
	if err != nil {
		return 0, err
	}

	var encBits [][]byte
	if opts.EnableRange {
		encBits, err = db.engine.EncryptForRangeQuery(indexValue, db.rangeBitsFor(opts))
		if err != nil {
			return 0, err
		}
	}

	return db.store.Add(ctx, encIdx, sealed, encBits)
}

// AddRecordInput is one row for AddRecordsBatch.
type AddRecordInput struct {
	IndexValue uint64
	Data       []byte
	Options    AddOptions
}

// AddRecordsBatch inserts every input row in one transaction, preserving
// input order in the returned ids.
func (db *DB) AddRecordsBatch(ctx context.Context, inputs []AddRecordInput) ([]int64, error) {
	storeInputs := make([]store.AddInput, len(inputs))
	for i, in := range inputs {
		encIdx, err := db.engine.EncryptInt(in.IndexValue)
		if err != nil {
			return nil, err
		}
		sealed, err := db.seal.Seal(in.Data)
		if err != nil {
			return nil, err
		}

		var encBits [][]byte
		if in.Options.EnableRange {
			encBits, err = db.engine.EncryptForRangeQuery(in.IndexValue, db.rangeBitsFor(in.Options))
			if err != nil {
				return nil, err
			}
		}

		storeInputs[i] = store.AddInput{EncryptedIndex: encIdx, EncryptedPayload: sealed, EncryptedBits: encBits}
	}
	return db.store.AddBatch(ctx, storeInputs)
}

func (db *DB) toRecord(row *store.EncryptedRecord) (*Record, error) {
	if row == nil {
		return nil, nil
	}
	data, err := db.seal.Open(row.EncryptedPayload)
	if err != nil {
		return nil, err
	}
	return &Record{ID: row.ID, Data: data, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}, nil
}

// GetRecord returns the decrypted record for id, or (nil, nil) if absent.
// A tampered payload surfaces as AUTH_FAIL.
func (db *DB) GetRecord(ctx context.Context, id int64) (*Record, error) {
	row, err := db.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return db.toRecord(row)
}

// GetRecordsBatch resolves every id, in input order; missing ids yield a nil
// entry at that position.
func (db *DB) GetRecordsBatch(ctx context.Context, ids []int64) ([]*Record, error) {
	rows, err := db.store.GetBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, len(rows))
	for i, row := range rows {
		r, err := db.toRecord(row)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (db *DB) toRecords(rows []*store.EncryptedRecord) ([]*Record, error) {
	out := make([]*Record, 0, len(rows))
	for _, row := range rows {
		r, err := db.toRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// SearchByIndex returns every record whose encrypted index equals v,
// evaluated without ever decrypting the index ciphertext.
func (db *DB) SearchByIndex(ctx context.Context, v uint64) ([]*Record, error) {
	rows, err := db.store.SearchByIndex(ctx, db.engine, v)
	if err != nil {
		return nil, err
	}
	return db.toRecords(rows)
}

// SearchByRange returns every range-indexed record whose value lies in
// [lo, hi] (either bound nil means unbounded on that side).
func (db *DB) SearchByRange(ctx context.Context, lo, hi *uint64) ([]*Record, error) {
	rows, err := db.store.SearchByRange(ctx, db.engine, lo, hi)
	if err != nil {
		return nil, err
	}
	return db.toRecords(rows)
}

// UpdateRecord reseals newData and writes it; the index is immutable.
func (db *DB) UpdateRecord(ctx context.Context, id int64, newData []byte) (*Record, error) {
	sealed, err := db.seal.Seal(newData)
	if err != nil {
		return nil, err
	}
	row, err := db.store.Update(ctx, id, sealed)
	if err != nil {
		return nil, err
	}
	return db.toRecord(row)
}

// UpdateRecordInput is one row for UpdateRecordsBatch.
type UpdateRecordInput struct {
	ID      int64
	NewData []byte
}

// UpdateRecordsBatch updates every row in one transaction.
func (db *DB) UpdateRecordsBatch(ctx context.Context, updates []UpdateRecordInput) ([]*Record, error) {
	storeUpdates := make([]store.UpdateInput, len(updates))
	for i, u := range updates {
		sealed, err := db.seal.Seal(u.NewData)
		if err != nil {
			return nil, err
		}
		storeUpdates[i] = store.UpdateInput{ID: u.ID, NewPayload: sealed}
	}
	rows, err := db.store.UpdateBatch(ctx, storeUpdates)
	if err != nil {
		return nil, err
	}
	return db.toRecords(rows)
}

// UpdateByIndex updates every record whose encrypted index equals v,
// reporting the ids it actually reached before any failure.
func (db *DB) UpdateByIndex(ctx context.Context, v uint64, newData []byte) ([]int64, error) {
	sealed, err := db.seal.Seal(newData)
	if err != nil {
		return nil, err
	}
	return db.store.UpdateByIndex(ctx, db.engine, v, sealed)
}

// UpdateByRange updates every range-indexed record in [lo, hi].
func (db *DB) UpdateByRange(ctx context.Context, lo, hi *uint64, newData []byte) ([]int64, error) {
	sealed, err := db.seal.Seal(newData)
	if err != nil {
		return nil, err
	}
	return db.store.UpdateByRange(ctx, db.engine, lo, hi, sealed)
}

// DeleteRecord deletes id and its bit rows.
func (db *DB) DeleteRecord(ctx context.Context, id int64) error {
	return db.store.Delete(ctx, id)
}

// DeleteRecordsBatch deletes every id in one transaction.
func (db *DB) DeleteRecordsBatch(ctx context.Context, ids []int64) error {
	return db.store.DeleteBatch(ctx, ids)
}

// DeleteByIndex deletes every record whose encrypted index equals v.
func (db *DB) DeleteByIndex(ctx context.Context, v uint64) ([]int64, error) {
	return db.store.DeleteByIndex(ctx, db.engine, v)
}

// DeleteByRange deletes every range-indexed record in [lo, hi].
func (db *DB) DeleteByRange(ctx context.Context, lo, hi *uint64) ([]int64, error) {
	return db.store.DeleteByRange(ctx, db.engine, lo, hi)
}

// CleanupReferences garbage-collects dead reference_table rows.
func (db *DB) CleanupReferences(ctx context.Context) (int64, error) {
	return db.store.CleanupUnusedReferences(ctx)
}

// GetCacheStats reports the three C5 cache instances' hit/miss/occupancy.
func (db *DB) GetCacheStats() store.Stats {
	return db.store.GetCacheStats()
}

// ClearCaches empties all caches, including the homomorphic comparison memo.
func (db *DB) ClearCaches(ctx context.Context) {
	db.store.ClearCaches(ctx)
	db.engine.ClearCache()
}
