package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/luxfi/vaultdb/index"
	"github.com/luxfi/vaultdb/vaulterr"
)

func hashPayload(payload []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(payload))
}

// ensureReference returns the reference_table id for payload, inserting a
// new row only if no entry with this hash already exists. Consults the
// reference cache before the table.
func (d *DB) ensureReference(ctx context.Context, tx *sql.Tx, payload []byte) (int64, error) {
	hash := hashPayload(payload)

	d.refMu.Lock()
	if id, ok := d.refCache[hash]; ok {
		d.refMu.Unlock()
		return id, nil
	}
	d.refMu.Unlock()

	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM reference_table WHERE hash_value = ?`, hash).Scan(&id)
	switch {
	case err == nil:
		d.refMu.Lock()
		d.refCache[hash] = id
		d.refMu.Unlock()
		return id, nil
	case err != sql.ErrNoRows:
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.ensureReference", err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO reference_table (hash_value, encrypted_data) VALUES (?, ?)`, hash, payload)
	if err != nil {
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.ensureReference", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.ensureReference", err)
	}

	d.refMu.Lock()
	d.refCache[hash] = id
	d.refMu.Unlock()
	return id, nil
}

func insertRangeBits(ctx context.Context, tx *sql.Tx, recordID int64, encBits [][]byte) error {
	for pos, bit := range encBits {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO range_query_indices (record_id, bit_position, encrypted_bit) VALUES (?, ?, ?)`,
			recordID, pos, bit); err != nil {
			return vaulterr.Wrap(vaulterr.IOFail, "store.insertRangeBits", err)
		}
	}
	return nil
}

// Add inserts one record, deduplicating its payload against reference_table,
// and its optional range-query bit ciphertexts.
func (d *DB) Add(ctx context.Context, encIdx, encPayload []byte, encBits [][]byte) (int64, error) {
	sess, err := d.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer sess.release()

	tx, err := sess.conn.BeginTx(sess.ctx, nil)
	if err != nil {
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.Add", err)
	}

	id, err := d.addWithinTx(sess.ctx, tx, encIdx, encPayload, encBits)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.Add", err)
	}

	d.invalidateQueryCaches(ctx)
	d.log.WithFields(logrus.Fields{"op": "Add", "record_id": id}).Info("store: record added")
	return id, nil
}

func (d *DB) addWithinTx(ctx context.Context, tx *sql.Tx, encIdx, encPayload []byte, encBits [][]byte) (int64, error) {
	if _, err := d.ensureReference(ctx, tx, encPayload); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO encrypted_records (encrypted_index, encrypted_payload, created_at, updated_at) VALUES (?, ?, datetime('now'), datetime('now'))`,
		encIdx, encPayload)
	if err != nil {
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.addWithinTx", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.addWithinTx", err)
	}

	if len(encBits) > 0 {
		if err := insertRangeBits(ctx, tx, id, encBits); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// AddInput is one row for AddBatch.
type AddInput struct {
	EncryptedIndex   []byte
	EncryptedPayload []byte
	EncryptedBits    [][]byte
}

// AddBatch inserts all rows in one transaction; the returned ids preserve
// input order.
func (d *DB) AddBatch(ctx context.Context, inputs []AddInput) ([]int64, error) {
	sess, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	tx, err := sess.conn.BeginTx(sess.ctx, nil)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.AddBatch", err)
	}

	ids := make([]int64, len(inputs))
	for i, in := range inputs {
		id, err := d.addWithinTx(sess.ctx, tx, in.EncryptedIndex, in.EncryptedPayload, in.EncryptedBits)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		ids[i] = id
	}
	if err := tx.Commit(); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.AddBatch", err)
	}

	d.invalidateQueryCaches(ctx)
	d.log.WithFields(logrus.Fields{"op": "AddBatch", "count": len(ids)}).Info("store: batch added")
	return ids, nil
}

// dbTimeLayout matches SQLite's datetime('now') textual format. A driver
// that converts TIMESTAMP columns to time.Time hands them to the string
// scan below in RFC 3339 form instead, so scanRecord accepts either layout.
const dbTimeLayout = "2006-01-02 15:04:05"

func scanRecord(row interface{ Scan(...any) error }) (*EncryptedRecord, error) {
	r := &EncryptedRecord{}
	var createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.EncryptedIndex, &r.EncryptedPayload, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	parse := func(s string) (time.Time, error) {
		if t, err := time.Parse(dbTimeLayout, s); err == nil {
			return t, nil
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var err error
	if r.CreatedAt, err = parse(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parse(updatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns a record by id, consulting the record LRU first. A missing
// record yields (nil, nil), never an error — absence isn't a failure here.
func (d *DB) Get(ctx context.Context, id int64) (*EncryptedRecord, error) {
	if r, ok := d.recordCache.Get(id); ok {
		return r, nil
	}

	sess, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	row := sess.conn.QueryRowContext(sess.ctx,
		`SELECT id, encrypted_index, encrypted_payload, created_at, updated_at FROM encrypted_records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.Get", err)
	}

	d.recordCache.Put(id, r)
	return r, nil
}

// GetBatch resolves ids against the record LRU, issuing a single SQL IN
// query for whatever misses, and merges results preserving input order.
func (d *DB) GetBatch(ctx context.Context, ids []int64) ([]*EncryptedRecord, error) {
	out := make([]*EncryptedRecord, len(ids))
	var misses []int64
	missIdx := make(map[int64][]int)

	for i, id := range ids {
		if r, ok := d.recordCache.Get(id); ok {
			out[i] = r
			continue
		}
		misses = append(misses, id)
		missIdx[id] = append(missIdx[id], i)
	}
	if len(misses) == 0 {
		return out, nil
	}

	sess, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	query, args := buildInQuery(
		`SELECT id, encrypted_index, encrypted_payload, created_at, updated_at FROM encrypted_records WHERE id IN (`,
		misses)
	rows, err := sess.conn.QueryContext(sess.ctx, query, args...)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.GetBatch", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.IOFail, "store.GetBatch", err)
		}
		d.recordCache.Put(r.ID, r)
		for _, i := range missIdx[r.ID] {
			out[i] = r
		}
	}
	if err := rows.Err(); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.GetBatch", err)
	}
	return out, nil
}

func buildInQuery(prefix string, ids []int64) (string, []any) {
	args := make([]any, len(ids))
	q := prefix
	for i, id := range ids {
		if i > 0 {
			q += ", "
		}
		q += "?"
		args[i] = id
	}
	q += ")"
	return q, args
}

// All returns every record row, bypassing the record LRU. Intended for bulk
// export, not the hot query path.
func (d *DB) All(ctx context.Context) ([]*EncryptedRecord, error) {
	sess, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	rows, err := sess.conn.QueryContext(sess.ctx,
		`SELECT id, encrypted_index, encrypted_payload, created_at, updated_at FROM encrypted_records ORDER BY id ASC`)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.All", err)
	}
	defer rows.Close()

	var out []*EncryptedRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.IOFail, "store.All", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// idsByIndex full-scans encrypted_records, invoking eng.CompareEncrypted per
// row, and returns the ids of matching rows. A homomorphic ciphertext can't
// be sorted or hashed into a server-side index, so every equality query is
// a full scan; the eq cache is what keeps repeated queries cheap.
func (d *DB) idsByIndex(ctx context.Context, eng *index.Engine, v uint64) ([]int64, error) {
	sess, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	rows, err := sess.conn.QueryContext(sess.ctx, `SELECT id, encrypted_index FROM encrypted_records`)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.idsByIndex", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		var encIdx []byte
		if err := rows.Scan(&id, &encIdx); err != nil {
			return nil, vaulterr.Wrap(vaulterr.IOFail, "store.idsByIndex", err)
		}
		match, err := eng.CompareEncrypted(encIdx, v)
		if err != nil {
			return nil, err
		}
		if match {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

// SearchByIndex is the equality predicate scan, cache-first keyed by v,
// full-scan on miss.
func (d *DB) SearchByIndex(ctx context.Context, eng *index.Engine, v uint64) ([]*EncryptedRecord, error) {
	if ids, ok := d.eqCache.Get(v); ok {
		return d.GetBatch(ctx, ids)
	}

	ids, err := d.idsByIndex(ctx, eng, v)
	if err != nil {
		return nil, err
	}
	d.eqCache.Put(v, ids)
	return d.GetBatch(ctx, ids)
}

func canonicalRangeKey(lo, hi *uint64) string {
	loStr, hiStr := "nil", "nil"
	if lo != nil {
		loStr = fmt.Sprintf("%d", *lo)
	}
	if hi != nil {
		hiStr = fmt.Sprintf("%d", *hi)
	}
	return loStr + ".." + hiStr
}

// idsByRange full-scans records with bit-ciphertext indices, invoking
// eng.CompareRange per row. Records without bit rows are excluded: they were
// never opted into range queries, so there's nothing to compare against.
func (d *DB) idsByRange(ctx context.Context, eng *index.Engine, lo, hi *uint64) ([]int64, error) {
	sess, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	ids, err := func() ([]int64, error) {
		rows, err := sess.conn.QueryContext(sess.ctx, `SELECT DISTINCT record_id FROM range_query_indices`)
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.IOFail, "store.idsByRange", err)
		}
		defer rows.Close()

		var out []int64
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return nil, vaulterr.Wrap(vaulterr.IOFail, "store.idsByRange", err)
			}
			out = append(out, id)
		}
		return out, rows.Err()
	}()
	if err != nil {
		return nil, err
	}

	var matches []int64
	for _, id := range ids {
		rows, err := sess.conn.QueryContext(sess.ctx,
			`SELECT encrypted_bit FROM range_query_indices WHERE record_id = ? ORDER BY bit_position ASC`, id)
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.IOFail, "store.idsByRange", err)
		}

		var bits [][]byte
		for rows.Next() {
			var bit []byte
			if err := rows.Scan(&bit); err != nil {
				rows.Close()
				return nil, vaulterr.Wrap(vaulterr.IOFail, "store.idsByRange", err)
			}
			bits = append(bits, bit)
		}
		scanErr := rows.Err()
		rows.Close()
		if scanErr != nil {
			return nil, vaulterr.Wrap(vaulterr.IOFail, "store.idsByRange", scanErr)
		}
		if len(bits) == 0 {
			continue
		}

		inRange, err := eng.CompareRange(bits, lo, hi, len(bits))
		if err != nil {
			return nil, err
		}
		if inRange {
			matches = append(matches, id)
		}
	}
	return matches, nil
}

// SearchByRange is the range predicate scan, cache-first keyed by the
// canonicalized (lo, hi) pair.
func (d *DB) SearchByRange(ctx context.Context, eng *index.Engine, lo, hi *uint64) ([]*EncryptedRecord, error) {
	key := canonicalRangeKey(lo, hi)
	if ids, ok := d.rangeCache.Get(key); ok {
		return d.GetBatch(ctx, ids)
	}

	ids, err := d.idsByRange(ctx, eng, lo, hi)
	if err != nil {
		return nil, err
	}
	d.rangeCache.Put(key, ids)
	return d.GetBatch(ctx, ids)
}

// Update recomputes the payload reference, writes the new blob, refreshes
// the record LRU entry, and invalidates both query caches. The index is
// immutable.
func (d *DB) Update(ctx context.Context, id int64, newPayload []byte) (*EncryptedRecord, error) {
	sess, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	tx, err := sess.conn.BeginTx(sess.ctx, nil)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.Update", err)
	}

	r, err := d.updateWithinTx(sess.ctx, tx, id, newPayload)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.Update", err)
	}
	if r == nil {
		return nil, nil
	}

	d.recordCache.Put(id, r)
	d.invalidateQueryCaches(ctx)
	d.log.WithFields(logrus.Fields{"op": "Update", "record_id": id}).Info("store: record updated")
	return r, nil
}

func (d *DB) updateWithinTx(ctx context.Context, tx *sql.Tx, id int64, newPayload []byte) (*EncryptedRecord, error) {
	if _, err := d.ensureReference(ctx, tx, newPayload); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE encrypted_records SET encrypted_payload = ?, updated_at = datetime('now') WHERE id = ?`,
		newPayload, id)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.updateWithinTx", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.updateWithinTx", err)
	}
	if n == 0 {
		return nil, nil
	}

	row := tx.QueryRowContext(ctx,
		`SELECT id, encrypted_index, encrypted_payload, created_at, updated_at FROM encrypted_records WHERE id = ?`, id)
	return scanRecord(row)
}

// UpdateInput is one row for UpdateBatch.
type UpdateInput struct {
	ID         int64
	NewPayload []byte
}

// UpdateBatch updates every row in one transaction.
func (d *DB) UpdateBatch(ctx context.Context, updates []UpdateInput) ([]*EncryptedRecord, error) {
	sess, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	tx, err := sess.conn.BeginTx(sess.ctx, nil)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.UpdateBatch", err)
	}

	out := make([]*EncryptedRecord, len(updates))
	for i, u := range updates {
		r, err := d.updateWithinTx(sess.ctx, tx, u.ID, u.NewPayload)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		out[i] = r
	}
	if err := tx.Commit(); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IOFail, "store.UpdateBatch", err)
	}

	for _, r := range out {
		if r != nil {
			d.recordCache.Put(r.ID, r)
		}
	}
	d.invalidateQueryCaches(ctx)
	return out, nil
}

// Delete cascades bit rows, removes the record, evicts it from the record
// LRU, and invalidates both query caches.
func (d *DB) Delete(ctx context.Context, id int64) error {
	sess, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.release()

	tx, err := sess.conn.BeginTx(sess.ctx, nil)
	if err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "store.Delete", err)
	}
	if err := d.deleteWithinTx(sess.ctx, tx, id); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "store.Delete", err)
	}

	d.recordCache.Remove(id)
	d.invalidateQueryCaches(ctx)
	d.log.WithFields(logrus.Fields{"op": "Delete", "record_id": id}).Info("store: record deleted")
	return nil
}

func (d *DB) deleteWithinTx(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM range_query_indices WHERE record_id = ?`, id); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "store.deleteWithinTx", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM encrypted_records WHERE id = ?`, id); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "store.deleteWithinTx", err)
	}
	return nil
}

// DeleteBatch deletes every id in one transaction.
func (d *DB) DeleteBatch(ctx context.Context, ids []int64) error {
	sess, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.release()

	tx, err := sess.conn.BeginTx(sess.ctx, nil)
	if err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "store.DeleteBatch", err)
	}
	for _, id := range ids {
		if err := d.deleteWithinTx(sess.ctx, tx, id); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "store.DeleteBatch", err)
	}

	for _, id := range ids {
		d.recordCache.Remove(id)
	}
	d.invalidateQueryCaches(ctx)
	return nil
}

// CleanupUnusedReferences deletes any reference_table row whose hash no
// longer corresponds to a live encrypted_records payload, and clears the
// reference cache. Idempotent.
func (d *DB) CleanupUnusedReferences(ctx context.Context) (int64, error) {
	sess, err := d.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer sess.release()

	live := make(map[string]struct{})
	rows, err := sess.conn.QueryContext(sess.ctx, `SELECT encrypted_payload FROM encrypted_records`)
	if err != nil {
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.CleanupUnusedReferences", err)
	}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			rows.Close()
			return 0, vaulterr.Wrap(vaulterr.IOFail, "store.CleanupUnusedReferences", err)
		}
		live[hashPayload(payload)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.CleanupUnusedReferences", err)
	}
	rows.Close()

	refRows, err := sess.conn.QueryContext(sess.ctx, `SELECT hash_value FROM reference_table`)
	if err != nil {
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.CleanupUnusedReferences", err)
	}
	var dead []string
	for refRows.Next() {
		var hash string
		if err := refRows.Scan(&hash); err != nil {
			refRows.Close()
			return 0, vaulterr.Wrap(vaulterr.IOFail, "store.CleanupUnusedReferences", err)
		}
		if _, ok := live[hash]; !ok {
			dead = append(dead, hash)
		}
	}
	if err := refRows.Err(); err != nil {
		refRows.Close()
		return 0, vaulterr.Wrap(vaulterr.IOFail, "store.CleanupUnusedReferences", err)
	}
	refRows.Close()

	var removed int64
	for _, hash := range dead {
		res, err := sess.conn.ExecContext(sess.ctx, `DELETE FROM reference_table WHERE hash_value = ?`, hash)
		if err != nil {
			return removed, vaulterr.Wrap(vaulterr.IOFail, "store.CleanupUnusedReferences", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	d.refMu.Lock()
	d.refCache = make(map[string]int64)
	d.refMu.Unlock()

	return removed, nil
}

// UpdateByIndex composes an equality predicate scan with a batch update on
// the matching ids. Partial failure reports the ids that did succeed.
func (d *DB) UpdateByIndex(ctx context.Context, eng *index.Engine, v uint64, newPayload []byte) ([]int64, error) {
	ids, err := d.idsByIndex(ctx, eng, v)
	if err != nil {
		return nil, err
	}
	return d.batchUpdateIDs(ctx, ids, newPayload)
}

// UpdateByRange composes a range predicate scan with a batch update on the
// matching ids.
func (d *DB) UpdateByRange(ctx context.Context, eng *index.Engine, lo, hi *uint64, newPayload []byte) ([]int64, error) {
	ids, err := d.idsByRange(ctx, eng, lo, hi)
	if err != nil {
		return nil, err
	}
	return d.batchUpdateIDs(ctx, ids, newPayload)
}

func (d *DB) batchUpdateIDs(ctx context.Context, ids []int64, newPayload []byte) ([]int64, error) {
	var succeeded []int64
	for _, id := range ids {
		if _, err := d.Update(ctx, id, newPayload); err != nil {
			return succeeded, err
		}
		succeeded = append(succeeded, id)
	}
	return succeeded, nil
}

// DeleteByIndex composes an equality predicate scan with a batch delete on
// the matching ids.
func (d *DB) DeleteByIndex(ctx context.Context, eng *index.Engine, v uint64) ([]int64, error) {
	ids, err := d.idsByIndex(ctx, eng, v)
	if err != nil {
		return nil, err
	}
	return d.batchDeleteIDs(ctx, ids)
}

// DeleteByRange composes a range predicate scan with a batch delete on the
// matching ids.
func (d *DB) DeleteByRange(ctx context.Context, eng *index.Engine, lo, hi *uint64) ([]int64, error) {
	ids, err := d.idsByRange(ctx, eng, lo, hi)
	if err != nil {
		return nil, err
	}
	return d.batchDeleteIDs(ctx, ids)
}

func (d *DB) batchDeleteIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var succeeded []int64
	for _, id := range ids {
		if err := d.Delete(ctx, id); err != nil {
			return succeeded, err
		}
		succeeded = append(succeeded, id)
	}
	return succeeded, nil
}
