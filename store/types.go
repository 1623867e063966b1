package store

import "time"

// EncryptedRecord is one row of encrypted_records.
type EncryptedRecord struct {
	ID               int64
	EncryptedIndex   []byte
	EncryptedPayload []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReferenceEntry is one row of reference_table: the canonical, deduplicated
// copy of a payload ciphertext, keyed by its content hash.
type ReferenceEntry struct {
	ID            int64
	HashValue     string
	EncryptedData []byte
}

// RangeQueryBit is one row of range_query_indices: the encrypted bit at
// BitPosition (0 = LSB) of RecordID's indexed value.
type RangeQueryBit struct {
	ID           int64
	RecordID     int64
	BitPosition  int
	EncryptedBit []byte
}

// CacheStats reports the running hit/miss counters and occupancy of one LRU.
type CacheStats struct {
	HitCount int64
	MissCount int64
	Size      int
	Capacity  int
}

// HitRate is HitCount/(HitCount+MissCount), or 0 when no lookups occurred.
func (s CacheStats) HitRate() float64 {
	total := s.HitCount + s.MissCount
	if total == 0 {
		return 0
	}
	return float64(s.HitCount) / float64(total)
}

// Stats bundles the three C5 cache instances' stats for GetCacheStats.
type Stats struct {
	Record    CacheStats
	Equality  CacheStats
	Range     CacheStats
}
