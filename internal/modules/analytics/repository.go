package analytics

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// CacheRepository stores msgpack-encoded analysis snapshots in cache.db.
// Everything in it is recomputable from the ledger, so reads that fail to
// decode are treated as misses, not errors.
type CacheRepository struct {
	db  *sql.DB // cache.db - snapshots table
	log zerolog.Logger
}

// NewCacheRepository creates a new snapshot cache repository
func NewCacheRepository(db *sql.DB, log zerolog.Logger) *CacheRepository {
	return &CacheRepository{
		db:  db,
		log: log.With().Str("repo", "analytics_cache").Logger(),
	}
}

// Put stores a snapshot under (scope, key), replacing any previous one.
func (r *CacheRepository) Put(scope, key string, value interface{}, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s/%s: %w", scope, key, err)
	}

	_, err = r.db.Exec(
		`INSERT OR REPLACE INTO snapshots (scope, key, data, created_at, ttl_seconds)
		 VALUES (?, ?, ?, ?, ?)`,
		scope, key, data, time.Now().Unix(), int64(ttl.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot %s/%s: %w", scope, key, err)
	}
	return nil
}

// Get loads a snapshot into dest. Returns false on a miss, an expired entry
// or a payload that no longer decodes (stale shape after a deploy).
func (r *CacheRepository) Get(scope, key string, dest interface{}) (bool, error) {
	var data []byte
	var createdAt, ttlSeconds int64

	err := r.db.QueryRow(
		"SELECT data, created_at, ttl_seconds FROM snapshots WHERE scope = ? AND key = ?",
		scope, key,
	).Scan(&data, &createdAt, &ttlSeconds)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot %s/%s: %w", scope, key, err)
	}

	if ttlSeconds > 0 && time.Now().Unix() > createdAt+ttlSeconds {
		return false, nil
	}

	if err := msgpack.Unmarshal(data, dest); err != nil {
		r.log.Warn().Err(err).Str("scope", scope).Str("key", key).Msg("Discarding undecodable snapshot")
		return false, nil
	}
	return true, nil
}

// InvalidateScope drops every snapshot whose key starts with the prefix.
// Used when new ledger rows land for a case.
func (r *CacheRepository) InvalidateScope(scope, keyPrefix string) error {
	_, err := r.db.Exec(
		"DELETE FROM snapshots WHERE scope = ? AND key LIKE ?",
		scope, keyPrefix+"%",
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate snapshots %s/%s*: %w", scope, keyPrefix, err)
	}
	return nil
}

// PurgeExpired removes entries past their TTL. Called by the scheduler.
func (r *CacheRepository) PurgeExpired() (int64, error) {
	result, err := r.db.Exec(
		"DELETE FROM snapshots WHERE ttl_seconds > 0 AND ? > created_at + ttl_seconds",
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired snapshots: %w", err)
	}
	return result.RowsAffected()
}
