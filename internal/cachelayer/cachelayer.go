// Package cachelayer implements CacheLayer (§4.9): the single place that
// owns the master_version_hash and decides when every derived cache
// (LLM verdict cache, the review queue's cached ids, in-memory FTS) has
// gone stale.
package cachelayer

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/llmconsensus"
	"github.com/sbvh/collegematch/internal/matcherr"
)

// VersionSource is the master store's half of the §6 contract CacheLayer
// needs: the current snapshot's version hash.
type VersionSource interface {
	VersionHash() (string, error)
}

// CacheLayer compares the master store's current version_hash against
// the last one it saw (persisted in cache_state) and, on a mismatch,
// clears every derived cache (§4.9). In-memory structures (MasterIndex's
// FTS index, the idf table) are never touched directly here — they are
// rebuilt wholesale the next time masterindex.Build runs. internal/appctx
// runs Build on every process start, whether or not CheckAndInvalidate
// reports Changed, so the rebuild is driven by the next MasterIndex
// construction, not by CacheLayer reaching into it.
type CacheLayer struct {
	db      *sql.DB
	source  VersionSource
	llmCache *llmconsensus.Cache
	log     *zap.SugaredLogger
}

func New(db *sql.DB, source VersionSource, llmCache *llmconsensus.Cache, log *zap.SugaredLogger) *CacheLayer {
	return &CacheLayer{db: db, source: source, llmCache: llmCache, log: log}
}

const versionStateKey = "master_version_hash"

// Result reports what CheckAndInvalidate found.
type Result struct {
	Changed  bool
	OldHash  string
	NewHash  string
}

// CheckAndInvalidate is the pure entrypoint called at process start
// (§4.9): on a hash mismatch it clears the LLM verdict cache and the
// review queue's cached candidate ids, then records the new hash.
// Callers must treat Changed=true as "rebuild MasterIndex before
// running the pipeline."
func (c *CacheLayer) CheckAndInvalidate() (Result, error) {
	newHash, err := c.source.VersionHash()
	if err != nil {
		return Result{}, matcherr.WithKind(matcherr.Wrap(err, "reading master version hash"), matcherr.KindMasterIndexCorruption)
	}

	oldHash, err := c.storedHash()
	if err != nil {
		return Result{}, err
	}

	if oldHash == newHash {
		return Result{Changed: false, OldHash: oldHash, NewHash: newHash}, nil
	}

	if c.log != nil {
		c.log.Infow("master_version_hash changed, invalidating derived caches", "old", oldHash, "new", newHash)
	}
	if err := c.invalidate(); err != nil {
		return Result{}, err
	}
	if err := c.storeHash(newHash); err != nil {
		return Result{}, err
	}
	return Result{Changed: true, OldHash: oldHash, NewHash: newHash}, nil
}

// Clear unconditionally wipes every derived cache, bypassing the
// master_version_hash comparison (used by the CLI's `cache --clear`).
func (c *CacheLayer) Clear() error {
	return c.invalidate()
}

func (c *CacheLayer) invalidate() error {
	if c.llmCache != nil {
		if err := c.llmCache.Clear(); err != nil {
			return err
		}
	}
	if _, err := c.db.Exec(`DELETE FROM review_queue`); err != nil {
		return matcherr.WithKind(matcherr.Wrap(err, "clearing review queue"), matcherr.KindRowStoreError)
	}
	return nil
}

func (c *CacheLayer) storedHash() (string, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM cache_state WHERE key = ?`, versionStateKey).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", matcherr.WithKind(matcherr.Wrap(err, "reading cached master_version_hash"), matcherr.KindRowStoreError)
	}
	return value, nil
}

func (c *CacheLayer) storeHash(hash string) error {
	_, err := c.db.Exec(
		`INSERT INTO cache_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		versionStateKey, hash,
	)
	if err != nil {
		return matcherr.WithKind(matcherr.Wrap(err, "storing master_version_hash"), matcherr.KindRowStoreError)
	}
	return nil
}
