package llmconsensus

import (
	"database/sql"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/matcherr"
	"github.com/sbvh/collegematch/internal/model"
)

// CacheKey identifies one cached verdict: a group's composite signature
// paired with the master college it was judged against (§4.8).
type CacheKey struct {
	GroupSignature string
	MasterCollege  model.CollegeID
}

// Cache persists LLM votes to the llm_cache table, keyed by CacheKey, with
// an in-memory read-through layer. Invalidated wholesale by
// internal/cachelayer on a master_version_hash mismatch — every row also
// carries the hash it was written under so a stale row can be detected
// even if invalidation is skipped.
type Cache struct {
	mu     sync.RWMutex
	memory map[CacheKey][]Vote

	db      *sql.DB
	version string
	log     *zap.SugaredLogger
	cfg     Config
}

// NewCache builds a Cache. db may be nil for a pure in-memory cache
// (useful in tests); version is the current master_version_hash, used to
// tag writes and to reject stale reads from a previous generation.
func NewCache(db *sql.DB, version string, log *zap.SugaredLogger) *Cache {
	return &Cache{memory: make(map[CacheKey][]Vote), db: db, version: version, log: log}
}

// SetConsensusConfig records the quorum rule used to derive the "verdict"
// column persisted by Put, keeping it consistent with Engine.Decide's own
// evaluation of the same votes.
func (c *Cache) SetConsensusConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

func (c *Cache) Get(key CacheKey) ([]Vote, bool) {
	c.mu.RLock()
	votes, ok := c.memory[key]
	c.mu.RUnlock()
	if ok {
		return votes, true
	}
	if c.db == nil {
		return nil, false
	}

	row := c.db.QueryRow(
		`SELECT votes FROM llm_cache WHERE group_signature = ? AND master_college_id = ? AND master_version = ?`,
		key.GroupSignature, int64(key.MasterCollege), c.version,
	)
	var encoded string
	if err := row.Scan(&encoded); err != nil {
		return nil, false
	}
	var decoded []Vote
	if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
		if c.log != nil {
			c.log.Warnw("discarding unparsable llm cache row", "key", key, "error", err)
		}
		return nil, false
	}

	c.mu.Lock()
	c.memory[key] = decoded
	c.mu.Unlock()
	return decoded, true
}

// Put writes votes to both the in-memory layer and, if configured, the
// durable table. §5's "last-writer-wins" ordering guarantee means a
// concurrent Put racing this one for the same key is expected to settle
// on whichever commits last; differing verdicts from concurrent writers
// are a bug upstream (duplicate work on the same group), not something
// this layer arbitrates.
func (c *Cache) Put(key CacheKey, votes []Vote) {
	c.mu.Lock()
	c.memory[key] = votes
	c.mu.Unlock()

	if c.db == nil {
		return
	}
	encoded, err := json.Marshal(votes)
	if err != nil {
		if c.log != nil {
			c.log.Warnw("failed to encode llm cache entry", "key", key, "error", err)
		}
		return
	}
	c.mu.RLock()
	cfg := c.cfg
	c.mu.RUnlock()
	result := evaluate(votes, cfg)
	verdict := "REJECT"
	if result.Approved {
		verdict = "APPROVE"
	}
	_, err = c.db.Exec(
		`INSERT INTO llm_cache (group_signature, master_college_id, verdict, votes, master_version)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(group_signature, master_college_id) DO UPDATE SET
			verdict = excluded.verdict, votes = excluded.votes, master_version = excluded.master_version, updated_at = CURRENT_TIMESTAMP`,
		key.GroupSignature, int64(key.MasterCollege), verdict, string(encoded), c.version,
	)
	if err != nil && c.log != nil {
		c.log.Warnw("failed to persist llm cache entry", "key", key, "error", matcherr.Wrap(err, "llm cache write"))
	}
}

// Clear wipes both layers; called by internal/cachelayer on a
// master_version_hash mismatch (§4.9).
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.memory = make(map[CacheKey][]Vote)
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	if _, err := c.db.Exec(`DELETE FROM llm_cache`); err != nil {
		return matcherr.WithKind(matcherr.Wrap(err, "clearing llm cache"), matcherr.KindRowStoreError)
	}
	return nil
}
