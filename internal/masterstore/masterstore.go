// Package masterstore is the SQLite-backed read-only view of the master
// catalogue (§6): it loads the snapshot masterindex.Build needs, reports
// the current master_version_hash for cachelayer, and resolves courses
// and states for the pipeline (pipeline.CourseResolver/StateResolver).
// Shaped after the teacher's ats/storage stores: a *sql.DB-holding struct
// with named query constants and a plain constructor, reused here for a
// read-mostly catalogue instead of attestation writes.
package masterstore

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/matcherr"
	"github.com/sbvh/collegematch/internal/model"
)

const (
	collegesQuery = `
		SELECT c.id, c.name, c.address, c.state_id, s.name, c.stream,
		       c.normalized_name, c.composite_key, c.normalized_address,
		       c.location_keywords, c.pincode
		FROM master_colleges c
		JOIN master_states s ON s.id = c.state_id`

	coursesQuery = `SELECT id, name, normalized_name, stream FROM master_courses`

	statesQuery = `SELECT id, name FROM master_states`

	resolveCourseQuery = `
		SELECT id FROM master_courses
		WHERE normalized_name = ? AND (stream = ? OR stream = 'MIXED')
		ORDER BY stream = ? DESC
		LIMIT 1`

	resolveStateQuery = `SELECT id FROM master_states WHERE name = ?`

	versionHashSeedQuery = `SELECT COUNT(*), COALESCE(MAX(id), 0) FROM master_colleges`

	aliasesQuery = `SELECT alias_text, canonical_target, kind, confidence FROM aliases`
)

// Store is the read-only master-catalogue accessor.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

func New(db *sql.DB, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{db: db, log: log}
}

// Snapshot is the input masterindex.Build consumes.
type Snapshot struct {
	Colleges []*model.MasterCollege
	Courses  []*model.MasterCourse
	States   []*model.MasterState
}

// LoadSnapshot reads the entire master catalogue for masterindex.Build.
// The catalogue is rebuilt wholesale by an external importer (§3), so a
// full table scan here is the expected access pattern, not a regression.
func (s *Store) LoadSnapshot() (Snapshot, error) {
	colleges, err := s.loadColleges()
	if err != nil {
		return Snapshot{}, err
	}
	courses, err := s.loadCourses()
	if err != nil {
		return Snapshot{}, err
	}
	states, err := s.loadStates()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Colleges: colleges, Courses: courses, States: states}, nil
}

func (s *Store) loadColleges() ([]*model.MasterCollege, error) {
	rows, err := s.db.Query(collegesQuery)
	if err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "loading master colleges"), matcherr.KindMasterIndexCorruption)
	}
	defer rows.Close()

	var out []*model.MasterCollege
	for rows.Next() {
		var c model.MasterCollege
		var keywords string
		var pincode sql.NullString
		err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.StateID, &c.StateName, &c.Stream,
			&c.NormalizedName, &c.CompositeKey, &c.NormalizedAddress, &keywords, &pincode)
		if err != nil {
			return nil, matcherr.WithKind(matcherr.Wrap(err, "scanning master college"), matcherr.KindMasterIndexCorruption)
		}
		c.Pincode = pincode.String
		c.LocationKeywords = splitKeywords(keywords)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "iterating master colleges"), matcherr.KindMasterIndexCorruption)
	}
	return out, nil
}

func (s *Store) loadCourses() ([]*model.MasterCourse, error) {
	rows, err := s.db.Query(coursesQuery)
	if err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "loading master courses"), matcherr.KindMasterIndexCorruption)
	}
	defer rows.Close()

	var out []*model.MasterCourse
	for rows.Next() {
		var c model.MasterCourse
		if err := rows.Scan(&c.ID, &c.Name, &c.NormalizedName, &c.Stream); err != nil {
			return nil, matcherr.WithKind(matcherr.Wrap(err, "scanning master course"), matcherr.KindMasterIndexCorruption)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "iterating master courses"), matcherr.KindMasterIndexCorruption)
	}
	return out, nil
}

func (s *Store) loadStates() ([]*model.MasterState, error) {
	rows, err := s.db.Query(statesQuery)
	if err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "loading master states"), matcherr.KindMasterIndexCorruption)
	}
	defer rows.Close()

	var out []*model.MasterState
	for rows.Next() {
		var st model.MasterState
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, matcherr.WithKind(matcherr.Wrap(err, "scanning master state"), matcherr.KindMasterIndexCorruption)
		}
		out = append(out, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "iterating master states"), matcherr.KindMasterIndexCorruption)
	}
	return out, nil
}

// LoadAliases reads every operator-curated alias (§4.2/§4.3), for
// aliastable.Table.Load to filter by kind.
func (s *Store) LoadAliases() ([]model.Alias, error) {
	rows, err := s.db.Query(aliasesQuery)
	if err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "loading aliases"), matcherr.KindMasterIndexCorruption)
	}
	defer rows.Close()

	var out []model.Alias
	for rows.Next() {
		var a model.Alias
		if err := rows.Scan(&a.AliasText, &a.CanonicalTarget, &a.Kind, &a.Confidence); err != nil {
			return nil, matcherr.WithKind(matcherr.Wrap(err, "scanning alias"), matcherr.KindMasterIndexCorruption)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "iterating aliases"), matcherr.KindMasterIndexCorruption)
	}
	return out, nil
}

// ResolveCourse implements pipeline.CourseResolver: the stream-matching
// course wins over a MIXED one when both exist (ORDER BY stream = ? DESC).
func (s *Store) ResolveCourse(normalizedCourse string, stream coursestream.Stream) (model.CourseID, bool) {
	var id model.CourseID
	err := s.db.QueryRow(resolveCourseQuery, normalizedCourse, string(stream), string(stream)).Scan(&id)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ResolveState implements pipeline.StateResolver.
func (s *Store) ResolveState(canonicalName string) (model.StateID, bool) {
	var id model.StateID
	if err := s.db.QueryRow(resolveStateQuery, canonicalName).Scan(&id); err != nil {
		return 0, false
	}
	return id, true
}

// VersionHash implements cachelayer.VersionSource. The catalogue is
// replaced wholesale by an external importer inside one transaction, so a
// cheap aggregate (row count plus max id) is sufficient to detect a new
// snapshot without hashing every row on every process start.
func (s *Store) VersionHash() (string, error) {
	var count, maxID int64
	err := s.db.QueryRow(versionHashSeedQuery).Scan(&count, &maxID)
	if err != nil {
		return "", matcherr.WithKind(matcherr.Wrap(err, "computing master version hash"), matcherr.KindMasterIndexCorruption)
	}
	sum := sha256.Sum256([]byte(strconv.FormatInt(count, 10) + ":" + strconv.FormatInt(maxID, 10)))
	return hex.EncodeToString(sum[:]), nil
}

func splitKeywords(joined string) map[string]struct{} {
	if joined == "" {
		return nil
	}
	fields := strings.Fields(joined)
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}
