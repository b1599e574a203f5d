// Package rowstore is the SQLite-backed implementation of the row store
// half of §6's external interfaces: groups(), fetch_group(key),
// update_group_match(...) (atomic across every row in the group), and
// queue_for_review(...). It mirrors the teacher's ats/storage store shape
// (a *sql.DB plus *zap.SugaredLogger struct, named query constants, a
// plain constructor) adapted to seat_rows/review_queue instead of
// attestations.
package rowstore

import (
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/matcherr"
	"github.com/sbvh/collegematch/internal/model"
)

const (
	groupsQuery = `
		SELECT normalized_state, normalized_college, normalized_address, course_type, GROUP_CONCAT(row_id)
		FROM seat_rows
		WHERE master_college_id IS NULL
		GROUP BY normalized_state, normalized_college, normalized_address, course_type`

	fetchGroupRowsQuery = `
		SELECT row_id, raw_college, raw_state, raw_course, raw_address, course_type,
		       normalized_college, normalized_state, normalized_course, normalized_address,
		       master_college_id, master_course_id, master_state_id,
		       college_match_score, college_match_method, state_mismatch_flagged, verified
		FROM seat_rows
		WHERE normalized_state = ? AND normalized_college = ? AND normalized_address = ? AND course_type = ?`

	updateGroupMatchStmt = `
		UPDATE seat_rows
		SET master_college_id = ?, master_course_id = ?, master_state_id = ?,
		    college_match_score = ?, college_match_method = ?,
		    state_mismatch_flagged = ?, verified = ?
		WHERE normalized_state = ? AND normalized_college = ? AND normalized_address = ? AND course_type = ?`

	queueForReviewStmt = `
		INSERT INTO review_queue (group_key, top_candidates) VALUES (?, ?)
		ON CONFLICT(group_key) DO UPDATE SET top_candidates = excluded.top_candidates, queued_at = CURRENT_TIMESTAMP`
)

// Store implements pipeline.GroupStore against the seat_rows/review_queue
// tables.
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

// Groups lists every distinct unmatched GroupKey (§4.7: only rows with no
// master_college_id yet are grouped for matching).
func (s *Store) Groups() ([]model.GroupEntry, error) {
	rows, err := s.db.Query(groupsQuery)
	if err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "listing unmatched groups"), matcherr.KindRowStoreError)
	}
	defer rows.Close()

	var groups []model.GroupEntry
	for rows.Next() {
		var key model.GroupKey
		var rowIDs string
		if err := rows.Scan(&key.NormalizedState, &key.NormalizedCollege, &key.NormalizedAddress, &key.CourseType, &rowIDs); err != nil {
			return nil, matcherr.WithKind(matcherr.Wrap(err, "scanning group row"), matcherr.KindRowStoreError)
		}
		groups = append(groups, model.GroupEntry{Key: key, RowIDs: splitIDs(rowIDs)})
	}
	if err := rows.Err(); err != nil {
		return nil, matcherr.WithKind(matcherr.Wrap(err, "iterating groups"), matcherr.KindRowStoreError)
	}
	return groups, nil
}

// FetchGroup loads every raw seat row belonging to key.
func (s *Store) FetchGroup(key model.GroupKey) (model.GroupEntry, error) {
	rows, err := s.db.Query(fetchGroupRowsQuery, key.NormalizedState, key.NormalizedCollege, key.NormalizedAddress, key.CourseType)
	if err != nil {
		return model.GroupEntry{}, matcherr.WithKind(matcherr.Wrap(err, "fetching group rows"), matcherr.KindRowStoreError)
	}
	defer rows.Close()

	entry := model.GroupEntry{Key: key}
	for rows.Next() {
		row, err := scanSeatRow(rows)
		if err != nil {
			return model.GroupEntry{}, err
		}
		entry.RowIDs = append(entry.RowIDs, row.RowID)
		entry.RawRows = append(entry.RawRows, row)
	}
	if err := rows.Err(); err != nil {
		return model.GroupEntry{}, matcherr.WithKind(matcherr.Wrap(err, "iterating group rows"), matcherr.KindRowStoreError)
	}
	return entry, nil
}

// UpdateGroupMatch writes the decision to every row sharing update.Key in
// one statement, so the group's rows never observe a partially-written
// match (§6 "atomic").
func (s *Store) UpdateGroupMatch(update model.GroupMatchUpdate) error {
	_, err := s.db.Exec(updateGroupMatchStmt,
		nullableID(update.CollegeID), nullableID(update.CourseID), nullableID(update.StateID),
		update.Score, update.Method, update.StateMismatchFlagged, update.Verified,
		update.Key.NormalizedState, update.Key.NormalizedCollege, update.Key.NormalizedAddress, update.Key.CourseType,
	)
	if err != nil {
		return matcherr.WithKind(matcherr.Wrap(err, "updating group match"), matcherr.KindRowStoreError)
	}
	return nil
}

// reviewCandidate is the JSON shape persisted in review_queue.top_candidates.
type reviewCandidate struct {
	CollegeID int64   `json:"college_id"`
	Score     float64 `json:"score"`
	Method    string  `json:"method"`
}

// QueueForReview persists a group's top (up to three) candidates for
// human review (§4.7 Pass 5).
func (s *Store) QueueForReview(entry model.ReviewEntry) error {
	candidates := make([]reviewCandidate, 0, len(entry.TopCandidates))
	for _, m := range entry.TopCandidates {
		candidates = append(candidates, reviewCandidate{
			CollegeID: int64(m.Candidate.College.ID),
			Score:     m.Score,
			Method:    m.Method,
		})
	}
	payload, err := json.Marshal(candidates)
	if err != nil {
		return matcherr.Wrap(err, "marshal review candidates")
	}

	groupKey := groupKeyString(entry.Key)
	if _, err := s.db.Exec(queueForReviewStmt, groupKey, string(payload)); err != nil {
		return matcherr.WithKind(matcherr.Wrap(err, "queuing group for review"), matcherr.KindRowStoreError)
	}
	return nil
}

func scanSeatRow(rows *sql.Rows) (model.SeatRow, error) {
	var row model.SeatRow
	var collegeID, courseID, stateID sql.NullInt64
	var score sql.NullFloat64
	var method sql.NullString
	var mismatch, verified int
	err := rows.Scan(
		&row.RowID, &row.RawCollege, &row.RawState, &row.RawCourse, &row.RawAddress, &row.CourseType,
		&row.NormalizedCollege, &row.NormalizedState, &row.NormalizedCourse, &row.NormalizedAddress,
		&collegeID, &courseID, &stateID, &score, &method, &mismatch, &verified,
	)
	if err != nil {
		return model.SeatRow{}, matcherr.WithKind(matcherr.Wrap(err, "scanning seat row"), matcherr.KindRowStoreError)
	}
	if collegeID.Valid {
		id := model.CollegeID(collegeID.Int64)
		row.MasterCollegeID = &id
	}
	if courseID.Valid {
		id := model.CourseID(courseID.Int64)
		row.MasterCourseID = &id
	}
	if stateID.Valid {
		id := model.StateID(stateID.Int64)
		row.MasterStateID = &id
	}
	if score.Valid {
		row.CollegeMatchScore = &score.Float64
	}
	row.CollegeMatchMethod = method.String
	row.StateMismatchFlagged = mismatch != 0
	row.Verified = verified != 0
	return row, nil
}

func nullableID[T ~int64](id *T) interface{} {
	if id == nil {
		return nil
	}
	return int64(*id)
}

func groupKeyString(key model.GroupKey) string {
	return key.NormalizedState + "|" + key.NormalizedCollege + "|" + key.NormalizedAddress + "|" + key.CourseType
}

func splitIDs(concatenated string) []string {
	if concatenated == "" {
		return nil
	}
	var ids []string
	start := 0
	for i := 0; i < len(concatenated); i++ {
		if concatenated[i] == ',' {
			ids = append(ids, concatenated[start:i])
			start = i + 1
		}
	}
	ids = append(ids, concatenated[start:])
	return ids
}
