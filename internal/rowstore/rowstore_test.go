package rowstore

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbvh/collegematch/internal/db"
	"github.com/sbvh/collegematch/internal/model"
)

func newTestConn(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn, nil))
	return conn
}

func seedRow(t *testing.T, conn *sql.DB, row model.SeatRow) {
	t.Helper()
	_, err := conn.Exec(
		`INSERT INTO seat_rows (row_id, raw_college, raw_state, raw_course, raw_address, course_type,
			normalized_college, normalized_state, normalized_course, normalized_address)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.RowID, row.RawCollege, row.RawState, row.RawCourse, row.RawAddress, row.CourseType,
		row.NormalizedCollege, row.NormalizedState, row.NormalizedCourse, row.NormalizedAddress,
	)
	require.NoError(t, err)
}

func TestGroupsReturnsOnlyUnmatchedRowsGroupedByKey(t *testing.T) {
	conn := newTestConn(t)
	seedRow(t, conn, model.SeatRow{RowID: "r1", RawCollege: "X", RawState: "KL", RawCourse: "MBBS", NormalizedState: "KERALA", NormalizedCollege: "GMC", NormalizedAddress: "TVM", CourseType: "MBBS"})
	seedRow(t, conn, model.SeatRow{RowID: "r2", RawCollege: "X", RawState: "KL", RawCourse: "MBBS", NormalizedState: "KERALA", NormalizedCollege: "GMC", NormalizedAddress: "TVM", CourseType: "MBBS"})
	seedRow(t, conn, model.SeatRow{RowID: "r3", RawCollege: "Y", RawState: "TN", RawCourse: "BDS", NormalizedState: "TAMIL NADU", NormalizedCollege: "GDC", NormalizedAddress: "CHN", CourseType: "BDS"})

	store := New(conn, nil)
	groups, err := store.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 2)

	var gmc *model.GroupEntry
	for i := range groups {
		if groups[i].Key.NormalizedCollege == "GMC" {
			gmc = &groups[i]
		}
	}
	require.NotNil(t, gmc)
	require.Len(t, gmc.RowIDs, 2)
}

func TestUpdateGroupMatchWritesEveryRowInGroup(t *testing.T) {
	conn := newTestConn(t)
	key := model.GroupKey{NormalizedState: "KERALA", NormalizedCollege: "GMC", NormalizedAddress: "TVM", CourseType: "MBBS"}
	seedRow(t, conn, model.SeatRow{RowID: "r1", NormalizedState: key.NormalizedState, NormalizedCollege: key.NormalizedCollege, NormalizedAddress: key.NormalizedAddress, CourseType: key.CourseType})
	seedRow(t, conn, model.SeatRow{RowID: "r2", NormalizedState: key.NormalizedState, NormalizedCollege: key.NormalizedCollege, NormalizedAddress: key.NormalizedAddress, CourseType: key.CourseType})

	store := New(conn, nil)
	collegeID := model.CollegeID(7)
	require.NoError(t, store.UpdateGroupMatch(model.GroupMatchUpdate{
		Key: key, CollegeID: &collegeID, Score: 0.91, Method: "pass2+exact_name", Verified: true,
	}))

	entry, err := store.FetchGroup(key)
	require.NoError(t, err)
	require.Len(t, entry.RawRows, 2)
	for _, r := range entry.RawRows {
		require.NotNil(t, r.MasterCollegeID)
		require.Equal(t, collegeID, *r.MasterCollegeID)
		require.True(t, r.Verified)
	}
}

func TestQueueForReviewPersistsTopCandidates(t *testing.T) {
	conn := newTestConn(t)
	store := New(conn, nil)
	key := model.GroupKey{NormalizedState: "KERALA", NormalizedCollege: "GMC", NormalizedAddress: "TVM", CourseType: "MBBS"}
	college := &model.MasterCollege{ID: 3, Name: "Government Medical College"}

	err := store.QueueForReview(model.ReviewEntry{
		Key: key,
		TopCandidates: []model.ScoredMatch{
			{Candidate: model.Candidate{College: college}, Score: 0.7, Method: "pass3+fts"},
		},
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM review_queue`).Scan(&count))
	require.Equal(t, 1, count)
}
