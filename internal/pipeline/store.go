package pipeline

import (
	"github.com/sbvh/collegematch/internal/coursestream"
	"github.com/sbvh/collegematch/internal/model"
)

// GroupStore is the subset of the row store (§6) the orchestrator needs:
// iterate unmatched groups, fetch one with its rows, write a group's
// match atomically, or hand it to the human review queue.
type GroupStore interface {
	Groups() ([]model.GroupEntry, error)
	FetchGroup(key model.GroupKey) (model.GroupEntry, error)
	UpdateGroupMatch(update model.GroupMatchUpdate) error
	QueueForReview(entry model.ReviewEntry) error
}

// CourseResolver resolves a normalized course name to a MasterCourse
// belonging to the given stream (§4.7 "cascading fields": master_course_id
// is resolved independently of master_college_id, from CourseStreamMapper
// plus the normalized course name).
type CourseResolver interface {
	ResolveCourse(normalizedCourse string, stream coursestream.Stream) (model.CourseID, bool)
}

// StateResolver resolves a canonicalized state name to its MasterState id.
type StateResolver interface {
	ResolveState(canonicalName string) (model.StateID, bool)
}
