// Package model holds the shared record types of §3 that every other
// core package (masterindex, candidate, scorer, pipeline, verify,
// rowstore, masterstore) passes between each other. Centralizing them
// here is what lets those packages avoid import cycles and dict-of-dict
// records (§9).
package model

import "github.com/sbvh/collegematch/internal/coursestream"

type CollegeID int64
type CourseID int64
type StateID int64

// MasterCollege is one canonical college/institution in the master
// catalogue (§3).
type MasterCollege struct {
	ID                CollegeID
	Name              string
	Address           string
	StateID           StateID
	StateName         string
	Stream            coursestream.Stream
	NormalizedName    string
	CompositeKey      string
	NormalizedAddress string
	LocationKeywords  map[string]struct{}
	Pincode           string
}

// MasterCourse is one canonical course/degree in the master catalogue.
type MasterCourse struct {
	ID             CourseID
	Name           string
	NormalizedName string
	Stream         coursestream.Stream
}

// MasterState is one entry of the closed 36-state/UT enumeration.
type MasterState struct {
	ID   StateID
	Name string
}

// AliasKind enumerates what an Alias maps: a college name, course name,
// state name, or an abbreviation rule.
type AliasKind string

const (
	AliasCollege      AliasKind = "COLLEGE"
	AliasCourse       AliasKind = "COURSE"
	AliasState        AliasKind = "STATE"
	AliasAbbreviation AliasKind = "ABBREVIATION"
)

// Alias is one operator- or bootstrap-supplied mapping from a messy
// string to a canonical target.
type Alias struct {
	AliasText       string
	CanonicalTarget string
	Kind            AliasKind
	Confidence      float64
}

// MatchRequest is the already-normalized input to CandidateGenerator and
// Scorer (§4.5).
type MatchRequest struct {
	College string
	State   string
	Address string
	Course  string
}

// CandidateProvenance names which generator stage produced a Candidate.
type CandidateProvenance string

const (
	ProvenanceCompositeExact CandidateProvenance = "CompositeExact"
	ProvenanceCodeInAddress  CandidateProvenance = "CodeInAddress"
	ProvenanceExactName      CandidateProvenance = "ExactNameInState"
	ProvenanceFTS            CandidateProvenance = "FTSIntersection"
	ProvenancePhonetic       CandidateProvenance = "PhoneticBucket"
)

// Candidate is one bounded-list entry emitted by CandidateGenerator.
type Candidate struct {
	College    *MasterCollege
	Provenance CandidateProvenance
	Prescore   float64
}

// ScoreBreakdown records every component the Scorer combined, so method
// labels and reviewers can see why a score landed where it did.
type ScoreBreakdown struct {
	NameScore       float64
	AddressScore    float64
	PincodeBoost    float64
	NERBoost        float64
	PrescoreWeight  float64
	StateMismatch   bool
	UltraGeneric    bool
}

// ScoredMatch is the Scorer's output for one (request, candidate) pair.
type ScoredMatch struct {
	Candidate  Candidate
	Score      float64
	Components ScoreBreakdown
	Method     string
}

// GroupKey is the deduplicated unit of matching work (§3's GroupEntry
// key): (normalized_state, normalized_college, normalized_address,
// course_type).
type GroupKey struct {
	NormalizedState   string
	NormalizedCollege string
	NormalizedAddress string
	CourseType        string
}

// GroupEntry is one group of seat rows sharing a GroupKey.
type GroupEntry struct {
	Key      GroupKey
	RowIDs   []string
	RawRows  []SeatRow
}

// SeatRow mirrors the row-store's seat_rows columns the core reads/writes
// (§3, §6).
type SeatRow struct {
	RowID                string
	RawCollege           string
	RawState             string
	RawCourse            string
	RawAddress           string
	CourseType           string
	NormalizedCollege    string
	NormalizedState      string
	NormalizedCourse     string
	NormalizedAddress    string
	MasterCollegeID      *CollegeID
	MasterCourseID       *CourseID
	MasterStateID        *StateID
	CollegeMatchScore    *float64
	CollegeMatchMethod   string
	StateMismatchFlagged bool
	Verified             bool
}

// GroupMatchUpdate is the atomic write CandidateGenerator/Scorer/Pipeline
// produce for one group (§6 update_group_match).
type GroupMatchUpdate struct {
	Key                  GroupKey
	CollegeID            *CollegeID
	CourseID             *CourseID
	StateID              *StateID
	Score                float64
	Method               string
	Verified             bool
	StateMismatchFlagged bool
}

// ReviewEntry is one Pass-5 human-queue entry (§4.7 Pass 5).
type ReviewEntry struct {
	Key            GroupKey
	TopCandidates  []ScoredMatch
}
