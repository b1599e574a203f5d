package logctx

// Standard field names for consistent structured logging across
// collegematch. Use these constants instead of raw strings.
const (
	FieldGroupKey  = "group_key"
	FieldRowID     = "row_id"
	FieldCollegeID = "college_id"
	FieldState     = "state"
	FieldStream    = "stream"
	FieldPass      = "pass"
	FieldMethod    = "method"
	FieldScore     = "score"

	FieldComponent = "component"
	FieldOperation = "operation"

	FieldDurationMS = "duration_ms"

	FieldError     = "error"
	FieldErrorKind = "error_kind"

	FieldWorkerID = "worker_id"
	FieldCount    = "count"
)
