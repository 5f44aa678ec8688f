package logging

// Standard field names for structured logging. Use these constants instead
// of raw strings so log queries stay stable.
const (
	FieldRequestID    = "request_id"
	FieldEvaluationID = "evaluation_id"
	FieldStudentID    = "student_id"
	FieldSubject      = "subject"

	FieldRuleBase = "rule_base"
	FieldSource   = "source"
	FieldLabel    = "label"
	FieldScore    = "score"

	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldCount      = "count"
	FieldAddress    = "address"
)
