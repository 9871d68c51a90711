package logger

// Standard field names for consistent logging.
const (
	FieldService   = "service"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"
	FieldTrainerID = "trainer_id"
	FieldSessionID = "session_id"
	FieldRecordID  = "record_id"
	FieldTaskType  = "task_type"
)
