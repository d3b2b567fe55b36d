package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID).
	FieldRequestID = "request_id"

	// FieldUserID is the owning user of the job being worked on.
	FieldUserID = "user_id"

	// FieldJobID is the conversion job ID.
	FieldJobID = "job_id"

	// FieldFile is the source file name of a conversion task.
	FieldFile = "file"

	// FieldConverter is the converter selected for a task.
	FieldConverter = "converter"

	// FieldComponent is the component/module name.
	FieldComponent = "component"
)

// Standard metric fields, attached at the log call site.
const (
	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field.
	FieldCount = "count"

	// FieldStatus is the operation status.
	FieldStatus = "status"
)
