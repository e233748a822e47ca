package logging

// Field names used across the bot so log output can be filtered consistently.
const (
	FieldComponent  = "component"
	FieldChatID     = "chat_id"
	FieldCommand    = "command"
	FieldCallback   = "callback"
	FieldStep       = "step"
	FieldEvent      = "event"
	FieldFile       = "file_path"
	FieldDate       = "date"
	FieldStartDate  = "start_date"
	FieldEndDate    = "end_date"
	FieldReport     = "report"
	FieldJob        = "job"
	FieldSchedule   = "schedule"
	FieldCategory   = "category"
	FieldStore      = "store"
	FieldAmount     = "amount"
	FieldIndex      = "index"
	FieldCount      = "count"
	FieldReason     = "reason"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldOutputFile = "output_file"
	FieldModel      = "model"
)
