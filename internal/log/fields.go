package log

// FieldComponent tags every record with the subsystem that produced it.
const FieldComponent = "component"

// Component names, one per binary.
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
