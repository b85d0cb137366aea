package metrics

// Common metric label keys to keep telemetry consistent/searchable.
const (
	LabelCommand = "command"
	LabelOutcome = "outcome"
	LabelMethod  = "method"
	LabelRoute   = "route"
	LabelStatus  = "status"
)
