package metrics

import "time"

// Label names shared by the collectors.
const (
	LabelDestination = "destination"
	LabelSeverity    = "severity"
	LabelOperation   = "operation"
	LabelStatus      = "status"
)

// ShutdownTimeout is the timeout for graceful shutdown of the metrics endpoint.
const ShutdownTimeout = 5 * time.Second
