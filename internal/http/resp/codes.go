package resp

// Error and status codes carried in JSON response bodies.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeNotifierFailed      = "NOTIFIER_FAILED"
	CodeNotifierUnavailable = "NOTIFIER_UNAVAILABLE"
	CodeQueued              = "QUEUED"
	CodeQueueDisabled       = "QUEUE_DISABLED"
)
