// Package viewmodel holds the screen state of the client: what each
// screen shows, what its forms contain, and how backend results and
// failures land in it. Viewmodels are long-lived, one per screen, and
// safe for concurrent handlers.
package viewmodel

// Status is the lifecycle of a screen's backend data.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)
