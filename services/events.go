package services

// Typen der Events auf dem Sync-Progress-Stream.
const (
	EventStatus   = "status"
	EventProgress = "progress"
	EventError    = "error"
	EventComplete = "complete"
	EventFatal    = "fatal"
)

// Aktionen eines Progress-Events.
const (
	ActionProcessed = "processed"
	ActionSkipped   = "skipped"
)

// EmitFunc liefert Events an den Konsumenten (SSE-Stream oder Log).
type EmitFunc func(event any)

// StatusEvent ist eine informative Meldung ohne Zähler.
type StatusEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Tenant  string `json:"tenant,omitempty"`
	Total   int    `json:"total,omitempty"`
}

// ProgressEvent wird nach jedem verarbeiteten oder übersprungenen Trial emittiert.
type ProgressEvent struct {
	Type      string `json:"type"`
	NCTID     string `json:"nctId"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
	Current   int    `json:"current"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}

// ErrorEvent meldet einen Fehler für einen einzelnen Trial; der Lauf geht weiter.
type ErrorEvent struct {
	Type      string `json:"type"`
	NCTID     string `json:"nctId"`
	Message   string `json:"message"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
	Current   int    `json:"current"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
}

// CompleteEvent ist die Abschlussmeldung mit den Gesamtzählern.
type CompleteEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
	Total     int    `json:"total"`
	Tenant    string `json:"tenant,omitempty"`
}

// FatalEvent beendet den Lauf; danach wird der Stream geschlossen.
type FatalEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
