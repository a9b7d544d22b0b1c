// internal/models/response.go
package models

// AgentResponse is what a single ProcessMessage call hands back to the caller.
type AgentResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Intent  string `json:"intent,omitempty"`
}

// Error tags surfaced to callers.
const (
	ErrorTagAlreadyProcessing = "Already processing"
	ErrorTagTimeout           = "Timeout"
	ErrorTagInternal          = "Internal error"
)

// Fixed messages for the policy outcomes.
const (
	BusyMessage    = "I'm still processing your previous question. Please wait a moment."
	TimeoutMessage = "Sorry, that took too long. Please try a simpler question."
)

// Stage is a dispatcher state.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageClassifying Stage = "classifying"
	StageQuerying    Stage = "querying"
	StageGenerating  Stage = "generating"
	StageDone        Stage = "done"
	StageTimedOut    Stage = "timed_out"
	StageAlreadyBusy Stage = "already_busy"
)
