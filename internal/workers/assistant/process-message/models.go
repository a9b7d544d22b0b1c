// internal/workers/assistant/process-message/models.go
package processmessage

type Input struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
}

type Output struct {
	Answer    string `json:"answer"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Intent    string `json:"intent,omitempty"`
	SessionID string `json:"sessionId"`
}
