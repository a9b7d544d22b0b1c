package processmessage

import (
	"fmt"

	"restaurant-agent/internal/common/validation"
)

// GetInputSchema describes the job variables the worker accepts.
func GetInputSchema(maxQuestion int) *validation.Schema {
	question := `{"type": "string", "minLength": 1}`
	if maxQuestion > 0 {
		question = fmt.Sprintf(`{"type": "string", "minLength": 1, "maxLength": %d}`, maxQuestion)
	}
	return validation.MustCompile(`{
		"type": "object",
		"required": ["question"],
		"properties": {
			"question": ` + question + `,
			"sessionId": {"type": "string"}
		}
	}`)
}
