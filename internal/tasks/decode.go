package tasks

import (
	"encoding/json"
	"errors"

	"github.com/povarna/generative-ai-agents/module-tasks-agent/internal/models"
)

// DecodeInput parses a raw JSON request. A missing or non-string
// moduleContent is reported as a ValidationError.
func DecodeInput(data []byte) (models.GenerateModuleTasksInput, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.GenerateModuleTasksInput{}, &ValidationError{Field: "body", Reason: "must be a JSON object"}
	}

	field, ok := raw["moduleContent"]
	if !ok {
		return models.GenerateModuleTasksInput{}, &ValidationError{Field: "moduleContent", Reason: "is required"}
	}

	var content string
	if err := json.Unmarshal(field, &content); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return models.GenerateModuleTasksInput{}, &ValidationError{Field: "moduleContent", Reason: "must be a string"}
		}
		return models.GenerateModuleTasksInput{}, &ValidationError{Field: "moduleContent", Reason: err.Error()}
	}

	return models.GenerateModuleTasksInput{ModuleContent: content}, nil
}
