package messagequeue

import (
	"encoding/json"
	"fmt"
)

// Validate checks whether data is valid JSON conforming to the schema
// associated with the given subject. Unknown subjects only need valid JSON.
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}

	switch subject {
	case SubjectTaskCreated, SubjectTaskStatus, SubjectTaskDeleted:
	default:
		return nil
	}

	var p TaskEventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", subject, err)
	}
	if p.TaskID == "" {
		return fmt.Errorf("schema validation failed for %s: task_id is required", subject)
	}
	return nil
}
