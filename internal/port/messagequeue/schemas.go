package messagequeue

// TaskEventPayload is the schema for all tasks.* messages.
// Deletion events carry only TaskID and Bucket.
type TaskEventPayload struct {
	TaskID               string `json:"task_id"`
	Bucket               string `json:"bucket"`
	Title                string `json:"title,omitempty"`
	Status               string `json:"status,omitempty"`
	Order                int    `json:"order"`
	StartTime            string `json:"start_time,omitempty"`
	CompletedDescription string `json:"completed_description,omitempty"`
}
