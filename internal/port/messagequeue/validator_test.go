package messagequeue

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		data    string
		wantErr bool
	}{
		{"created ok", SubjectTaskCreated, `{"task_id":"1","bucket":"2026-10-15","title":"a","status":"pending","order":1}`, false},
		{"status ok", SubjectTaskStatus, `{"task_id":"1","status":"completed"}`, false},
		{"deleted ok", SubjectTaskDeleted, `{"task_id":"1","bucket":"2026-10-15"}`, false},
		{"missing task id", SubjectTaskStatus, `{"status":"completed"}`, true},
		{"wrong type", SubjectTaskCreated, `{"task_id":1}`, true},
		{"invalid json", SubjectTaskCreated, `{`, true},
		{"unknown subject any json", "other.subject", `[1,2]`, false},
		{"unknown subject invalid json", "other.subject", `nope`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.subject, []byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
