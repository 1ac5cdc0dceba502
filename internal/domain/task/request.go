package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Strob0t/TaskScheduler/internal/domain"
)

// startTimeLayouts are tried in order. The zoneless layouts match what an
// HTML datetime-local input submits.
var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// CreateRequest holds the fields needed to create a new task.
// Order is kept raw because browsers submit it as a string and agents as a number.
type CreateRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartTime   string          `json:"startTime"`
	Order       json.RawMessage `json:"order,omitempty"`
}

// UpdateStatusRequest holds the fields accepted by a status update.
type UpdateStatusRequest struct {
	Status               string `json:"status"`
	CompletedDescription string `json:"completedDescription"`
}

// OrderValue encodes n for CreateRequest.Order.
func OrderValue(n int) json.RawMessage {
	return json.RawMessage(strconv.Itoa(n))
}

// Validate checks the request and returns the parsed start time and order.
func (r *CreateRequest) Validate(loc *time.Location) (startTime time.Time, order int, err error) {
	if strings.TrimSpace(r.Title) == "" {
		return time.Time{}, 0, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(r.StartTime) == "" {
		return time.Time{}, 0, fmt.Errorf("%w: startTime is required", domain.ErrValidation)
	}
	startTime, err = ParseStartTime(r.StartTime, loc)
	if err != nil {
		return time.Time{}, 0, err
	}
	order, err = ParseOrder(r.Order)
	if err != nil {
		return time.Time{}, 0, err
	}
	return startTime, order, nil
}

// ParseStatus converts s to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", domain.ErrValidation, s)
	}
	return st, nil
}

// ParseOrder accepts a JSON integer or a string holding one.
// Absent, null and empty-string values mean 0; anything else is rejected.
func ParseOrder(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("%w: order must be an integer", domain.ErrValidation)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, nil
		}
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: order must be an integer, got %s", domain.ErrValidation, raw)
	}
	return n, nil
}

// ParseStartTime parses an ISO-8601 timestamp. Values without a zone offset
// are interpreted in loc.
func ParseStartTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for i, layout := range startTimeLayouts {
		var (
			t   time.Time
			err error
		)
		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: startTime %q is not an ISO-8601 timestamp", domain.ErrValidation, s)
}
