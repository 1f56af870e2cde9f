package audit

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/taskward/taskward/jobs"
)

// Status of the audited operation.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Resource type classification values.
const (
	ResourceTask    = "task"
	ResourceUser    = "user"
	ResourceRole    = "role"
	ResourceUnknown = "unknown"
)

// Entry is one immutable audit record.
type Entry struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"userId"`
	UserName     string          `json:"userName,omitempty"`
	UserEmail    string          `json:"userEmail,omitempty"`
	Action       string          `json:"action"`
	Resource     string          `json:"resource"`
	ResourceType string          `json:"resourceType"`
	Status       string          `json:"status"`
	Changes      json.RawMessage `json:"changes,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	IPAddress    string          `json:"ipAddress,omitempty"`
	UserAgent    string          `json:"userAgent,omitempty"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

// Stats aggregates recorded activity for the dashboard endpoint.
type Stats struct {
	Total        int64          `json:"total"`
	SuccessCount int64          `json:"successCount"`
	ErrorCount   int64          `json:"errorCount"`
	TopActions   []ActionCount  `json:"topActions"`
	TopUsers     []UserActivity `json:"topUsers"`
}

// ActionCount pairs an action label with its frequency.
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// UserActivity pairs a user with the number of entries they produced.
type UserActivity struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
	Count    int64  `json:"count"`
}

// ClassifyResource derives the resource type from a request path.
func ClassifyResource(path string) string {
	switch {
	case strings.Contains(path, "/tasks"):
		return ResourceTask
	case strings.Contains(path, "/users"):
		return ResourceUser
	case strings.Contains(path, "/roles"):
		return ResourceRole
	default:
		return ResourceUnknown
	}
}

// EntryFromPayload converts a queued payload back into an Entry for storage.
func EntryFromPayload(p jobs.AuditRecordPayload) Entry {
	status := p.Status
	if status != StatusSuccess && status != StatusError {
		status = StatusError
	}
	return Entry{
		UserID:       p.UserID,
		Action:       p.Action,
		Resource:     p.Resource,
		ResourceType: p.ResourceType,
		Status:       status,
		Changes:      p.Changes,
		ErrorMessage: p.ErrorMessage,
		IPAddress:    p.IPAddress,
		UserAgent:    p.UserAgent,
		OccurredAt:   p.OccurredAt,
	}
}

func payloadFromEntry(e Entry) jobs.AuditRecordPayload {
	return jobs.AuditRecordPayload{
		UserID:       e.UserID,
		Action:       e.Action,
		Resource:     e.Resource,
		ResourceType: e.ResourceType,
		Status:       e.Status,
		Changes:      e.Changes,
		ErrorMessage: e.ErrorMessage,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		OccurredAt:   e.OccurredAt,
	}
}
