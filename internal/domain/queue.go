package domain

import "time"

// QueueStatus enumerates batch-driver milestones for one queued concept.
type QueueStatus string

const (
	QueuePending   QueueStatus = "pending"
	QueueCompleted QueueStatus = "completed"
	QueueFailed    QueueStatus = "failed"
	QueueSkipped   QueueStatus = "skipped"
)

// QueueItem is one concept awaiting (or done with) factory processing.
type QueueItem struct {
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Category    string      `json:"category"`
	Status      QueueStatus `json:"status"`
	Attempts    int         `json:"attempts"`
	LastError   string      `json:"lastError,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}
