package model

// SnapshotResponse is returned by the backend on successful snapshot
// ingestion.
type SnapshotResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	AgentID    string `json:"agent_id"`
	ReceivedAt int64  `json:"received_at"`

	Directives Directives `json:"directives"`
}

// SnapshotErrorResponse is returned on rejection (4xx errors).
type SnapshotErrorResponse struct {
	Success           bool   `json:"success"`
	Error             string `json:"error"`
	Message           string `json:"message"`
	RetryAfterSeconds *int   `json:"retry_after_seconds,omitempty"`
}

// Directives tell the agent what to do next.
type Directives struct {
	NextSnapshotInSeconds int  `json:"next_snapshot_in_seconds"`
	RetryAfterSeconds     *int `json:"retry_after_seconds,omitempty"`
}
