package domain

import "time"

type ScanJobStatus string

const (
	ScanJobQueued     ScanJobStatus = "queued"
	ScanJobProcessing ScanJobStatus = "processing"
	ScanJobReady      ScanJobStatus = "ready"
	ScanJobFailed     ScanJobStatus = "failed"
)

// ScanJob tracks an asynchronous batch extraction. The request payload
// lives in object storage under StorageKey.
type ScanJob struct {
	ID         string        `json:"id"`
	Mode       ScanMode      `json:"mode"`
	StorageKey string        `json:"-"`
	Status     ScanJobStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
	Result     *BatchResult  `json:"result,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
