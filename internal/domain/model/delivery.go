package model

import "time"

type DeliveryStatus string

const (
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	// DeliveryStatusDegraded means the original file was delivered because
	// the thumbnail remux failed.
	DeliveryStatusDegraded DeliveryStatus = "degraded"
	DeliveryStatusFailed   DeliveryStatus = "failed"
)

// Delivery is the archive record written once per finished job.
type Delivery struct {
	JobID       string         `json:"job_id"`
	Title       string         `json:"title"`
	Kind        MediaKind      `json:"kind"`
	Status      DeliveryStatus `json:"status"`
	LastError   string         `json:"last_error,omitempty"`
	SubmitterID int64          `json:"submitter_id"`
	EnqueuedAt  time.Time      `json:"enqueued_at"`
	FinishedAt  time.Time      `json:"finished_at"`
}
