package model

import "time"

type MediaKind string

const (
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
)

// MediaJob is one submitted media item plus its derived metadata,
// serialized as JSON into the queue and consumed by the worker.
type MediaJob struct {
	ID           string    `json:"id"`
	SourceRef    string    `json:"source_ref"` // Telegram file_id of the submitted media
	Kind         MediaKind `json:"kind"`
	RawCaption   string    `json:"raw_caption"`
	Title        string    `json:"title"`
	ShortTitle   string    `json:"short_title"`
	SafeFilename string    `json:"safe_filename"`
	SubmitterID  int64     `json:"submitter_id"`
	Attempts     int       `json:"attempts"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}

func (j *MediaJob) Validate() bool {
	return j.ID != "" && j.SourceRef != "" &&
		(j.Kind == MediaKindVideo || j.Kind == MediaKindDocument) &&
		j.Title != "" && j.ShortTitle != "" && j.SafeFilename != ""
}
