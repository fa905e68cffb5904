package model

// Destination is the group/topic pair every delivery is sent to.
// It is set at runtime by the operator and read by value right before
// each send, so an update never races an in-flight delivery.
type Destination struct {
	ChatID  int64 `json:"chat_id"`
	TopicID int64 `json:"topic_id"`
}

func (d Destination) IsZero() bool { return d.ChatID == 0 }
