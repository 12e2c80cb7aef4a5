package domain

import "time"

// ChangeType is the kind of row change delivered by a subscription
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	ChangeAll    ChangeType = "*"
)

// ChangeEvent is a committed row change pushed by the backend
type ChangeEvent struct {
	Type            ChangeType `json:"type"`
	Schema          string     `json:"schema"`
	Table           string     `json:"table"`
	Record          Record     `json:"record,omitempty"`
	OldRecord       Record     `json:"old_record,omitempty"`
	CommitTimestamp time.Time  `json:"commit_timestamp"`
}

// SubscribeOptions narrows a subscription
type SubscribeOptions struct {
	// Event restricts delivery to one change type; empty means all
	Event ChangeType

	// Schema defaults to "public"
	Schema string

	// Filter restricts delivery to rows matching a single predicate
	Filter *Filter
}
