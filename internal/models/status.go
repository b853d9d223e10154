package models

// Status is the label of a trigger-field option driving a row through
// Queued -> In Progress -> Sent.
type Status string

const (
	StatusQueued     Status = "Queued"
	StatusInProgress Status = "In Progress"
	StatusSent       Status = "Sent"
)

// StatusIDs holds the option identifiers the three labels resolve to on one trigger field.
type StatusIDs struct {
	Queued     int
	InProgress int
	Sent       int
}
