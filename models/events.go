package models

import "time"

// ReviewStateChangeEvent is published after a review decision has been persisted.
type ReviewStateChangeEvent struct {
	Job            ReviewJob
	PreviousStatus ReviewStatus
	CurrentStatus  ReviewStatus
}

// ContentStatusEvent records one content status change. PreviousStatus is empty
// when the content was just created. Applied marks a change the publisher has
// already written to metadata; consumers only record it.
type ContentStatusEvent struct {
	Content        ContentIdentity
	UserID         int64
	Timestamp      time.Time
	PreviousStatus ContentStatus
	CurrentStatus  ContentStatus
	Applied        bool
}
