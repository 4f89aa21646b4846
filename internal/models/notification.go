package models

import "time"

const (
	NotificationTypeTaskAssignment   = "TASK_ASSIGNMENT"
	NotificationTypeTaskReassignment = "TASK_REASSIGNMENT"
)

// Notification rows are owned by their recipient: only the recipient can
// mark one as read or delete it, and nothing ever updates them otherwise.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
