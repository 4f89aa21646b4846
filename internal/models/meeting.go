package models

import (
	"time"
)

const (
	MeetingStatusScheduled = "scheduled"
	MeetingStatusOngoing   = "ongoing"
	MeetingStatusCompleted = "completed"
	MeetingStatusCancelled = "cancelled"
)

// Meeting intervals are half-open: a meeting occupies [StartTime, EndTime).
// Two meetings conflict iff each one starts before the other ends.
type Meeting struct {
	ID             string     `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Description    *string    `db:"description" json:"description"`
	StartTime      time.Time  `db:"start_time" json:"start_time"`
	EndTime        time.Time  `db:"end_time" json:"end_time"`
	MeetingLink    *string    `db:"meeting_link" json:"meeting_link"`
	Status         string     `db:"status" json:"status"`
	IsRecurring    bool       `db:"is_recurring" json:"is_recurring"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	OrganizationID *string    `db:"organization_id" json:"organization_id"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

type MeetingParticipant struct {
	ID        string    `db:"id" json:"id"`
	MeetingID string    `db:"meeting_id" json:"meeting_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
