package models

import "time"

// ActivityLog rows are append-only. They are created by every
// state-changing operation and are never updated or deleted; the live
// NEW_ACTIVITY_LOG broadcast is best-effort on top of them.
type ActivityLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	Entity    string    `db:"entity" json:"entity"`
	EntityID  *string   `db:"entity_id" json:"entity_id"`
	Details   *string   `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined from the actor at read/write time.
	ActorName      string  `db:"actor_name" json:"actor_name"`
	OrganizationID *string `db:"organization_id" json:"organization_id"`
}

// Activity log entities
const (
	ActivityLogAuthEntity         = "Auth"
	ActivityLogUserEntity         = "User"
	ActivityLogTaskEntity         = "Task"
	ActivityLogMeetingEntity      = "Meeting"
	ActivityLogOrganizationEntity = "Organization"
)

// Actions recorded against those entities
const (
	ActivityLogSignupInitiatedAction      = "USER_SIGNUP_INITIATED"
	ActivityLogEmailVerifiedAction        = "EMAIL_VERIFIED"
	ActivityLogLoginAction                = "USER_LOGIN"
	ActivityLogPasswordResetRequestAction = "PASSWORD_RESET_REQUEST"
	ActivityLogPasswordChangedAction      = "PASSWORD_CHANGED"
	ActivityLogTokenRefreshedAction       = "TOKEN_REFRESHED"
	ActivityLogAvatarUpdatedAction        = "AVATAR_UPDATED"

	ActivityLogTaskCreatedAction = "TASK_CREATED"
	ActivityLogTaskUpdatedAction = "TASK_UPDATED"
	ActivityLogTaskDeletedAction = "TASK_DELETED"

	ActivityLogMeetingCreatedAction   = "MEETING_CREATED"
	ActivityLogMeetingUpdatedAction   = "MEETING_UPDATED"
	ActivityLogMeetingCancelledAction = "MEETING_CANCELLED"
	ActivityLogMeetingDeletedAction   = "MEETING_DELETED"
	ActivityLogMeetingJoinedAction    = "MEETING_JOINED"

	ActivityLogOrgCreatedAction = "ORG_CREATED"
)
