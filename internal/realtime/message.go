package realtime

import (
	"encoding/json"
	"time"
)

// Event names pushed over the socket. Clients subscribe by connecting;
// routing happens server-side from the authenticated identity.
const (
	EventNewActivityLog    = "NEW_ACTIVITY_LOG"
	EventMeetingCreated    = "MEETING_CREATED"
	EventMeetingUpdated    = "MEETING_UPDATED"
	EventParticipantJoined = "PARTICIPANT_JOINED"
	EventOrgJoined         = "ORG_JOINED"
	EventNewNotification   = "NEW_NOTIFICATION"
	EventTaskCreated       = "TASK_CREATED"
)

// Envelope is the wire format for every push.
type Envelope struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEnvelope(event string, payload any) *Envelope {
	return &Envelope{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
