package domain

import "time"

// SessionEventKind names a session mutation.
type SessionEventKind string

const (
	EventLogin        SessionEventKind = "login"
	EventLogout       SessionEventKind = "logout"
	EventUserUpdated  SessionEventKind = "user_updated"
	EventTokenRotated SessionEventKind = "token_rotated"
	EventRoleSwitched SessionEventKind = "role_switched"
)

// SessionEvent is the "session changed" signal every dependent view
// re-derives from.
type SessionEvent struct {
	SessionID    string           `json:"session_id"`
	UserID       string           `json:"user_id,omitempty"`
	Kind         SessionEventKind `json:"kind"`
	Role         Role             `json:"role,omitempty"`
	PreviousRole Role             `json:"previous_role,omitempty"`
	At           time.Time        `json:"at"`
}
