package hub

import "time"

// Frame types exchanged over the socket.
const (
	TypeAuth    = "auth"
	TypeAuthOK  = "auth_ok"
	TypeMessage = "message"
	TypeError   = "error"
)

// Frame is the single JSON envelope used in both directions. Fields that do
// not apply to a type are omitted.
type Frame struct {
	Type   string     `json:"type"`
	Token  string     `json:"token,omitempty"`
	UserID string     `json:"user_id,omitempty"`
	From   string     `json:"from,omitempty"`
	To     string     `json:"to,omitempty"`
	Body   string     `json:"body,omitempty"`
	SentAt *time.Time `json:"sent_at,omitempty"`
	Error  string     `json:"error,omitempty"`
}

func ErrorFrame(msg string) Frame {
	return Frame{Type: TypeError, Error: msg}
}
