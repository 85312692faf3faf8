package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ParticipantInfo: то, что приходит из handshake, роль никем не проверяется.
type ParticipantInfo struct {
	ID   string
	Name string
	Role string
}

func (p ParticipantInfo) IsAdmin() bool { return p.Role == RoleAdmin }

type Participant struct {
	ID       string     `json:"participantId"`
	Name     string     `json:"participantName"`
	Role     string     `json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
	LeftAt   *time.Time `json:"leftAt,omitempty"`
}
