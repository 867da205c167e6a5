package domain

import "time"

// User is a staff member who can sign in to the dashboard.
type User struct {
	UserID       string `json:"userID"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}

// Session backs one issued token; its ID is the token's jti.
type Session struct {
	SessionID string     `json:"sessionID"`
	UserID    string     `json:"userID"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// IsValidAt reports whether the session may still authenticate requests.
func (s Session) IsValidAt(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
