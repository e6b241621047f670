package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one authenticated device for one user.
// (user_id, device_id) is the primary key: at most one live session per device.
// Token holds a one-way hash of the current refresh secret, never the secret itself.
type Session struct {
	UserID     uuid.UUID `db:"user_id"      json:"userId"`
	DeviceID   uuid.UUID `db:"device_id"    json:"deviceId"`
	Token      string    `db:"token"        json:"-"`
	CreatedAt  time.Time `db:"created_at"   json:"createdAt"`
	LastUsedAt time.Time `db:"last_used_at" json:"lastUsedAt"`
	ExpiresAt  time.Time `db:"expires_at"   json:"expiresAt"`
}

// IsExpired treats the boundary as expired: a session whose expiry
// equals now is no longer valid.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
