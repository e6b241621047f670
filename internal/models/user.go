package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Password  string    `db:"password"   json:"-"`
	Email     string    `db:"email"      json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Sanitized returns a copy safe to hand to transport layers.
func (u *User) Sanitized() *User {
	cp := *u
	cp.Password = ""
	return &cp
}
