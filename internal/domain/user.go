package domain

import (
	"strconv"
	"time"
)

type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FirstName string    `db:"first_name" json:"first_name"`
	XP        int64     `db:"xp" json:"xp"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DisplayName is the name shown to an opponent: first name, then username,
// then a generic label.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Player " + strconv.FormatInt(u.ID, 10)
}
