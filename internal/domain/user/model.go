package user

import (
	"fmt"
	"time"
)

const (
	// DefaultHandicap is given to users restored from a dangling reference.
	DefaultHandicap = 28.0
	GuestName       = "Guest"
)

type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Handicap    float64   `json:"handicap"`
	Placeholder bool      `json:"placeholder,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u *User) Key() int64 {
	return u.ID
}

func (u *User) SetKey(id int64) {
	u.ID = id
}

func PlaceholderName(id int64) string {
	return fmt.Sprintf("Restored_User_%d", id)
}

func Placeholder(id int64) User {
	return User{
		ID:          id,
		Name:        PlaceholderName(id),
		Handicap:    DefaultHandicap,
		Placeholder: true,
	}
}
