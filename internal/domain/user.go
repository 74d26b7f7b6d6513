package domain

import "time"

type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone"`
	Name               string     `json:"name"`
	Enabled            bool       `json:"-"`
	AccountLockedUntil *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// PublicUser es la vista del usuario que exponen las respuestas de auth.
type PublicUser struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Phone: u.Phone,
		Name:  u.Name,
	}
}
