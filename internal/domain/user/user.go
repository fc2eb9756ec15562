package user

import (
	"errors"
	"time"
)

const (
	RoleAdmin    = "ADMIN"
	RoleSubAdmin = "SUBADMIN"
	RoleUser     = "USER"
)

type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // never expose hash in JSON
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Role             string    `json:"role"`
	RefreshTokenHash *string   `json:"-"` // nil when no active session
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("user not found")

// Profile is the response shape for authenticated-user reads.
type Profile struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

type SignupRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"firstName" binding:"required,min=1,max=80"`
	LastName  string `json:"lastName" binding:"required,min=1,max=80"`
	Role      string `json:"role" binding:"omitempty,oneof=ADMIN SUBADMIN USER"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
