package users

import (
	"errors"
	"time"
)

const (
	minUsernameLength = 3
	minPasswordLength = 3
	// bcrypt only looks at the first 72 bytes
	maxPasswordBytes = 72
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameTaken    = errors.New("username must be unique")
	ErrUsernameMissing  = errors.New("username missing")
	ErrPasswordMissing  = errors.New("password missing")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrPasswordTooShort = errors.New("password must be at least 3 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes long")
)

// BlogRef is the part of a blog shown in the user listing.
type BlogRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Blogs        []*BlogRef `json:"blogs"`
	CreatedAt    time.Time  `json:"-"`
}

type NewUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r NewUserRequest) Validate() error {
	switch {
	case r.Username == "":
		return ErrUsernameMissing
	case r.Password == "":
		return ErrPasswordMissing
	case len([]rune(r.Username)) < minUsernameLength:
		return ErrUsernameTooShort
	case len([]rune(r.Password)) < minPasswordLength:
		return ErrPasswordTooShort
	case len(r.Password) > maxPasswordBytes:
		return ErrPasswordTooLong
	}
	return nil
}
