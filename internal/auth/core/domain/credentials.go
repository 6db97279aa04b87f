package domain

import (
	"errors"
	"strings"
)

var ErrInvalidCredentials = errors.New("email and password are required")

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewCredentials trims the email and rejects blanks. The password is kept
// as typed.
func NewCredentials(email, password string) (Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Credentials{}, ErrInvalidCredentials
	}
	return Credentials{Email: email, Password: password}, nil
}
