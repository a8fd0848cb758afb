package user

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is an account allowed to sign in to the front-end
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	LastLoginAt  *time.Time
}

// ValidateEmail validates only the email field
func (u *User) ValidateEmail() error {
	if u.Email == "" || !emailRegex.MatchString(u.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// CheckPassword checks if the provided password matches the stored hash
func (u *User) CheckPassword(password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return ErrInvalidPassword
		}
		return fmt.Errorf("failed to check password: %w", err)
	}
	return nil
}

// UpdateLastLogin records a successful sign-in
func (u *User) UpdateLastLogin(at time.Time) {
	u.LastLoginAt = &at
}
