/*
Package directory is the account store: registration, credential checks and user listing.

Both implementations hash passwords with bcrypt; plaintext secrets are never kept.
*/
package directory

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"pairchat/internal/app/user"
)

var (
	// ErrUsernameTaken is returned by Register when the username already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials is returned by Authenticate for an unknown user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned by Get when no account has the id.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidUsername and ErrInvalidPassword reject malformed registration input.
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
)

const (
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{2,32}$`)

// Directory looks up and creates accounts.
type Directory interface {
	Register(ctx context.Context, username, password string) (user.User, error)
	Authenticate(ctx context.Context, username, password string) (user.User, error)
	Get(ctx context.Context, id string) (user.User, error)
	// ListExcept returns every account except id, in creation order.
	ListExcept(ctx context.Context, id string) ([]user.User, error)
	Count(ctx context.Context) (int, error)
	// Durable reports whether accounts, and so their ids, survive a restart.
	Durable() bool
}

// ValidateCredentials checks registration input before it reaches a backend.
func ValidateCredentials(username, password string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	if password == "" || len(password) > MaxPasswordBytes {
		return ErrInvalidPassword
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash is compared against when the username is unknown so both failure paths cost the same.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pairchat-timing-guard"), bcrypt.DefaultCost)
