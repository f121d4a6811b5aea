package entities

import (
	"errors"
	"time"
)

type Provider string

const (
	ProviderGuest  Provider = "guest"
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// User is a registered or guest purchaser. Guests are keyed by
// (email, provider=guest); registered emails are unique across all
// non-guest providers.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Provider  Provider
	Confirmed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) IsGuest() bool {
	return u.Provider == ProviderGuest
}

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists means an insert lost a race against a
	// concurrent checkout creating the same (email, provider) row.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrEmailTaken means a guest checkout email collides with a
	// registered account. Hard conflict, never a silent merge.
	ErrEmailTaken       = errors.New("email belongs to a registered account")
	ErrGuestInfoMissing = errors.New("guest info required")
)
