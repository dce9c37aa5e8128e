package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every key lookup that yields no row.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a record with the same key is already stored.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotPending is returned when a transition is requested on a record in a terminal state.
	ErrNotPending = errors.New("not pending")
	// ErrMailNotConfigured is returned when a send is requested without an SMTP host.
	ErrMailNotConfigured = errors.New("smtp host not configured")
)

var (
	ErrRegistrationNotFound = fmt.Errorf("registration %w", ErrNotFound)
	ErrBookingNotFound      = fmt.Errorf("booking %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrUserExists           = fmt.Errorf("user %w", ErrAlreadyExists)
	ErrRegistrationExists   = fmt.Errorf("registration %w", ErrAlreadyExists)
)
