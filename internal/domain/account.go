package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the activation state of an account
type Status string

const (
	StatusPending     Status = "pending"
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

// Account represents a balance-holding account in the domain layer.
// Balance is stored in integer minor units (e.g. centavos) and is only
// ever mutated through a committed Transaction, never directly.
type Account struct {
	AccountNumber string
	OwnerID       uuid.UUID
	Balance       int64
	Status        Status
	CreatedAt     time.Time
}

// Validate ensures the account adheres to domain rules
// Returns an error if validation fails
func (a *Account) Validate() error {
	if a.AccountNumber == "" {
		return errors.New("account number cannot be empty")
	}

	if a.OwnerID == uuid.Nil {
		return errors.New("account must reference an owner")
	}

	if a.Balance < 0 {
		return errors.New("account balance cannot be negative")
	}

	switch a.Status {
	case StatusPending, StatusActive, StatusDeactivated:
	default:
		return errors.New("account status must be pending, active or deactivated")
	}

	return nil
}

// CanTransitionTo reports whether the status may move to next.
// Allowed transitions:
//   - pending → active, deactivated → active (activate)
//   - active → deactivated (deactivate)
//
// There is no terminal state; accounts cycle between active and
// deactivated indefinitely. Accounts are never deleted.
func (s Status) CanTransitionTo(next Status) bool {
	switch next {
	case StatusActive:
		return s == StatusPending || s == StatusDeactivated
	case StatusDeactivated:
		return s == StatusActive
	default:
		return false
	}
}

// CanApply reports whether an account in this status may participate in a
// balance-affecting operation of the given kind. Deactivated accounts are
// frozen for every kind; pending accounts participate like active ones
// until they are deactivated for the first time.
func (s Status) CanApply(kind Kind) bool {
	switch s {
	case StatusPending, StatusActive:
		return true
	default:
		return false
	}
}
