package entity

import (
	"time"

	"github.com/google/uuid"
)

type CodePurpose string

const (
	CodePurposeLogin          CodePurpose = "login"
	CodePurposePasswordReset  CodePurpose = "password_reset"
	CodePurposePasswordChange CodePurpose = "password_change"
)

// CodeEntry is a pending one-time code, keyed by email in a code registry.
type CodeEntry struct {
	Code      string     `json:"code"`
	ExpiresAt time.Time  `json:"expires_at"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Verified  bool       `json:"verified"`
}

// Expired reports whether the entry is no longer valid at now.
// An entry is valid only while now is strictly before ExpiresAt.
func (e *CodeEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
