// Package auth stores the insights API credential in the OS keychain.
//
// Credential acquisition itself is external (the token is extracted from
// the provider console and pasted in); this package only persists the
// token with its expiry and answers whether it is still usable.
package auth

import (
	"errors"
	"fmt"
	"time"

	"oikenops/flowmetrics/internal/domain"
)

const (
	// ServiceName is the keychain service under which credentials are stored.
	ServiceName = "flowmetrics"

	// DefaultKey is the keychain account key for the insights API credential.
	DefaultKey = "insights"
)

var ErrCredentialNotFound = errors.New("credential not found")

// Credential is a bearer token with an optional expiry.
type Credential struct {
	Token string `json:"token"`

	// ExpiresAt is when the token stops being accepted. Zero means the
	// expiry is unknown and the token is used as-is.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Validate reports whether the credential can be used for a run at the
// given instant. It fails with the pipeline's fatal precondition errors:
// ErrMissingToken when the token is empty, ErrExpiredToken when the
// expiry has passed.
func (c Credential) Validate(now time.Time) error {
	if c.Token == "" {
		return domain.ErrMissingToken
	}
	if !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt) {
		return fmt.Errorf("token expired at %s: %w",
			c.ExpiresAt.Format(time.RFC3339), domain.ErrExpiredToken)
	}
	return nil
}

// TimeLeft returns the remaining validity, or zero when unknown/expired.
func (c Credential) TimeLeft(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || !now.Before(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Store persists credentials.
type Store interface {
	SetCredential(key string, cred Credential) error
	GetCredential(key string) (Credential, error)
	DeleteCredential(key string) error
}

// DefaultStore returns the standard credential store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}
