// Package provision abstracts the external account-provisioning service.
// The engine calls it to create the external identity backing an admin
// account and to dispatch password-reset links; it never sees tokens or
// credentials, only the external subject identifier.
package provision

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnreachable is returned when the collaborator cannot be reached:
// connection failure, timeout, or context deadline expiry.
var ErrUnreachable = errors.New("provision: service unreachable")

// Identity is the result of provisioning an external identity.
type Identity struct {
	ExternalSubjectID string `json:"external_subject_id"`
}

// APIError is a non-2xx response from the collaborator. Status carries the
// HTTP status code; Message is the collaborator's message, with list-shaped
// messages joined by ", ".
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provision: status %d", e.Status)
	}
	return fmt.Sprintf("provision: status %d: %s", e.Status, e.Message)
}

// Provisioner is the consumed collaborator interface. Callers bound every
// invocation with a context deadline.
type Provisioner interface {
	// CreateIdentity provisions an external identity for the given email
	// and returns its external subject identifier.
	CreateIdentity(ctx context.Context, email string) (*Identity, error)

	// SendPasswordReset dispatches a password-reset link to the given email.
	SendPasswordReset(ctx context.Context, email string) error
}
