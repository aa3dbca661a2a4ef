// Package domain provides the entities and error taxonomy shared by the
// service, repository, and HTTP layers.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAccountNotFound indicates no local account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists indicates an account already exists for the subject
	// ID or email being created.
	ErrAccountExists = errors.New("account already exists")
	// ErrVendorNotFound indicates no vendor exists at the identifier.
	ErrVendorNotFound = errors.New("vendor not found")
	// ErrForbidden indicates the caller is authenticated but is neither the
	// owner of the target vendor nor an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateVendorName indicates the owner already has a vendor with
	// the requested name.
	ErrDuplicateVendorName = errors.New("vendor name must be unique")
)

// ValidationError reports the required fields missing from a request.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
