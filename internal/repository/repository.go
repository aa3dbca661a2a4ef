// Package repository defines the persistence interfaces and their PostgreSQL
// implementations.
package repository

import (
	"context"

	"github.com/vendorly/vendorly-api/internal/domain"
)

// AccountRepository stores local mirrors of identity-provider users.
type AccountRepository interface {
	GetBySubjectID(ctx context.Context, subjectID string) (domain.Account, error)
	GetByID(ctx context.Context, id int64) (domain.Account, error)
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	// UpdateEmailBySubjectID is a no-op when no account matches.
	UpdateEmailBySubjectID(ctx context.Context, subjectID, email string) error
	// DeleteBySubjectID is a no-op when no account matches. Owned vendors
	// are left in place.
	DeleteBySubjectID(ctx context.Context, subjectID string) error
}

// VendorScope restricts a listing to one owner. A nil scope spans all owners.
type VendorScope struct {
	OwnerID int64
}

// VendorRepository stores vendor records.
type VendorRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Vendor, error)
	List(ctx context.Context, params domain.ListParams, scope *VendorScope) ([]domain.Vendor, int64, error)
	// ExistsByOwnerAndName reports whether the owner already has a vendor
	// with the given name, excluding excludeID when non-zero. This is a
	// best-effort pre-check; the unique constraint is the backstop.
	ExistsByOwnerAndName(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, vendor domain.Vendor) (domain.Vendor, error)
	Update(ctx context.Context, vendor domain.Vendor) (domain.Vendor, error)
	Delete(ctx context.Context, id int64) error
}
