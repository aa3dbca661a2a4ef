// Package authz decides what a resolved account may do with vendor records.
// Role checks live here so handlers and services never branch on the role
// directly.
package authz

import (
	"github.com/vendorly/vendorly-api/internal/domain"
	"github.com/vendorly/vendorly-api/internal/repository"
)

// Capability is the two-variant access tag derived from an account role.
type Capability int

const (
	// CapabilityOwn restricts access to vendors owned by the caller.
	CapabilityOwn Capability = iota
	// CapabilityAll grants unrestricted access across all owners.
	CapabilityAll
)

// ForAccount derives the caller's capability. Unknown roles get the
// restrictive variant.
func ForAccount(account domain.Account) Capability {
	if account.Role == domain.RoleAdmin {
		return CapabilityAll
	}
	return CapabilityOwn
}

// CanAccess reports whether the caller may read or mutate a vendor owned by
// ownerID.
func CanAccess(caller domain.Account, ownerID int64) bool {
	if ForAccount(caller) == CapabilityAll {
		return true
	}
	return caller.ID == ownerID
}

// ListScope returns the owner scope to apply to a listing query: nil for
// admins (all owners), the caller's own ID otherwise. Scoping happens in the
// store query, never by filtering results after the fact.
func ListScope(caller domain.Account) *repository.VendorScope {
	if ForAccount(caller) == CapabilityAll {
		return nil
	}
	return &repository.VendorScope{OwnerID: caller.ID}
}
