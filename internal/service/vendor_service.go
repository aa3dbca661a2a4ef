// Package service implements the vendor CRUD contract and the identity
// lifecycle sync on top of the repositories.
package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vendorly/vendorly-api/internal/authz"
	"github.com/vendorly/vendorly-api/internal/domain"
	"github.com/vendorly/vendorly-api/internal/repository"
)

// VendorService enforces validation, authorization, and per-owner name
// uniqueness around the vendor store. Every operation takes the resolved
// caller account; the HTTP layer never touches the store directly.
type VendorService struct {
	vendors repository.VendorRepository
	logger  *zap.Logger
	tracer  trace.Tracer
}

func NewVendorService(vendors repository.VendorRepository, logger *zap.Logger) *VendorService {
	return &VendorService{
		vendors: vendors,
		logger:  logger,
		tracer:  otel.Tracer("vendorly-api/service"),
	}
}

// List returns one page of vendors. Non-admin callers are scoped to their
// own vendors in the store query; admins span all owners.
func (s *VendorService) List(ctx context.Context, caller domain.Account, params domain.ListParams) (domain.VendorPage, error) {
	ctx, span := s.tracer.Start(ctx, "VendorService.List")
	defer span.End()

	params = params.Normalize()
	vendors, total, err := s.vendors.List(ctx, params, authz.ListScope(caller))
	if err != nil {
		span.RecordError(err)
		return domain.VendorPage{}, fmt.Errorf("list vendors: %w", err)
	}
	return domain.NewVendorPage(vendors, total, params), nil
}

// Get fetches one vendor by ID. Not-found is checked before ownership so a
// missing record is 404 while another user's record is 403.
func (s *VendorService) Get(ctx context.Context, caller domain.Account, id int64) (domain.Vendor, error) {
	ctx, span := s.tracer.Start(ctx, "VendorService.Get")
	defer span.End()

	vendor, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return domain.Vendor{}, err
	}
	if !authz.CanAccess(caller, vendor.OwnerID) {
		return domain.Vendor{}, domain.ErrForbidden
	}
	return vendor, nil
}

// Create validates the input, forces the owner to the caller, pre-checks
// per-owner name uniqueness, and persists. The unique constraint in the
// store is the race-safety backstop for the pre-check.
func (s *VendorService) Create(ctx context.Context, caller domain.Account, input domain.VendorInput) (domain.Vendor, error) {
	ctx, span := s.tracer.Start(ctx, "VendorService.Create")
	defer span.End()

	if err := input.Validate(); err != nil {
		return domain.Vendor{}, err
	}

	taken, err := s.vendors.ExistsByOwnerAndName(ctx, caller.ID, input.Name, 0)
	if err != nil {
		span.RecordError(err)
		return domain.Vendor{}, fmt.Errorf("check vendor name: %w", err)
	}
	if taken {
		return domain.Vendor{}, domain.ErrDuplicateVendorName
	}

	created, err := s.vendors.Create(ctx, domain.Vendor{
		Name:              input.Name,
		BankAccountNumber: input.BankAccountNumber,
		BankName:          input.BankName,
		AddressLine1:      input.AddressLine1,
		AddressLine2:      input.AddressLine2,
		City:              input.City,
		Country:           input.Country,
		Zip:               input.Zip,
		OwnerID:           caller.ID,
		OwnerEmail:        caller.Email,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Vendor{}, err
	}

	s.logger.Info("vendor created",
		zap.Int64("vendor_id", created.ID),
		zap.Int64("owner_id", caller.ID))
	return created, nil
}

// Update replaces the full document after re-running validation. The
// authorization gate is applied against the existing record's owner before
// any mutation, and a name change re-checks uniqueness excluding the record
// itself so renaming to the current name never collides.
func (s *VendorService) Update(ctx context.Context, caller domain.Account, id int64, input domain.VendorInput) (domain.Vendor, error) {
	ctx, span := s.tracer.Start(ctx, "VendorService.Update")
	defer span.End()

	existing, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return domain.Vendor{}, err
	}
	if !authz.CanAccess(caller, existing.OwnerID) {
		return domain.Vendor{}, domain.ErrForbidden
	}

	if err := input.Validate(); err != nil {
		return domain.Vendor{}, err
	}

	if input.Name != existing.Name {
		taken, err := s.vendors.ExistsByOwnerAndName(ctx, existing.OwnerID, input.Name, id)
		if err != nil {
			span.RecordError(err)
			return domain.Vendor{}, fmt.Errorf("check vendor name: %w", err)
		}
		if taken {
			return domain.Vendor{}, domain.ErrDuplicateVendorName
		}
	}

	updated, err := s.vendors.Update(ctx, domain.Vendor{
		ID:                id,
		Name:              input.Name,
		BankAccountNumber: input.BankAccountNumber,
		BankName:          input.BankName,
		AddressLine1:      input.AddressLine1,
		AddressLine2:      input.AddressLine2,
		City:              input.City,
		Country:           input.Country,
		Zip:               input.Zip,
		OwnerID:           existing.OwnerID,
		OwnerEmail:        existing.OwnerEmail,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Vendor{}, err
	}

	s.logger.Info("vendor updated",
		zap.Int64("vendor_id", id),
		zap.Int64("caller_id", caller.ID))
	return updated, nil
}

// Delete removes the vendor once the gate allows it. Deletion is
// unconditional after authorization: no soft-delete, no cascade.
func (s *VendorService) Delete(ctx context.Context, caller domain.Account, id int64) error {
	ctx, span := s.tracer.Start(ctx, "VendorService.Delete")
	defer span.End()

	existing, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanAccess(caller, existing.OwnerID) {
		return domain.ErrForbidden
	}

	if err := s.vendors.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	s.logger.Info("vendor deleted",
		zap.Int64("vendor_id", id),
		zap.Int64("caller_id", caller.ID))
	return nil
}
