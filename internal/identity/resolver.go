// Package identity maps verified identity-provider subjects onto local
// accounts.
package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vendorly/vendorly-api/internal/domain"
	"github.com/vendorly/vendorly-api/internal/repository"
)

// Resolver loads the local account for a verified subject ID, creating it
// on first sight.
type Resolver struct {
	accounts repository.AccountRepository
	provider Provider
}

// NewResolver creates an account resolver.
func NewResolver(accounts repository.AccountRepository, provider Provider) *Resolver {
	return &Resolver{accounts: accounts, provider: provider}
}

// Resolve returns the account matching the subject ID. On first sight the
// primary email is fetched from the provider and a new account is created
// with the default role. A subject with no usable email resolves to no
// account; callers must treat that as unauthenticated.
func (r *Resolver) Resolve(ctx context.Context, subjectID string) (domain.Account, error) {
	if subjectID == "" {
		return domain.Account{}, fmt.Errorf("resolve account: empty subject")
	}

	account, err := r.accounts.GetBySubjectID(ctx, subjectID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		zap.L().Error("account lookup failed", zap.String("subject_id", subjectID), zap.Error(err))
		return domain.Account{}, fmt.Errorf("resolve account: %w", err)
	}

	email, err := r.provider.PrimaryEmail(ctx, subjectID)
	if err != nil {
		zap.L().Error("provider email fetch failed", zap.String("subject_id", subjectID), zap.Error(err))
		return domain.Account{}, fmt.Errorf("resolve account: %w", err)
	}
	if email == "" {
		zap.L().Warn("subject has no primary email, not creating account", zap.String("subject_id", subjectID))
		return domain.Account{}, domain.ErrAccountNotFound
	}

	created, err := r.accounts.Create(ctx, domain.Account{
		SubjectID: subjectID,
		Email:     email,
		Role:      domain.RoleUser,
	})
	if err != nil {
		zap.L().Error("account create failed", zap.String("subject_id", subjectID), zap.Error(err))
		return domain.Account{}, fmt.Errorf("resolve account: %w", err)
	}

	zap.L().Info("account mirrored on first sight", zap.String("subject_id", subjectID), zap.Int64("account_id", created.ID))
	return created, nil
}
