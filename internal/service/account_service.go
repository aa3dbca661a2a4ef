package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vendorly/vendorly-api/internal/domain"
	"github.com/vendorly/vendorly-api/internal/repository"
)

// AccountService applies identity-provider lifecycle notifications to the
// local account mirror.
type AccountService struct {
	accounts repository.AccountRepository
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewAccountService(accounts repository.AccountRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		logger:   logger,
		tracer:   otel.Tracer("vendorly-api/service"),
	}
}

// HandleCreated mirrors a freshly created provider user. Both subject and
// email are required. Replaying a created notification for an existing
// subject surfaces the store's duplicate error rather than no-opping.
func (s *AccountService) HandleCreated(ctx context.Context, subjectID, email string) (domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.HandleCreated")
	defer span.End()

	if strings.TrimSpace(subjectID) == "" || strings.TrimSpace(email) == "" {
		return domain.Account{}, &domain.ValidationError{Fields: []string{"subject", "email"}}
	}

	created, err := s.accounts.Create(ctx, domain.Account{
		SubjectID: subjectID,
		Email:     email,
		Role:      domain.RoleUser,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account created from webhook",
		zap.String("subject_id", subjectID),
		zap.Int64("account_id", created.ID))
	return created, nil
}

// HandleUpdated updates only the email of the matching account; no-op when
// no account matches the subject.
func (s *AccountService) HandleUpdated(ctx context.Context, subjectID, email string) error {
	ctx, span := s.tracer.Start(ctx, "AccountService.HandleUpdated")
	defer span.End()

	if strings.TrimSpace(subjectID) == "" || strings.TrimSpace(email) == "" {
		return &domain.ValidationError{Fields: []string{"subject", "email"}}
	}

	if err := s.accounts.UpdateEmailBySubjectID(ctx, subjectID, email); err != nil {
		span.RecordError(err)
		return fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("account updated from webhook", zap.String("subject_id", subjectID))
	return nil
}

// HandleDeleted removes the matching account; no-op when no account
// matches. Vendors owned by the account are left in place.
func (s *AccountService) HandleDeleted(ctx context.Context, subjectID string) error {
	ctx, span := s.tracer.Start(ctx, "AccountService.HandleDeleted")
	defer span.End()

	if err := s.accounts.DeleteBySubjectID(ctx, subjectID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("account deleted from webhook", zap.String("subject_id", subjectID))
	return nil
}
