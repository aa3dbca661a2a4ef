//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendorly/vendorly-api/internal/domain"
	"github.com/vendorly/vendorly-api/internal/repository"
)

// Run with: DATABASE_URL=postgres://... go test -tags integration ./internal/repository
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, repository.Migrate(ctx, pool, zap.NewNop()))

	_, err = pool.Exec(ctx, "TRUNCATE vendors, accounts RESTART IDENTITY")
	require.NoError(t, err)
	return pool
}

func seedAccount(t *testing.T, repo *repository.PostgresAccountRepo, subjectID, email string, role domain.Role) domain.Account {
	t.Helper()
	account, err := repo.Create(context.Background(), domain.Account{
		SubjectID: subjectID,
		Email:     email,
		Role:      role,
	})
	require.NoError(t, err)
	return account
}

func TestAccountRepoRoundTrip(t *testing.T) {
	pool := newTestPool(t)
	repo := repository.NewPostgresAccountRepo(pool)
	ctx := context.Background()

	created := seedAccount(t, repo, "sub_1", "u@example.com", domain.RoleUser)
	require.NotZero(t, created.ID)

	got, err := repo.GetBySubjectID(ctx, "sub_1")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, domain.RoleUser, got.Role)

	// duplicate subject hits the unique constraint
	_, err = repo.Create(ctx, domain.Account{SubjectID: "sub_1", Email: "other@example.com", Role: domain.RoleUser})
	require.ErrorIs(t, err, domain.ErrAccountExists)

	require.NoError(t, repo.UpdateEmailBySubjectID(ctx, "sub_1", "new@example.com"))
	got, err = repo.GetBySubjectID(ctx, "sub_1")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", got.Email)

	// unknown subject is a no-op on both paths
	require.NoError(t, repo.UpdateEmailBySubjectID(ctx, "sub_unknown", "x@example.com"))
	require.NoError(t, repo.DeleteBySubjectID(ctx, "sub_unknown"))

	require.NoError(t, repo.DeleteBySubjectID(ctx, "sub_1"))
	_, err = repo.GetBySubjectID(ctx, "sub_1")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestVendorRepoConstraintBackstop(t *testing.T) {
	pool := newTestPool(t)
	accounts := repository.NewPostgresAccountRepo(pool)
	vendors := repository.NewPostgresVendorRepo(pool)
	ctx := context.Background()

	owner := seedAccount(t, accounts, "sub_1", "u@example.com", domain.RoleUser)
	other := seedAccount(t, accounts, "sub_2", "v@example.com", domain.RoleUser)

	acme, err := vendors.Create(ctx, domain.Vendor{
		Name:              "Acme",
		BankAccountNumber: "12345678",
		BankName:          "First National",
		AddressLine1:      "1 Main St",
		OwnerID:           owner.ID,
	})
	require.NoError(t, err)

	// the constraint catches what the pre-check would normally stop
	_, err = vendors.Create(ctx, domain.Vendor{
		Name:              "Acme",
		BankAccountNumber: "1",
		BankName:          "b",
		AddressLine1:      "a",
		OwnerID:           owner.ID,
	})
	require.ErrorIs(t, err, domain.ErrDuplicateVendorName)

	// same name under a different owner is allowed
	_, err = vendors.Create(ctx, domain.Vendor{
		Name:              "Acme",
		BankAccountNumber: "1",
		BankName:          "b",
		AddressLine1:      "a",
		OwnerID:           other.ID,
	})
	require.NoError(t, err)

	got, err := vendors.GetByID(ctx, acme.ID)
	require.NoError(t, err)
	require.Equal(t, "u@example.com", got.OwnerEmail)

	taken, err := vendors.ExistsByOwnerAndName(ctx, owner.ID, "Acme", 0)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = vendors.ExistsByOwnerAndName(ctx, owner.ID, "Acme", acme.ID)
	require.NoError(t, err)
	require.False(t, taken)
}

func TestVendorRepoListScopingAndOrder(t *testing.T) {
	pool := newTestPool(t)
	accounts := repository.NewPostgresAccountRepo(pool)
	vendors := repository.NewPostgresVendorRepo(pool)
	ctx := context.Background()

	owner := seedAccount(t, accounts, "sub_1", "u@example.com", domain.RoleUser)
	other := seedAccount(t, accounts, "sub_2", "v@example.com", domain.RoleUser)

	for i, name := range []string{"Wayne", "Acme", "Globex"} {
		_, err := vendors.Create(ctx, domain.Vendor{
			Name:              name,
			BankAccountNumber: fmt.Sprintf("%d", i),
			BankName:          "b",
			AddressLine1:      "a",
			OwnerID:           owner.ID,
		})
		require.NoError(t, err)
	}
	_, err := vendors.Create(ctx, domain.Vendor{
		Name: "Stark", BankAccountNumber: "9", BankName: "b", AddressLine1: "a", OwnerID: other.ID,
	})
	require.NoError(t, err)

	params := domain.ListParams{Page: 1, Limit: 10}.Normalize()

	// scoped listing sees only the owner's rows, name ascending
	rows, total, err := vendors.List(ctx, params, &repository.VendorScope{OwnerID: owner.ID})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Equal(t, "Acme", rows[0].Name)
	require.Equal(t, "Wayne", rows[2].Name)

	// nil scope spans all owners
	rows, total, err = vendors.List(ctx, params, nil)
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Len(t, rows, 4)

	// case-insensitive substring filter
	filtered := params
	filtered.Filter = "lob"
	rows, total, err = vendors.List(ctx, filtered, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Globex", rows[0].Name)

	// deleting the owner leaves the vendors dangling
	require.NoError(t, accounts.DeleteBySubjectID(ctx, "sub_1"))
	rows, total, err = vendors.List(ctx, params, &repository.VendorScope{OwnerID: owner.ID})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Empty(t, rows[0].OwnerEmail)
}

func TestVendorRepoDelete(t *testing.T) {
	pool := newTestPool(t)
	accounts := repository.NewPostgresAccountRepo(pool)
	vendors := repository.NewPostgresVendorRepo(pool)
	ctx := context.Background()

	owner := seedAccount(t, accounts, "sub_1", "u@example.com", domain.RoleUser)
	acme, err := vendors.Create(ctx, domain.Vendor{
		Name: "Acme", BankAccountNumber: "1", BankName: "b", AddressLine1: "a", OwnerID: owner.ID,
	})
	require.NoError(t, err)

	require.NoError(t, vendors.Delete(ctx, acme.ID))
	require.ErrorIs(t, vendors.Delete(ctx, acme.ID), domain.ErrVendorNotFound)
	_, err = vendors.GetByID(ctx, acme.ID)
	require.ErrorIs(t, err, domain.ErrVendorNotFound)
}
