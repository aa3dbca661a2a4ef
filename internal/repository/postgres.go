package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendorly/vendorly-api/internal/domain"
)

// Compile-time interface assertions.
var (
	_ AccountRepository = (*PostgresAccountRepo)(nil)
	_ VendorRepository  = (*PostgresVendorRepo)(nil)
)

// PostgresAccountRepo implements AccountRepository on pgx.
type PostgresAccountRepo struct {
	db *pgxpool.Pool
}

func NewPostgresAccountRepo(pool *pgxpool.Pool) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: pool}
}

const accountColumns = `id, subject_id, email, role, created_at, updated_at`

func (r *PostgresAccountRepo) GetBySubjectID(ctx context.Context, subjectID string) (domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE subject_id = $1`, subjectID)
	account, err := scanAccount(row)
	if err != nil {
		if isNoRows(err) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by subject: %w", err)
	}
	return account, nil
}

func (r *PostgresAccountRepo) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if isNoRows(err) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}
	return account, nil
}

func (r *PostgresAccountRepo) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO accounts (subject_id, email, role)
		 VALUES ($1, $2, $3)
		 RETURNING `+accountColumns,
		account.SubjectID, account.Email, string(account.Role))
	created, err := scanAccount(row)
	if err != nil {
		if mapped := mapPostgresError(err); mapped != err {
			return domain.Account{}, mapped
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

func (r *PostgresAccountRepo) UpdateEmailBySubjectID(ctx context.Context, subjectID, email string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE accounts SET email = $2, updated_at = now() WHERE subject_id = $1`,
		subjectID, email)
	if err != nil {
		if mapped := mapPostgresError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update account email: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepo) DeleteBySubjectID(ctx context.Context, subjectID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE subject_id = $1`, subjectID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

type accountScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row accountScanner) (domain.Account, error) {
	var (
		account domain.Account
		role    string
	)
	if err := row.Scan(
		&account.ID,
		&account.SubjectID,
		&account.Email,
		&role,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return domain.Account{}, err
	}
	account.Role = domain.Role(role)
	return account, nil
}

// PostgresVendorRepo implements VendorRepository on pgx.
type PostgresVendorRepo struct {
	db *pgxpool.Pool
}

func NewPostgresVendorRepo(pool *pgxpool.Pool) *PostgresVendorRepo {
	return &PostgresVendorRepo{db: pool}
}

const vendorColumns = `v.id, v.name, v.bank_account_number, v.bank_name,
	v.address_line1, v.address_line2, v.city, v.country, v.zip,
	v.owner_id, COALESCE(a.email, ''), v.created_at, v.updated_at`

const vendorFrom = ` FROM vendors v LEFT JOIN accounts a ON a.id = v.owner_id`

// sortColumns whitelists the sortable fields; keys match the JSON field
// names used by the HTTP surface.
var sortColumns = map[string]string{
	"name":              "v.name",
	"bankAccountNumber": "v.bank_account_number",
	"bankName":          "v.bank_name",
	"addressLine1":      "v.address_line1",
	"city":              "v.city",
	"country":           "v.country",
	"zip":               "v.zip",
	"createdAt":         "v.created_at",
	"updatedAt":         "v.updated_at",
}

func (r *PostgresVendorRepo) GetByID(ctx context.Context, id int64) (domain.Vendor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vendorColumns+vendorFrom+` WHERE v.id = $1`, id)
	vendor, err := scanVendor(row)
	if err != nil {
		if isNoRows(err) {
			return domain.Vendor{}, domain.ErrVendorNotFound
		}
		return domain.Vendor{}, fmt.Errorf("get vendor: %w", err)
	}
	return vendor, nil
}

func (r *PostgresVendorRepo) List(ctx context.Context, params domain.ListParams, scope *VendorScope) ([]domain.Vendor, int64, error) {
	var (
		conds []string
		args  []any
	)
	if scope != nil {
		args = append(args, scope.OwnerID)
		conds = append(conds, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}
	if params.Filter != "" {
		args = append(args, "%"+params.Filter+"%")
		conds = append(conds, fmt.Sprintf("v.name ILIKE $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+vendorFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vendors: %w", err)
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "v.name"
	}
	direction := "ASC"
	if params.SortOrder == domain.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY %s %s, v.id ASC LIMIT $%d OFFSET $%d`,
		vendorColumns, vendorFrom, where, column, direction, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	vendors := make([]domain.Vendor, 0, params.Limit)
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, total, nil
}

func (r *PostgresVendorRepo) ExistsByOwnerAndName(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM vendors WHERE owner_id = $1 AND name = $2 AND id <> $3
		 )`, ownerID, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vendor name: %w", err)
	}
	return exists, nil
}

func (r *PostgresVendorRepo) Create(ctx context.Context, vendor domain.Vendor) (domain.Vendor, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO vendors (name, bank_account_number, bank_name,
			address_line1, address_line2, city, country, zip, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		vendor.Name, vendor.BankAccountNumber, vendor.BankName,
		vendor.AddressLine1, vendor.AddressLine2, vendor.City, vendor.Country, vendor.Zip,
		vendor.OwnerID)
	if err := row.Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt); err != nil {
		if mapped := mapPostgresError(err); mapped != err {
			return domain.Vendor{}, mapped
		}
		return domain.Vendor{}, fmt.Errorf("create vendor: %w", err)
	}
	return vendor, nil
}

func (r *PostgresVendorRepo) Update(ctx context.Context, vendor domain.Vendor) (domain.Vendor, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE vendors SET name = $2, bank_account_number = $3, bank_name = $4,
			address_line1 = $5, address_line2 = $6, city = $7, country = $8,
			zip = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		vendor.ID, vendor.Name, vendor.BankAccountNumber, vendor.BankName,
		vendor.AddressLine1, vendor.AddressLine2, vendor.City, vendor.Country, vendor.Zip)
	if err := row.Scan(&vendor.CreatedAt, &vendor.UpdatedAt); err != nil {
		if isNoRows(err) {
			return domain.Vendor{}, domain.ErrVendorNotFound
		}
		// A constraint violation that slips past the pre-check on the
		// update path is surfaced as an internal error, not a conflict.
		return domain.Vendor{}, fmt.Errorf("update vendor: %w", err)
	}
	return vendor, nil
}

func (r *PostgresVendorRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVendorNotFound
	}
	return nil
}

type vendorScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row vendorScanner) (domain.Vendor, error) {
	var vendor domain.Vendor
	if err := row.Scan(
		&vendor.ID,
		&vendor.Name,
		&vendor.BankAccountNumber,
		&vendor.BankName,
		&vendor.AddressLine1,
		&vendor.AddressLine2,
		&vendor.City,
		&vendor.Country,
		&vendor.Zip,
		&vendor.OwnerID,
		&vendor.OwnerEmail,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	); err != nil {
		return domain.Vendor{}, err
	}
	return vendor, nil
}
