package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

//DB is the subset of pgxpool.Pool used by the postgres repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresAccountRepository struct {
	db DB
}

func NewPostgresAccountRepository(db DB) Repository {
	return &postgresAccountRepository{db: db}
}

const createAccountsTable = `
CREATE TABLE IF NOT EXISTS accounts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	phone      TEXT NOT NULL,
	password   TEXT NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

//MigratePostgres creates the accounts table if it does not exist yet.
func MigratePostgres(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createAccountsTable); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}

const accountColumns = `id, name, email, phone, password, created_at`

func (r *postgresAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	sql := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, sql, string(id)))
}

func (r *postgresAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	sql := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRow(ctx, sql, email))
}

func (r *postgresAccountRepository) FindAll(ctx context.Context) ([]*Account, error) {
	sql := `SELECT ` + accountColumns + ` FROM accounts`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *postgresAccountRepository) Store(ctx context.Context, acc *Account) error {
	if acc.ID == "" {
		acc.ID = NewID()
	}

	sql := `INSERT INTO accounts (` + accountColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, sql, string(acc.ID), acc.Name, acc.Email, acc.Phone, acc.Password, acc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrExistingEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *postgresAccountRepository) Update(ctx context.Context, id ID, fields AccountFields) (*Account, error) {
	sql := `UPDATE accounts SET
		name = COALESCE($2, name),
		email = COALESCE($3, email),
		phone = COALESCE($4, phone)
	WHERE id = $1 RETURNING ` + accountColumns

	acc, err := scanAccount(r.db.QueryRow(ctx, sql, string(id), fields.Name, fields.Email, fields.Phone))
	if err != nil && isUniqueViolation(err) {
		return nil, ErrExistingEmail
	}
	return acc, err
}

func (r *postgresAccountRepository) Delete(ctx context.Context, id ID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		acc Account
		id  string
	)
	err := row.Scan(&id, &acc.Name, &acc.Email, &acc.Phone, &acc.Password, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	acc.ID = ID(id)
	return &acc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
