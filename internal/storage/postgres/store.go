package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib" // registers the "pgx" driver
	"github.com/lib/pq"                // registers the "postgres" driver

	interfaces "github.com/sheikh-saqib/coin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// Postgres SQLSTATE codes mapped onto domain errors.
const (
	codeUniqueViolation   = "23505"
	codeInsufficientPrivs = "42501"
)

const schema = `CREATE TABLE IF NOT EXISTS accounts (
	id     TEXT PRIMARY KEY,
	amount NUMERIC NOT NULL DEFAULT 0
)`

type PostgresAccountStore struct {
	db *sql.DB
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{
		db: db,
	}
}

// Open connects with driver ("postgres" or "pgx") and pings the server.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "", DriverPQ:
		driver = DriverPQ
	case DriverPGX:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (p *PostgresAccountStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresAccountStore) Get(ctx context.Context, id string) (models.Account, error) {
	const query = `SELECT id, amount FROM accounts WHERE id = $1`

	var account models.Account
	err := p.db.QueryRowContext(ctx, query, id).Scan(&account.ID, &account.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, fmt.Errorf("%w: %s", models.ErrAccountNotFound, id)
	}
	if err != nil {
		return models.Account{}, mapError(err)
	}
	return account, nil
}

func (p *PostgresAccountStore) Update(ctx context.Context, account models.Account) error {
	return p.UpdateAll(ctx, []models.Account{account})
}

func (p *PostgresAccountStore) updateAccount(ctx context.Context, dbTx *sql.Tx, account models.Account) error {
	const query = `UPDATE accounts SET amount = $2 WHERE id = $1`

	result, err := dbTx.ExecContext(ctx, query, account.ID, account.Amount)
	if err != nil {
		return mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrAccountNotFound, account.ID)
	}
	return nil
}

// UpdateAll writes every account inside one database transaction.
func (p *PostgresAccountStore) UpdateAll(ctx context.Context, accounts []models.Account) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	for _, account := range accounts {
		if err = p.updateAccount(ctx, dbTx, account); err != nil {
			return err
		}
	}

	return dbTx.Commit()
}

func (p *PostgresAccountStore) Add(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (id, amount) VALUES ($1, $2)`

	_, err := p.db.ExecContext(ctx, query, account.ID, account.Amount)
	return mapError(err)
}

func (p *PostgresAccountStore) Remove(ctx context.Context, id string) error {
	const query = `DELETE FROM accounts WHERE id = $1`

	result, err := p.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrAccountNotFound, id)
	}
	return nil
}

func (p *PostgresAccountStore) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM accounts WHERE id = $1 LIMIT 1`

	var exists int
	err := p.db.QueryRowContext(ctx, query, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err)
	}
	return true, nil
}

func (p *PostgresAccountStore) List(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT id, amount FROM accounts ORDER BY id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.Amount); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// mapError translates driver errors from either lib/pq or pgx into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var code string

	var pqErr *pq.Error
	var sqlState interface{ SQLState() string }
	switch {
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	case errors.As(err, &sqlState):
		code = sqlState.SQLState()
	}

	switch code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %v", models.ErrAccountExists, err)
	case codeInsufficientPrivs:
		return fmt.Errorf("%w: %v", models.ErrPermissionDenied, err)
	}
	return err
}

var _ interfaces.AccountRegistry = (*PostgresAccountStore)(nil)
