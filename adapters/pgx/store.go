// Package pgx backs the account directory with Postgres. The store
// keeps the whole-snapshot Load/Save contract but writes each account as
// its own row, so a snapshot save is one transaction of per-account
// upserts rather than a single rewritten blob.
package pgx

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ddelgadillo/authsim"
)

const schema = `
CREATE TABLE IF NOT EXISTS authsim_accounts (
	id             BIGINT PRIMARY KEY,
	first_name     TEXT NOT NULL,
	last_name      TEXT NOT NULL,
	user_name      TEXT NOT NULL UNIQUE,
	password       TEXT NOT NULL,
	is_admin       BOOLEAN NOT NULL,
	refresh_tokens TEXT[] NOT NULL DEFAULT '{}'
)`

const opTimeout = 5 * time.Second

type Store struct {
	pool *pgxpool.Pool
}

var _ authsim.DirectoryStore = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Init creates the accounts table if it doesn't exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}
	return nil
}

func (s *Store) Load() ([]*authsim.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, first_name, last_name, user_name, password, is_admin, refresh_tokens
		 FROM authsim_accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*authsim.Account
	for rows.Next() {
		a := &authsim.Account{}
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.UserName,
			&a.Password, &a.IsAdmin, &a.RefreshTokens); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if a.RefreshTokens == nil {
			a.RefreshTokens = []string{}
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return accounts, nil
}

func (s *Store) Save(accounts []*authsim.Account) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]int64, 0, len(accounts))
	batch := &pgx.Batch{}
	for _, a := range accounts {
		ids = append(ids, int64(a.ID))
		batch.Queue(
			`INSERT INTO authsim_accounts
				(id, first_name, last_name, user_name, password, is_admin, refresh_tokens)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				user_name = EXCLUDED.user_name,
				password = EXCLUDED.password,
				is_admin = EXCLUDED.is_admin,
				refresh_tokens = EXCLUDED.refresh_tokens`,
			a.ID, a.FirstName, a.LastName, a.UserName, a.Password, a.IsAdmin, a.RefreshTokens)
	}

	// Whole-snapshot semantics: rows absent from the snapshot go away.
	batch.Queue(`DELETE FROM authsim_accounts WHERE NOT (id = ANY($1))`, ids)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return tx.Commit(ctx)
}
