/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Production persistence for wallets and ledger entries. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the entries table
  - No DELETE statements on the entries table
  - Wallets are updated only through the versioned ApplyCredit UPDATE

KEY TABLES:
  wallets:  One row per (ambassador, currency), balance + version
  entries:  Immutable ledger of all credits

ATOMICITY:
  ApplyCredit runs the balance UPDATE and the entry INSERT inside one SQL
  transaction. The UPDATE is guarded by "AND version = ?"; zero rows
  affected means another credit landed first, the transaction rolls back,
  and ErrWriteConflict is returned for the caller's retry loop.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/rewards.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  wl := ledger.NewWalletLedger(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definition and contracts
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/orbit/reward-engine/ledger"
)

// Store implements ledger.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes writers; SQLite WAL allows one at a time
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: avoids SQLITE_BUSY under concurrent writers, and keeps
	// ":memory:" databases from splitting across pooled connections.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Wallets (one per ambassador+currency, versioned for optimistic locking)
	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		ambassador_id TEXT NOT NULL,
		currency_id TEXT NOT NULL,
		balance TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(ambassador_id, currency_id)
	);

	CREATE INDEX IF NOT EXISTS idx_wallets_ambassador
		ON wallets(ambassador_id);

	-- Entries (append-only ledger of credits)
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL REFERENCES wallets(id),
		task_id TEXT,
		value TEXT NOT NULL,
		points TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_wallet
		ON entries(wallet_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_entries_task
		ON entries(task_id) WHERE task_id IS NOT NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WALLETS
// =============================================================================

// EnsureWallet creates the wallet with a zero balance if absent.
// INSERT OR IGNORE makes concurrent creations converge on one row.
func (s *Store) EnsureWallet(ctx context.Context, ambassadorID ledger.AmbassadorID, currencyID ledger.CurrencyID) (ledger.Wallet, error) {
	s.mu.Lock()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO wallets (id, ambassador_id, currency_id, balance, version, created_at, updated_at)
		VALUES (?, ?, ?, '0', 0, ?, ?)`,
		uuid.NewString(), string(ambassadorID), string(currencyID), now, now)
	s.mu.Unlock()
	if err != nil {
		return ledger.Wallet{}, err
	}
	return s.FindWallet(ctx, ambassadorID, currencyID)
}

func (s *Store) FindWallet(ctx context.Context, ambassadorID ledger.AmbassadorID, currencyID ledger.CurrencyID) (ledger.Wallet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ambassador_id, currency_id, balance, version, created_at, updated_at
		FROM wallets WHERE ambassador_id = ? AND currency_id = ?`,
		string(ambassadorID), string(currencyID))
	return scanWallet(row)
}

func (s *Store) GetWallet(ctx context.Context, id ledger.WalletID) (ledger.Wallet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ambassador_id, currency_id, balance, version, created_at, updated_at
		FROM wallets WHERE id = ?`, string(id))
	return scanWallet(row)
}

func (s *Store) WalletsOf(ctx context.Context, ambassadorID ledger.AmbassadorID) ([]ledger.Wallet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ambassador_id, currency_id, balance, version, created_at, updated_at
		FROM wallets WHERE ambassador_id = ? ORDER BY currency_id`, string(ambassadorID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []ledger.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// =============================================================================
// CREDITS
// =============================================================================

// ApplyCredit applies balance += entry.Value and appends the entry inside
// one SQL transaction, guarded by the wallet version.
func (s *Store) ApplyCredit(ctx context.Context, walletID ledger.WalletID, expectedVersion int64, entry ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if entry.IdempotencyKey != "" {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM entries WHERE idempotency_key = ?)`,
			entry.IdempotencyKey).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return ledger.ErrDuplicateIdempotencyKey
		}
	}

	var rawBalance string
	var version int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance, version FROM wallets WHERE id = ?`, string(walletID)).
		Scan(&rawBalance, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrWalletNotFound
	}
	if err != nil {
		return err
	}
	if version != expectedVersion {
		return ledger.ErrWriteConflict
	}

	balance, err := decimal.NewFromString(rawBalance)
	if err != nil {
		return fmt.Errorf("wallet %s: corrupt balance %q: %w", walletID, rawBalance, err)
	}
	newBalance := balance.Add(entry.Value)

	res, err := tx.ExecContext(ctx, `
		UPDATE wallets SET balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		newBalance.String(), time.Now().UTC().Format(time.RFC3339Nano),
		string(walletID), expectedVersion)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrWriteConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (id, wallet_id, task_id, value, points, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(entry.ID), string(walletID), nullable(string(entry.TaskID)),
		entry.Value.String(), entry.Points, nullable(entry.IdempotencyKey),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Entries(ctx context.Context, walletID ledger.WalletID) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wallet_id, task_id, value, points, idempotency_key, created_at
		FROM entries WHERE wallet_id = ? ORDER BY created_at, id`, string(walletID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var id, wid, rawValue, createdAt string
		var taskID, points, idemKey sql.NullString
		if err := rows.Scan(&id, &wid, &taskID, &rawValue, &points, &idemKey, &createdAt); err != nil {
			return nil, err
		}
		e.ID = ledger.EntryID(id)
		e.WalletID = ledger.WalletID(wid)
		e.TaskID = ledger.TaskID(taskID.String)
		e.Points = points.String
		e.IdempotencyKey = idemKey.String
		e.Value, err = decimal.NewFromString(rawValue)
		if err != nil {
			return nil, fmt.Errorf("entry %s: corrupt value %q: %w", id, rawValue, err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("entry %s: corrupt created_at %q: %w", id, createdAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (ledger.Wallet, error) {
	var w ledger.Wallet
	var id, ambassadorID, currencyID, rawBalance, createdAt, updatedAt string
	err := row.Scan(&id, &ambassadorID, &currencyID, &rawBalance, &w.Version, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	if err != nil {
		return ledger.Wallet{}, err
	}
	w.ID = ledger.WalletID(id)
	w.AmbassadorID = ledger.AmbassadorID(ambassadorID)
	w.CurrencyID = ledger.CurrencyID(currencyID)
	w.Balance, err = decimal.NewFromString(rawBalance)
	if err != nil {
		return ledger.Wallet{}, fmt.Errorf("wallet %s: corrupt balance %q: %w", id, rawBalance, err)
	}
	w.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return ledger.Wallet{}, err
	}
	w.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return ledger.Wallet{}, err
	}
	return w, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Compile-time check that Store implements ledger.Store.
var _ ledger.Store = (*Store)(nil)
