package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/pkg/db/migrations"
	"github.com/fadedpez/twentyone/pkg/entities"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Timestamps are stored as text in this layout
const timestampLayout = time.RFC3339Nano

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewSQLiteRepository opens the database at dbPath, creating its directory,
// and applies any pending wallet schema migrations
func NewSQLiteRepository(ctx context.Context, dbPath string, logger *logging.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = logging.Default
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	migrator := migrations.NewMigrator(db, migrations.WalletSchema())
	migrator.SetLogger(logger)
	if _, err := migrator.MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating wallet schema: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger}, nil
}

// GetWallet retrieves a wallet by user ID
func (r *SQLiteRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	query := `SELECT user_id, balance, updated_at FROM wallets WHERE user_id = ?`

	var wallet entities.Wallet
	var updatedAt string

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}

	if wallet.LastUpdated, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("error parsing timestamp '%s': %w", updatedAt, err)
	}

	return &wallet, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertWalletQuery = `
	INSERT INTO wallets (user_id, balance, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		balance = excluded.balance,
		updated_at = excluded.updated_at
`

const insertTransactionQuery = `
	INSERT INTO transactions (
		id, user_id, amount, type, reference_id, description, timestamp, balance_after
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func saveWallet(ctx context.Context, db execer, wallet *entities.Wallet) error {
	_, err := db.ExecContext(ctx, upsertWalletQuery,
		wallet.UserID, wallet.Balance, wallet.LastUpdated.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("error saving wallet: %w", err)
	}
	return nil
}

func addTransaction(ctx context.Context, db execer, transaction *entities.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}

	_, err := db.ExecContext(ctx, insertTransactionQuery,
		transaction.ID,
		transaction.UserID,
		transaction.Amount,
		transaction.Type,
		transaction.ReferenceID,
		transaction.Description,
		transaction.Timestamp.UTC().Format(timestampLayout),
		transaction.BalanceAfter,
	)
	if err != nil {
		return fmt.Errorf("error adding transaction: %w", err)
	}
	return nil
}

// SaveWallet creates or updates a wallet
func (r *SQLiteRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	if err := saveWallet(ctx, r.db, wallet); err != nil {
		return err
	}

	r.logger.Debug("Saved wallet for %s: balance %d", wallet.UserID, wallet.Balance)
	return nil
}

// AddTransaction records a new transaction, assigning an ID if it has none
func (r *SQLiteRepository) AddTransaction(ctx context.Context, transaction *entities.Transaction) error {
	return addTransaction(ctx, r.db, transaction)
}

// SettleWallet saves the wallet and records its transactions in a single
// database transaction
func (r *SQLiteRepository) SettleWallet(ctx context.Context, wallet *entities.Wallet, transactions []*entities.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning settlement: %w", err)
	}
	defer tx.Rollback()

	for _, t := range transactions {
		if t.Type != entities.TransactionTypeBet {
			continue
		}
		settled, err := hasBet(ctx, tx, wallet.UserID, t.ReferenceID)
		if err != nil {
			return err
		}
		if settled {
			return ErrAlreadySettled
		}
	}

	if err := saveWallet(ctx, tx, wallet); err != nil {
		return err
	}
	for _, t := range transactions {
		if err := addTransaction(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing settlement: %w", err)
	}

	r.logger.Debug("Settled wallet for %s: balance %d, %d transactions", wallet.UserID, wallet.Balance, len(transactions))
	return nil
}

// HasBet reports whether the user has a BET recorded against referenceID
func (r *SQLiteRepository) HasBet(ctx context.Context, userID, referenceID string) (bool, error) {
	return hasBet(ctx, r.db, userID, referenceID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func hasBet(ctx context.Context, db queryRower, userID, referenceID string) (bool, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE user_id = ? AND reference_id = ? AND type = ?`

	var count int
	if err := db.QueryRowContext(ctx, query, userID, referenceID, entities.TransactionTypeBet).Scan(&count); err != nil {
		return false, fmt.Errorf("error checking for bet: %w", err)
	}
	return count > 0, nil
}

// GetTransactions retrieves the most recent transactions for a user, newest first
func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	if limit <= 0 {
		return []*entities.Transaction{}, nil
	}

	query := `
		SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
		FROM transactions
		WHERE user_id = ?
		ORDER BY rowid DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*entities.Transaction{}
	for rows.Next() {
		var tx entities.Transaction
		var timestamp string

		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Amount,
			&tx.Type,
			&tx.ReferenceID,
			&tx.Description,
			&timestamp,
			&tx.BalanceAfter,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}

		if tx.Timestamp, err = time.Parse(timestampLayout, timestamp); err != nil {
			return nil, fmt.Errorf("error parsing timestamp '%s': %w", timestamp, err)
		}

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
