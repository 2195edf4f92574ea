package wallet

import (
	"context"
	"errors"

	"github.com/fadedpez/twentyone/pkg/entities"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrAlreadySettled = errors.New("reference already settled")
)

// Repository defines the interface for wallet data operations
//
//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_wallet
type Repository interface {
	// GetWallet retrieves a wallet by user ID
	GetWallet(ctx context.Context, userID string) (*entities.Wallet, error)

	// SaveWallet creates or updates a wallet
	SaveWallet(ctx context.Context, wallet *entities.Wallet) error

	// AddTransaction records a new transaction
	AddTransaction(ctx context.Context, transaction *entities.Transaction) error

	// SettleWallet saves the wallet and records its transactions as one unit.
	// Nothing is written when the wallet already has a BET for the same
	// reference; ErrAlreadySettled is returned instead.
	SettleWallet(ctx context.Context, wallet *entities.Wallet, transactions []*entities.Transaction) error

	// HasBet reports whether the user has a BET recorded against referenceID
	HasBet(ctx context.Context, userID, referenceID string) (bool, error)

	// GetTransactions retrieves the most recent transactions for a user, newest first
	GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)

	// Close releases the underlying storage
	Close() error
}
