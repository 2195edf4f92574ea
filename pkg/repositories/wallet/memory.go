package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/fadedpez/twentyone/pkg/entities"
	"github.com/google/uuid"
)

// MemoryRepository implements Repository using in-memory storage
type MemoryRepository struct {
	wallets      map[string]*entities.Wallet
	transactions map[string][]*entities.Transaction
	mu           sync.RWMutex
}

// NewMemoryRepository creates a new in-memory wallet repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		wallets:      make(map[string]*entities.Wallet),
		transactions: make(map[string][]*entities.Transaction),
	}
}

// GetWallet retrieves a wallet by user ID
func (r *MemoryRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wallet, exists := r.wallets[userID]
	if !exists {
		return nil, ErrWalletNotFound
	}

	walletCopy := *wallet
	return &walletCopy, nil
}

// SaveWallet creates or updates a wallet
func (r *MemoryRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	walletCopy := *wallet
	r.wallets[wallet.UserID] = &walletCopy

	return nil
}

// AddTransaction records a new transaction, assigning an ID if it has none
func (r *MemoryRepository) AddTransaction(ctx context.Context, transaction *entities.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.wallets[transaction.UserID]; !exists {
		return ErrWalletNotFound
	}
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}

	txCopy := *transaction
	r.transactions[transaction.UserID] = append(r.transactions[transaction.UserID], &txCopy)

	return nil
}

// SettleWallet saves the wallet and records its transactions under one lock.
// The batch is checked before anything is stored.
func (r *MemoryRepository) SettleWallet(ctx context.Context, wallet *entities.Wallet, transactions []*entities.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make(map[string]bool, len(transactions))
	for _, tx := range r.transactions[wallet.UserID] {
		ids[tx.ID] = true
	}
	for _, tx := range transactions {
		if tx.UserID != wallet.UserID {
			return fmt.Errorf("transaction for %s in settlement of %s", tx.UserID, wallet.UserID)
		}
		if tx.Type == entities.TransactionTypeBet && r.hasBet(wallet.UserID, tx.ReferenceID) {
			return ErrAlreadySettled
		}
		if tx.ID == "" {
			tx.ID = uuid.New().String()
		}
		if ids[tx.ID] {
			return fmt.Errorf("duplicate transaction ID %s", tx.ID)
		}
		ids[tx.ID] = true
	}

	walletCopy := *wallet
	r.wallets[wallet.UserID] = &walletCopy
	for _, tx := range transactions {
		txCopy := *tx
		r.transactions[wallet.UserID] = append(r.transactions[wallet.UserID], &txCopy)
	}

	return nil
}

// HasBet reports whether the user has a BET recorded against referenceID
func (r *MemoryRepository) HasBet(ctx context.Context, userID, referenceID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasBet(userID, referenceID), nil
}

func (r *MemoryRepository) hasBet(userID, referenceID string) bool {
	for _, tx := range r.transactions[userID] {
		if tx.Type == entities.TransactionTypeBet && tx.ReferenceID == referenceID {
			return true
		}
	}
	return false
}

// GetTransactions retrieves the most recent transactions for a user, newest first
func (r *MemoryRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		return []*entities.Transaction{}, nil
	}

	transactions := r.transactions[userID]
	result := make([]*entities.Transaction, 0, min(limit, len(transactions)))
	for i := len(transactions) - 1; i >= 0 && len(result) < limit; i-- {
		txCopy := *transactions[i]
		result = append(result, &txCopy)
	}

	return result, nil
}

// Close is a no-op for the in-memory store
func (r *MemoryRepository) Close() error {
	return nil
}
