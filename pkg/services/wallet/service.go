package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/quartz"
	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/pkg/entities"
	walletRepo "github.com/fadedpez/twentyone/pkg/repositories/wallet"
	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrInvalidStake      = errors.New("stake must be positive")
)

// Service handles wallet business logic
type Service struct {
	repo            walletRepo.Repository
	startingBalance int64
	clock           quartz.Clock
	logger          *logging.Logger
}

// NewService creates a wallet service. New wallets start with startingBalance.
func NewService(repo walletRepo.Repository, startingBalance int64, clock quartz.Clock) *Service {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Service{
		repo:            repo,
		startingBalance: startingBalance,
		clock:           clock,
		logger:          logging.Default,
	}
}

// SetLogger replaces the service logger
func (s *Service) SetLogger(logger *logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// GetOrCreateWallet retrieves a wallet or creates a new one if it doesn't
// exist. The bool reports whether the wallet was created.
func (s *Service) GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err == nil {
		return wallet, false, nil
	}

	if !errors.Is(err, walletRepo.ErrWalletNotFound) {
		return nil, false, err
	}

	newWallet := &entities.Wallet{
		UserID:      userID,
		Balance:     s.startingBalance,
		LastUpdated: s.clock.Now(),
	}

	if err := s.repo.SaveWallet(ctx, newWallet); err != nil {
		return nil, false, err
	}

	s.logger.Info("Created wallet for %s with %d", userID, s.startingBalance)
	return newWallet, true, nil
}

// GetBalance returns the current balance for a user
func (s *Service) GetBalance(ctx context.Context, userID string) (int64, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// GetRecentTransactions retrieves recent transactions for a user, newest first
func (s *Service) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	return s.repo.GetTransactions(ctx, userID, limit)
}

// SettleRound applies one settled bet to the user's wallet. The stake is
// debited as a BET and a positive credit is recorded as a PUSH when it equals
// the stake, or a PAYOUT otherwise. Both transactions reference roundID and
// are stored with the new balance as one unit. A round that is already on the
// user's ledger is not applied again; the current wallet is returned.
func (s *Service) SettleRound(ctx context.Context, userID, roundID string, stake, credit int64) (*entities.Wallet, error) {
	if stake <= 0 {
		return nil, ErrInvalidStake
	}
	if credit < 0 {
		return nil, ErrNegativeAmount
	}

	settled, err := s.repo.HasBet(ctx, userID, roundID)
	if err != nil {
		return nil, fmt.Errorf("error checking ledger: %w", err)
	}
	if settled {
		return s.alreadySettled(ctx, userID, roundID)
	}

	wallet, _, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}
	if wallet.Balance < stake {
		return nil, fmt.Errorf("%w: balance %d, stake %d", ErrInsufficientFunds, wallet.Balance, stake)
	}

	now := s.clock.Now()
	transactions := make([]*entities.Transaction, 0, 2)

	wallet.Balance -= stake
	transactions = append(transactions, &entities.Transaction{
		ID:           uuid.New().String(),
		UserID:       userID,
		Amount:       -stake,
		Type:         entities.TransactionTypeBet,
		ReferenceID:  roundID,
		Description:  fmt.Sprintf("Bet on round %s", roundID),
		Timestamp:    now,
		BalanceAfter: wallet.Balance,
	})

	if credit > 0 {
		txType := entities.TransactionTypePayout
		if credit == stake {
			txType = entities.TransactionTypePush
		}
		wallet.Balance += credit
		transactions = append(transactions, &entities.Transaction{
			ID:           uuid.New().String(),
			UserID:       userID,
			Amount:       credit,
			Type:         txType,
			ReferenceID:  roundID,
			Description:  fmt.Sprintf("%s on round %s", txType, roundID),
			Timestamp:    now,
			BalanceAfter: wallet.Balance,
		})
	}

	wallet.LastUpdated = now
	err = s.repo.SettleWallet(ctx, wallet, transactions)
	if errors.Is(err, walletRepo.ErrAlreadySettled) {
		return s.alreadySettled(ctx, userID, roundID)
	}
	if err != nil {
		return nil, fmt.Errorf("error settling wallet: %w", err)
	}

	s.logger.Debug("Settled round %s for %s: stake %d, credit %d, balance %d", roundID, userID, stake, credit, wallet.Balance)
	return wallet, nil
}

func (s *Service) alreadySettled(ctx context.Context, userID, roundID string) (*entities.Wallet, error) {
	s.logger.Warn("Round %s is already settled for %s", roundID, userID)
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}
	return wallet, nil
}
