package wallet

import (
	"context"

	"github.com/fadedpez/twentyone/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_wallet_service
type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error)
	SettleRound(ctx context.Context, userID, roundID string, stake, credit int64) (*entities.Wallet, error)
}
