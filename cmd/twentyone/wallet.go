package main

import (
	"fmt"
)

type WalletCmd struct {
	Player string `arg:"" help:"Player whose wallet to show"`
	Limit  int    `kong:"default='10',help='Number of recent transactions to list'"`
}

func (c *WalletCmd) Run(a *app) error {
	repo, wallets, err := a.openWallets(a.ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	wallet, created, err := wallets.GetOrCreateWallet(a.ctx, c.Player)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(a.out, "Created a wallet for %s\n", c.Player)
	}
	fmt.Fprintf(a.out, "%s has %d chips (updated %s)\n", wallet.UserID, wallet.Balance, wallet.LastUpdated.Format("2006-01-02 15:04:05"))

	transactions, err := wallets.GetRecentTransactions(a.ctx, c.Player, c.Limit)
	if err != nil {
		return err
	}
	for _, tx := range transactions {
		fmt.Fprintf(a.out, "  %s %-6s %+5d -> %d  %s\n",
			tx.Timestamp.Format("2006-01-02 15:04:05"), tx.Type, tx.Amount, tx.BalanceAfter, tx.ReferenceID)
	}

	return nil
}
