package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fadedpez/twentyone/internal/config"
	"github.com/fadedpez/twentyone/pkg/db/migrations"
	_ "github.com/mattn/go-sqlite3"
)

type MigrateCmd struct {
	DBPath string `kong:"name='db',help='Database file, defaults to WALLET_DB_PATH'"`
}

func (c *MigrateCmd) Run(a *app) error {
	path := c.DBPath
	if path == "" {
		if a.cfg.WalletBackend != config.BackendSQLite {
			return fmt.Errorf("migrate needs the sqlite backend or --db")
		}
		if err := a.cfg.EnsureDataDir(); err != nil {
			return err
		}
		path = a.cfg.WalletDBPath
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	migrator := migrations.NewMigrator(db, migrations.WalletSchema())
	migrator.SetLogger(a.logger)
	applied, err := migrator.MigrateUp(a.ctx)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Fprintf(a.out, "%s is up to date\n", path)
		return nil
	}
	fmt.Fprintf(a.out, "Applied %s to %s\n", strings.Join(applied, ", "), path)
	return nil
}
