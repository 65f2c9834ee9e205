package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/premiumkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/cli"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/config"
	"github.com/dmitrijs2005/premiumkeeper/internal/client/overrides"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := overrides.OpenSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer db.Close()

	store := overrides.NewStore(overrides.NewSQLiteBackend(db))
	cli.NewApp(cfg, store).Run(ctx)
}
