package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"expenses/internal/cli"
	applog "expenses/internal/log"
	"expenses/internal/store"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(cli.SetupLogger(os.Stderr, "info", applog.ComponentCLI), "Configuration invalid", err)
	}
	// Logs go to stderr so list and export output stays clean.
	logger := cli.SetupLogger(os.Stderr, "warn", applog.ComponentCLI)

	commander := subcommands.NewCommander(flag.CommandLine, "expenses-cli")
	cli.Register(commander, &cli.Env{
		Open: func(ctx context.Context) (*store.Store, error) {
			return cli.OpenStore(ctx, logger, cfg)
		},
		Out:             os.Stdout,
		Err:             os.Stderr,
		Currency:        cfg.Currency,
		DateLayout:      cfg.DateFormat,
		DefaultCategory: cfg.DefaultCategory,
		OAuthClientFile: cfg.GoogleOAuthClientFile,
		OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
	})
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
