// results-sync pulls graded match results into the historical database
// without touching the ledger.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/evaristomat/lol-v2/internal/bet365"
	"github.com/evaristomat/lol-v2/internal/config"
	"github.com/evaristomat/lol-v2/internal/database"
	"github.com/evaristomat/lol-v2/internal/datasource"
	"github.com/evaristomat/lol-v2/internal/ingest"
	"github.com/evaristomat/lol-v2/internal/logger"
	"github.com/evaristomat/lol-v2/internal/metrics"
	"github.com/evaristomat/lol-v2/internal/repository"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "results-sync",
	Short: "Pull graded match results into the historical database",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithDefaults(cfgFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	repos := repository.New(db)

	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.ProviderTimeout()
	httpCfg.MaxRetries = cfg.Bet365.RetryAttempts
	window := datasource.NewWindowLimiter(cfg.Bet365.RequestsPerHour, time.Hour)
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, window, log)
	defer httpClient.Close()

	client := bet365.NewClient(httpClient, cfg.Bet365.APIURL, cfg.Bet365.Token, log)
	results := ingest.NewResultIngestor(client, repos.Bets, repos.Matches, log)

	metrics.Register()
	return results.SyncPending(ctx)
}
