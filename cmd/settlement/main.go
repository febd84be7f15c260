// settlement ingests graded results and settles pending bets.
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
	"github.com/evaristomat/lol-v2/internal/scheduler"
	"github.com/evaristomat/lol-v2/internal/service"
	"github.com/evaristomat/lol-v2/internal/stats"
)

var (
	cfgFile  string
	skipSync bool
	daemon   bool
)

var rootCmd = &cobra.Command{
	Use:   "settlement",
	Short: "Ingest graded results and settle pending bets",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().BoolVar(&skipSync, "skip-sync", false, "settle against already-stored results only")
	rootCmd.Flags().BoolVar(&daemon, "daemon", false, "keep running on the configured schedule")
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

	aliases, err := repos.Teams.Aliases(ctx)
	if err != nil {
		return err
	}
	resolver := stats.NewResolver(aliases)

	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.ProviderTimeout()
	httpCfg.MaxRetries = cfg.Bet365.RetryAttempts
	window := datasource.NewWindowLimiter(cfg.Bet365.RequestsPerHour, time.Hour)
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, window, log)
	defer httpClient.Close()

	client := bet365.NewClient(httpClient, cfg.Bet365.APIURL, cfg.Bet365.Token, log)
	results := ingest.NewResultIngestor(client, repos.Bets, repos.Matches, log)

	settlement := service.NewSettlementService(
		repos.Bets, repos.Matches, resolver, cfg.Settlement, log)

	metrics.Register()

	runOnce := func(ctx context.Context) error {
		if !skipSync {
			if err := results.SyncPending(ctx); err != nil {
				return err
			}
		}
		_, err := settlement.Run(ctx)
		return err
	}

	if !daemon {
		return runOnce(ctx)
	}

	if cfg.Metrics.Enabled {
		srv := metrics.Serve(cfg.Metrics.Port, cfg.Metrics.Path)
		defer srv.Close()
	}

	sched := scheduler.New(log)
	if err := sched.Add(ctx, scheduler.Job{
		Name: "result_sync_and_settlement",
		Spec: cfg.Schedule.Settlement,
		Run:  runOnce,
	}); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	log.Info("settlement running, waiting for schedule")
	<-ctx.Done()
	return nil
}
