// bet-finder syncs upcoming odds and records qualifying bets.
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
	"github.com/evaristomat/lol-v2/internal/probability"
	"github.com/evaristomat/lol-v2/internal/repository"
	"github.com/evaristomat/lol-v2/internal/scheduler"
	"github.com/evaristomat/lol-v2/internal/service"
	"github.com/evaristomat/lol-v2/internal/stats"
	"github.com/evaristomat/lol-v2/internal/strategy"
)

var (
	cfgFile  string
	skipSync bool
	daemon   bool
)

var rootCmd = &cobra.Command{
	Use:   "bet-finder",
	Short: "Sync upcoming odds and record qualifying bets",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().BoolVar(&skipSync, "skip-sync", false, "skip the odds sync and analyze stored quotes")
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

	if len(cfg.TeamAliases) > 0 {
		if err := repos.Teams.SeedAliases(ctx, cfg.TeamAliases); err != nil {
			return err
		}
	}
	aliases, err := repos.Teams.Aliases(ctx)
	if err != nil {
		return err
	}

	resolver := stats.NewResolver(aliases)
	store := stats.NewStore(repos.Matches, resolver, cfg.StatsHorizon(), log)

	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.ProviderTimeout()
	httpCfg.MaxRetries = cfg.Bet365.RetryAttempts
	window := datasource.NewWindowLimiter(cfg.Bet365.RequestsPerHour, time.Hour)
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, window, log)
	defer httpClient.Close()

	client := bet365.NewClient(httpClient, cfg.Bet365.APIURL, cfg.Bet365.Token, log)
	odds := ingest.NewOddsIngestor(client, repos.Events, cfg.Bet365.LeagueIDs, log)

	model := probability.NewModel()
	model.WindowShort = cfg.Stats.WindowShort
	model.WindowLong = cfg.Stats.WindowLong
	model.MinSamples = cfg.Stats.WindowLong

	players, err := store.PlayerNames(ctx)
	if err != nil {
		return err
	}

	// Player props claim their markets before the totals fallback.
	strategies := []strategy.Strategy{
		strategy.NewPlayerPropsStrategy(model, store, players),
		strategy.NewTotalsStrategy(model, store),
	}

	analysis := service.NewAnalysisService(
		repos.Events, repos.Bets, store, strategies,
		service.NewLogNotifier(log), cfg.Analysis, log)

	metrics.Register()

	runOnce := func(ctx context.Context) error {
		if !skipSync {
			if err := odds.Sync(ctx); err != nil {
				return err
			}
		}
		if _, err := analysis.Run(ctx); err != nil {
			return err
		}
		hits, misses := store.CacheStats()
		metrics.SampleCacheHits.WithLabelValues("hit").Set(float64(hits))
		metrics.SampleCacheHits.WithLabelValues("miss").Set(float64(misses))
		return nil
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
		Name: "odds_sync_and_analysis",
		Spec: cfg.Schedule.OddsSync,
		Run:  runOnce,
	}); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	log.Info("bet-finder running, waiting for schedule")
	<-ctx.Done()
	return nil
}
