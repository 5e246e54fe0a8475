package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/betboard/internal/export"
	"github.com/radieske/betboard/internal/provider"
	"github.com/radieske/betboard/internal/provider/espnrss"
	"github.com/radieske/betboard/internal/provider/mockfeed"
	"github.com/radieske/betboard/internal/provider/oddsapi"
	"github.com/radieske/betboard/internal/refresh"
	sharedcache "github.com/radieske/betboard/internal/shared/cache"
	"github.com/radieske/betboard/internal/shared/config"
	"github.com/radieske/betboard/internal/shared/db"
	"github.com/radieske/betboard/internal/shared/logger"
	"github.com/radieske/betboard/internal/shared/metrics"
	storagecache "github.com/radieske/betboard/internal/storage/cache"
	"github.com/radieske/betboard/internal/storage/repo"
	"github.com/radieske/betboard/internal/stream"
	"github.com/radieske/betboard/internal/ui"
	"github.com/radieske/betboard/pkg/contracts/odds"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.Load(os.Getenv("BETBOARD_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New("betboard", cfg.App.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Shutdown gracioso por SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch command {
	case "run":
		err = runDashboard(ctx, cfg, log)
	case "refresh":
		err = runRefresh(ctx, cfg, log, args)
	case "export":
		err = runExport(ctx, cfg, log, args)
	case "watchlist":
		err = runWatchlist(ctx, cfg, args)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("command failed", zap.Error(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: betboard <command>

commands:
  run                                            launch the dashboard
  refresh   [--league NFL|CFB|UFC] [--force]     fetch odds, snapshot and detect moves
  export    [--league L | --all] [--format json] [--output-dir D]
  watchlist add <event_id> --league L | list | remove <event_id>`)
}

// newOddsProvider resolve o provider: The Odds API quando habilitado, o
// feed simulado quando desabilitado (rodadas locais sem chave).
func newOddsProvider(cfg config.Config) (provider.OddsProvider, error) {
	if !cfg.OddsAPI.Enabled {
		return mockfeed.New(time.Now().UnixNano()), nil
	}
	key := cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("odds provider enabled but %s is not set", cfg.OddsAPI.APIKeyEnv)
	}
	return oddsapi.New(key)
}

// ensureUFCKey descobre a chave de liga de UFC no catálogo do provider
// quando o arquivo de configuração ainda não a tem, e persiste de volta.
func ensureUFCKey(ctx context.Context, cfg *config.Config, prov provider.OddsProvider, log *zap.Logger) {
	if cfg.Leagues.UFCKey != "" {
		return
	}
	client, ok := prov.(*oddsapi.Client)
	if !ok {
		return
	}
	sports, err := client.ListSports(ctx)
	if err != nil {
		log.Warn("ufc key discovery failed", zap.Error(err))
		return
	}
	key := oddsapi.DiscoverUFCKey(sports)
	if key == "" {
		return
	}
	cfg.Leagues.UFCKey = key
	if err := config.SaveUFCKey(os.Getenv("BETBOARD_CONFIG"), key); err != nil {
		log.Warn("ufc key save failed", zap.Error(err))
	}
	log.Info("ufc league key discovered", zap.String("key", key))
}

// openRepo conecta no Postgres e garante o schema.
func openRepo(ctx context.Context, cfg config.Config) (*repo.PostgresRepo, func(), error) {
	pg, err := db.ConnectPostgres(cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres connect: %w", err)
	}
	store := repo.NewPostgresRepo(pg)
	if err := store.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return store, func() { pg.Close() }, nil
}

func runDashboard(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	store, closeDB, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	prov, err := newOddsProvider(cfg)
	if err != nil {
		return err
	}
	ensureUFCKey(ctx, &cfg, prov, log)

	// Cache é acessório: sem Redis o dashboard só refaz fetch a cada ciclo
	var oddsCache *storagecache.RedisCache
	redisClient, err := sharedcache.ConnectRedis(cfg.Storage.RedisAddr)
	if err != nil {
		log.Warn("redis unavailable, running without cache", zap.Error(err))
	} else {
		defer redisClient.Close()
		oddsCache = storagecache.NewRedisCache(redisClient)
	}

	srv := metrics.StartMetricsServer(cfg.App.MetricsPort, func(ctx context.Context) error {
		return store.DB.PingContext(ctx)
	})
	defer srv.Close()
	log.Info("metrics/health listening", zap.String("port", cfg.App.MetricsPort))

	leagues, _ := cfg.ResolveLeagues("")
	dashboard := &ui.Dashboard{
		Log:      log,
		Provider: prov,
		News:     espnrss.New(),
		Store:    store,
		Cache:    oddsCache,
		Leagues: []ui.League{
			{Label: "NFL", Key: leagues[0]},
			{Label: "CFB", Key: leagues[1]},
			{Label: "UFC", Key: leagues[2]},
		},
		Regions: cfg.OddsAPI.Regions,
		Markets: cfg.OddsAPI.Markets,
		Books:   cfg.Books.Allow,
		TTL: ui.TTLPolicy{
			Odds:        time.Duration(cfg.Caching.OddsTTLMinutes) * time.Minute,
			News:        time.Duration(cfg.Caching.NewsTTLMinutes) * time.Minute,
			OddsWithin1: time.Duration(cfg.Watchlist.OddsTTLMinutesWithin24h) * time.Minute,
			OddsWithin2: time.Duration(cfg.Watchlist.OddsTTLMinutesWithin3h) * time.Minute,
		},
		Interval: time.Duration(cfg.App.RefreshUISeconds) * time.Second,
		Out:      os.Stdout,
	}

	log.Info("dashboard started")
	return dashboard.Run(ctx)
}

func runRefresh(ctx context.Context, cfg config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	league := fs.String("league", "", "NFL, CFB or UFC (default: all)")
	force := fs.Bool("force", false, "drop cached odds/news before fetching")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, closeDB, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	prov, err := newOddsProvider(cfg)
	if err != nil {
		return err
	}
	ensureUFCKey(ctx, &cfg, prov, log)

	leagues, err := cfg.ResolveLeagues(*league)
	if err != nil {
		return err
	}

	if *force {
		if redisClient, rerr := sharedcache.ConnectRedis(cfg.Storage.RedisAddr); rerr == nil {
			oddsCache := storagecache.NewRedisCache(redisClient)
			for _, leagueKey := range leagues {
				if cerr := oddsCache.Clear(ctx, leagueKey); cerr != nil {
					log.Warn("cache clear failed", zap.String("league", leagueKey), zap.Error(cerr))
				}
			}
			redisClient.Close()
		}
	}

	var publisher refresh.MovementPublisher
	if cfg.Kafka.Enabled {
		p := stream.NewMovementPublisher(cfg.Kafka.Brokers, log)
		defer p.Close()
		publisher = p
	}

	var fetched, snapshots, movements, failures int
	service := &refresh.Service{
		Log:         log,
		Provider:    prov,
		Store:       store,
		Publisher:   publisher,
		Markets:     cfg.OddsAPI.Markets,
		Regions:     cfg.OddsAPI.Regions,
		Books:       cfg.Books.Allow,
		OnFetched:   func(n int) { fetched += n },
		OnSnapshot:  func() { snapshots++ },
		OnMovements: func(n int) { movements += n },
		OnError:     func(string) { failures++ },
	}

	for _, leagueKey := range leagues {
		if err := service.RefreshLeague(ctx, leagueKey); err != nil {
			log.Error("league refresh failed", zap.String("league", leagueKey), zap.Error(err))
		}
	}

	log.Info("refresh finished",
		zap.Int("events", fetched),
		zap.Int("snapshots", snapshots),
		zap.Int("movements", movements),
		zap.Int("errors", failures),
	)
	return nil
}

func runExport(ctx context.Context, cfg config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	league := fs.String("league", "", "NFL, CFB or UFC")
	all := fs.Bool("all", false, "export every league")
	format := fs.String("format", "json", "output format")
	outputDir := fs.String("output-dir", "", "write one file per league instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*all && *league == "" {
		return errors.New("provide --league or --all")
	}
	if *format != "json" {
		return fmt.Errorf("unsupported format %q", *format)
	}

	store, closeDB, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	prov, err := newOddsProvider(cfg)
	if err != nil {
		return err
	}
	ensureUFCKey(ctx, &cfg, prov, log)

	selector := *league
	if *all {
		selector = ""
	}
	leagues, err := cfg.ResolveLeagues(selector)
	if err != nil {
		return err
	}

	service := &export.Service{
		Provider: prov,
		News:     espnrss.New(),
		Store:    store,
		Markets:  cfg.OddsAPI.Markets,
		Regions:  cfg.OddsAPI.Regions,
		Books:    cfg.Books.Allow,
	}

	for _, leagueKey := range leagues {
		bundle, err := service.BuildBundle(ctx, leagueKey)
		if err != nil {
			return err
		}
		if *outputDir != "" {
			path, err := export.WriteBundle(bundle, *outputDir)
			if err != nil {
				return err
			}
			log.Info("bundle written", zap.String("path", path))
			continue
		}
		data, err := export.MarshalBundle(bundle)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}
	return nil
}

func runWatchlist(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: betboard watchlist add|list|remove")
	}
	sub := args[0]

	store, closeDB, err := openRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	switch sub {
	case "add":
		if len(args) < 2 || args[1] == "" || args[1][0] == '-' {
			return errors.New("usage: betboard watchlist add <event_id> --league L")
		}
		eventID := args[1]
		fs := flag.NewFlagSet("watchlist add", flag.ExitOnError)
		league := fs.String("league", "", "NFL, CFB or UFC (required)")
		notes := fs.String("notes", "", "optional note")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *league == "" {
			return errors.New("--league is required")
		}
		leagues, err := cfg.ResolveLeagues(*league)
		if err != nil {
			return err
		}
		item := odds.WatchlistItem{
			EventID:   eventID,
			LeagueKey: leagues[0],
			AddedAt:   time.Now().UTC(),
			Notes:     *notes,
		}
		if err := store.UpsertWatchlist(ctx, item); err != nil {
			return err
		}
		fmt.Printf("Added %s\n", eventID)
		return nil

	case "remove":
		if len(args) < 2 {
			return errors.New("usage: betboard watchlist remove <event_id>")
		}
		if err := store.RemoveWatchlist(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[1])
		return nil

	case "list":
		items, err := store.ListWatchlist(ctx)
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Printf("%s (%s)\n", item.EventID, item.LeagueKey)
		}
		return nil
	}
	return fmt.Errorf("unknown watchlist command %q", sub)
}
