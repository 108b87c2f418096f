package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridfire/arena/internal/assets"
	"github.com/gridfire/arena/internal/config"
	"github.com/gridfire/arena/internal/console"
	coresys "github.com/gridfire/arena/internal/core/system"
	"github.com/gridfire/arena/internal/data"
	"github.com/gridfire/arena/internal/handler"
	gonet "github.com/gridfire/arena/internal/net"
	"github.com/gridfire/arena/internal/net/msg"
	"github.com/gridfire/arena/internal/persist"
	"github.com/gridfire/arena/internal/spectate"
	"github.com/gridfire/arena/internal/system"
	"github.com/gridfire/arena/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            gridfire/arena  v0.1.0         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        authoritative arena server         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

func run() error {
	profileMode := flag.String("profile", "", "enable profiling: cpu or mem")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	cfgPath := "config/server.toml"
	if p := os.Getenv("ARENA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// Entity definitions, from a plain YAML file or a GUID-stamped bundle.
	printSection("data")
	defs, err := loadEntityDefs(cfg.Game)
	if err != nil {
		return fmt.Errorf("load entity defs: %w", err)
	}
	printStat("entity kinds", defs.Count())

	// Database is optional; without it the server is open and in-memory.
	var accounts handler.AccountStore
	var matches *persist.MatchRepo
	if cfg.Database.Enabled {
		printSection("database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("postgres connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		printOK("migrations applied")

		accounts = persist.NewAccountRepo(db)
		matches = persist.NewMatchRepo(db)
	}
	fmt.Println()

	ep, err := gonet.Listen(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		log,
	)
	if err != nil {
		return fmt.Errorf("udp endpoint: %w", err)
	}
	ep.Start()

	peers := gonet.NewPeerSet()
	bc := system.NewBroadcastSystem(ep, peers, cfg.Network, log)
	sess := world.NewSession(cfg.Game, defs, system.ServerBehaviors(bc), log)
	bc.Bind(sess)

	deps := &handler.Deps{
		Session:  sess,
		Endpoint: ep,
		Peers:    peers,
		Accounts: accounts,
		Config:   cfg,
		Log:      log,
	}
	reg := msg.NewRegistry(log)
	handler.RegisterAll(reg, deps)

	respawnTicks := int(cfg.Game.RespawnDelay / cfg.Network.TickRate)
	persistSys := system.NewPersistenceSystem(sess, matches, cfg.Server.ID, cfg.Database.SaveInterval, cfg.Network.TickRate)

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(deps, reg))
	runner.Register(system.NewEventSystem(sess.Bus))
	runner.Register(system.NewMovementSystem(sess))
	runner.Register(system.NewCombatSystem(sess, respawnTicks))
	runner.Register(system.NewMaintainSystem(sess))
	runner.Register(bc)
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(sess))

	// Spectator feed: websocket snapshots on a separate listener.
	specCtx, specCancel := context.WithCancel(context.Background())
	defer specCancel()
	if cfg.Spectate.Enabled {
		hub := spectate.NewHub(log)
		go hub.Run(specCtx)
		runner.Register(spectate.NewSystem(sess, hub, cfg.Spectate.Divisor))

		mux := http.NewServeMux()
		mux.Handle("/watch", hub)
		specSrv := &http.Server{Addr: cfg.Spectate.BindAddress, Handler: mux}
		go func() {
			if err := specSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("spectate server failed", zap.Error(err))
			}
		}()
		defer specSrv.Close()
		printReady(fmt.Sprintf("spectators on ws://%s/watch", cfg.Spectate.BindAddress))
	}

	// Admin console. Commands run on the game loop, not the reader
	// goroutine.
	cmdCh := make(chan func(), 8)
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	con := console.New(os.Stdout, log)
	con.OnExit = func() { shutdownCh <- syscall.SIGTERM }
	con.Register("players", func([]string) error {
		cmdCh <- func() {
			sess.AllPlayers(func(p *world.Player) {
				fmt.Printf("  %-16s kills=%d deaths=%d points=%d\n", p.Name, p.Kills, p.Deaths, p.Points)
			})
		}
		return nil
	})
	con.Register("save", func([]string) error {
		cmdCh <- persistSys.SaveNow
		return nil
	})
	if matches != nil {
		con.Register("top", func([]string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			rows, err := matches.TopStandings(ctx, cfg.Server.ID, 10)
			if err != nil {
				return err
			}
			for i, row := range rows {
				fmt.Printf("  %2d. %-16s kills=%d deaths=%d points=%d\n", i+1, row.PlayerName, row.Kills, row.Deaths, row.Points)
			}
			return nil
		})
	}
	go con.Run(os.Stdin)

	printSection("ready")
	printReady(fmt.Sprintf("listening on %s", ep.Addr().String()))
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case fn := <-cmdCh:
			fn()
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			persistSys.SaveNow()
			sess.Teardown()
			ep.Shutdown()
			log.Info("server stopped")
			return nil
		}
	}
}

func loadEntityDefs(cfg config.GameConfig) (*data.EntityTable, error) {
	if !strings.HasSuffix(cfg.EntityDefs, ".bundle") {
		return data.LoadEntityTable(cfg.EntityDefs)
	}
	guid, err := assets.ParseGUID(cfg.EntityDefsGUID)
	if err != nil {
		return nil, err
	}
	raw, err := assets.Load(cfg.EntityDefs, guid)
	if err != nil {
		return nil, err
	}
	return data.ParseEntityTable(raw)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var enc zapcore.Encoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		ec.ConsoleSeparator = "  "
		enc = zapcore.NewConsoleEncoder(ec)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level),
	}

	// File writes go through a flush-on-interval buffer so they never
	// stall the game loop; Sync drains it at shutdown.
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		buffered := &zapcore.BufferedWriteSyncer{
			WS:            zapcore.AddSync(f),
			FlushInterval: time.Second,
		}
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, buffered, level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
