package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridfire/arena/internal/client"
	"github.com/gridfire/arena/internal/config"
	"github.com/gridfire/arena/internal/console"
	"github.com/gridfire/arena/internal/data"
	gonet "github.com/gridfire/arena/internal/net"
)

func main() {
	if err := run(); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	name := flag.String("name", "", "player name (overrides config)")
	server := flag.String("server", "", "server address (overrides config)")
	flag.Parse()

	cfgPath := "config/server.toml"
	if p := os.Getenv("ARENA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *name != "" {
		cfg.Client.PlayerName = *name
	}
	if *server != "" {
		cfg.Client.ServerAddress = *server
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	defs, err := data.LoadEntityTable(cfg.Game.EntityDefs)
	if err != nil {
		return fmt.Errorf("load entity defs: %w", err)
	}

	conn, err := gonet.Dial(cfg.Client.ServerAddress, cfg.Network.InQueueSize, log)
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}
	defer conn.Close()

	c := client.New(conn, defs, cfg.Client, newStatusRenderer(), newAutopilot(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	con := console.New(os.Stdout, log)
	con.OnExit = cancel
	con.Register("status", func([]string) error {
		rep := c.Replica()
		fmt.Printf("  joined=%v player=%d entities=%d stale-drops=%d\n",
			rep.Joined(), rep.PlayerID, rep.Scene.Len(), rep.Tracker.Rejected())
		return nil
	})
	con.Register("roster", func([]string) error {
		for id, e := range c.Replica().Roster {
			fmt.Printf("  #%d %-16s kills=%d deaths=%d points=%d\n", id, e.Name, e.Kills, e.Deaths, e.Points)
		}
		return nil
	})
	go con.Run(os.Stdin)

	fmt.Printf("connecting to %s as %q\n", cfg.Client.ServerAddress, cfg.Client.PlayerName)
	return c.Run(ctx)
}

// autopilot is the built-in input source: it wanders, re-aims every couple
// of seconds, and fires in bursts. It stands in for a real frontend's
// device input.
type autopilot struct {
	rng      *rand.Rand
	current  client.Input
	lifetime int
}

func newAutopilot() *autopilot {
	return &autopilot{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (a *autopilot) Sample() client.Input {
	a.lifetime--
	if a.lifetime <= 0 {
		a.lifetime = 30 + a.rng.Intn(60)
		angle := a.rng.Float64() * 2 * math.Pi
		a.current = client.Input{
			MoveX: math.Cos(angle),
			MoveY: math.Sin(angle),
			Aim:   a.rng.Float64() * 2 * math.Pi,
			Fire:  a.rng.Intn(3) == 0,
		}
	}
	return a.current
}

// statusRenderer prints a summary line roughly once per second instead of
// drawing frames; the client binary is a protocol exerciser, not a game
// frontend.
type statusRenderer struct {
	lastPrint time.Time
}

func newStatusRenderer() *statusRenderer {
	return &statusRenderer{lastPrint: time.Now()}
}

func (r *statusRenderer) Render(f client.Frame) {
	if time.Since(r.lastPrint) < time.Second {
		return
	}
	r.lastPrint = time.Now()

	var mine string
	for _, s := range f.Sprites {
		if s.Mine {
			mine = fmt.Sprintf(" pos=(%.0f,%.0f)", s.Pos.X, s.Pos.Y)
			break
		}
	}
	fmt.Printf("\r\033[2Kentities=%d players=%d rtt=%s%s", len(f.Sprites), len(f.Roster), f.RTT.Round(time.Millisecond), mine)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.WarnLevel
	}
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	zapCfg.DisableCaller = true
	zapCfg.DisableStacktrace = true
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
