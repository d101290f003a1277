// Command duskspire runs the autonomous world simulation as a
// standalone process. A game server would instead embed the engine and
// drive it through its public API.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/caarlos0/env/v11"

	"github.com/korvan/duskspire/internal/api"
	"github.com/korvan/duskspire/internal/chance"
	"github.com/korvan/duskspire/internal/config"
	"github.com/korvan/duskspire/internal/engine"
	"github.com/korvan/duskspire/internal/store"
)

type envConfig struct {
	TuningPath string `env:"DUSKSPIRE_TUNING"`
	DBPath     string `env:"DUSKSPIRE_DB" envDefault:"data/duskspire.db"`
	Seed       int64  `env:"DUSKSPIRE_SEED" envDefault:"0"`
	Population int    `env:"DUSKSPIRE_POPULATION" envDefault:"120"`
	Persistent bool   `env:"DUSKSPIRE_PERSISTENT" envDefault:"false"`
	APIPort    int    `env:"DUSKSPIRE_API_PORT" envDefault:"0"`
	AdminKey   string `env:"DUSKSPIRE_ADMIN_KEY"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		slog.Error("env parse failed", "error", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if ec.TuningPath != "" {
		var err error
		cfg, err = config.Load(ec.TuningPath)
		if err != nil {
			slog.Error("tuning load failed", "path", ec.TuningPath, "error", err)
			os.Exit(1)
		}
		slog.Info("tuning loaded", "path", ec.TuningPath)
	}
	if ec.Persistent {
		cfg.Mode = config.ModePersistent
	}

	os.MkdirAll("data", 0755)
	st, err := store.OpenSQLite(ec.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("database opened", "path", ec.DBPath)

	seed := ec.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := chance.NewSource(seed)

	eng := engine.New(cfg, st, rng)
	eng.SeedPopulation(ec.Population)
	slog.Info("world seeded", "population", ec.Population, "seed", seed)

	eng.StartSimulation()

	if ec.APIPort > 0 {
		srv := &api.Server{Eng: eng, St: st, Port: ec.APIPort, AdminKey: ec.AdminKey}
		srv.Start()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
	eng.StopSimulation()
}
