package main

import (
	"log"
	"os"

	"github.com/seantiz/textlife/internal/api"
	"github.com/seantiz/textlife/internal/config"
	"github.com/seantiz/textlife/internal/engine"
	"github.com/seantiz/textlife/internal/gate"
	"github.com/seantiz/textlife/internal/generator"
	"github.com/seantiz/textlife/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("textlife: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"grid_cols", cfg.GridCols,
		"grid_rows", cfg.GridRows,
		"provider", cfg.Provider,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	reg := generator.NewRegistry()
	reg.Register(generator.ProviderOpenAI, generator.NewOpenAIClient(generator.OpenAIConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.RequestTimeout,
	}))

	gen, err := reg.Resolve(cfg.Provider)
	if err != nil {
		log.Fatalf("unknown provider %q: %v", cfg.Provider, err)
	}

	eng := engine.New(cfg.GridCols, cfg.GridRows, gate.New(cfg.MaxConcurrent, cfg.MinInterval), gen, logger)

	srv := api.NewServer(cfg.ListenAddr, db, reg, eng, logger)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}

	// Let in-flight generation finish before the process exits.
	eng.Wait()
	eng.Broker().Close()
}
