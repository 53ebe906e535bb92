package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertrainer/analysis"
	"github.com/lox/pokertrainer/gto"
	"github.com/lox/pokertrainer/internal/config"
	"github.com/lox/pokertrainer/internal/server"
)

// ServeCmd runs the strategy query server
type ServeCmd struct {
	Config  string `short:"c" default:"trainer.hcl" help:"HCL configuration file"`
	Addr    string `help:"Listen address override (host:port)"`
	Preflop string `help:"Precomputed preflop equity table (JSON)"`
}

func (c *ServeCmd) Run(logger *log.Logger) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if level, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	table, err := serveTable(cfg, logger)
	if err != nil {
		return err
	}

	var preflop *analysis.PreflopTable
	if c.Preflop != "" {
		preflop, err = loadPreflopTable(c.Preflop)
		if err != nil {
			return fmt.Errorf("preflop table: %w", err)
		}
		logger.Info("Loaded preflop equity table", "classes", len(preflop.Equities))
	}

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	service := server.NewQueryService(logger, gto.NewStore(table), preflop)
	return server.NewServer(addr, logger, service).Start()
}

// serveTable loads the first configured strategy table, falling back to
// the built-in push/fold charts.
func serveTable(cfg *config.Config, logger *log.Logger) (*gto.Table, error) {
	if len(cfg.Tables) == 0 {
		logger.Info("No tables configured, serving built-in push/fold charts")
		return gto.PushFoldTable()
	}

	entry := cfg.Tables[0]
	table, err := gto.LoadTable(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", entry.Name, err)
	}
	logger.Info("Loaded strategy table", "name", entry.Name, "situations", table.Len())
	return table, nil
}

func loadPreflopTable(path string) (*analysis.PreflopTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var table analysis.PreflopTable
	if err := json.NewDecoder(f).Decode(&table); err != nil {
		return nil, err
	}
	return &table, nil
}
