package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertrainer/analysis"
	"github.com/lox/pokertrainer/internal/fileutil"
)

// GenTableCmd generates strategy and equity tables
type GenTableCmd struct {
	Preflop  PreflopTableCmd  `cmd:"" help:"Generate the 169-class preflop equity table"`
	PushFold PushFoldTableCmd `cmd:"" name:"push-fold" help:"Write the built-in push/fold charts to a table file"`
}

// PreflopTableCmd generates the preflop equity table
type PreflopTableCmd struct {
	Output      string `short:"o" default:"preflop.json" help:"Output file"`
	Simulations int    `default:"100000" help:"Monte Carlo budget per matchup"`
	Seed        int64  `default:"1" help:"Seed for reproducible tables"`
}

func (c *PreflopTableCmd) Run(logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("Generating preflop equity table", "simulations", c.Simulations, "seed", c.Seed)
	start := time.Now()

	table, err := analysis.GeneratePreflopTable(ctx, c.Simulations, c.Seed)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(c.Output, data, 0o644); err != nil {
		return err
	}

	logger.Info("Wrote preflop table", "path", c.Output, "classes", len(table.Equities), "took", time.Since(start).Truncate(time.Second))
	return nil
}

// PushFoldTableCmd writes the embedded push/fold charts to disk so they
// can be edited and served back with --table.
type PushFoldTableCmd struct {
	Output string `short:"o" default:"push-fold.json" help:"Output file"`
}

func (c *PushFoldTableCmd) Run(logger *log.Logger) error {
	table, err := loadTable("")
	if err != nil {
		return err
	}
	if err := table.Save(c.Output); err != nil {
		return err
	}
	fmt.Printf("wrote %d situations to %s\n", table.Len(), c.Output)
	return nil
}
