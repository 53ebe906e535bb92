package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertrainer/gto"
	"github.com/lox/pokertrainer/internal/tui"
)

// DrillCmd runs the interactive push/fold drill
type DrillCmd struct {
	Table string `short:"t" help:"Strategy table file (defaults to the built-in push/fold charts)"`
	Seed  *int64 `help:"Seed for the question sequence"`
}

func (c *DrillCmd) Run(logger *log.Logger) error {
	table, err := loadTable(c.Table)
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	model := tui.NewDrillModel(gto.NewStore(table), logger, quartz.NewReal(), seed)
	program := tea.NewProgram(model, tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("drill failed: %w", err)
	}

	summary := final.(*tui.DrillModel).Summary()
	if summary.Answered == 0 {
		return nil
	}
	fmt.Printf("answered %d, correct %d (%.0f%%) in %v\n",
		summary.Answered, summary.Correct,
		float64(summary.Correct)/float64(summary.Answered)*100,
		summary.Duration.Truncate(time.Second))
	return nil
}
