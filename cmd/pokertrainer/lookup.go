package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertrainer/gto"
	"github.com/lox/pokertrainer/internal/randutil"
)

// LookupCmd queries a strategy table
type LookupCmd struct {
	Table    string `short:"t" help:"Strategy table file (defaults to the built-in push/fold charts)"`
	Street   string `default:"preflop" help:"Betting street"`
	Position string `short:"p" required:"" help:"Acting position (e.g. SB, BB, BTN)"`
	Stack    int    `short:"s" required:"" help:"Effective stack in big blinds"`
	Facing   string `short:"f" default:"unopened" help:"Action faced (unopened, push, bet...)"`
	Hand     string `arg:"" required:"" help:"Starting-hand class (e.g. AKs, 72o, TT)"`
	Sample   bool   `help:"Sample a single action instead of printing frequencies"`
	Seed     *int64 `help:"Seed for --sample"`
}

func (c *LookupCmd) Run(logger *log.Logger) error {
	table, err := loadTable(c.Table)
	if err != nil {
		return err
	}

	sit := gto.Situation{
		Street:    gto.Street(c.Street),
		Position:  c.Position,
		StackBB:   c.Stack,
		Facing:    c.Facing,
		HandClass: c.Hand,
	}

	freqs, err := table.Lookup(sit)
	if err != nil {
		return err
	}

	if c.Sample {
		seed := time.Now().UnixNano()
		if c.Seed != nil {
			seed = *c.Seed
		}
		action, err := freqs.SampleAction(randutil.New(seed))
		if err != nil {
			return err
		}
		fmt.Println(rangeStyle.Render(string(action)))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("action"), headerStyle.Render("frequency"))
	for _, action := range []gto.Action{gto.ActionPush, gto.ActionRaise, gto.ActionBet, gto.ActionCall, gto.ActionCheck, gto.ActionFold} {
		freq, ok := freqs[action]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n",
			rangeStyle.Render(string(action)),
			equityStyle.Render(fmt.Sprintf("%.1f%%", freq*100)))
	}
	w.Flush()
	return nil
}

// loadTable opens the named table file, or builds the embedded
// push/fold charts when no file is given.
func loadTable(path string) (*gto.Table, error) {
	if path == "" {
		return gto.PushFoldTable()
	}
	return gto.LoadTable(path)
}
