package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/pokertrainer/analysis"
	"github.com/lox/pokertrainer/poker"
)

// OddsCmd computes equity for hands or ranges
type OddsCmd struct {
	Ranges     []string `arg:"" required:"" help:"Ranges in standard notation (e.g. 'AKs' '22+,ATs+'), or concrete hands like 'AsKd'"`
	Board      string   `short:"b" help:"Community board cards (e.g. 'Td7s8h')"`
	Dead       string   `short:"d" help:"Dead cards removed from the deck"`
	Exact      bool     `help:"Force exact enumeration"`
	MonteCarlo bool     `help:"Force Monte Carlo simulation"`
	Iterations int      `short:"i" default:"100000" help:"Monte Carlo iteration budget"`
	Seed       *int64   `help:"Random seed for reproducible results"`
	Workers    int      `help:"Worker goroutines (0 = all CPUs)"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	rangeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	equityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

func (c *OddsCmd) Run(logger *log.Logger) error {
	// Match the styling to what the terminal can actually render.
	lipgloss.SetColorProfile(termenv.ColorProfile())

	participants := make([]*analysis.Range, len(c.Ranges))
	for i, notation := range c.Ranges {
		r, err := parseRangeOrHand(notation)
		if err != nil {
			return fmt.Errorf("range %d: %w", i+1, err)
		}
		participants[i] = r
	}

	var board, dead []poker.Card
	var err error
	if c.Board != "" {
		if board, err = poker.ParseCards(c.Board); err != nil {
			return fmt.Errorf("board: %w", err)
		}
	}
	if c.Dead != "" {
		if dead, err = poker.ParseCards(c.Dead); err != nil {
			return fmt.Errorf("dead: %w", err)
		}
	}

	opts := analysis.Options{
		Iterations: c.Iterations,
		Workers:    c.Workers,
	}
	switch {
	case c.Exact && c.MonteCarlo:
		return fmt.Errorf("--exact and --monte-carlo are mutually exclusive")
	case c.Exact:
		opts.Mode = analysis.ModeExact
	case c.MonteCarlo:
		opts.Mode = analysis.ModeMonteCarlo
	}
	if c.Seed != nil {
		opts.Seed = *c.Seed
	} else {
		opts.Seed = time.Now().UnixNano()
	}

	// Ctrl-C delivers whatever has been computed so far.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	eq, err := analysis.ComputeEquity(ctx, participants, board, dead, opts)
	if err != nil {
		return err
	}
	duration := time.Since(start)

	if len(board) > 0 {
		fmt.Printf("%s\n%s\n\n", headerStyle.Render("board"), c.Board)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("range"),
		headerStyle.Render("win"),
		headerStyle.Render("tie"),
		headerStyle.Render("equity"))

	for i, r := range eq.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			rangeStyle.Render(c.Ranges[i]),
			winStyle.Render(fmt.Sprintf("%.1f%%", r.Win*100)),
			tieStyle.Render(fmt.Sprintf("%.1f%%", r.Tie*100)),
			equityStyle.Render(fmt.Sprintf("%.2f%%", r.Equity*100)))
	}
	w.Flush()

	fmt.Println()
	switch {
	case eq.Partial:
		fmt.Println(footerStyle.Render(fmt.Sprintf("interrupted after %d trials in %v (partial result)", eq.Trials, duration.Truncate(time.Millisecond))))
	case eq.Mode == analysis.ModeExact:
		fmt.Println(footerStyle.Render(fmt.Sprintf("%d run-outs enumerated in %v", eq.Trials, duration.Truncate(time.Millisecond))))
	default:
		fmt.Println(footerStyle.Render(fmt.Sprintf("%d simulations in %v (seed %d)", eq.Trials, duration.Truncate(time.Millisecond), opts.Seed)))
	}

	return nil
}

// parseRangeOrHand accepts range notation first, falling back to a
// concrete two-card hand like "AsKd".
func parseRangeOrHand(notation string) (*analysis.Range, error) {
	if r, err := analysis.ParseRange(notation); err == nil {
		return r, nil
	}
	cards, err := poker.ParseCards(notation)
	if err != nil {
		return nil, fmt.Errorf("not a range or hand: %s", notation)
	}
	if len(cards) != 2 {
		return nil, fmt.Errorf("concrete hand needs exactly 2 cards, got %d", len(cards))
	}
	return analysis.RangeFromCards(cards[0], cards[1])
}
