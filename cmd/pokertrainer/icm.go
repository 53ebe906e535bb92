package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertrainer/icm"
)

// ICMCmd computes tournament prize equity
type ICMCmd struct {
	Stacks   []float64 `arg:"" required:"" help:"Chip stacks, one per player"`
	Payouts  []float64 `short:"p" required:"" help:"Payouts from first place outward (comma separated)"`
	Simulate bool      `help:"Force simulation instead of exact enumeration"`
	Trials   int       `default:"200000" help:"Simulation trial budget"`
	Seed     int64     `help:"Simulation seed"`
	Places   bool      `help:"Show per-place finish probabilities"`
}

func (c *ICMCmd) Run(logger *log.Logger) error {
	var opts []icm.Option
	if c.Simulate {
		opts = append(opts, icm.WithSimulation())
	}
	if c.Trials > 0 {
		opts = append(opts, icm.WithTrials(c.Trials))
	}
	if c.Seed != 0 {
		opts = append(opts, icm.WithSeed(c.Seed))
	}

	res, err := icm.Compute(c.Stacks, c.Payouts, opts...)
	if err != nil {
		return err
	}

	totalChips := 0.0
	for _, s := range c.Stacks {
		totalChips += s
	}
	pool := 0.0
	for _, p := range c.Payouts {
		pool += p
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("stack"),
		headerStyle.Render("chip%"),
		headerStyle.Render("equity"),
		headerStyle.Render("pool%"))

	for i, stack := range c.Stacks {
		fmt.Fprintf(w, "%.0f\t%.1f%%\t%s\t%.1f%%\n",
			stack,
			stack/totalChips*100,
			equityStyle.Render(fmt.Sprintf("%.2f", res.Shares[i])),
			res.Shares[i]/pool*100)
	}
	w.Flush()

	if c.Places {
		fmt.Println()
		pw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(pw, "%s", headerStyle.Render("stack"))
		for d := range c.Payouts {
			fmt.Fprintf(pw, "\t%s", headerStyle.Render(ordinal(d+1)))
		}
		fmt.Fprintf(pw, "\n")
		for i, stack := range c.Stacks {
			fmt.Fprintf(pw, "%.0f", stack)
			for _, p := range res.FinishProbs[i] {
				fmt.Fprintf(pw, "\t%.1f%%", p*100)
			}
			fmt.Fprintf(pw, "\n")
		}
		pw.Flush()
	}

	fmt.Println()
	if res.Mode == icm.ModeSimulated {
		fmt.Println(footerStyle.Render(fmt.Sprintf("%d simulated finish orders", res.Trials)))
	} else {
		fmt.Println(footerStyle.Render("exact Malmuth-Harville enumeration"))
	}
	return nil
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
