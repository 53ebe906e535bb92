package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Debug   bool             `help:"Enable debug logging"`

	Odds     OddsCmd     `cmd:"" help:"Compute equity for hands or ranges"`
	ICM      ICMCmd      `cmd:"" name:"icm" help:"Compute tournament prize equity"`
	Lookup   LookupCmd   `cmd:"" help:"Query a strategy table"`
	Drill    DrillCmd    `cmd:"" help:"Run the interactive push/fold drill"`
	Serve    ServeCmd    `cmd:"" help:"Run the strategy query server"`
	GenTable GenTableCmd `cmd:"" name:"gen-table" help:"Generate strategy and equity tables"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokertrainer"),
		kong.Description("Poker strategy trainer: equity, ICM and GTO drills"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(setupLogger(cli.Debug))
	ctx.FatalIfErrorf(err)
}

func setupLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}
