package main

import (
	"github.com/alecthomas/kong"
	"github.com/lox/blackjack/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are shared by every command.
type Globals struct {
	Config   string `short:"c" type:"path" default:"blackjack.hcl" env:"BLACKJACK_CONFIG" help:"HCL config file (missing file uses defaults)"`
	LogLevel string `help:"Override the configured log level"`
}

// Load reads the configuration for a command.
func (g *Globals) Load() (*config.Config, error) {
	cfg, err := config.LoadAll(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	return cfg, nil
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play at a local table in the terminal"`
	Daily    DailyCmd         `cmd:"" help:"Play today's seeded challenge"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate many rounds with a fixed policy"`
	Serve    ServeCmd         `cmd:"" help:"Run the WebSocket table server"`
	Bot      BotCmd           `cmd:"" help:"Play against a server with a built-in policy"`
	Advise   AdviseCmd        `cmd:"" help:"Show the basic strategy decision for a hand"`
	Stats    StatsCmd         `cmd:"" help:"Show lifetime statistics"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack table, strategy trainer and simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
