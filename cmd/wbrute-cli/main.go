package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/lcalzada-xor/wbrute/internal/app"
	"github.com/lcalzada-xor/wbrute/internal/config"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
)

// Exit codes reported by the attack command when no passphrase was found.
const (
	exitExhausted = 2
	exitCancelled = 3
)

type CLI struct {
	Config     string `name:"config" help:"YAML config file (timings, presets)" type:"path"`
	Mock       bool   `name:"mock" help:"Use simulated adapters instead of NetworkManager"`
	DB         string `name:"db" help:"Path to SQLite database" type:"path"`
	WordlistDB string `name:"wordlist-db" help:"Path to SQLite wordlist store" type:"path"`
	Debug      bool   `name:"debug" help:"Verbose logging"`

	Adapters AdaptersCmd `cmd:"" help:"List wireless adapters"`
	Scan     ScanCmd     `cmd:"" help:"Scan for networks with one adapter"`
	Import   ImportCmd   `cmd:"" help:"List networks seen in a pcap/pcapng capture"`
	Attack   AttackCmd   `cmd:"" help:"Run a dictionary attack against one network"`
	Wordlist WordlistCmd `cmd:"" help:"Manage stored wordlists"`
	History  HistoryCmd  `cmd:"" help:"List finished attacks"`
	Report   ReportCmd   `cmd:"" help:"Write the PDF report of a finished attack"`
}

// runtime is bound into every command's Run method.
type runtime struct {
	ctx context.Context
	app *app.Application
	out io.Writer
}

// exitCodeError carries a process exit code out of a command.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("wbrute-cli"),
		kong.Description(description()),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)

	if !cli.Debug {
		log.SetOutput(io.Discard)
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	}

	cfg, err := config.Parse(cli.configArgs())
	kctx.FatalIfErrorf(err)

	application, err := app.New(cfg)
	kctx.FatalIfErrorf(err)

	rt := &runtime{
		ctx: operatorContext(context.Background()),
		app: application,
		out: os.Stdout,
	}
	err = kctx.Run(rt)
	application.Close()

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		if exitErr.msg != "" {
			fmt.Fprintln(os.Stderr, exitErr.msg)
		}
		os.Exit(exitErr.code)
	}
	kctx.FatalIfErrorf(err)
}

// configArgs maps the global flags onto the server's flag set so both
// binaries resolve configuration the same way.
func (c *CLI) configArgs() []string {
	var args []string
	if c.Config != "" {
		args = append(args, "-config", c.Config)
	}
	if c.Mock {
		args = append(args, "-mock")
	}
	if c.DB != "" {
		args = append(args, "-db", c.DB)
	}
	if c.WordlistDB != "" {
		args = append(args, "-wordlist-db", c.WordlistDB)
	}
	if c.Debug {
		args = append(args, "-debug")
	}
	return args
}

// operatorContext attributes CLI actions to the local user in the audit log.
func operatorContext(ctx context.Context) context.Context {
	name := os.Getenv("USER")
	if name == "" {
		name = "operator"
	}
	return domain.ContextWithUser(ctx, &domain.User{
		ID:       "cli",
		Username: "cli:" + name,
		Role:     domain.RoleAdmin,
	})
}

func description() string {
	return `
Headless Wi-Fi passphrase auditing.

Only run attacks against networks you own or are authorized in writing to test.

Examples:
  wbrute-cli adapters
  wbrute-cli scan wlan0
  wbrute-cli wordlist store office ./office.txt
  wbrute-cli attack HomeNet -a wlan0 -a wlan1 --primary=db:office --authorized
  wbrute-cli --mock attack Home_WiFi --primary=./top100.txt --authorized
`
}
