package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"corkboard/internal/cli"
	"corkboard/internal/client"
	"corkboard/internal/config"
	"corkboard/internal/logs"
	"corkboard/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	// Parse CLI flags
	apiFlag := flag.String("api", "", "Board service base URL")
	boardFlag := flag.String("board", "", "Board id to open on start")
	timeoutFlag := flag.Duration("timeout", 0, "Request timeout")
	serializeFlag := flag.Bool("serialize", false, "Send writes one at a time in order")
	logDirFlag := flag.String("log-dir", "", "Directory for debug.log")
	viewFlag := flag.String("view", "", "Initial view: boards, board")
	flag.Parse()

	cliFlags := config.CLIFlags{
		APIURL:          *apiFlag,
		BoardID:         *boardFlag,
		Timeout:         *timeoutFlag,
		SerializeWrites: *serializeFlag,
		LogDir:          *logDirFlag,
		View:            *viewFlag,
	}
	if cliFlags.BoardID != "" && cliFlags.View == "" {
		cliFlags.View = "board"
	}

	// Load configuration
	cfg, err := config.Load(cliFlags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ensure config file exists
	if err := config.EnsureConfigFile(); err != nil {
		log.Printf("Warning: could not create config file: %v", err)
	}

	if err := logs.Initialize(cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize logger: %v\n", err)
	}
	defer logs.Close()

	c := client.New(cfg.APIURL, client.WithTimeout(cfg.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Check for CLI subcommands
	if args := flag.Args(); len(args) > 0 {
		code := cli.Run(ctx, args, cli.Env{
			Client: c,
			Config: cfg,
			Out:    os.Stdout,
			Err:    os.Stderr,
		})
		stop()
		logs.Close()
		os.Exit(code)
	}

	// TUI mode
	logs.Logger.WithField("api", cfg.APIURL).Info("starting app in TUI mode")
	appModel := tui.NewAppModel(cfg, c)
	p := tea.NewProgram(appModel, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if m, ok := final.(tui.AppModel); ok {
		m.Close()
	}
	if err != nil && ctx.Err() == nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}
