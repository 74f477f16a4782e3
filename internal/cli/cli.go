package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"corkboard/internal/client"
	"corkboard/internal/config"
)

// Env is what commands run against
type Env struct {
	Client *client.Client
	Config *config.Config
	Out    io.Writer
	Err    io.Writer
}

func (e Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e Env) errorf(format string, args ...any) int {
	fmt.Fprintf(e.Err, "Error: "+format+"\n", args...)
	return 1
}

// Run executes the CLI with the given arguments.
// The first argument should be the namespace ("board" or "serve").
func Run(ctx context.Context, args []string, env Env) int {
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}
	if len(args) == 0 {
		printUsage(env.Out)
		return 1
	}

	namespace := args[0]
	subArgs := args[1:]

	switch namespace {
	case "board", "b":
		return runBoardCommand(ctx, subArgs, env)
	case "serve":
		return runServe(ctx, subArgs, env)
	case "help", "-h", "--help":
		printUsage(env.Out)
		return 0
	default:
		fmt.Fprintf(env.Err, "Unknown command: %s\n", namespace)
		printUsage(env.Err)
		return 1
	}
}

func runBoardCommand(ctx context.Context, args []string, env Env) int {
	if len(args) == 0 {
		printBoardUsage(env.Out)
		return 1
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "list", "ls", "l":
		return runBoardList(ctx, cmdArgs, env)
	case "show", "s":
		return runBoardShow(ctx, cmdArgs, env)
	case "create":
		return runBoardCreate(ctx, cmdArgs, env)
	case "add-card", "add":
		return runAddCard(ctx, cmdArgs, env)
	case "move-card", "mv":
		return runMoveCard(ctx, cmdArgs, env)
	case "move-list":
		return runMoveList(ctx, cmdArgs, env)
	case "archive":
		return runArchive(ctx, cmdArgs, env)
	case "search":
		return runSearch(ctx, cmdArgs, env)
	case "export":
		return runExport(ctx, cmdArgs, env)
	case "import":
		return runImport(ctx, cmdArgs, env)
	case "help", "-h", "--help":
		printBoardUsage(env.Out)
		return 0
	default:
		fmt.Fprintf(env.Err, "Unknown board command: %s\n", command)
		printBoardUsage(env.Err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `corkboard - Kanban boards in the terminal

Usage: corkboard [flags] [command] [arguments]

Commands:
  board       Board commands (list, show, move cards, export, ...)
  serve       Run the in-memory development board service

Flags:
      --api <url>        Board service URL (default http://localhost:5001/api)
      --board <id>       Board to open on start
      --timeout <dur>    Request timeout (default 10s)
      --serialize        Send board changes one at a time
      --log-dir <dir>    Directory for debug.log
      --view <name>      Initial view: boards, board

Running corkboard without arguments launches the interactive TUI.
Use "corkboard board help" for board subcommands.`)
}

func printBoardUsage(w io.Writer) {
	fmt.Fprintln(w, `corkboard board - Board commands

Usage: corkboard board <command> [arguments]

Boards are named by id or by (fuzzy) title; lists and cards likewise.

Commands:
  list, ls [query]        List boards, optionally fuzzy-filtered
  show <board>            Print a board
              --query text       Only cards whose title contains text
              --label a,b        Only cards with any of these labels
              --member a,b       Only cards with any of these members
              --due bucket       overdue, today, week or none
              --archived         Include archived cards
  create <title>          Create a board
              --background color
  add-card <board> <list> <title>
  move-card <board> <card> <list> [--pos n]
  move-list <board> <list> <pos>
  archive <board> <card> [--undo]
  search <query>          Find cards by title across boards
  export <board> <dir>    Write the board as markdown files
  import <dir>            Create a board from an export

  help                    Show this help message`)
}
