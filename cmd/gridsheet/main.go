// Command gridsheet is the thin command controller: it wires a chosen UI
// (the websocket server or the terminal grid view) to an engine.Engine,
// optionally loading and persisting a ".s2v" document. Subcommand
// dispatch is a flat switch over os.Args[1], a hand-rolled usage() on
// stderr, exit code 2 on misuse.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/marcgallego/spreadsheet/engine"
	"github.com/marcgallego/spreadsheet/persistence"
	"github.com/marcgallego/spreadsheet/server"
	"github.com/marcgallego/spreadsheet/tui"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "-h", "--help", "help":
		usage()
	case "serve":
		os.Exit(serveCommand(os.Args[2:]))
	case "tui":
		os.Exit(tuiCommand(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  gridsheet <command> [arguments]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve [addr] [--file path.s2v]   start the reactive web UI (default :8080)")
	fmt.Fprintln(os.Stderr, "  tui [--file path.s2v]            start the terminal grid view")
	fmt.Fprintln(os.Stderr, "  help                             show this help message")
}

func parseFileFlag(args []string) (rest []string, path string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--file" && i+1 < len(args) {
			path = args[i+1]
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	return rest, path
}

func loadIfRequested(eng *engine.Engine, path string) {
	if path == "" {
		return
	}
	if !strings.HasSuffix(path, persistence.Extension) {
		fmt.Fprintf(os.Stderr, "warning: %s does not have the %s extension\n", path, persistence.Extension)
	}
	if _, err := os.Stat(path); err != nil {
		return // new document, nothing to load yet
	}
	if err := persistence.Load(eng, path); err != nil {
		fmt.Fprintf(os.Stderr, "load error: %v\n", err)
		os.Exit(1)
	}
}

func serveCommand(args []string) int {
	args, path := parseFileFlag(args)

	addr := ":8080"
	if len(args) > 0 {
		addr = args[0]
		addr = strings.Replace(addr, "localhost", "", 1)
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
	}

	eng := engine.NewDefault()
	loadIfRequested(eng, path)

	srv := server.New(eng, path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, addr); err != nil {
		fmt.Fprintf(os.Stderr, "spreadsheet server error: %v\n", err)
		return 1
	}
	if path != "" {
		if err := persistence.Save(eng, path); err != nil {
			fmt.Fprintf(os.Stderr, "save on exit error: %v\n", err)
			return 1
		}
	}
	return 0
}

func tuiCommand(args []string) int {
	_, path := parseFileFlag(args)

	eng := engine.NewDefault()
	loadIfRequested(eng, path)

	view, ok := tui.New(eng)
	if !ok {
		fmt.Fprintln(os.Stderr, "tui: stdin/stdout is not a terminal")
		return 1
	}
	if err := view.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
		return 1
	}
	if path != "" {
		if err := persistence.Save(eng, path); err != nil {
			fmt.Fprintf(os.Stderr, "save on exit error: %v\n", err)
			return 1
		}
	}
	return 0
}
