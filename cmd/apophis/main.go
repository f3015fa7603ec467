package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterh/liner"

	"github.com/calobozan/apophis"
)

const (
	historyFile = ".apophis_history"
	prompt      = "apop> "
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "encode":
		os.Exit(cmdEncode(os.Args[2:]))
	case "version":
		fmt.Println(apophis.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: apophis <command> [arguments]

Commands:
  run <file>             execute an Apophis document (.apop or .apo)
  repl [-session file]   start an interactive session
  encode                 apply Malbolge encryption to stdin
  version                print the version
`)
}

func newInterpreter(rubyPath string, verbose bool) *apophis.Interpreter {
	bridge := apophis.NewBridge(rubyPath)
	if verbose {
		bridge.Warn = func(msg string) { log.Printf("bridge: %s", msg) }
	}
	return apophis.NewInterpreter(apophis.WithBridge(bridge))
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	rubyPath := fs.String("ruby", "ruby", "path to the Ruby interpreter")
	verbose := fs.Bool("v", false, "log bridge state-sync warnings")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: apophis run [-ruby path] [-v] <file>")
		return 2
	}

	interp := newInterpreter(*rubyPath, *verbose)
	out, err := interp.RunFile(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if out != "" {
		fmt.Print(out)
		if out[len(out)-1] != '\n' {
			fmt.Println()
		}
	}
	return 0
}

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	rubyPath := fs.String("ruby", "ruby", "path to the Ruby interpreter")
	session := fs.String("session", "", "file to persist the session environment across invocations")
	verbose := fs.Bool("v", false, "log bridge state-sync warnings")
	fs.Parse(args)

	fmt.Printf("Apophis %s. An empty line or Ctrl+D ends the session.\n", apophis.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	readLine := func() (string, error) {
		for {
			line, err := ln.Prompt(prompt)
			if err == liner.ErrPromptAborted {
				// Ctrl+C clears the line, not the session.
				continue
			}
			if err == io.EOF {
				fmt.Println()
				return "", io.EOF
			}
			if err != nil {
				return "", err
			}
			if line != "" {
				ln.AppendHistory(line)
			}
			return line, nil
		}
	}
	writeLine := func(s string) error {
		fmt.Println(s)
		return nil
	}

	repl := apophis.NewREPL(newInterpreter(*rubyPath, *verbose), readLine, writeLine)

	if *session != "" {
		if err := apophis.LoadSession(*session, repl.Env()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if err := repl.Loop(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *session != "" {
		if err := apophis.SaveSession(*session, repl.Env()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}

func cmdEncode(args []string) int {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	fs.Parse(args)

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Print(apophis.Encode(string(data)))
	return 0
}
