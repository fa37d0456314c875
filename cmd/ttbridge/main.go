// Package main runs a command under the terminal bridge and prints the
// final screen snapshot when the child exits.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/kagan-sh/textual-terminal/internal/logging"
	"github.com/kagan-sh/textual-terminal/internal/render"
	"github.com/kagan-sh/textual-terminal/internal/terminal"
)

func main() {
	os.Exit(run())
}

func run() int {
	rows := flag.Int("rows", 24, "terminal rows")
	cols := flag.Int("cols", 80, "terminal columns")
	timeout := flag.Duration("timeout", 30*time.Second, "give up after this long")
	level := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: ttbridge [flags] command [args...]")
		return 2
	}

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(*level),
		Prefix: "ttbridge",
	})

	// Keep the last live snapshot; the display resets to a blank line on
	// disconnect, and that final blank frame is not what we print.
	var (
		mu       sync.Mutex
		lastText string
	)

	term := terminal.New(terminal.Options{
		Command: strings.Join(flag.Args(), " "),
		Rows:    *rows,
		Cols:    *cols,
		Logger:  logger,
		OnRender: func(s render.Snapshot) {
			if len(s.Lines) == 1 && len(s.Lines[0]) == 0 {
				return
			}
			mu.Lock()
			lastText = s.Text()
			mu.Unlock()
		},
	})
	if err := term.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start: %v\n", err)
		return 1
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		term.Stop()
	}()

	select {
	case <-term.Done():
	case <-time.After(*timeout):
		term.Stop()
		<-term.Done()
	}

	mu.Lock()
	defer mu.Unlock()
	fmt.Println(strings.TrimRight(lastText, " \n"))
	return 0
}
