package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"

	"objcore/pkg/driver"
)

func main() {
	exprFlag := flag.String("e", "", "Run one session command and exit")
	scenarioFlag := flag.String("scenario", "", "Run the given scenario file")
	verboseFlag := flag.Bool("v", false, "List passing scenario calls too")
	watchFlag := flag.Bool("watch", false, "Re-run scenarios whenever their files change")
	jobsFlag := flag.Int("j", 0, "Number of scenarios run in parallel (default: one per CPU)")

	flag.Parse()

	files := flag.Args()
	if *scenarioFlag != "" {
		files = append([]string{*scenarioFlag}, files...)
	}

	if *exprFlag != "" {
		if len(files) > 0 || *watchFlag {
			fmt.Fprintf(os.Stderr, "Usage: objcore -e \"command\"\n")
			os.Exit(64) // Exit code 64: command line usage error
		}
		if !runCommand(*exprFlag) {
			os.Exit(70) // Exit code 70: internal software error
		}
		return
	}

	if len(files) > 0 {
		ok := runScenarios(files, *verboseFlag, *jobsFlag)
		if *watchFlag {
			if err := watchScenarios(files, *verboseFlag, *jobsFlag); err != nil {
				fmt.Fprintf(os.Stderr, "watch: %s\n", err)
				os.Exit(70)
			}
			return
		}
		if !ok {
			os.Exit(70)
		}
		return
	}

	if *watchFlag {
		fmt.Fprintf(os.Stderr, "Usage: objcore -watch <scenario.yaml>...\n")
		os.Exit(64)
	}
	runRepl()
}

// runCommand executes a single session command provided via the -e flag.
func runCommand(line string) bool {
	session, err := driver.NewSession(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create realm: %s\n", err)
		return false
	}
	if err := session.Execute(line); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return false
	}
	return true
}

// runScenarios runs every file on a worker pool and reports whether all
// calls passed. Reports are printed in the order the files were given.
func runScenarios(files []string, verbose bool, workers int) bool {
	results, err := driver.RunFiles(context.Background(), files, workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return false
	}
	ok := true
	for _, res := range results {
		if res.Error != nil {
			fmt.Fprintf(os.Stderr, "%s\n", res.Error)
			ok = false
			continue
		}
		res.Report.Write(os.Stdout, verbose)
		if res.Report.Failed() > 0 {
			ok = false
		}
	}
	return ok
}

// watchScenarios re-runs a scenario each time it is written. Directories are
// watched rather than files so editors that replace files on save still
// trigger a run.
func watchScenarios(files []string, verbose bool, workers int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	fmt.Printf("Watching %d scenario file(s) (Ctrl+C to exit)\n", len(files))

	// Saves often arrive as several events; collect them briefly before running
	const settle = 100 * time.Millisecond
	pending := make(map[string]bool)
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[event.Name] || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %s\n", err)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for _, path := range files {
				if abs, _ := filepath.Abs(path); pending[abs] {
					changed = append(changed, path)
				}
			}
			clear(pending)
			fmt.Printf("--- %s\n", time.Now().Format(time.TimeOnly))
			runScenarios(changed, verbose, workers)
		case <-interrupt:
			fmt.Println()
			return nil
		}
	}
}

// runRepl starts an interactive session. A terminal gets line editing and
// history; anything else is read line by line.
func runRepl() {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if err := runTerminalRepl(fd); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(70)
		}
		return
	}

	session, err := driver.NewSession(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create realm: %s\n", err)
		os.Exit(70)
	}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := session.Execute(scanner.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
		os.Exit(70)
	}
}

type stdio struct {
	io.Reader
	io.Writer
}

func runTerminalRepl(fd int) error {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(stdio{os.Stdin, os.Stdout}, "> ")
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h)
	}

	// Output goes through the terminal so newlines are translated in raw mode
	session, err := driver.NewSession(t)
	if err != nil {
		return err
	}
	fmt.Fprintln(t, "objcore (type help for commands, Ctrl+D to exit)")

	for {
		line, err := t.ReadLine()
		if err == io.EOF {
			fmt.Fprintln(t, "Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return nil
		}
		if err := session.Execute(line); err != nil {
			fmt.Fprintf(t, "%s\n", err)
		}
	}
}
