// Refit is a quality-improvement engine for colony-sim objects: mark
// constructed things, haul materials, spend labor, roll for a better
// quality tier.
//
// Usage: refit [--version] [--plain] [--script <file>] [--config <file>]
//
//	[--db <file>] [--serve <addr>] <scenario_directory>
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/kestran/refit/cli"
	"github.com/kestran/refit/config"
	"github.com/kestran/refit/engine"
	"github.com/kestran/refit/engine/save"
	"github.com/kestran/refit/hub"
	"github.com/kestran/refit/loader"
	"github.com/kestran/refit/sim"
	"github.com/kestran/refit/tui"
	"github.com/kestran/refit/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	var scenarioDir, scriptFile, configFile, dbFile, serveAddr string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("refit %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--script":
			scriptFile = flagValue(args, &i, "--script")
		case "--config":
			configFile = flagValue(args, &i, "--config")
		case "--db":
			dbFile = flagValue(args, &i, "--db")
		case "--serve":
			serveAddr = flagValue(args, &i, "--serve")
		default:
			if scenarioDir == "" {
				scenarioDir = args[i]
			}
		}
	}

	if scenarioDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: refit [--version] [--plain] [--script <file>] [--config <file>] [--db <file>] [--serve <addr>] <scenario_directory>\n")
		os.Exit(1)
	}

	settings := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
			os.Exit(1)
		}
		settings = loaded
	}

	defs, err := loader.Load(scenarioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scenario: %v\n", err)
		os.Exit(1)
	}

	world := sim.NewWorld(defs)

	// Notices fan out to the session buffer and, when serving, the hub.
	var session *cli.Session
	var h *hub.Hub
	notify := engine.NotifierFunc(func(n types.Notice) {
		session.Notify(n)
		if h != nil {
			h.Notify(n)
		}
	})

	eng := engine.New(defs, settings, world, notify)
	session = cli.NewSession(eng, world, defs)

	if dbFile != "" {
		ctx := context.Background()
		store, err := save.OpenStore(ctx, dbFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening state store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		session.Store = store

		// Restore persisted records; stale ones are pruned.
		states, err := store.LoadAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading state store: %v\n", err)
			os.Exit(1)
		}
		for id, st := range states {
			if world.Exists(id) {
				eng.States.Put(id, st)
				if st.Marked {
					world.AddDesignation(id)
				}
			}
		}
	}

	if serveAddr != "" {
		h = hub.New()
		go h.Run()
		http.HandleFunc("/ws", h.ServeWS)
		go func() {
			if err := http.ListenAndServe(serveAddr, nil); err != nil {
				fmt.Fprintf(os.Stderr, "Notice hub stopped: %v\n", err)
			}
		}()
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		printBanner(defs.Scenario)
		c := cli.New(session)
		c.In = f
		c.EchoInput = true
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		printBanner(defs.Scenario)
		c := cli.New(session)
		c.Run()
		return
	}

	if err := tui.Run(session); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(scen types.ScenarioDef) {
	if scen.Title != "" {
		fmt.Printf("%s v%s\n\n", scen.Title, scen.Version)
	}
}

func flagValue(args []string, i *int, name string) string {
	if *i+1 >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires a value\n", name)
		os.Exit(1)
	}
	*i++
	return args[*i]
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
