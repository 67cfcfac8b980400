// ABOUTME: Entry point for the record navigation CLI and MCP server
// ABOUTME: Routes to browse, resolve, list, local-store, serve, and mcp commands
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/adrata/pipenav/cli"
	"github.com/adrata/pipenav/config"
	"github.com/adrata/pipenav/db"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("pipenav version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "browse":
		if err := cli.BrowseCommand(cfg); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "resolve":
		if err := cli.ResolveCommand(cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "list":
		if err := cli.ListCommand(cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "mcp":
		if err := cli.MCPCommand(cfg); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "seed", "sections", "serve":
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		switch command {
		case "seed":
			if err := cli.SeedCommand(database); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "sections":
			if err := cli.SectionsCommand(database); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "serve":
			if err := cli.ServeCommand(database, cfg, commandArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`pipenav v%s - Sales pipeline record browser

USAGE:
  pipenav [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit

COMMANDS:
  browse                 Interactive full-screen record browser
  resolve                Resolve a record slug to its record
  list                   List a section's records in navigation order
  seed                   Load demo records into the local store
  sections               Show per-section record counts
  serve                  Run the demo backend over the local store
  mcp                    Start MCP server for agent integration

RESOLVE:
  pipenav resolve [flags] <slug>
    --section <name>       Pipeline section (default: leads)
    --json                 Print the record as JSON

LIST:
  pipenav list [flags]
    --section <name>       Pipeline section (default: leads)
    --limit <n>            Max records to fetch (default: 100)
    --search <text>        Substring match on display name
    --industry <name>      Filter by industry
    --status <status>      Filter by status (LEAD/PROSPECT/OPPORTUNITY)
    --sort <field>         Sort field (default: section order)
    --desc                 Sort descending

SERVE:
  pipenav serve
    --port <n>             Port to listen on (default: 8947)

CONFIGURATION:
  Config file: ~/.local/share/pipenav/config.json
  Environment: PIPENAV_API_URL, PIPENAV_API_TOKEN, PIPENAV_WORKSPACE,
               PIPENAV_DB_PATH, PIPENAV_CACHE_DIR

EXAMPLES:
  # Seed demo data and serve it locally
  pipenav seed
  pipenav serve

  # Browse the pipeline interactively
  pipenav browse

  # Resolve a record link
  pipenav resolve --section leads maya-chen-p1

  # List prospects that need follow-up
  pipenav list --section prospects

`, version)
}
