// ABOUTME: Entry point for the dealdesk CRM CLI, TUI, and MCP server
// ABOUTME: Loads configuration, opens the record backend, and routes to subcommands
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/harperreed/dealdesk/app"
	"github.com/harperreed/dealdesk/cli"
	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/notify"
	"github.com/harperreed/dealdesk/tui"
	"go.uber.org/zap"
)

const version = "0.2.0"

type command func(ctx context.Context, c *app.Container, args []string) error

var groups = map[string]map[string]command{
	"contacts": {
		"list":        cli.ListContactsCommand,
		"get":         cli.GetContactCommand,
		"add":         cli.AddContactCommand,
		"update":      cli.UpdateContactCommand,
		"delete":      cli.DeleteContactCommand,
		"bulk-update": cli.BulkUpdateContactsCommand,
		"bulk-delete": cli.BulkDeleteContactsCommand,
		"export":      cli.ExportContactsCommand,
	},
	"companies": {
		"list":   cli.ListCompaniesCommand,
		"get":    cli.GetCompanyCommand,
		"add":    cli.AddCompanyCommand,
		"update": cli.UpdateCompanyCommand,
		"delete": cli.DeleteCompanyCommand,
		"search": cli.SearchCompaniesCommand,
	},
	"deals": {
		"list":   cli.ListDealsCommand,
		"get":    cli.GetDealCommand,
		"add":    cli.AddDealCommand,
		"update": cli.UpdateDealCommand,
		"delete": cli.DeleteDealCommand,
		"stage":  cli.DealStageCommand,
		"board":  cli.DealBoardCommand,
	},
	"activities": {
		"list":     cli.ListActivitiesCommand,
		"get":      cli.GetActivityCommand,
		"add":      cli.AddActivityCommand,
		"update":   cli.UpdateActivityCommand,
		"delete":   cli.DeleteActivityCommand,
		"complete": cli.CompleteActivityCommand,
		"upcoming": cli.UpcomingCommand,
		"overdue":  cli.OverdueCommand,

		"for-contact": cli.ActivitiesForContactCommand,
		"for-deal":    cli.ActivitiesForDealCommand,
	},
}

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	configPath := flag.String("config", "", "Config file (default: ~/.local/share/dealdesk/config.json)")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dealdesk version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	path := *configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Resolve(path, ".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	command, commandArgs := args[0], args[1:]

	// config never touches the backend, so it runs on an unvalidated config
	if command == "config" {
		if err := runConfig(cfg, path, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := newLogger(cfg, *verbose, command == "tui")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger, command, commandArgs)
	stop()
	_ = logger.Sync()

	var usage usageError
	switch {
	case errors.As(err, &usage):
		fmt.Printf("%s\n\n", usage)
		printUsage()
		os.Exit(1)
	case err != nil:
		log.Fatalf("Error: %v", err)
	}
}

// usageError is a routing mistake answered with the usage text.
type usageError string

func (e usageError) Error() string { return string(e) }

// run executes one command. The container is closed before run returns, so
// stores are flushed on both success and failure.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, command string, args []string) error {
	switch command {
	case "mcp":
		return withContainer(ctx, cfg, notify.NewLog(logger), logger, func(c *app.Container) error {
			if err := cli.MCPCommand(ctx, c, version); err != nil {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			return nil
		})

	case "tui":
		notes := &notify.Recorder{}
		return withContainer(ctx, cfg, notify.Multi{notes, notify.NewLog(logger)}, logger, func(c *app.Container) error {
			if err := tui.Run(ctx, c, notes); err != nil {
				return fmt.Errorf("TUI failed: %w", err)
			}
			return nil
		})

	case "dashboard":
		return withContainer(ctx, cfg, cliNotifier(logger), logger, func(c *app.Container) error {
			return cli.VizDashboardCommand(ctx, c, args)
		})

	case "graph":
		if len(args) == 0 || args[0] != "pipeline" {
			return usageError("Error: graph requires a type (pipeline)")
		}
		return withContainer(ctx, cfg, cliNotifier(logger), logger, func(c *app.Container) error {
			return cli.VizGraphPipelineCommand(ctx, c, args[1:])
		})
	}

	group, ok := groups[command]
	if !ok {
		return usageError(fmt.Sprintf("Unknown command: %s", command))
	}
	if len(args) == 0 {
		return usageError(fmt.Sprintf("Error: %s requires a subcommand", command))
	}
	sub, ok := group[args[0]]
	if !ok {
		return usageError(fmt.Sprintf("Unknown %s command: %s", command, args[0]))
	}

	return withContainer(ctx, cfg, cliNotifier(logger), logger, func(c *app.Container) error {
		logger.Debug("running command", zap.String("command", command), zap.String("subcommand", args[0]))
		return sub(ctx, c, args[1:])
	})
}

// withContainer opens the configured backend, runs fn and closes it again.
func withContainer(ctx context.Context, cfg *config.Config, notifier notify.Notifier, logger *zap.Logger, fn func(*app.Container) error) error {
	c, err := app.Open(ctx, cfg, notifier, logger)
	if err != nil {
		return fmt.Errorf("failed to open backend: %w", err)
	}
	runErr := fn(c)
	if err := c.Close(); err != nil {
		logger.Warn("closing backend failed", zap.Error(err))
	}
	return runErr
}

func runConfig(cfg *config.Config, path string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("config requires a subcommand (show, set)")
	}
	switch args[0] {
	case "show":
		return cli.ConfigShowCommand(cfg, args[1:])
	case "set":
		return cli.ConfigSetCommand(path, args[1:])
	}
	return fmt.Errorf("unknown config command: %s", args[0])
}

func cliNotifier(logger *zap.Logger) notify.Notifier {
	return notify.Multi{notify.NewTerminal(os.Stderr), notify.NewLog(logger)}
}

// newLogger writes console logs to stderr, or to a file under the data
// directory while the TUI owns the terminal.
func newLogger(cfg *config.Config, verbose, toFile bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if verbose {
		level.SetLevel(zap.DebugLevel)
	}
	zc.Level = level

	if toFile {
		if err := os.MkdirAll(config.Dir(), 0o755); err != nil {
			return nil, err
		}
		logPath := filepath.Join(config.Dir(), "tui.log")
		zc.OutputPaths = []string{logPath}
		zc.ErrorOutputPaths = []string{logPath}
	}
	return zc.Build()
}

func printUsage() {
	fmt.Printf(`dealdesk v%s - CRM records from the terminal

USAGE:
  dealdesk [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --verbose              Enable debug logging
  --config <path>        Config file (default: ~/.local/share/dealdesk/config.json)

COMMANDS:
  contacts               Contact management
  companies              Company management
  deals                  Deal pipeline management
  activities             Activities and follow-ups
  dashboard              Print the pipeline dashboard
  graph pipeline         Generate deal pipeline graph (DOT)
  tui                    Interactive terminal UI
  mcp                    Start MCP server on stdio
  config                 Show or change configuration

CONTACT COMMANDS:
  dealdesk contacts list         List contacts
    --query <text>                 Filter by name or email
    --company <name>               Filter by company name

  dealdesk contacts get <id>     Show one contact
  dealdesk contacts add          Add a new contact
    --first <name>                 First name (required)
    --last <name>                  Last name
    --email <email>                Email address
    --phone <phone>                Phone number
    --title <title>                Job title
    --company <name>               Company name (created if missing)
    --company-id <id>              Company id
    --notes <notes>                Notes

  dealdesk contacts update [flags] <id>   Update a contact (same flags as add)
  dealdesk contacts delete <id>           Delete a contact
  dealdesk contacts bulk-update --ids 1,2,3 [flags]   Apply the same change to many contacts
  dealdesk contacts bulk-delete --ids 1,2,3           Delete many contacts
  dealdesk contacts export [--ids 1,2,3]               Export contacts to CSV

COMPANY COMMANDS:
  dealdesk companies list [--query <text>]
  dealdesk companies get <id>
  dealdesk companies add --name <name> [--industry --size --website --address --notes]
  dealdesk companies update [flags] <id>
  dealdesk companies delete <id>
  dealdesk companies search <text>        Match name, industry, or size

DEAL COMMANDS:
  dealdesk deals list [--stage <stage>] [--company <name>]
  dealdesk deals get <id>
  dealdesk deals add --title <title> [--value --stage --probability --close-date --company --company-id --contact-id --notes]
  dealdesk deals update [flags] <id>
  dealdesk deals stage <id> <stage>       Move a deal (Closed Won sets 100%%, Closed Lost 0%%)
  dealdesk deals board                    Deals grouped by stage
  dealdesk deals delete <id>

ACTIVITY COMMANDS:
  dealdesk activities list [--contact-id <id> | --deal-id <id>] [--open]
  dealdesk activities get <id>
  dealdesk activities add --subject <text> [--type --description --due --contact-id --deal-id]
  dealdesk activities update [flags] <id>
  dealdesk activities complete <id>
  dealdesk activities delete <id>
  dealdesk activities upcoming [--limit <n>]
  dealdesk activities overdue
  dealdesk activities for-contact <id>
  dealdesk activities for-deal <id>

CONFIG COMMANDS:
  dealdesk config show
  dealdesk config set <key> <value>

EXAMPLES:
  # Add a contact and create its company
  dealdesk contacts add --first Ada --last Lovelace --company "Acme Corp"

  # Move a deal to Closed Won
  dealdesk deals stage 3 Closed Won

  # Render the pipeline
  dealdesk graph pipeline --output pipeline.dot

`, version)
}
