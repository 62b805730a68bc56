package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/interfaces/cli/output"
)

// errQuit ends the interactive loop
var errQuit = errors.New("quit")

// InteractiveConfig holds configuration for the interactive session command
type InteractiveConfig struct {
	ConfigFile string
	StockFile  string
	TasksFile  string
	Sheet      string
	LogLevel   string
	Verbose    bool
	Help       bool
	// Stdin and Stdout default to the process streams
	Stdin  io.Reader
	Stdout io.Writer
}

// InteractiveCommand keeps both tables loaded and answers queries against them
type InteractiveCommand struct {
	config  InteractiveConfig
	runtime *runtime
	scanner *bufio.Scanner
	out     io.Writer
}

// NewInteractiveCommand creates a new interactive command with the given configuration
func NewInteractiveCommand(config InteractiveConfig) *InteractiveCommand {
	in := config.Stdin
	if in == nil {
		in = os.Stdin
	}
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &InteractiveCommand{
		config:  config,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Execute runs the interactive session until quit or end of input
func (c *InteractiveCommand) Execute(ctx context.Context) (err error) {
	if c.config.Help {
		c.printHelp()
		return nil
	}

	if c.config.StockFile == "" || c.config.TasksFile == "" {
		return fmt.Errorf("interactive mode needs both -stock and -tasks")
	}

	settings, err := loadSettings(c.config.ConfigFile, Overrides{
		Sheet:    c.config.Sheet,
		LogLevel: c.config.LogLevel,
	})
	if err != nil {
		return err
	}

	c.runtime, err = newRuntime(settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := c.runtime.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := c.reload(); err != nil {
		return err
	}

	return c.runInteractiveSession(ctx)
}

func (c *InteractiveCommand) runInteractiveSession(ctx context.Context) error {
	fmt.Fprintln(c.out, "=== Shortfall Session ===")
	fmt.Fprintln(c.out, "Type 'help' for available commands")
	fmt.Fprintln(c.out)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(c.out, "shortfall> ")
		if !c.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}

		err := c.processCommand(ctx, line)
		if errors.Is(err, errQuit) {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
		fmt.Fprintln(c.out)
	}

	return c.scanner.Err()
}

func (c *InteractiveCommand) processCommand(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	switch command {
	case "help", "h":
		c.printInteractiveHelp()
	case "dates":
		return c.handleDates()
	case "plan", "p":
		return c.handlePlan(ctx, args)
	case "catalog", "c":
		return c.handleCatalog(ctx, args)
	case "codes":
		return c.handleCodes(args)
	case "check":
		return c.handleCheck()
	case "reload", "r":
		return c.reload()
	case "status":
		return c.handleStatus()
	case "events":
		return c.handleShowEvents(args)
	case "quit", "q", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", command)
	}

	return nil
}

// reload re-reads both files; unchanged files are served from the session cache
func (c *InteractiveCommand) reload() error {
	stock, err := c.runtime.session.LoadStock(c.config.StockFile)
	if err != nil {
		return fmt.Errorf("error loading stock: %w", err)
	}
	tasks, err := c.runtime.session.LoadTasks(c.config.TasksFile)
	if err != nil {
		return fmt.Errorf("error loading tasks: %w", err)
	}

	fmt.Fprintf(c.out, "Loaded %d stock rows and %d tasks\n", len(stock.Records), len(tasks.Records))
	c.runtime.warnDiagnostics()
	return nil
}

func (c *InteractiveCommand) textOutput() output.Config {
	return output.Config{
		Format:        "text",
		StyleRowLimit: c.runtime.settings.Output.StyleRowLimit,
		Verbose:       c.config.Verbose,
		Writer:        c.out,
	}
}

func (c *InteractiveCommand) handleDates() error {
	dates, err := c.runtime.session.AvailableDates()
	if err != nil {
		return err
	}
	return output.GenerateDates(dates, c.textOutput())
}

func (c *InteractiveCommand) handlePlan(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: plan <date>")
	}

	date, err := entities.ParseDate(args[0])
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}

	result, err := c.runtime.session.Plan(ctx, date)
	if err != nil {
		return err
	}
	return output.Generate(result, c.textOutput())
}

func (c *InteractiveCommand) handleCatalog(ctx context.Context, args []string) error {
	var filter dto.CatalogFilter
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("usage: catalog [task=<pat>] [part=<pat>] [desc=<pat>]")
		}
		switch key {
		case "task":
			filter.TaskCode = value
		case "part":
			filter.PartNumber = value
		case "desc", "description":
			filter.Description = value
		default:
			return fmt.Errorf("unknown catalog filter: %s", key)
		}
	}

	result, err := c.runtime.session.Catalog(ctx, filter)
	if err != nil {
		return err
	}
	return output.Generate(result, c.textOutput())
}

func (c *InteractiveCommand) handleCodes(args []string) error {
	pattern := ""
	if len(args) > 0 {
		pattern = args[0]
	}

	codes, err := c.runtime.session.TaskCodes(pattern)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Task codes (%d):\n", len(codes))
	for _, code := range codes {
		fmt.Fprintf(c.out, "  %s\n", code)
	}
	return nil
}

func (c *InteractiveCommand) handleCheck() error {
	validation, err := c.runtime.session.Validate()
	if err != nil {
		return err
	}

	if !validation.HasWarnings() {
		fmt.Fprintln(c.out, "✅ No data-quality warnings")
		return nil
	}
	fmt.Fprintln(c.out, "⚠️  Data-quality warnings:")
	for _, warning := range validation.Warnings {
		fmt.Fprintf(c.out, "  - %s\n", warning)
	}
	return nil
}

func (c *InteractiveCommand) handleStatus() error {
	allEvents, err := c.runtime.session.Events()
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	fmt.Fprintf(c.out, "=== Session Status ===\n")
	fmt.Fprintf(c.out, "Total events recorded: %d\n", len(allEvents))

	eventCounts := make(map[string]int)
	for _, event := range allEvents {
		eventCounts[event.Type()]++
	}

	fmt.Fprintf(c.out, "\nEvent counts by type:\n")
	for _, eventType := range sortedKeys(eventCounts) {
		fmt.Fprintf(c.out, "  %s: %d\n", eventType, eventCounts[eventType])
	}
	return nil
}

func (c *InteractiveCommand) handleShowEvents(args []string) error {
	limit := 10
	if len(args) > 0 {
		if l, err := strconv.Atoi(args[0]); err == nil {
			limit = l
		}
	}

	allEvents, err := c.runtime.session.Events()
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	fmt.Fprintf(c.out, "=== Recent Events (last %d) ===\n", limit)
	start := len(allEvents) - limit
	if start < 0 {
		start = 0
	}

	for i := start; i < len(allEvents); i++ {
		event := allEvents[i]
		fmt.Fprintf(c.out, "[%s] #%d %s %+v\n",
			event.Timestamp().Format("15:04:05"),
			event.Version(),
			event.Type(),
			event.Data())
	}
	return nil
}

func (c *InteractiveCommand) printHelp() {
	fmt.Fprintln(c.out, `Interactive Shortfall Session

USAGE:
    shortfall interactive [OPTIONS]

OPTIONS:
    -stock <file>       Stock ledger, CSV or XLSX (required)
    -tasks <file>       Task schedule, CSV or XLSX (required)
    -sheet <name>       Worksheet to read from XLSX inputs
    -config <file>      YAML configuration file
    -log-level <lvl>    debug, info, warn or error
    -verbose            Enable verbose output
    -help               Show this help message

DESCRIPTION:
    Loads both files once and answers date and catalog queries against them.
    'reload' picks up edits; files that did not change are not parsed again.`)
}

func (c *InteractiveCommand) printInteractiveHelp() {
	fmt.Fprintln(c.out, `Available commands:

  dates
      List the dates that have scheduled tasks

  plan <date>
      Show material requirements for the tasks on a date
      Example: plan 2024-01-10

  catalog [task=<pat>] [part=<pat>] [desc=<pat>]
      Show the whole catalog, optionally filtered
      Example: catalog desc=seal

  codes [pattern]
      List task codes in the stock ledger

  check
      Show data-quality warnings for the loaded files

  reload, r
      Re-read the input files

  status
      Show event counts for this session

  events [limit]
      Show recent events (default: 10)

  help, h
      Show this help message

  quit, q, exit
      Leave the session`)
}
