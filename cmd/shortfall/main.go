package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/shortfall/pkg/interfaces/cli/commands"
)

// Executor is implemented by every CLI command
type Executor interface {
	Execute(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cmd Executor
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "generate":
			cmd = generateCommand(os.Args[2:])
		case "interactive":
			cmd = interactiveCommand(os.Args[2:])
		}
	}
	if cmd == nil {
		cmd = reportCommand()
	}

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func reportCommand() Executor {
	// Command line flags
	var (
		configFile  = flag.String("config", "", "Path to YAML configuration file")
		stockFile   = flag.String("stock", "", "Path to stock ledger (CSV or XLSX)")
		tasksFile   = flag.String("tasks", "", "Path to task schedule (CSV or XLSX)")
		mode        = flag.String("mode", "", "Report mode: plan, catalog, dates (default: plan)")
		date        = flag.String("date", "", "Date to compute requirements for")
		taskCode    = flag.String("task-code", "", "Catalog filter on task code")
		partNumber  = flag.String("part", "", "Catalog filter on part number")
		description = flag.String("description", "", "Catalog filter on description")
		outputDir   = flag.String("output", "", "Output directory for results (optional)")
		format      = flag.String("format", "", "Output format: text, json, csv, xlsx, html (default: text)")
		sheet       = flag.String("sheet", "", "Worksheet to read from XLSX inputs")
		metricsFile = flag.String("metrics-file", "", "Write run metrics in Prometheus text format")
		logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	return commands.NewReportCommand(commands.Config{
		ConfigFile:  *configFile,
		StockFile:   *stockFile,
		TasksFile:   *tasksFile,
		Mode:        *mode,
		Date:        *date,
		TaskCode:    *taskCode,
		PartNumber:  *partNumber,
		Description: *description,
		OutputDir:   *outputDir,
		Format:      *format,
		Sheet:       *sheet,
		MetricsFile: *metricsFile,
		LogLevel:    *logLevel,
		Verbose:     *verbose,
		Help:        *help,
	})
}

func generateCommand(args []string) Executor {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		tasks     = fs.Int("tasks", 50, "Number of task codes to generate")
		parts     = fs.Int("parts", 8, "Maximum parts per task")
		days      = fs.Int("days", 30, "Spread tasks over this many days")
		coverage  = fs.Float64("coverage", 0.8, "On-hand multiplier of the required quantity")
		start     = fs.String("start", "2024-01-01", "First scheduled day")
		outputDir = fs.String("output", "", "Output directory for generated files")
		seed      = fs.Int64("seed", 0, "Random seed for reproducible generation")
		verbose   = fs.Bool("verbose", false, "Enable verbose output")
		help      = fs.Bool("help", false, "Show help message")
	)
	_ = fs.Parse(args)

	return commands.NewGenerateCommand(commands.GenerateConfig{
		Tasks:        *tasks,
		PartsPerTask: *parts,
		Days:         *days,
		Coverage:     *coverage,
		StartDate:    *start,
		OutputDir:    *outputDir,
		Seed:         *seed,
		Verbose:      *verbose,
		Help:         *help,
	})
}

func interactiveCommand(args []string) Executor {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	var (
		configFile = fs.String("config", "", "Path to YAML configuration file")
		stockFile  = fs.String("stock", "", "Path to stock ledger (CSV or XLSX)")
		tasksFile  = fs.String("tasks", "", "Path to task schedule (CSV or XLSX)")
		sheet      = fs.String("sheet", "", "Worksheet to read from XLSX inputs")
		logLevel   = fs.String("log-level", "", "Log level: debug, info, warn, error")
		verbose    = fs.Bool("verbose", false, "Enable verbose output")
		help       = fs.Bool("help", false, "Show help message")
	)
	_ = fs.Parse(args)

	return commands.NewInteractiveCommand(commands.InteractiveConfig{
		ConfigFile: *configFile,
		StockFile:  *stockFile,
		TasksFile:  *tasksFile,
		Sheet:      *sheet,
		LogLevel:   *logLevel,
		Verbose:    *verbose,
		Help:       *help,
	})
}
