package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/interfaces/cli/output"
)

// Config holds configuration for the report command
type Config struct {
	ConfigFile  string
	StockFile   string
	TasksFile   string
	Mode        string
	Date        string
	Format      string
	OutputDir   string
	Sheet       string
	TaskCode    string
	PartNumber  string
	Description string
	MetricsFile string
	LogLevel    string
	Verbose     bool
	Help        bool
	// Stdout receives reports and progress lines; nil means os.Stdout
	Stdout io.Writer
}

// ReportCommand loads the stock ledger and task schedule and prints a report
type ReportCommand struct {
	config Config
	out    io.Writer
}

// NewReportCommand creates a new report command with the given configuration
func NewReportCommand(config Config) *ReportCommand {
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &ReportCommand{
		config: config,
		out:    out,
	}
}

// Execute runs the report command
func (c *ReportCommand) Execute(ctx context.Context) (err error) {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	settings, err := loadSettings(c.config.ConfigFile, Overrides{
		Mode:      c.config.Mode,
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Sheet:     c.config.Sheet,
		LogLevel:  c.config.LogLevel,
	})
	if err != nil {
		return err
	}
	if c.config.MetricsFile != "" {
		settings.Metrics.TextFile = c.config.MetricsFile
	}

	if err := c.validateInputs(settings.Report.Mode); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	rt, err := newRuntime(settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if c.config.Verbose {
		c.printHeader(settings.Report.Mode, settings.Output.Format)
		fmt.Fprintln(c.out, "📂 Loading input files...")
	}

	if c.config.StockFile != "" {
		table, err := rt.session.LoadStock(c.config.StockFile)
		if err != nil {
			return fmt.Errorf("error loading stock: %w", err)
		}
		if c.config.Verbose {
			fmt.Fprintf(c.out, "  Stock rows: %d (defaulted cells: %d)\n", len(table.Records), table.DefaultedCells)
		}
	}
	if c.config.TasksFile != "" {
		table, err := rt.session.LoadTasks(c.config.TasksFile)
		if err != nil {
			return fmt.Errorf("error loading tasks: %w", err)
		}
		if c.config.Verbose {
			fmt.Fprintf(c.out, "  Tasks: %d (undated: %d)\n", len(table.Records), table.UndatedRows)
		}
	}
	if c.config.StockFile != "" && c.config.TasksFile != "" {
		rt.warnDiagnostics()
	}

	outputConfig := output.Config{
		Format:        settings.Output.Format,
		OutputDir:     settings.Output.Dir,
		Verbose:       c.config.Verbose,
		StyleRowLimit: settings.Output.StyleRowLimit,
		InputFiles:    map[string]string{"Stock": c.config.StockFile, "Tasks": c.config.TasksFile},
		Writer:        c.out,
	}

	startTime := time.Now()
	switch settings.Report.Mode {
	case "dates":
		dates, err := rt.session.AvailableDates()
		if err != nil {
			return fmt.Errorf("error listing dates: %w", err)
		}
		if err := output.GenerateDates(dates, outputConfig); err != nil {
			return fmt.Errorf("error generating output: %w", err)
		}
		return nil

	case "catalog":
		if c.config.Verbose {
			fmt.Fprintln(c.out, "🔎 Filtering catalog...")
		}
		result, err := rt.session.Catalog(ctx, dto.CatalogFilter{
			TaskCode:    c.config.TaskCode,
			Description: c.config.Description,
			PartNumber:  c.config.PartNumber,
		})
		if err != nil {
			return fmt.Errorf("error filtering catalog: %w", err)
		}
		return c.generate(rt, result, outputConfig, startTime)

	default:
		date, err := entities.ParseDate(c.config.Date)
		if err != nil {
			return fmt.Errorf("invalid -date: %w", err)
		}
		if c.config.Verbose {
			fmt.Fprintf(c.out, "🔄 Computing requirements for %s...\n", date)
		}
		result, err := rt.session.Plan(ctx, date)
		if err != nil {
			return fmt.Errorf("error computing requirements: %w", err)
		}
		rt.logger.Info("requirements computed",
			zap.String("run_id", result.RunID),
			zap.String("date", date.String()),
			zap.Stringer("outcome", result.Outcome),
			zap.Int("rows", result.Summary.Rows))
		return c.generate(rt, result, outputConfig, startTime)
	}
}

func (c *ReportCommand) generate(rt *runtime, report dto.Report, outputConfig output.Config, startTime time.Time) error {
	outputConfig.ElapsedTime = time.Since(startTime)
	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Report computed in %v\n\n", outputConfig.ElapsedTime)
	}

	if err := output.Generate(report, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🏁 Shortfall report complete!")
	}
	return nil
}

// validateInputs checks that the files and date the mode needs were given
func (c *ReportCommand) validateInputs(mode string) error {
	switch mode {
	case "plan":
		if c.config.StockFile == "" || c.config.TasksFile == "" {
			return fmt.Errorf("plan mode needs both -stock and -tasks")
		}
		if c.config.Date == "" {
			return fmt.Errorf("plan mode needs -date (use -mode dates to list them)")
		}
	case "catalog":
		if c.config.StockFile == "" {
			return fmt.Errorf("catalog mode needs -stock")
		}
	case "dates":
		if c.config.TasksFile == "" {
			return fmt.Errorf("dates mode needs -tasks")
		}
	}

	for name, path := range map[string]string{"stock": c.config.StockFile, "tasks": c.config.TasksFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("%s file not found: %s", name, path)
		}
	}
	return nil
}

// printHeader prints the command header information
func (c *ReportCommand) printHeader(mode, format string) {
	fmt.Fprintf(c.out, "🚀 Shortfall CLI\n")
	fmt.Fprintf(c.out, "Input files:\n")
	if c.config.StockFile != "" {
		fmt.Fprintf(c.out, "  Stock: %s\n", c.config.StockFile)
	}
	if c.config.TasksFile != "" {
		fmt.Fprintf(c.out, "  Tasks: %s\n", c.config.TasksFile)
	}
	fmt.Fprintf(c.out, "Mode: %s\n", mode)
	fmt.Fprintf(c.out, "Output format: %s\n", format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.out)
}

// showHelp displays the help message
func (c *ReportCommand) showHelp() {
	fmt.Fprintf(c.out, `Shortfall CLI - Material shortages for scheduled maintenance tasks

USAGE:
    shortfall -stock <file> -tasks <file> -date <date>      # Requirements for one day
    shortfall -stock <file> -mode catalog [-part <pat>]      # Whole catalog view
    shortfall -tasks <file> -mode dates                      # Dates with scheduled tasks
    shortfall generate [OPTIONS]                             # Write synthetic input files
    shortfall interactive -stock <file> -tasks <file>        # Interactive session

OPTIONS:
    -stock <file>         Stock ledger, CSV or XLSX
    -tasks <file>         Task schedule, CSV or XLSX
    -mode <mode>          plan, catalog or dates (default: plan)
    -date <date>          Date to plan for, e.g. 2024-01-10
    -task-code <pat>      Catalog: task code contains pat
    -part <pat>           Catalog: part number contains pat
    -description <pat>    Catalog: description contains pat
    -format <fmt>         Output format: text, json, csv, xlsx, html (default: text)
    -output <dir>         Output directory for results (optional; required for xlsx)
    -sheet <name>         Worksheet to read from XLSX inputs (default: first)
    -config <file>        YAML configuration file
    -metrics-file <file>  Write run metrics in Prometheus text format
    -log-level <lvl>      debug, info, warn or error
    -verbose              Enable verbose output
    -help                 Show this help message

Every setting can also come from the environment with the SHORTFALL_ prefix,
e.g. SHORTFALL_OUTPUT_FORMAT=json or SHORTFALL_KEYS_PRESERVE_HYPHENS=false.

STOCK COLUMNS (header aliases are configurable):
    Mne_Dash8,m_e,description,QOH,required_part_quantity,open_order_quantity,in_transit_quantity,requisition,bin

TASK COLUMNS:
    mne_number,mne_description,package_description,scheduled_date

EXAMPLES:
    # What must be ordered for the tasks on January 10th
    shortfall -stock stock.csv -tasks tasks.csv -date 2024-01-10 -verbose

    # Spreadsheet with an All sheet and a NEEDS_ORDER sheet
    shortfall -stock stock.xlsx -tasks tasks.xlsx -date 2024-01-10 -format xlsx -output results/

    # Every seal in the catalog
    shortfall -stock stock.csv -mode catalog -description seal -format csv
`)
}
