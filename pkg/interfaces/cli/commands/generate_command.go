package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/shortfall/pkg/domain/entities"
)

// GenerateConfig holds configuration for synthetic input generation
type GenerateConfig struct {
	Tasks        int     // Number of distinct task codes
	PartsPerTask int     // Maximum parts listed under one task
	Days         int     // Tasks are spread over this many days
	Coverage     float64 // On-hand multiplier of the required quantity (0.5 = half, 2.0 = double)
	StartDate    string  // First scheduled day, YYYY-MM-DD
	OutputDir    string  // Output directory for generated files
	Seed         int64   // Random seed for reproducible generation
	Help         bool    // Show help
	Verbose      bool    // Verbose output
	Stdout       io.Writer
}

// GenerateCommand writes a synthetic stock ledger and task schedule
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		config.Seed = seed
	}
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

// generatedTask is one task code with the parts it consumes
type generatedTask struct {
	code        string
	description string
	pkg         string
	date        entities.Date
	parts       []string
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	start, err := entities.ParseDate(cmd.config.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out,
			"🔧 Generating %d tasks with up to %d parts each over %d days, %.1fx coverage\n",
			cmd.config.Tasks,
			cmd.config.PartsPerTask,
			cmd.config.Days,
			cmd.config.Coverage,
		)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.out, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tasks := cmd.generatePlan(start)
	if err := ctx.Err(); err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.out, "📦 Generating stock.csv...")
	}
	if err := cmd.generateStock(tasks); err != nil {
		return fmt.Errorf("failed to generate stock: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.out, "📋 Generating tasks.csv...")
	}
	if err := cmd.generateTasks(tasks); err != nil {
		return fmt.Errorf("failed to generate tasks: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Input files generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.Tasks <= 0:
		return fmt.Errorf("-tasks must be positive")
	case cmd.config.PartsPerTask <= 0:
		return fmt.Errorf("-parts must be positive")
	case cmd.config.Days <= 0:
		return fmt.Errorf("-days must be positive")
	case cmd.config.Coverage < 0:
		return fmt.Errorf("-coverage cannot be negative")
	case cmd.config.OutputDir == "":
		return fmt.Errorf("-output is required")
	}
	return nil
}

var (
	taskVerbs      = []string{"Replace", "Inspect", "Lubricate", "Overhaul", "Test", "Clean"}
	taskComponents = []string{"seal", "actuator", "gear pin", "filter", "valve", "bearing", "harness"}
	packages       = []string{"A-check", "B-check", "C-check", "Line"}
)

// generatePlan draws task codes, their dates and their part lists. About one
// part in five is shared with an earlier task.
func (cmd *GenerateCommand) generatePlan(start entities.Date) []generatedTask {
	tasks := make([]generatedTask, 0, cmd.config.Tasks)
	seen := make(map[string]bool)
	var allParts []string

	for len(tasks) < cmd.config.Tasks {
		code := fmt.Sprintf("%02d-%02d", 20+cmd.rand.Intn(60), cmd.rand.Intn(100))
		if len(seen) >= 6000 {
			code = fmt.Sprintf("%02d-%02d-%d", 20+cmd.rand.Intn(60), cmd.rand.Intn(100), len(tasks))
		}
		if seen[code] {
			continue
		}
		seen[code] = true

		task := generatedTask{
			code:        code,
			description: taskVerbs[cmd.rand.Intn(len(taskVerbs))] + " " + taskComponents[cmd.rand.Intn(len(taskComponents))],
			pkg:         packages[cmd.rand.Intn(len(packages))],
		}
		// a few tasks carry no usable date
		if cmd.rand.Float64() >= 0.03 {
			task.date = entities.NewDate(start.Time().AddDate(0, 0, cmd.rand.Intn(cmd.config.Days)))
		}

		numParts := 1 + cmd.rand.Intn(cmd.config.PartsPerTask)
		for i := 0; i < numParts; i++ {
			if len(allParts) > 0 && cmd.rand.Float64() < 0.2 {
				task.parts = append(task.parts, allParts[cmd.rand.Intn(len(allParts))])
				continue
			}
			part := fmt.Sprintf("PN%05d", len(allParts)+1)
			allParts = append(allParts, part)
			task.parts = append(task.parts, part)
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// generateStock creates the stock.csv file
func (cmd *GenerateCommand) generateStock(tasks []generatedTask) error {
	filePath := filepath.Join(cmd.config.OutputDir, "stock.csv")
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "Mne_Dash8,m_e,description,QOH,required_part_quantity,open_order_quantity,in_transit_quantity,requisition,bin")

	reqNum := 1
	for _, task := range tasks {
		for _, part := range task.parts {
			required := 1 + cmd.rand.Intn(10)
			onHand := int(float64(required) * cmd.config.Coverage * (0.5 + cmd.rand.Float64()))

			openOrders, inTransit, requisition := 0, 0, ""
			if onHand < required {
				if cmd.rand.Float64() < 0.5 {
					openOrders = 1 + cmd.rand.Intn(required)
				}
				if cmd.rand.Float64() < 0.4 {
					inTransit = 1 + cmd.rand.Intn(required)
				}
				if cmd.rand.Float64() < 0.6 {
					requisition = fmt.Sprintf("REQ-%05d", reqNum)
					reqNum++
				}
			}

			line := fmt.Sprintf("%s,%s,%s,%d,%d,%d,%d,%s,%s\n",
				task.code, part, "Part "+part, onHand, required, openOrders, inTransit, requisition, cmd.generateBin())
			fmt.Fprint(file, line)
			// exports often repeat rows verbatim
			if cmd.rand.Float64() < 0.05 {
				fmt.Fprint(file, line)
			}
		}
	}
	return nil
}

// generateTasks creates the tasks.csv file
func (cmd *GenerateCommand) generateTasks(tasks []generatedTask) error {
	filePath := filepath.Join(cmd.config.OutputDir, "tasks.csv")
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "mne_number,mne_description,package_description,scheduled_date")
	for _, task := range tasks {
		date := task.date.String()
		if task.date.IsZero() {
			date = "TBD"
		}
		fmt.Fprintf(file, "%s,%s,%s,%s\n", task.code, task.description, task.pkg, date)
	}
	return nil
}

func (cmd *GenerateCommand) generateBin() string {
	return fmt.Sprintf("%c%d", 'A'+rune(cmd.rand.Intn(8)), 1+cmd.rand.Intn(40))
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.out, `Shortfall Input Generator

USAGE:
    shortfall generate [OPTIONS]

OPTIONS:
    -tasks <N>          Number of task codes to generate (default: 50)
    -parts <N>          Maximum parts per task (default: 8)
    -days <N>           Spread tasks over this many days (default: 30)
    -coverage <F>       On-hand multiplier (e.g., 0.5 = half coverage, 2.0 = double) (default: 0.8)
    -start <DATE>       First scheduled day (default: 2024-01-01)
    -output <DIR>       Output directory for generated files (required)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    # Generate a small test data set
    shortfall generate -tasks 20 -output ./sample

    # Generate a large performance data set
    shortfall generate -tasks 5000 -parts 20 -days 365 -output ./large -verbose

    # Generate reproducible inputs
    shortfall generate -tasks 100 -seed 12345 -output ./repro`)
}
