package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// StyleRowLimit skips spreadsheet and HTML highlighting above this many rows; 0 disables it
	StyleRowLimit int
	ElapsedTime   time.Duration
	InputFiles    map[string]string
	// Writer receives console output; nil means stdout
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

func (c Config) styled(rows int) bool {
	return c.StyleRowLimit > 0 && rows <= c.StyleRowLimit
}

// Generate creates output in the specified format
func Generate(report dto.Report, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, report.ReportTitle(), config)
	case "csv":
		return generateCSVOutput(report, config)
	case "xlsx":
		return generateXLSXOutput(report, config)
	case "html":
		return generateHTMLOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// GenerateDates lists the dates a report can be run for
func GenerateDates(dates []entities.Date, config Config) error {
	switch config.Format {
	case "text", "html":
		w := config.writer()
		fmt.Fprintf(w, "📅 Scheduled dates (%d)\n", len(dates))
		for _, d := range dates {
			fmt.Fprintf(w, "  %s\n", d)
		}
		return nil
	case "json":
		if dates == nil {
			dates = []entities.Date{}
		}
		return generateJSONOutput(dates, "dates", config)
	case "csv":
		rows := make([][]string, 0, len(dates)+1)
		rows = append(rows, []string{"scheduled_date"})
		for _, d := range dates {
			rows = append(rows, []string{d.String()})
		}
		return writeCSV(rows, "dates.csv", config)
	case "xlsx":
		return generateDatesXLSX(dates, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(report dto.Report, config Config) error {
	var buf bytes.Buffer
	writeText(&buf, report, config)

	if _, err := config.writer().Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}

	if config.OutputDir != "" {
		filename, err := saveFile(config, report.ReportTitle()+".txt", buf.Bytes())
		if err != nil {
			return err
		}
		if config.Verbose {
			fmt.Fprintf(config.writer(), "💾 Results saved to: %s\n", filename)
		}
	}
	return nil
}

func writeText(w io.Writer, report dto.Report, config Config) {
	summary := report.ReportSummary()

	fmt.Fprintf(w, "📊 Shortfall Report: %s\n", report.ReportTitle())
	fmt.Fprintf(w, "======================\n\n")

	if plan, ok := report.(*dto.PlanResult); ok {
		writePlanHeader(w, plan)
		if plan.Outcome != dto.RequirementsFound {
			return
		}
	}

	fmt.Fprintf(w, "Rows: %d\n", summary.Rows)
	fmt.Fprintf(w, "Items Short: %d\n", summary.ItemsShort)
	fmt.Fprintf(w, "Total Shortage: %d\n", summary.TotalShortage)
	fmt.Fprintf(w, "Total In Transit: %d\n", summary.TotalInTransit)
	if config.ElapsedTime > 0 {
		fmt.Fprintf(w, "Compute Time: %v\n", config.ElapsedTime)
	}
	fmt.Fprintln(w)

	rows := report.Rows()
	if len(rows) == 0 {
		fmt.Fprintf(w, "No stock rows match the filter.\n")
		return
	}

	fmt.Fprintf(w, "📋 Materials:\n")
	writeTable(w, rows)

	if needs := report.NeedsOrderRows(); len(needs) > 0 {
		fmt.Fprintf(w, "⚠️  Needs Order (%d):\n", len(needs))
		writeTable(w, needs)
	}
}

func writePlanHeader(w io.Writer, plan *dto.PlanResult) {
	switch plan.Outcome {
	case dto.NoTasksScheduled:
		fmt.Fprintf(w, "No tasks are scheduled on %s.\n", plan.Date)
		return
	case dto.NoMatchingStock:
		fmt.Fprintf(w, "%d tasks are scheduled on %s but no stock rows match their codes.\n", len(plan.Tasks), plan.Date)
		if len(plan.UnmatchedTaskKeys) > 0 {
			fmt.Fprintf(w, "Unmatched task codes: %s\n", strings.Join(plan.UnmatchedTaskKeys, ", "))
		}
		return
	}

	fmt.Fprintf(w, "🛠  Tasks on %s (%d):\n", plan.Date, len(plan.Tasks))
	fmt.Fprintf(w, "%-12s %-30s %-20s\n", "Task Code", "Description", "Package")
	fmt.Fprintf(w, "%-12s %-30s %-20s\n", "------------", "------------------------------", "--------------------")
	for _, task := range plan.Tasks {
		fmt.Fprintf(w, "%-12s %-30s %-20s\n", task.TaskCode, truncate(task.TaskDescription, 30), truncate(task.PackageDescription, 20))
	}
	fmt.Fprintln(w)

	if plan.DuplicatesRemoved > 0 {
		fmt.Fprintf(w, "Duplicate stock rows removed: %d\n", plan.DuplicatesRemoved)
	}
	if len(plan.UnmatchedTaskKeys) > 0 {
		fmt.Fprintf(w, "Task codes without stock rows: %s\n", strings.Join(plan.UnmatchedTaskKeys, ", "))
	}
}

func writeTable(w io.Writer, rows []dto.ReportRow) {
	const format = "%-11s %-10s %-15s %-24s %6s %6s %6s %6s %-12s %-10s %6s %6s %-28s\n"
	fmt.Fprintf(w, format, "Status", "Task", "Part Number", "Description",
		"QOH", "Req", "Short", "Open", "Requisition", "Bin", "Trans", "Proj", "Logistics")
	fmt.Fprintf(w, format, "-----------", "----------", "---------------", "------------------------",
		"------", "------", "------", "------", "------------", "----------", "------", "------", "----------------------------")

	for _, row := range rows {
		v := row.Values()
		fmt.Fprintf(w, format,
			v[0], v[1], v[2], truncate(v[3], 24),
			v[4], v[5], v[6], v[7], truncate(v[8], 12), truncate(v[9], 10),
			v[10], v[11], v[12])
	}
	fmt.Fprintln(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// generateJSONOutput creates JSON output
func generateJSONOutput(v interface{}, title string, config Config) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}

	filename, err := saveFile(config, title+".json", jsonData)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes every row, plus a NEEDS_ORDER file when an output directory is set
func generateCSVOutput(report dto.Report, config Config) error {
	if err := writeCSV(csvRows(report.Rows()), report.ReportTitle()+".csv", config); err != nil {
		return err
	}
	if config.OutputDir == "" {
		return nil
	}
	return writeCSV(csvRows(report.NeedsOrderRows()), report.ReportTitle()+"_needs_order.csv", config)
}

func csvRows(rows []dto.ReportRow) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, dto.ReportColumns)
	for _, row := range rows {
		out = append(out, row.Values())
	}
	return out
}

func writeCSV(rows [][]string, name string, config Config) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}

	if config.OutputDir == "" {
		if _, err := config.writer().Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		return nil
	}

	filename, err := saveFile(config, name, buf.Bytes())
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 CSV results saved to: %s\n", filename)
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func saveFile(config Config, name string, data []byte) (string, error) {
	if err := ensureDir(config.OutputDir); err != nil {
		return "", err
	}

	filename := filepath.Join(config.OutputDir, name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}
