package output

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/domain/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateData is what the HTML report template renders
type TemplateData struct {
	Title       string
	Columns     []string
	Rows        []HTMLRow
	NeedsOrder  int
	Summary     dto.Summary
	Plan        *dto.PlanResult
	Styled      bool
	ElapsedTime string
	GeneratedAt string
}

// HTMLRow is one table row with its highlight flag
type HTMLRow struct {
	Cells     []string
	Highlight bool
}

// GenerateHTML renders report as a standalone HTML page
func GenerateHTML(report dto.Report, config Config) (string, error) {
	rows := report.Rows()
	data := &TemplateData{
		Title:       report.ReportTitle(),
		Columns:     dto.ReportColumns,
		Rows:        make([]HTMLRow, 0, len(rows)),
		NeedsOrder:  len(report.NeedsOrderRows()),
		Summary:     report.ReportSummary(),
		Styled:      config.styled(len(rows)),
		ElapsedTime: formatDuration(config.ElapsedTime),
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
	if plan, ok := report.(*dto.PlanResult); ok {
		data.Plan = plan
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, HTMLRow{
			Cells:     row.Values(),
			Highlight: data.Styled && row.Status == entities.StatusNeedsOrder,
		})
	}

	tmpl, err := template.ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// generateHTMLOutput writes the HTML report to the output directory, or stdout
func generateHTMLOutput(report dto.Report, config Config) error {
	html, err := GenerateHTML(report, config)
	if err != nil {
		return fmt.Errorf("failed to generate HTML report: %w", err)
	}

	if config.OutputDir == "" {
		_, err := fmt.Fprint(config.writer(), html)
		return err
	}

	filename, err := saveFile(config, report.ReportTitle()+".html", []byte(html))
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "🌐 HTML report saved to: %s\n", filename)
	}
	return nil
}
