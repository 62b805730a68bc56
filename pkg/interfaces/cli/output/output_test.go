package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/domain/entities"
)

var reportDate = entities.Date{Year: 2024, Month: time.January, Day: 10}

func samplePlan() *dto.PlanResult {
	reqs := []entities.MaterialRequirement{
		{
			TaskCode: "27-05", PartNumber: "PN1", Description: "Seal",
			QuantityOnHand: 2, RequiredQuantity: 5, OpenOrderQuantity: 1, InTransitQuantity: 4,
			Requisitions: []string{"REQ-7"}, BinLocations: []string{"A1"},
			Shortage: 3, Status: entities.StatusNeedsOrder, LogisticsAlert: entities.AlertInTransitCovers,
		},
		{
			TaskCode: "27-05", PartNumber: "PN2", Description: "Washer",
			QuantityOnHand: 10, RequiredQuantity: 4, BinLocations: []string{"A2"},
			Status: entities.StatusOK, LogisticsAlert: entities.AlertOK,
		},
	}
	plan := &dto.PlanResult{
		RunID:        "run-1",
		Date:         reportDate,
		Outcome:      dto.RequirementsFound,
		Tasks:        []entities.TaskRecord{{TaskCode: "27-05", TaskDescription: "Replace seal", PackageDescription: "A-check", ScheduledDate: reportDate}},
		Requirements: reqs,
	}
	for _, r := range reqs {
		plan.Summary.Add(r.Shortage, r.InTransitQuantity, r.LogisticsAlert)
	}
	return plan
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(samplePlan(), Config{Format: "text", Writer: &buf}))

	text := buf.String()
	assert.Contains(t, text, "materials_2024-01-10")
	assert.Contains(t, text, "Replace seal")
	assert.Contains(t, text, "Total Shortage: 3")
	assert.Contains(t, text, "Needs Order (1)")
	assert.Contains(t, text, "IN_TRANSIT_COVERS")
}

func TestGenerate_TextEmptyOutcomes(t *testing.T) {
	var buf bytes.Buffer
	plan := &dto.PlanResult{Date: reportDate, Outcome: dto.NoTasksScheduled}
	require.NoError(t, Generate(plan, Config{Format: "text", Writer: &buf}))
	assert.Contains(t, buf.String(), "No tasks are scheduled on 2024-01-10")

	buf.Reset()
	plan = &dto.PlanResult{
		Date:              reportDate,
		Outcome:           dto.NoMatchingStock,
		Tasks:             []entities.TaskRecord{{TaskCode: "99-99"}},
		UnmatchedTaskKeys: []string{"99-99"},
	}
	require.NoError(t, Generate(plan, Config{Format: "text", Writer: &buf}))
	assert.Contains(t, buf.String(), "no stock rows match")
	assert.Contains(t, buf.String(), "99-99")
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(samplePlan(), Config{Format: "json", Writer: &buf}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2024-01-10", decoded["date"])
	assert.Equal(t, "REQUIREMENTS_FOUND", decoded["outcome"])
	reqs := decoded["requirements"].([]interface{})
	assert.Equal(t, "NEEDS_ORDER", reqs[0].(map[string]interface{})["status"])
}

func TestGenerate_CSVColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(samplePlan(), Config{Format: "csv", Writer: &buf}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(dto.ReportColumns, ","), lines[0])
	assert.Equal(t, "NEEDS_ORDER,27-05,PN1,Seal,2,5,3,1,REQ-7,A1,4,7,IN_TRANSIT_COVERS", lines[1])
}

func TestGenerate_CSVFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(samplePlan(), Config{Format: "csv", OutputDir: dir}))

	needs, err := os.ReadFile(filepath.Join(dir, "materials_2024-01-10_needs_order.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(needs), "\n"))
	_, err = os.Stat(filepath.Join(dir, "materials_2024-01-10.csv"))
	assert.NoError(t, err)
}

func TestGenerate_XLSX(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(samplePlan(), Config{Format: "xlsx", OutputDir: dir, StyleRowLimit: 100}))

	f, err := excelize.OpenFile(filepath.Join(dir, "materials_2024-01-10.xlsx"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetAll, SheetNeedsOrder}, f.GetSheetList())

	all, err := f.GetRows(SheetAll)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, dto.ReportColumns, all[0])
	assert.Equal(t, "PN2", all[2][2])

	needs, err := f.GetRows(SheetNeedsOrder)
	require.NoError(t, err)
	require.Len(t, needs, 2)
	assert.Equal(t, "3", needs[1][6])

	style, err := f.GetCellStyle(SheetAll, "A2")
	require.NoError(t, err)
	assert.NotZero(t, style, "NEEDS_ORDER rows are highlighted under the row limit")
	style, err = f.GetCellStyle(SheetAll, "A3")
	require.NoError(t, err)
	assert.Zero(t, style)
}

func TestGenerate_XLSXSkipsStylingOverLimit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(samplePlan(), Config{Format: "xlsx", OutputDir: dir, StyleRowLimit: 1}))

	f, err := excelize.OpenFile(filepath.Join(dir, "materials_2024-01-10.xlsx"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	style, err := f.GetCellStyle(SheetAll, "A2")
	require.NoError(t, err)
	assert.Zero(t, style)
}

func TestGenerate_XLSXNeedsDirectory(t *testing.T) {
	assert.Error(t, Generate(samplePlan(), Config{Format: "xlsx"}))
}

func TestGenerate_HTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(samplePlan(), Config{Format: "html", Writer: &buf, StyleRowLimit: 10}))

	html := buf.String()
	assert.Contains(t, html, "<title>materials_2024-01-10</title>")
	assert.Contains(t, html, `class="needs-order"`)
	assert.Contains(t, html, "Replace seal")
	assert.Equal(t, 1, strings.Count(html, `class="needs-order"`))
}

func TestGenerate_Catalog(t *testing.T) {
	catalog := &dto.CatalogResult{
		Items: []dto.CatalogRow{
			{
				StockRecord: entities.StockRecord{TaskCode: "27-05", PartNumber: "PN1", QuantityOnHand: 1, RequiredQuantity: 4, BinLocation: "A1"},
				Shortage:    3, Status: entities.StatusNeedsOrder, LogisticsAlert: entities.AlertNeedsOrder,
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Generate(catalog, Config{Format: "csv", Writer: &buf}))
	assert.Contains(t, buf.String(), "NEEDS_ORDER,27-05,PN1,,1,4,3,0,,A1,0,1,NEEDS_ORDER")
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	assert.Error(t, Generate(samplePlan(), Config{Format: "pdf"}))
	assert.Error(t, GenerateDates(nil, Config{Format: "pdf"}))
}

func TestGenerateDates(t *testing.T) {
	dates := []entities.Date{reportDate, {Year: 2024, Month: time.January, Day: 11}}

	var buf bytes.Buffer
	require.NoError(t, GenerateDates(dates, Config{Format: "json", Writer: &buf}))
	var decoded []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []string{"2024-01-10", "2024-01-11"}, decoded)

	buf.Reset()
	require.NoError(t, GenerateDates(dates, Config{Format: "text", Writer: &buf}))
	assert.Contains(t, buf.String(), "2024-01-11")

	dir := t.TempDir()
	require.NoError(t, GenerateDates(dates, Config{Format: "xlsx", OutputDir: dir}))
	f, err := excelize.OpenFile(filepath.Join(dir, "dates.xlsx"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(SheetDates)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
