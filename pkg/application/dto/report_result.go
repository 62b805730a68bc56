package dto

import (
	"strconv"
	"time"

	"github.com/vsinha/shortfall/pkg/domain/entities"
)

// Outcome distinguishes the ways a date-scoped report can come out
type Outcome int

const (
	// NoTasksScheduled means nothing is scheduled on the selected date
	NoTasksScheduled Outcome = iota
	// NoMatchingStock means tasks are scheduled but no stock row carries their codes
	NoMatchingStock
	// RequirementsFound means at least one material requirement was computed
	RequirementsFound
)

// String method for Outcome enum
func (o Outcome) String() string {
	switch o {
	case NoTasksScheduled:
		return "NO_TASKS_SCHEDULED"
	case NoMatchingStock:
		return "NO_MATCHING_STOCK"
	case RequirementsFound:
		return "REQUIREMENTS_FOUND"
	default:
		return "Unknown"
	}
}

// MarshalText renders the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Summary holds the scalar figures shown next to a report
type Summary struct {
	Rows           int               `json:"rows"`
	ItemsShort     int               `json:"items_short"`
	TotalShortage  entities.Quantity `json:"total_shortage"`
	TotalInTransit entities.Quantity `json:"total_in_transit"`
	ByAlert        map[string]int    `json:"by_alert"`
}

// Add folds one row into the summary
func (s *Summary) Add(shortage, inTransit entities.Quantity, alert entities.LogisticsAlert) {
	if s.ByAlert == nil {
		s.ByAlert = make(map[string]int)
	}
	s.Rows++
	if shortage > 0 {
		s.ItemsShort++
	}
	s.TotalShortage = s.TotalShortage.Plus(shortage)
	s.TotalInTransit = s.TotalInTransit.Plus(inTransit)
	s.ByAlert[alert.String()]++
}

// ReportColumns is the fixed logical column order of every export
var ReportColumns = []string{
	"status",
	"task_code",
	"part_number",
	"description",
	"quantity_on_hand",
	"required_quantity",
	"shortage",
	"open_orders",
	"requisition",
	"bin",
	"in_transit",
	"projected_stock",
	"logistics_alert",
}

// ReportRow is one output line in ReportColumns order
type ReportRow struct {
	Status           entities.Status
	TaskCode         entities.TaskCode
	PartNumber       entities.PartNumber
	Description      string
	QuantityOnHand   entities.Quantity
	RequiredQuantity entities.Quantity
	Shortage         entities.Quantity
	OpenOrders       entities.Quantity
	Requisition      string
	Bin              string
	InTransit        entities.Quantity
	ProjectedStock   entities.Quantity
	LogisticsAlert   entities.LogisticsAlert
}

// Values renders the row as text cells in ReportColumns order
func (r ReportRow) Values() []string {
	q := func(v entities.Quantity) string { return strconv.FormatInt(int64(v), 10) }
	return []string{
		r.Status.String(),
		string(r.TaskCode),
		string(r.PartNumber),
		r.Description,
		q(r.QuantityOnHand),
		q(r.RequiredQuantity),
		q(r.Shortage),
		q(r.OpenOrders),
		r.Requisition,
		r.Bin,
		q(r.InTransit),
		q(r.ProjectedStock),
		r.LogisticsAlert.String(),
	}
}

// Cells is Values with numeric columns kept as numbers, for spreadsheet output
func (r ReportRow) Cells() []interface{} {
	return []interface{}{
		r.Status.String(),
		string(r.TaskCode),
		string(r.PartNumber),
		r.Description,
		int64(r.QuantityOnHand),
		int64(r.RequiredQuantity),
		int64(r.Shortage),
		int64(r.OpenOrders),
		r.Requisition,
		r.Bin,
		int64(r.InTransit),
		int64(r.ProjectedStock),
		r.LogisticsAlert.String(),
	}
}

// Report is what the presentation layer consumes
type Report interface {
	ReportTitle() string
	Rows() []ReportRow
	NeedsOrderRows() []ReportRow
	ReportSummary() Summary
}

// PlanResult contains the output of a date-scoped run
type PlanResult struct {
	RunID             string                         `json:"run_id"`
	Date              entities.Date                  `json:"date"`
	Outcome           Outcome                        `json:"outcome"`
	Tasks             []entities.TaskRecord          `json:"tasks"`
	Requirements      []entities.MaterialRequirement `json:"requirements"`
	Summary           Summary                        `json:"summary"`
	DuplicatesRemoved int                            `json:"duplicates_removed"`
	UnmatchedTaskKeys []string                       `json:"unmatched_task_keys,omitempty"`
	ComputedAt        time.Time                      `json:"computed_at"`
}

// ReportTitle names the report
func (r *PlanResult) ReportTitle() string {
	return "materials_" + r.Date.String()
}

// ReportSummary returns the summary scalars
func (r *PlanResult) ReportSummary() Summary {
	return r.Summary
}

// Rows returns every requirement as an output row
func (r *PlanResult) Rows() []ReportRow {
	rows := make([]ReportRow, 0, len(r.Requirements))
	for _, req := range r.Requirements {
		rows = append(rows, requirementRow(req))
	}
	return rows
}

// NeedsOrderRows returns only the requirements that must be ordered
func (r *PlanResult) NeedsOrderRows() []ReportRow {
	rows := make([]ReportRow, 0)
	for _, req := range r.Requirements {
		if req.Status == entities.StatusNeedsOrder {
			rows = append(rows, requirementRow(req))
		}
	}
	return rows
}

func requirementRow(req entities.MaterialRequirement) ReportRow {
	return ReportRow{
		Status:           req.Status,
		TaskCode:         req.TaskCode,
		PartNumber:       req.PartNumber,
		Description:      req.Description,
		QuantityOnHand:   req.QuantityOnHand,
		RequiredQuantity: req.RequiredQuantity,
		Shortage:         req.Shortage,
		OpenOrders:       req.OpenOrderQuantity,
		Requisition:      req.Requisition(),
		Bin:              req.Bins(),
		InTransit:        req.InTransitQuantity,
		ProjectedStock:   req.ProjectedStock(),
		LogisticsAlert:   req.LogisticsAlert,
	}
}

// CatalogFilter holds the optional case-insensitive substring patterns of the
// whole-catalog view. Empty patterns impose no constraint.
type CatalogFilter struct {
	TaskCode    string `json:"task_code,omitempty"`
	Description string `json:"description,omitempty"`
	PartNumber  string `json:"part_number,omitempty"`
}

// CatalogRow is one stock record with its own shortage figures
type CatalogRow struct {
	entities.StockRecord
	Shortage       entities.Quantity       `json:"shortage"`
	Status         entities.Status         `json:"status"`
	LogisticsAlert entities.LogisticsAlert `json:"logistics_alert"`
}

// CatalogResult contains the output of a whole-catalog run
type CatalogResult struct {
	RunID      string        `json:"run_id"`
	Filter     CatalogFilter `json:"filter"`
	Items      []CatalogRow  `json:"items"`
	Summary    Summary       `json:"summary"`
	ComputedAt time.Time     `json:"computed_at"`
}

// ReportTitle names the report
func (r *CatalogResult) ReportTitle() string {
	return "catalog"
}

// ReportSummary returns the summary scalars
func (r *CatalogResult) ReportSummary() Summary {
	return r.Summary
}

// Rows returns every catalog row as an output row
func (r *CatalogResult) Rows() []ReportRow {
	rows := make([]ReportRow, 0, len(r.Items))
	for _, item := range r.Items {
		rows = append(rows, catalogRow(item))
	}
	return rows
}

// NeedsOrderRows returns only the catalog rows that must be ordered
func (r *CatalogResult) NeedsOrderRows() []ReportRow {
	rows := make([]ReportRow, 0)
	for _, item := range r.Items {
		if item.Status == entities.StatusNeedsOrder {
			rows = append(rows, catalogRow(item))
		}
	}
	return rows
}

func catalogRow(item CatalogRow) ReportRow {
	return ReportRow{
		Status:           item.Status,
		TaskCode:         item.TaskCode,
		PartNumber:       item.PartNumber,
		Description:      item.Description,
		QuantityOnHand:   item.QuantityOnHand,
		RequiredQuantity: item.RequiredQuantity,
		Shortage:         item.Shortage,
		OpenOrders:       item.OpenOrderQuantity,
		Requisition:      item.RequisitionNote,
		Bin:              item.BinLocation,
		InTransit:        item.InTransitQuantity,
		ProjectedStock:   item.ProjectedStock(),
		LogisticsAlert:   item.LogisticsAlert,
	}
}
