package events

// SessionStream is the stream every session event is appended to
const SessionStream = "session"

const (
	StockLoadedEvent     = "stock.loaded"
	ScheduleLoadedEvent  = "schedule.loaded"
	PlanComputedEvent    = "plan.computed"
	CatalogFilteredEvent = "catalog.filtered"
)

// AllSessionEvents lists every session event type
var AllSessionEvents = []string{
	StockLoadedEvent,
	ScheduleLoadedEvent,
	PlanComputedEvent,
	CatalogFilteredEvent,
}

type StockLoaded struct {
	Source         string   `json:"source"`
	Rows           int      `json:"rows"`
	DefaultedCells int      `json:"defaulted_cells"`
	Columns        []string `json:"columns"`
	Cached         bool     `json:"cached"`
}

type ScheduleLoaded struct {
	Source      string   `json:"source"`
	Rows        int      `json:"rows"`
	UndatedRows int      `json:"undated_rows"`
	Columns     []string `json:"columns"`
	Cached      bool     `json:"cached"`
}

type PlanComputed struct {
	RunID             string `json:"run_id"`
	Date              string `json:"date"`
	Outcome           string `json:"outcome"`
	Tasks             int    `json:"tasks"`
	Rows              int    `json:"rows"`
	ItemsShort        int    `json:"items_short"`
	TotalShortage     int64  `json:"total_shortage"`
	TotalInTransit    int64  `json:"total_in_transit"`
	DuplicatesRemoved int    `json:"duplicates_removed"`
}

type CatalogFiltered struct {
	RunID         string `json:"run_id"`
	TaskCode      string `json:"task_code,omitempty"`
	Description   string `json:"description,omitempty"`
	PartNumber    string `json:"part_number,omitempty"`
	Rows          int    `json:"rows"`
	ItemsShort    int    `json:"items_short"`
	TotalShortage int64  `json:"total_shortage"`
}

func NewStockLoadedEvent(data StockLoaded) Event {
	return NewEvent(StockLoadedEvent, SessionStream, data)
}

func NewScheduleLoadedEvent(data ScheduleLoaded) Event {
	return NewEvent(ScheduleLoadedEvent, SessionStream, data)
}

func NewPlanComputedEvent(data PlanComputed) Event {
	return NewEvent(PlanComputedEvent, SessionStream, data)
}

func NewCatalogFilteredEvent(data CatalogFiltered) Event {
	return NewEvent(CatalogFilteredEvent, SessionStream, data)
}
