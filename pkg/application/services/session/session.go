package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/application/services/requirements"
	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/domain/repositories"
	"github.com/vsinha/shortfall/pkg/domain/services"
	"github.com/vsinha/shortfall/pkg/infrastructure/events"
	"github.com/vsinha/shortfall/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/shortfall/pkg/infrastructure/repositories/memory"
)

var (
	// ErrNoStockLoaded is returned by operations that need a stock ledger before one is loaded
	ErrNoStockLoaded = errors.New("no stock ledger loaded")
	// ErrNoScheduleLoaded is returned by operations that need a task schedule before one is loaded
	ErrNoScheduleLoaded = errors.New("no task schedule loaded")
)

// TableLoader parses input files into tables
type TableLoader interface {
	LoadStock(filename string) (*csv.StockTable, error)
	LoadTasks(filename string) (*csv.TaskTable, error)
}

// fileStamp identifies one version of a file on disk
type fileStamp struct {
	path    string
	size    int64
	modTime int64
}

func stampOf(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return fileStamp{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}, nil
}

// Session holds the currently loaded stock ledger and task schedule and runs
// reports against them. Re-loading replaces a table as a whole; a file whose
// path, size and modification time are unchanged is not parsed again.
type Session struct {
	loader    TableLoader
	planner   *requirements.Planner
	validator *services.ScheduleValidator
	stock     repositories.StockRepository
	tasks     repositories.TaskRepository
	store     events.EventStore
	logger    *zap.Logger

	mu         sync.RWMutex
	stockTable *csv.StockTable
	taskTable  *csv.TaskTable
	stockStamp fileStamp
	taskStamp  fileStamp
}

// Option configures a Session
type Option func(*Session)

// WithEventStore records session events in store instead of a private one
func WithEventStore(store events.EventStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates an empty session whose joins follow keys
func New(loader TableLoader, keys services.KeyOptions, opts ...Option) *Session {
	planner := requirements.NewPlanner(keys)
	s := &Session{
		loader:    loader,
		planner:   planner,
		validator: services.NewScheduleValidator(planner.Normalizer()),
		stock:     memory.NewStockRepository(),
		tasks:     memory.NewTaskRepository(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = events.NewInMemoryEventStore(s.logger)
	}
	return s
}

// LoadStock loads the stock ledger at path, replacing any previous one
func (s *Session) LoadStock(path string) (*csv.StockTable, error) {
	stamp, err := stampOf(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cached := s.stockTable != nil && s.stockStamp == stamp
	table := s.stockTable
	if !cached {
		table, err = s.loader.LoadStock(path)
		if err != nil {
			return nil, err
		}
		if err := s.stock.ReplaceStock(table.Records); err != nil {
			return nil, fmt.Errorf("failed to store stock: %w", err)
		}
		s.stockTable = table
		s.stockStamp = stamp
	}

	s.logger.Info("stock loaded",
		zap.String("file", path),
		zap.Int("rows", len(table.Records)),
		zap.Bool("cached", cached))
	s.append(events.NewStockLoadedEvent(events.StockLoaded{
		Source:         path,
		Rows:           len(table.Records),
		DefaultedCells: table.DefaultedCells,
		Columns:        columnNames(table.Columns),
		Cached:         cached,
	}))
	return table, nil
}

// LoadTasks loads the task schedule at path, replacing any previous one
func (s *Session) LoadTasks(path string) (*csv.TaskTable, error) {
	stamp, err := stampOf(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cached := s.taskTable != nil && s.taskStamp == stamp
	table := s.taskTable
	if !cached {
		table, err = s.loader.LoadTasks(path)
		if err != nil {
			return nil, err
		}
		if err := s.tasks.ReplaceTasks(table.Records); err != nil {
			return nil, fmt.Errorf("failed to store tasks: %w", err)
		}
		s.taskTable = table
		s.taskStamp = stamp
	}

	s.logger.Info("tasks loaded",
		zap.String("file", path),
		zap.Int("rows", len(table.Records)),
		zap.Bool("cached", cached))
	s.append(events.NewScheduleLoadedEvent(events.ScheduleLoaded{
		Source:      path,
		Rows:        len(table.Records),
		UndatedRows: table.UndatedRows,
		Columns:     columnNames(table.Columns),
		Cached:      cached,
	}))
	return table, nil
}

// Plan computes the material requirements for the tasks scheduled on date
func (s *Session) Plan(ctx context.Context, date entities.Date) (*dto.PlanResult, error) {
	stock, stockCols, err := s.stockSnapshot()
	if err != nil {
		return nil, err
	}
	tasks, taskCols, err := s.taskSnapshot()
	if err != nil {
		return nil, err
	}
	if err := stockCols.Require(csv.ColTaskCode, csv.ColPartNumber); err != nil {
		return nil, fmt.Errorf("stock ledger: %w", err)
	}
	if err := taskCols.Require(csv.ColTaskCode, csv.ColScheduledDate); err != nil {
		return nil, fmt.Errorf("task schedule: %w", err)
	}

	result, err := s.planner.Plan(ctx, stock, tasks, date)
	if err != nil {
		return nil, err
	}

	s.append(events.NewPlanComputedEvent(events.PlanComputed{
		RunID:             result.RunID,
		Date:              date.String(),
		Outcome:           result.Outcome.String(),
		Tasks:             len(result.Tasks),
		Rows:              result.Summary.Rows,
		ItemsShort:        result.Summary.ItemsShort,
		TotalShortage:     int64(result.Summary.TotalShortage),
		TotalInTransit:    int64(result.Summary.TotalInTransit),
		DuplicatesRemoved: result.DuplicatesRemoved,
	}))
	return result, nil
}

// Catalog computes the whole-catalog view. A pattern on a column the ledger
// lacks is reported instead of silently matching nothing.
func (s *Session) Catalog(ctx context.Context, filter dto.CatalogFilter) (*dto.CatalogResult, error) {
	stock, cols, err := s.stockSnapshot()
	if err != nil {
		return nil, err
	}

	var needed []string
	if filter.TaskCode != "" {
		needed = append(needed, csv.ColTaskCode)
	}
	if filter.Description != "" {
		needed = append(needed, csv.ColDescription)
	}
	if filter.PartNumber != "" {
		needed = append(needed, csv.ColPartNumber)
	}
	if err := cols.Require(needed...); err != nil {
		return nil, fmt.Errorf("catalog filter: %w", err)
	}

	result, err := s.planner.Catalog(ctx, stock, filter)
	if err != nil {
		return nil, err
	}

	s.append(events.NewCatalogFilteredEvent(events.CatalogFiltered{
		RunID:         result.RunID,
		TaskCode:      filter.TaskCode,
		Description:   filter.Description,
		PartNumber:    filter.PartNumber,
		Rows:          result.Summary.Rows,
		ItemsShort:    result.Summary.ItemsShort,
		TotalShortage: int64(result.Summary.TotalShortage),
	}))
	return result, nil
}

// AvailableDates lists the distinct scheduled dates of the loaded schedule
func (s *Session) AvailableDates() ([]entities.Date, error) {
	tasks, cols, err := s.taskSnapshot()
	if err != nil {
		return nil, err
	}
	if err := cols.Require(csv.ColScheduledDate); err != nil {
		return nil, fmt.Errorf("task schedule: %w", err)
	}
	return requirements.AvailableDates(tasks), nil
}

// TaskCodes lists the distinct raw task codes of the ledger matching pattern
func (s *Session) TaskCodes(pattern string) ([]entities.TaskCode, error) {
	stock, cols, err := s.stockSnapshot()
	if err != nil {
		return nil, err
	}
	if err := cols.Require(csv.ColTaskCode); err != nil {
		return nil, fmt.Errorf("stock ledger: %w", err)
	}
	return requirements.TaskCodes(stock, pattern), nil
}

// Validate runs the cross-table diagnostics on the loaded tables
func (s *Session) Validate() (*services.ValidationResult, error) {
	stock, _, err := s.stockSnapshot()
	if err != nil {
		return nil, err
	}
	tasks, _, err := s.taskSnapshot()
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(stock, tasks), nil
}

// Events returns the session's event log in order
func (s *Session) Events() ([]events.Event, error) {
	return s.store.ReadEvents(events.SessionStream, 1)
}

// stockSnapshot returns the ledger rows together with the columns of the
// same load. Loads hold the write lock, so the pair is never mixed.
func (s *Session) stockSnapshot() ([]entities.StockRecord, csv.Columns, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stockTable == nil {
		return nil, nil, ErrNoStockLoaded
	}

	stock, err := s.stock.GetAllStock()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stock: %w", err)
	}
	return stock, s.stockTable.Columns, nil
}

func (s *Session) taskSnapshot() ([]entities.TaskRecord, csv.Columns, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.taskTable == nil {
		return nil, nil, ErrNoScheduleLoaded
	}

	tasks, err := s.tasks.GetAllTasks()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return tasks, s.taskTable.Columns, nil
}

func (s *Session) append(event events.Event) {
	if err := s.store.AppendEvent(events.SessionStream, event); err != nil {
		s.logger.Warn("failed to record event", zap.String("event", event.Type()), zap.Error(err))
	}
}

func columnNames(cols csv.Columns) []string {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
