package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/domain/services"
	"github.com/vsinha/shortfall/pkg/infrastructure/config"
	"github.com/vsinha/shortfall/pkg/infrastructure/events"
	"github.com/vsinha/shortfall/pkg/infrastructure/repositories/csv"
	testhelpers "github.com/vsinha/shortfall/pkg/infrastructure/testing"
)

// countingLoader counts how often each table is actually parsed
type countingLoader struct {
	*csv.Loader
	stockParses int
	taskParses  int
}

func (l *countingLoader) LoadStock(filename string) (*csv.StockTable, error) {
	l.stockParses++
	return l.Loader.LoadStock(filename)
}

func (l *countingLoader) LoadTasks(filename string) (*csv.TaskTable, error) {
	l.taskParses++
	return l.Loader.LoadTasks(filename)
}

func newTestSession(t *testing.T) (*Session, *countingLoader, string, string) {
	t.Helper()
	stockPath, tasksPath, err := testhelpers.WriteHangarFiles(t.TempDir())
	require.NoError(t, err)

	loader := &countingLoader{Loader: csv.NewLoader(config.Default().Columns)}
	return New(loader, services.DefaultKeyOptions()), loader, stockPath, tasksPath
}

func TestSession_RequiresLoadedTables(t *testing.T) {
	s, _, stockPath, _ := newTestSession(t)
	ctx := context.Background()

	_, err := s.Plan(ctx, testhelpers.HangarDate)
	assert.ErrorIs(t, err, ErrNoStockLoaded)
	_, err = s.Catalog(ctx, dto.CatalogFilter{})
	assert.ErrorIs(t, err, ErrNoStockLoaded)
	_, err = s.AvailableDates()
	assert.ErrorIs(t, err, ErrNoScheduleLoaded)

	_, err = s.LoadStock(stockPath)
	require.NoError(t, err)
	_, err = s.Plan(ctx, testhelpers.HangarDate)
	assert.ErrorIs(t, err, ErrNoScheduleLoaded)
	_, err = s.Validate()
	assert.ErrorIs(t, err, ErrNoScheduleLoaded)
}

func TestSession_PlanHangarScenario(t *testing.T) {
	s, _, stockPath, tasksPath := newTestSession(t)
	_, err := s.LoadStock(stockPath)
	require.NoError(t, err)
	tasks, err := s.LoadTasks(tasksPath)
	require.NoError(t, err)
	assert.Equal(t, 1, tasks.UndatedRows)

	result, err := s.Plan(context.Background(), testhelpers.HangarDate)
	require.NoError(t, err)

	assert.Equal(t, dto.RequirementsFound, result.Outcome)
	assert.Len(t, result.Tasks, 2)
	assert.Equal(t, 1, result.DuplicatesRemoved)
	require.Len(t, result.Requirements, 3)

	seal := result.Requirements[0]
	assert.Equal(t, entities.PartNumber("PN1"), seal.PartNumber)
	assert.Equal(t, entities.Quantity(3), seal.Shortage)
	assert.Equal(t, entities.AlertInTransitCovers, seal.LogisticsAlert)

	washer := result.Requirements[1]
	assert.Equal(t, entities.StatusOK, washer.Status)

	pin := result.Requirements[2]
	assert.Equal(t, entities.Quantity(1), pin.QuantityOnHand)
	assert.Equal(t, entities.Quantity(3), pin.RequiredQuantity)
	assert.Equal(t, entities.Quantity(2), pin.Shortage)
	assert.Equal(t, entities.AlertInTransitInsufficient, pin.LogisticsAlert)
	assert.Equal(t, "B1, B2", pin.Bins())

	assert.Equal(t, 3, result.Summary.Rows)
	assert.Equal(t, 2, result.Summary.ItemsShort)
	assert.Equal(t, entities.Quantity(5), result.Summary.TotalShortage)
	assert.Len(t, result.NeedsOrderRows(), 2)
}

func TestSession_PlanEmptyOutcomes(t *testing.T) {
	s, _, stockPath, tasksPath := newTestSession(t)
	_, err := s.LoadStock(stockPath)
	require.NoError(t, err)
	_, err = s.LoadTasks(tasksPath)
	require.NoError(t, err)

	result, err := s.Plan(context.Background(), entities.Date{Year: 2030, Month: time.May, Day: 1})
	require.NoError(t, err)
	assert.Equal(t, dto.NoTasksScheduled, result.Outcome)
	assert.Empty(t, result.Requirements)
}

func TestSession_MemoizesUnchangedFiles(t *testing.T) {
	s, loader, stockPath, tasksPath := newTestSession(t)

	_, err := s.LoadStock(stockPath)
	require.NoError(t, err)
	_, err = s.LoadStock(stockPath)
	require.NoError(t, err)
	assert.Equal(t, 1, loader.stockParses)

	_, err = s.LoadTasks(tasksPath)
	require.NoError(t, err)
	_, err = s.LoadTasks(tasksPath)
	require.NoError(t, err)
	assert.Equal(t, 1, loader.taskParses)

	// a changed file is parsed again and replaces the table
	require.NoError(t, os.WriteFile(stockPath, []byte("Mne_Dash8,m_e,QOH,required_part_quantity\n27-05,PN9,0,1\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(stockPath, later, later))

	table, err := s.LoadStock(stockPath)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.stockParses)
	require.Len(t, table.Records, 1)

	result, err := s.Catalog(context.Background(), dto.CatalogFilter{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, entities.PartNumber("PN9"), result.Items[0].PartNumber)
}

func TestSession_FailedLoadKeepsPreviousTable(t *testing.T) {
	s, _, stockPath, _ := newTestSession(t)
	_, err := s.LoadStock(stockPath)
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("foo,bar\n1,2\n"), 0o644))
	_, err = s.LoadStock(bad)
	assert.ErrorIs(t, err, csv.ErrNoRecognizedColumns)

	result, err := s.Catalog(context.Background(), dto.CatalogFilter{})
	require.NoError(t, err)
	assert.Len(t, result.Items, 6)
}

func TestSession_CatalogMissingColumn(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	path := filepath.Join(t.TempDir(), "stock.csv")
	require.NoError(t, os.WriteFile(path, []byte("Mne_Dash8,m_e,QOH\n27-05,PN1,1\n"), 0o644))
	_, err := s.LoadStock(path)
	require.NoError(t, err)

	_, err = s.Catalog(context.Background(), dto.CatalogFilter{Description: "seal"})
	assert.ErrorIs(t, err, csv.ErrInsufficientColumns)

	result, err := s.Catalog(context.Background(), dto.CatalogFilter{TaskCode: "27"})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

func TestSession_DatesCodesAndDiagnostics(t *testing.T) {
	s, _, stockPath, tasksPath := newTestSession(t)
	_, err := s.LoadStock(stockPath)
	require.NoError(t, err)
	_, err = s.LoadTasks(tasksPath)
	require.NoError(t, err)

	dates, err := s.AvailableDates()
	require.NoError(t, err)
	assert.Equal(t, []entities.Date{
		testhelpers.HangarDate,
		{Year: 2024, Month: time.January, Day: 11},
	}, dates)

	codes, err := s.TaskCodes("-10")
	require.NoError(t, err)
	assert.Equal(t, []entities.TaskCode{"32-10"}, codes)

	validation, err := s.Validate()
	require.NoError(t, err)
	assert.True(t, validation.HasWarnings())
	assert.Contains(t, validation.UnmatchedTaskKeys, "50-00")
}

func TestSession_EventsFeedSubscribers(t *testing.T) {
	store := events.NewInMemoryEventStore(nil)
	var types []string
	require.NoError(t, store.Subscribe(events.AllSessionEvents, &events.HandlerFunc{
		Types: events.AllSessionEvents,
		Fn: func(e events.Event) error {
			types = append(types, e.Type())
			return nil
		},
	}))

	stockPath, tasksPath, err := testhelpers.WriteHangarFiles(t.TempDir())
	require.NoError(t, err)
	s := New(csv.NewLoader(config.Default().Columns), services.DefaultKeyOptions(), WithEventStore(store))

	_, err = s.LoadStock(stockPath)
	require.NoError(t, err)
	_, err = s.LoadTasks(tasksPath)
	require.NoError(t, err)
	plan, err := s.Plan(context.Background(), testhelpers.HangarDate)
	require.NoError(t, err)
	_, err = s.Catalog(context.Background(), dto.CatalogFilter{PartNumber: "pn1"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.StockLoadedEvent,
		events.ScheduleLoadedEvent,
		events.PlanComputedEvent,
		events.CatalogFilteredEvent,
	}, types)

	log, err := s.Events()
	require.NoError(t, err)
	require.Len(t, log, 4)
	computed := log[2].Data().(events.PlanComputed)
	assert.Equal(t, plan.RunID, computed.RunID)
	assert.Equal(t, "2024-01-10", computed.Date)
	assert.Equal(t, int64(5), computed.TotalShortage)
}

func TestSession_SnapshotPairsRowsWithTheirColumns(t *testing.T) {
	dir := t.TempDir()
	withDescription := filepath.Join(dir, "with_description.csv")
	withoutDescription := filepath.Join(dir, "without_description.csv")
	require.NoError(t, os.WriteFile(withDescription, []byte("Mne_Dash8,m_e,description,QOH\nAA-1,PN1,Seal,1\nAA-2,PN2,Bolt,2\n"), 0o644))
	require.NoError(t, os.WriteFile(withoutDescription, []byte("Mne_Dash8,m_e,QOH\nBB-1,PN1,1\n"), 0o644))

	s := New(csv.NewLoader(config.Default().Columns), services.DefaultKeyOptions())
	_, err := s.LoadStock(withDescription)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			path := withDescription
			if i%2 == 0 {
				path = withoutDescription
			}
			if _, err := s.LoadStock(path); err != nil {
				t.Errorf("LoadStock failed: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				stock, cols, err := s.stockSnapshot()
				if err != nil {
					t.Errorf("stockSnapshot failed: %v", err)
					return
				}
				wantPrefix := "BB-"
				if cols.Has(csv.ColDescription) {
					wantPrefix = "AA-"
				}
				for _, record := range stock {
					if !strings.HasPrefix(string(record.TaskCode), wantPrefix) {
						t.Errorf("rows of one load paired with columns of another: %s with %v", record.TaskCode, cols)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
