package requirements

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/domain/services"
)

// Planner runs the normalize, resolve and aggregate pipeline for one selection
type Planner struct {
	normalizer *services.KeyNormalizer
	resolver   *Resolver
	aggregator *Aggregator
	now        func() time.Time
}

// NewPlanner creates a planner whose joins follow options
func NewPlanner(options services.KeyOptions) *Planner {
	normalizer := services.NewKeyNormalizer(options)
	return &Planner{
		normalizer: normalizer,
		resolver:   NewResolver(normalizer),
		aggregator: NewAggregator(normalizer),
		now:        time.Now,
	}
}

// Normalizer exposes the key normalizer shared by the resolver and aggregator
func (p *Planner) Normalizer() *services.KeyNormalizer {
	return p.normalizer
}

// Plan computes the material requirements of the tasks scheduled on date.
// An empty result is not an error; Outcome tells the two empty cases apart.
func (p *Planner) Plan(ctx context.Context, stock []entities.StockRecord, tasks []entities.TaskRecord, date entities.Date) (*dto.PlanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("plan for %s: %w", date, err)
	}

	result := &dto.PlanResult{
		RunID:        uuid.NewString(),
		Date:         date,
		Outcome:      dto.NoTasksScheduled,
		Tasks:        TasksOn(tasks, date),
		Requirements: []entities.MaterialRequirement{},
		Summary:      dto.Summary{ByAlert: map[string]int{}},
		ComputedAt:   p.now(),
	}
	if len(result.Tasks) == 0 {
		return result, nil
	}

	resolution := p.resolver.ResolveDetailed(stock, result.Tasks)
	result.DuplicatesRemoved = resolution.DuplicatesRemoved
	result.UnmatchedTaskKeys = resolution.UnmatchedTaskKeys
	result.Requirements = p.aggregator.Aggregate(resolution.Candidates)

	if len(result.Requirements) == 0 {
		result.Outcome = dto.NoMatchingStock
		return result, nil
	}
	result.Outcome = dto.RequirementsFound

	for _, req := range result.Requirements {
		result.Summary.Add(req.Shortage, req.InTransitQuantity, req.LogisticsAlert)
	}
	return result, nil
}

// Catalog computes the whole-catalog view for filter
func (p *Planner) Catalog(ctx context.Context, stock []entities.StockRecord, filter dto.CatalogFilter) (*dto.CatalogResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	result := &dto.CatalogResult{
		RunID:      uuid.NewString(),
		Filter:     filter,
		Items:      FilterCatalog(stock, filter),
		Summary:    dto.Summary{ByAlert: map[string]int{}},
		ComputedAt: p.now(),
	}
	for _, item := range result.Items {
		result.Summary.Add(item.Shortage, item.InTransitQuantity, item.LogisticsAlert)
	}
	return result, nil
}

// TasksOn returns the tasks scheduled on date in schedule order
func TasksOn(tasks []entities.TaskRecord, date entities.Date) []entities.TaskRecord {
	out := make([]entities.TaskRecord, 0)
	for _, task := range tasks {
		if task.ScheduledOn(date) {
			out = append(out, task)
		}
	}
	return out
}

// AvailableDates returns the distinct non-missing scheduled dates, ascending
func AvailableDates(tasks []entities.TaskRecord) []entities.Date {
	seen := make(map[entities.Date]bool)
	dates := make([]entities.Date, 0)
	for _, task := range tasks {
		if task.ScheduledDate.IsZero() || seen[task.ScheduledDate] {
			continue
		}
		seen[task.ScheduledDate] = true
		dates = append(dates, task.ScheduledDate)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
