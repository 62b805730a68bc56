package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/shortfall/pkg/infrastructure/events"
)

const namespace = "shortfall"

// Recorder turns session events into Prometheus metrics on a private registry
type Recorder struct {
	registry *prometheus.Registry

	loads          *prometheus.CounterVec
	rowsLoaded     *prometheus.GaugeVec
	defaultedCells prometheus.Gauge
	undatedTasks   prometheus.Gauge
	reports        *prometheus.CounterVec
	reportRows     *prometheus.GaugeVec
	itemsShort     *prometheus.GaugeVec
	totalShortage  *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_loaded_total",
			Help:      "Input tables loaded, by table and whether the parse was reused.",
		}, []string{"table", "cached"}),
		rowsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_loaded",
			Help:      "Rows in the most recently loaded table.",
		}, []string{"table"}),
		defaultedCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "defaulted_cells",
			Help:      "Unparsable numeric stock cells read as 0 in the current ledger.",
		}),
		undatedTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "undated_tasks",
			Help:      "Tasks without a usable scheduled date in the current schedule.",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Reports computed, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		reportRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_rows",
			Help:      "Rows in the most recent report.",
		}, []string{"kind"}),
		itemsShort: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items_short",
			Help:      "Rows with a positive shortage in the most recent report.",
		}, []string{"kind"}),
		totalShortage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_shortage",
			Help:      "Summed shortage of the most recent report.",
		}, []string{"kind"}),
	}

	r.registry.MustRegister(
		r.loads,
		r.rowsLoaded,
		r.defaultedCells,
		r.undatedTasks,
		r.reports,
		r.reportRows,
		r.itemsShort,
		r.totalShortage,
	)
	return r
}

var _ events.EventHandler = (*Recorder)(nil)

// Registry exposes the recorder's registry for gathering
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) CanHandle(eventType string) bool {
	for _, t := range events.AllSessionEvents {
		if t == eventType {
			return true
		}
	}
	return false
}

func (r *Recorder) Handle(event events.Event) error {
	switch data := event.Data().(type) {
	case events.StockLoaded:
		r.loads.WithLabelValues("stock", cachedLabel(data.Cached)).Inc()
		r.rowsLoaded.WithLabelValues("stock").Set(float64(data.Rows))
		r.defaultedCells.Set(float64(data.DefaultedCells))
	case events.ScheduleLoaded:
		r.loads.WithLabelValues("tasks", cachedLabel(data.Cached)).Inc()
		r.rowsLoaded.WithLabelValues("tasks").Set(float64(data.Rows))
		r.undatedTasks.Set(float64(data.UndatedRows))
	case events.PlanComputed:
		r.reports.WithLabelValues("plan", data.Outcome).Inc()
		r.reportRows.WithLabelValues("plan").Set(float64(data.Rows))
		r.itemsShort.WithLabelValues("plan").Set(float64(data.ItemsShort))
		r.totalShortage.WithLabelValues("plan").Set(float64(data.TotalShortage))
	case events.CatalogFiltered:
		r.reports.WithLabelValues("catalog", "FILTERED").Inc()
		r.reportRows.WithLabelValues("catalog").Set(float64(data.Rows))
		r.itemsShort.WithLabelValues("catalog").Set(float64(data.ItemsShort))
		r.totalShortage.WithLabelValues("catalog").Set(float64(data.TotalShortage))
	default:
		return fmt.Errorf("unexpected payload %T for event %s", data, event.Type())
	}
	return nil
}

// WriteTextfile writes every metric to filename in the Prometheus text format,
// for pickup by a node exporter textfile collector
func (r *Recorder) WriteTextfile(filename string) error {
	if err := prometheus.WriteToTextfile(filename, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", filename, err)
	}
	return nil
}

func cachedLabel(cached bool) string {
	if cached {
		return "true"
	}
	return "false"
}
