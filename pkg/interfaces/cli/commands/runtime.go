package commands

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/vsinha/shortfall/pkg/application/services/session"
	"github.com/vsinha/shortfall/pkg/infrastructure/config"
	"github.com/vsinha/shortfall/pkg/infrastructure/events"
	"github.com/vsinha/shortfall/pkg/infrastructure/logging"
	"github.com/vsinha/shortfall/pkg/infrastructure/metrics"
	"github.com/vsinha/shortfall/pkg/infrastructure/repositories/csv"
)

// Overrides are command-line values that win over the config file when set
type Overrides struct {
	Mode      string
	Format    string
	OutputDir string
	Sheet     string
	LogLevel  string
}

// loadSettings reads the config file, if any, and applies the overrides
func loadSettings(path string, o Overrides) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if o.Mode != "" {
		cfg.Report.Mode = o.Mode
	}
	if o.Format != "" {
		cfg.Output.Format = o.Format
	}
	if o.OutputDir != "" {
		cfg.Output.Dir = o.OutputDir
	}
	if o.Sheet != "" {
		cfg.Report.Sheet = o.Sheet
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// runtime bundles what every command needs to work with a session
type runtime struct {
	settings *config.Config
	logger   *zap.Logger
	session  *session.Session
	recorder *metrics.Recorder
}

func newRuntime(settings *config.Config) (*runtime, error) {
	logger, err := logging.New(settings.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	recorder := metrics.NewRecorder()
	store := events.NewInMemoryEventStore(logger)
	if err := store.Subscribe(events.AllSessionEvents, recorder); err != nil {
		return nil, fmt.Errorf("failed to subscribe metrics: %w", err)
	}

	loader := csv.NewLoader(settings.Columns,
		csv.WithLogger(logger),
		csv.WithSheet(settings.Report.Sheet))

	sess := session.New(loader, settings.Keys,
		session.WithEventStore(store),
		session.WithLogger(logger))

	return &runtime{
		settings: settings,
		logger:   logger,
		session:  sess,
		recorder: recorder,
	}, nil
}

// warnDiagnostics logs the cross-table diagnostics of the loaded tables
func (r *runtime) warnDiagnostics() {
	validation, err := r.session.Validate()
	if err != nil {
		r.logger.Debug("diagnostics skipped", zap.Error(err))
		return
	}
	for _, warning := range validation.Warnings {
		r.logger.Warn(warning)
	}
}

// close flushes the logger and writes the metrics textfile, if configured
func (r *runtime) close() error {
	_ = r.logger.Sync()
	if r.settings.Metrics.TextFile == "" {
		return nil
	}
	return r.recorder.WriteTextfile(r.settings.Metrics.TextFile)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
