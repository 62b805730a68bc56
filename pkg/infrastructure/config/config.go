package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/vsinha/shortfall/pkg/domain/services"
)

// EnvPrefix prefixes environment overrides, e.g. SHORTFALL_LOG_LEVEL=debug
const EnvPrefix = "SHORTFALL"

type Config struct {
	Keys    services.KeyOptions `mapstructure:"keys"`
	Columns ColumnsConfig       `mapstructure:"columns"`
	Report  ReportConfig        `mapstructure:"report"`
	Output  OutputConfig        `mapstructure:"output"`
	Log     LogConfig           `mapstructure:"log"`
	Metrics MetricsConfig       `mapstructure:"metrics"`
}

// ColumnsConfig lists the accepted header aliases of every logical column.
// Headers are matched case-, accent- and punctuation-insensitively.
type ColumnsConfig struct {
	Stock StockColumns `mapstructure:"stock"`
	Tasks TaskColumns  `mapstructure:"tasks"`
}

type StockColumns struct {
	TaskCode          []string `mapstructure:"task_code"`
	PartNumber        []string `mapstructure:"part_number"`
	Description       []string `mapstructure:"description"`
	QuantityOnHand    []string `mapstructure:"quantity_on_hand"`
	RequiredQuantity  []string `mapstructure:"required_quantity"`
	OpenOrderQuantity []string `mapstructure:"open_order_quantity"`
	InTransitQuantity []string `mapstructure:"in_transit_quantity"`
	RequisitionNote   []string `mapstructure:"requisition_note"`
	BinLocation       []string `mapstructure:"bin_location"`
}

type TaskColumns struct {
	TaskCode           []string `mapstructure:"task_code"`
	TaskDescription    []string `mapstructure:"task_description"`
	PackageDescription []string `mapstructure:"package_description"`
	ScheduledDate      []string `mapstructure:"scheduled_date"`
}

type ReportConfig struct {
	// Mode is plan, catalog or dates
	Mode string `mapstructure:"mode"`
	// Sheet selects the worksheet when an input is a workbook; empty means the first one
	Sheet string `mapstructure:"sheet"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
	// StyleRowLimit skips spreadsheet and HTML highlighting above this many rows; 0 disables styling
	StyleRowLimit int `mapstructure:"style_row_limit"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	// TextFile, when set, receives the run's metrics in Prometheus text format
	TextFile string `mapstructure:"textfile"`
}

// Load reads configuration from path, if given, on top of built-in defaults.
// Environment variables prefixed with SHORTFALL_ override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

// Default returns the built-in configuration
func Default() *Config {
	c, err := Load("")
	if err != nil {
		// defaults are static and always valid
		panic(err)
	}
	return c
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Report.Mode {
	case "plan", "catalog", "dates":
	default:
		return fmt.Errorf("unsupported mode: %s (expected plan, catalog or dates)", c.Report.Mode)
	}
	switch c.Output.Format {
	case "text", "json", "csv", "xlsx", "html":
	default:
		return fmt.Errorf("unsupported output format: %s (expected text, json, csv, xlsx or html)", c.Output.Format)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s (expected console or json)", c.Log.Format)
	}
	if c.Output.StyleRowLimit < 0 {
		return fmt.Errorf("style_row_limit cannot be negative, got %d", c.Output.StyleRowLimit)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("keys.preserve_hyphens", true)
	v.SetDefault("keys.preserve_leading_zeros", true)

	v.SetDefault("columns.stock.task_code", []string{"Mne_Dash8", "mne_dash8", "mne_number", "task_code", "mne"})
	v.SetDefault("columns.stock.part_number", []string{"m_e", "part_number", "pn", "manufacturer_part_number"})
	v.SetDefault("columns.stock.description", []string{"description", "descripcion", "part_description"})
	v.SetDefault("columns.stock.quantity_on_hand", []string{"QOH", "quantity_on_hand", "stock", "on_hand"})
	v.SetDefault("columns.stock.required_quantity", []string{"required_part_quantity", "required_quantity", "required", "qty_required"})
	v.SetDefault("columns.stock.open_order_quantity", []string{"open_order_quantity", "open_orders", "on_order", "qty_on_order"})
	v.SetDefault("columns.stock.in_transit_quantity", []string{"in_transit_quantity", "in_transit", "transit", "en_transito"})
	v.SetDefault("columns.stock.requisition_note", []string{"requisition", "requisition_note", "requisicion", "req"})
	v.SetDefault("columns.stock.bin_location", []string{"bin", "bin_location", "location", "ubicacion"})

	v.SetDefault("columns.tasks.task_code", []string{"mne_number", "Mne_Dash8", "task_code", "mne"})
	v.SetDefault("columns.tasks.task_description", []string{"mne_description", "task_description", "description"})
	v.SetDefault("columns.tasks.package_description", []string{"package_description", "package", "paquete"})
	v.SetDefault("columns.tasks.scheduled_date", []string{"scheduled_date", "date", "fecha", "due_date"})

	v.SetDefault("report.mode", "plan")
	v.SetDefault("report.sheet", "")

	v.SetDefault("output.format", "text")
	v.SetDefault("output.dir", "")
	v.SetDefault("output.style_row_limit", 5000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("metrics.textfile", "")
}
