package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.True(t, c.Keys.PreserveHyphens)
	assert.True(t, c.Keys.PreserveLeadingZeros)
	assert.Equal(t, "plan", c.Report.Mode)
	assert.Equal(t, "text", c.Output.Format)
	assert.Equal(t, 5000, c.Output.StyleRowLimit)
	assert.Equal(t, "info", c.Log.Level)
	assert.Contains(t, c.Columns.Stock.TaskCode, "Mne_Dash8")
	assert.Contains(t, c.Columns.Tasks.TaskCode, "mne_number")
	assert.Contains(t, c.Columns.Stock.QuantityOnHand, "QOH")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shortfall.yaml")
	body := `
keys:
  preserve_hyphens: false
  preserve_leading_zeros: false
columns:
  stock:
    task_code: [card_code]
output:
  format: xlsx
  style_row_limit: 10
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.False(t, c.Keys.PreserveHyphens)
	assert.False(t, c.Keys.PreserveLeadingZeros)
	assert.Equal(t, []string{"card_code"}, c.Columns.Stock.TaskCode)
	assert.Contains(t, c.Columns.Stock.PartNumber, "m_e")
	assert.Equal(t, "xlsx", c.Output.Format)
	assert.Equal(t, 10, c.Output.StyleRowLimit)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SHORTFALL_OUTPUT_FORMAT", "json")
	t.Setenv("SHORTFALL_LOG_LEVEL", "warn")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Output.Format)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: pdf\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format: pdf")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
