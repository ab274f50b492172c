package writer

import (
	"math"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/gdsii/errors"
	"github.com/wippyai/gdsii/naming"
)

// ConfigEnv names the environment variable LoadConfig falls back to.
const ConfigEnv = "GDSII_CONFIG"

// NoTextLayer disables export labels.
const NoTextLayer = -1

// Config controls one GDSII write.
type Config struct {
	// Logger receives diagnostics. Defaults to the package logger.
	Logger *zap.Logger `yaml:"-"`

	// Metrics, when set, counts records, drops and renames.
	Metrics *Metrics `yaml:"-"`

	// Now stamps BGNLIB and BGNSTR. Defaults to time.Now.
	Now func() time.Time `yaml:"-"`

	// Foundry selects the technology's layer map; empty uses its default.
	Foundry string `yaml:"foundry"`

	// MaxNameLength bounds structure names.
	MaxNameLength int `yaml:"max_name_length"`

	// DefaultTextLayer is the GDS layer for export labels when the
	// technology defines none. NoTextLayer disables export labels.
	DefaultTextLayer int `yaml:"default_text_layer"`

	// UpperCase folds every written name to upper case.
	UpperCase bool `yaml:"upper_case"`

	// WriteExportPins writes a TEXT element for each top-cell export.
	WriteExportPins bool `yaml:"write_export_pins"`

	// ConvertBrackets replaces '[' and ']' in export labels with '_'.
	ConvertBrackets bool `yaml:"convert_brackets"`

	// CollapseVddGnd shortens vdd_*/gnd_* export labels to vdd/gnd.
	CollapseVddGnd bool `yaml:"collapse_vdd_gnd"`

	// MergeBoxes is passed to the geometry source.
	MergeBoxes bool `yaml:"merge_boxes"`
}

// DefaultConfig returns the default write settings.
func DefaultConfig() Config {
	return Config{
		MaxNameLength:    naming.DefaultMaxLen,
		DefaultTextLayer: NoTextLayer,
	}
}

// LoadConfig reads a YAML config over the defaults. An empty path falls
// back to $GDSII_CONFIG; with neither set the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = os.Getenv(ConfigEnv)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Load("read config "+path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Load("parse config "+path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MaxNameLength < 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.MaxNameLength).
			Detail("max_name_length must not be negative").
			Build()
	}
	if c.MaxNameLength > 0 && c.MaxNameLength < naming.MinMaxLen {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.MaxNameLength).
			Detail("max_name_length must be at least %d", naming.MinMaxLen).
			Build()
	}
	if c.DefaultTextLayer < NoTextLayer || c.DefaultTextLayer > math.MaxUint16 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.DefaultTextLayer).
			Detail("default_text_layer %d out of range", c.DefaultTextLayer).
			Build()
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxNameLength == 0 {
		c.MaxNameLength = naming.DefaultMaxLen
	}
	if c.Logger == nil {
		c.Logger = Logger()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

func (c Config) exportLabels() bool {
	return c.DefaultTextLayer >= 0 && c.WriteExportPins
}
