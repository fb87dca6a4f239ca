package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/cwbudde/algo-psd/characteristic"
	"github.com/cwbudde/algo-psd/condition"
	"github.com/cwbudde/algo-psd/discriminate"
	"github.com/cwbudde/algo-psd/feature"
	"github.com/cwbudde/algo-psd/filter"
	"github.com/cwbudde/algo-psd/fit"
	"github.com/cwbudde/algo-psd/ingest"
	"github.com/cwbudde/algo-psd/pulse"
	"github.com/cwbudde/algo-psd/store"
	"github.com/cwbudde/algo-psd/store/sqlstore"
)

// ErrInvalidConfig wraps every configuration problem found by Validate.
var ErrInvalidConfig = errors.New("pipeline: invalid configuration")

// GroupConfig names a pulse population and where its tables live.
type GroupConfig struct {
	Name   string `json:"name"`
	Dir    string `json:"dir"`
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

// SQLConfig selects a SQL sink instead of flat files. For mysql the DSN
// may be left empty and built from the connection fields.
type SQLConfig struct {
	Driver string `json:"driver"` // "mysql" or "sqlite"
	DSN    string `json:"dsn"`

	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"pass"`
	Database string `json:"dbname"`
}

// dataSource returns the DSN handed to the driver.
func (s SQLConfig) dataSource() string {
	if s.DSN != "" || s.Driver != "mysql" {
		return s.DSN
	}

	port := s.Port
	if port == 0 {
		port = 3306
	}

	return sqlstore.MySQLDSN(s.User, s.Password, s.Host, port, s.Database)
}

// Steps toggles the pipeline stages.
type Steps struct {
	Process        bool `json:"process"`
	Load           bool `json:"load"`
	Filter         bool `json:"filter"`
	Characteristic bool `json:"characteristic"`
	Discriminate   bool `json:"discriminate"`
	Histogram      bool `json:"histogram"`
}

// Config is the full run configuration.
type Config struct {
	SmoothWidth            int     `json:"smooth_width"`
	Trim                   bool    `json:"trim"`
	SampleOutlierThreshold float64 `json:"sample_outlier_threshold"`
	Exponentials           int     `json:"exponentials"`
	UpperBoundAmplitude    float64 `json:"upper_bound_amplitude"` // 0 means unbounded
	Fit                    bool    `json:"fit"`

	OutlierThresholds []filter.Threshold        `json:"outlier_thresholds"`
	RangeFilters      map[string][]filter.Range `json:"range_filters"`

	TimeStep          float64 `json:"time_step"`
	Truncate          int     `json:"truncate"`
	UseFittedFunction bool    `json:"use_fitted_function"`
	Polarity          string  `json:"polarity"`
	ClassA            string  `json:"class_a"`
	ClassB            string  `json:"class_b"`

	Workers           int      `json:"workers"`
	MaxRecordsPerFile int      `json:"max_records_per_file"`
	Delimiter         string   `json:"delimiter"`
	Layout            string   `json:"layout"`
	FieldsToSave      []string `json:"fields_to_save"` // empty: trimmed plus the scalar features
	HistogramBins     int      `json:"histogram_bins"`

	TimeColumn    string   `json:"time_column"`
	IgnoreColumns []string `json:"ignore_columns"`
	SkipRows      int      `json:"skip_rows"`

	Groups    []GroupConfig `json:"groups"`
	OutputDir string        `json:"output_dir"`
	SQL       *SQLConfig    `json:"sql"`
	Steps     Steps         `json:"steps"`
	Verbosity int           `json:"verbosity"`
}

// DefaultConfig returns the settings used for keys absent from a
// configuration file.
func DefaultConfig() Config {
	return Config{
		SmoothWidth:       1,
		Trim:              true,
		Exponentials:      1,
		Fit:               true,
		TimeStep:          1,
		Polarity:          "auto",
		Workers:           1,
		MaxRecordsPerFile: 1000,
		Delimiter:         ",",
		Layout:            "rows",
		HistogramBins:     50,
		TimeColumn:        "time",
		OutputDir:         "output",
		Steps: Steps{
			Process:        true,
			Filter:         true,
			Characteristic: true,
			Discriminate:   true,
			Histogram:      true,
		},
	}
}

// LoadConfig reads a JSON configuration on top of DefaultConfig.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("pipeline: parse %s: %w", filename, err)
	}

	return config, nil
}

// Validate reports the first configuration error. It runs before any
// computation so a bad setting never costs a partial run.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if err := fit.ValidateTerms(c.Exponentials); err != nil {
		return invalid("%v", err)
	}
	if err := c.conditionOptions().Validate(); err != nil {
		return invalid("%v", err)
	}
	if c.UpperBoundAmplitude < 0 || math.IsNaN(c.UpperBoundAmplitude) {
		return invalid("upper_bound_amplitude must be >= 0")
	}
	if c.Workers < 1 {
		return invalid("workers must be >= 1")
	}
	if c.Delimiter == "" {
		return invalid("empty delimiter")
	}
	if _, err := store.ParseLayout(c.Layout); err != nil {
		return invalid("%v", err)
	}
	if _, err := discriminate.ParsePolarity(c.Polarity); err != nil {
		return invalid("%v", err)
	}
	if c.SQL != nil {
		switch c.SQL.Driver {
		case "sqlite":
			if c.SQL.DSN == "" {
				return invalid("sqlite needs a dsn")
			}
		case "mysql":
			if c.SQL.DSN == "" && (c.SQL.Host == "" || c.SQL.Database == "") {
				return invalid("mysql needs a dsn or host and dbname")
			}
		default:
			return invalid("unsupported sql driver %q", c.SQL.Driver)
		}
	}

	for _, name := range c.fieldsToSave() {
		if _, err := pulse.ParseField(name); err != nil {
			return invalid("fields_to_save: %v", err)
		}
	}

	if err := filter.Validate(c.OutlierThresholds, nil); err != nil {
		return invalid("%v", err)
	}

	if len(c.Groups) == 0 {
		return invalid("no groups configured")
	}

	names := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.Name == "" {
			return invalid("group without a name")
		}
		if names[g.Name] {
			return invalid("duplicate group %q", g.Name)
		}
		if c.Steps.Process && g.Dir == "" {
			return invalid("group %q has no dir", g.Name)
		}
		names[g.Name] = true
	}

	for group, ranges := range c.RangeFilters {
		if !names[group] {
			return invalid("range_filters names unknown group %q", group)
		}
		if err := filter.Validate(nil, ranges); err != nil {
			return invalid("%v", err)
		}
	}

	if c.Steps.Filter {
		available := c.filterableFields()
		for _, name := range c.filterFields() {
			if !available[name] {
				return invalid("filter on %q, which this run does not produce", name)
			}
		}
	}

	if !c.Steps.Process && !c.Steps.Load &&
		(c.Steps.Filter || c.Steps.Characteristic || c.Steps.Discriminate || c.Steps.Histogram) {
		return invalid("later steps need process or load enabled")
	}

	if c.Steps.Discriminate {
		if c.ClassA == "" || c.ClassB == "" {
			return invalid("discrimination needs class_a and class_b")
		}
		if c.ClassA == c.ClassB {
			return invalid("class_a and class_b are both %q", c.ClassA)
		}
		if !names[c.ClassA] || !names[c.ClassB] {
			return invalid("class_a/class_b must name configured groups")
		}
	}

	if c.Steps.Histogram && c.HistogramBins < 1 {
		return invalid("histogram_bins must be >= 1")
	}

	return nil
}

func (c Config) upperBound() float64 {
	if c.UpperBoundAmplitude <= 0 {
		return math.Inf(1)
	}

	return c.UpperBoundAmplitude
}

func (c Config) conditionOptions() condition.Options {
	return condition.Options{
		SmoothWidth:      c.SmoothWidth,
		Trim:             c.Trim,
		OutlierThreshold: c.SampleOutlierThreshold,
	}
}

func (c Config) featureOptions() feature.Options {
	return feature.Options{
		Exponentials:        c.Exponentials,
		UpperBoundAmplitude: c.upperBound(),
		Fit:                 c.Fit,
	}
}

func (c Config) characteristicOptions() characteristic.Options {
	return characteristic.Options{
		Truncate:     c.Truncate,
		TimeStep:     c.TimeStep,
		Fit:          c.Fit || c.UseFittedFunction,
		Exponentials: c.Exponentials,
		UpperBound:   c.upperBound(),
	}
}

func (c Config) discriminateOptions() discriminate.Options {
	pol, _ := discriminate.ParsePolarity(c.Polarity)

	return discriminate.Options{
		UseFit:   c.UseFittedFunction,
		Polarity: pol,
		TimeStep: c.TimeStep,
		Truncate: c.Truncate,
	}
}

func (c Config) storeOptions(log *slog.Logger) store.Options {
	layout, _ := store.ParseLayout(c.Layout)

	return store.Options{
		MaxRecordsPerFile: c.MaxRecordsPerFile,
		Delimiter:         c.Delimiter,
		Layout:            layout,
		Logger:            log,
	}
}

func (c Config) ingestOptions(log *slog.Logger) (ingest.TableOptions, ingest.Options) {
	return ingest.TableOptions{Delimiter: c.Delimiter, SkipRows: c.SkipRows, Logger: log},
		ingest.Options{TimeColumn: c.TimeColumn, Ignore: c.IgnoreColumns, Logger: log}
}

// fieldsToSave returns the configured fields, or the trimmed samples plus
// every scalar feature the run produces.
func (c Config) fieldsToSave() []string {
	if len(c.FieldsToSave) > 0 {
		return c.FieldsToSave
	}

	fields := []string{pulse.FieldTrimmed}
	if c.Fit {
		return append(fields, pulse.ScalarFields(c.Exponentials)...)
	}

	return append(fields, pulse.FieldIntegral)
}

// filterFields lists every field named by a threshold or range filter.
func (c Config) filterFields() []string {
	var names []string
	for _, th := range c.OutlierThresholds {
		names = append(names, th.Field)
	}
	for _, ranges := range c.RangeFilters {
		for _, rg := range ranges {
			names = append(names, rg.Field)
		}
	}

	return names
}

// reloadsShapeIndicator reports whether stored shape indicators are read
// back: only a run that neither processes nor discriminates uses them.
func (c Config) reloadsShapeIndicator() bool {
	return c.Steps.Load && !c.Steps.Process && !c.Steps.Discriminate
}

// filterableFields returns the scalars records carry when the filter stage
// runs. Filtering on anything else would remove every record.
func (c Config) filterableFields() map[string]bool {
	produced := map[string]bool{pulse.FieldIntegral: true}
	if c.Fit {
		for _, name := range pulse.ScalarFields(c.Exponentials) {
			produced[name] = true
		}
	}

	if !c.Steps.Load {
		return produced
	}

	loaded := make(map[string]bool)
	for _, name := range c.fieldsToSave() {
		if pulse.IsArray(name) || (c.Steps.Process && !produced[name]) {
			continue
		}
		loaded[name] = true
	}
	if c.reloadsShapeIndicator() {
		loaded[pulse.FieldShapeIndicator] = true
	}

	return loaded
}

// histogramFields lists the scalars reported per group.
func (c Config) histogramFields() []string {
	fields := []string{pulse.FieldIntegral}
	if c.Fit {
		fields = pulse.ScalarFields(c.Exponentials)
	}

	return append(fields, pulse.FieldShapeIndicator)
}

func printConfiguration(c Config, logger *slog.Logger) {
	groups := make([]string, 0, len(c.Groups))
	for _, g := range c.Groups {
		groups = append(groups, g.Name)
	}

	logger.Info(fmt.Sprintf("Groups: %s", strings.Join(groups, ", ")), "module", "config")
	logger.Info(fmt.Sprintf("Output dir: %s", c.OutputDir), "module", "config")
	if c.SQL != nil {
		logger.Info(fmt.Sprintf("SQL driver: %s", c.SQL.Driver), "module", "config")
		if c.SQL.Host != "" {
			logger.Info(fmt.Sprintf("SQL host: %s, DB name: %s", c.SQL.Host, c.SQL.Database), "module", "config")
		}
	}
	logger.Info(fmt.Sprintf("Smoothing width: %d", c.SmoothWidth), "module", "config")
	logger.Info(fmt.Sprintf("Trim before minimum: %t", c.Trim), "module", "config")
	logger.Info(fmt.Sprintf("Sample outlier threshold: %g", c.SampleOutlierThreshold), "module", "config")
	logger.Info(fmt.Sprintf("Fit: %t", c.Fit), "module", "config")
	logger.Info(fmt.Sprintf("Exponentials: %d", c.Exponentials), "module", "config")
	logger.Info(fmt.Sprintf("Upper bound amplitude: %g", c.upperBound()), "module", "config")
	logger.Info(fmt.Sprintf("Outlier thresholds: %d", len(c.OutlierThresholds)), "module", "config")
	logger.Info(fmt.Sprintf("Classes: %s vs %s", c.ClassA, c.ClassB), "module", "config")
	logger.Info(fmt.Sprintf("Use fitted function: %t", c.UseFittedFunction), "module", "config")
	logger.Info(fmt.Sprintf("Polarity: %s", c.Polarity), "module", "config")
	logger.Info(fmt.Sprintf("Time step: %g", c.TimeStep), "module", "config")
	logger.Info(fmt.Sprintf("Truncate: %d", c.Truncate), "module", "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", c.Workers), "module", "config")
	logger.Info(fmt.Sprintf("Layout: %s", c.Layout), "module", "config")
	logger.Info(fmt.Sprintf("Fields to save: %s", strings.Join(c.fieldsToSave(), ", ")), "module", "config")
	logger.Info(fmt.Sprintf("Steps: %+v", c.Steps), "module", "config")
}
