package contract

import (
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/flowcast/schema"
)

// Default values for configuration.
const (
	DefaultNIn        = 4
	DefaultNOut       = 1
	DefaultSplitRatio = 0.80
	DefaultNIter      = 3
	DefaultCVSplits   = 5
	DefaultSeed       = 123
	DefaultTickets    = 1000
	DefaultPrecision  = 2
	MaxPrecision      = 4
)

// Distribution kinds accepted in the search section.
const (
	RandIntDistribution = "randint"
	UniformDistribution = "uniform"
	ChoiceDistribution  = "choice"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Distribution describes how the random search samples one parameter.
//
//   - randint draws an integer from [Low, High)
//   - uniform draws a float from [Loc, Loc+Scale]
//   - choice draws one of Values
type Distribution struct {
	Kind   string
	Low    float64
	High   float64
	Loc    float64
	Scale  float64
	Values []float64
}

// DistributionRaw is a distribution as written in the YAML config file.
type DistributionRaw struct {
	Type   string    `mapstructure:"type"`
	Low    float64   `mapstructure:"low"`
	High   float64   `mapstructure:"high"`
	Loc    float64   `mapstructure:"loc"`
	Scale  float64   `mapstructure:"scale"`
	Values []float64 `mapstructure:"values"`
}

// SearchRawInput holds the search space definitions from the YAML config file.
type SearchRawInput struct {
	Grid          map[string][]float64       `mapstructure:"grid"`
	Distributions map[string]DistributionRaw `mapstructure:"distributions"`
}

// Config holds the runtime configuration for a flowcast command.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath  string
	OutputFile string
	Output     schema.OutputMode
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	Workers    int
	Projects   []string
	Kinds      []schema.SeriesKind

	NIn        int
	NOut       int
	SplitRatio float64
	LastNDays  int // Keep forecast rows within this many days of each series' last row (0 = all)

	Strategy  schema.SearchStrategy
	Model     schema.ModelKind
	NIter     int
	CVSplits  int
	Seed      uint64
	Round     bool
	ReuseBest bool

	// FixedParams are used by the fixed strategy and as the base of every search candidate
	FixedParams schema.Params

	// Grid is the grid strategy's search space; nil means the model default
	Grid map[string][]float64

	// Distributions is the random strategy's search space; nil means the model default
	Distributions map[string]Distribution

	Tickets    int
	GenSeed    uint64
	GenEndDate time.Time

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile     string `mapstructure:"output-file"`
	Output         string `mapstructure:"output"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	Workers        int    `mapstructure:"workers"`
	Projects       string `mapstructure:"projects"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`

	// --- Fields from forecastCmd.Flags() ---
	Kinds      string  `mapstructure:"kinds"`
	NIn        int     `mapstructure:"n-in"`
	NOut       int     `mapstructure:"n-out"`
	SplitRatio float64 `mapstructure:"split-ratio"`
	LastNDays  int     `mapstructure:"last-n-days"`
	Strategy   string  `mapstructure:"strategy"`
	Model      string  `mapstructure:"model"`
	NIter      int     `mapstructure:"n-iter"`
	CVSplits   int     `mapstructure:"cv-splits"`
	Seed       uint64  `mapstructure:"seed"`
	Round      bool    `mapstructure:"round"`
	ReuseBest  bool    `mapstructure:"reuse-best"`
	Params     string  `mapstructure:"params"`

	// --- Fields from generateCmd.Flags() ---
	Tickets int    `mapstructure:"tickets"`
	GenSeed uint64 `mapstructure:"gen-seed"`
	GenEnd  string `mapstructure:"gen-end"`

	// --- Search space from config file ---
	Search SearchRawInput `mapstructure:"search"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Projects = slices.Clone(c.Projects)
	clone.Kinds = slices.Clone(c.Kinds)
	clone.FixedParams = c.FixedParams.Clone()
	if c.Grid != nil {
		clone.Grid = make(map[string][]float64, len(c.Grid))
		for k, v := range c.Grid {
			clone.Grid[k] = slices.Clone(v)
		}
	}
	if c.Distributions != nil {
		clone.Distributions = make(map[string]Distribution, len(c.Distributions))
		for k, v := range c.Distributions {
			v.Values = slices.Clone(v.Values)
			clone.Distributions[k] = v
		}
	}
	return &clone
}

// ConfigParams returns the settings of a forecast run as a flat map for the run store.
func (c *Config) ConfigParams() map[string]any {
	params := map[string]any{
		"n_in":        c.NIn,
		"n_out":       c.NOut,
		"split_ratio": c.SplitRatio,
		"strategy":    string(c.Strategy),
		"model":       string(c.Model),
		"n_iter":      c.NIter,
		"cv_splits":   c.CVSplits,
		"seed":        c.Seed,
		"round":       c.Round,
		"workers":     c.Workers,
		"input":       c.InputPath,
	}
	if len(c.FixedParams) > 0 {
		params["params"] = c.FixedParams.String()
	}
	return params
}

// WantsKind reports whether the series kind was selected.
func (c *Config) WantsKind(kind schema.SeriesKind) bool {
	return len(c.Kinds) == 0 || slices.Contains(c.Kinds, kind)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processWindowing(cfg, input); err != nil {
		return err
	}
	if err := processSearch(cfg, input); err != nil {
		return err
	}
	if err := processGenerator(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("run-db-connect: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runPath := cfg.RunDBConnect
		if runPath == "" {
			runPath = GetRunDBFilePath()
		}
		if cachePath == runPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, xlsx", input.Output)
	}
	if (cfg.Output == schema.ParquetOut || cfg.Output == schema.ExcelOut) && cfg.OutputFile == "" {
		return fmt.Errorf("output format '%s' requires --output-file", cfg.Output)
	}

	cfg.Projects = SplitList(input.Projects)

	kinds, err := ParseKinds(input.Kinds)
	if err != nil {
		return err
	}
	cfg.Kinds = kinds

	return validateBackendConfigs(cfg, input)
}

// processWindowing validates the lag window and train/test split settings.
func processWindowing(cfg *Config, input *ConfigRawInput) error {
	if input.NIn < 1 {
		return fmt.Errorf("n-in must be at least 1 (received %d)", input.NIn)
	}
	if input.NOut < 1 {
		return fmt.Errorf("n-out must be at least 1 (received %d)", input.NOut)
	}
	if input.SplitRatio <= 0 || input.SplitRatio >= 1 {
		return fmt.Errorf("split-ratio must lie strictly between 0 and 1 (received %g)", input.SplitRatio)
	}
	if input.LastNDays < 0 {
		return fmt.Errorf("last-n-days cannot be negative (received %d)", input.LastNDays)
	}
	cfg.NIn = input.NIn
	cfg.NOut = input.NOut
	cfg.SplitRatio = input.SplitRatio
	cfg.LastNDays = input.LastNDays
	cfg.Round = input.Round
	return nil
}

// processSearch validates the model, the strategy and the search space.
func processSearch(cfg *Config, input *ConfigRawInput) error {
	cfg.Model = schema.ModelKind(strings.ToLower(input.Model))
	if _, ok := schema.ValidModels[cfg.Model]; !ok {
		return fmt.Errorf("invalid model '%s'. must be forest, boost, ridge", input.Model)
	}

	cfg.Strategy = schema.SearchStrategy(strings.ToLower(input.Strategy))
	if _, ok := schema.ValidStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid strategy '%s'. must be fixed, grid, random", input.Strategy)
	}

	if input.NIter < 1 {
		return fmt.Errorf("n-iter must be at least 1 (received %d)", input.NIter)
	}
	if input.CVSplits < 2 {
		return fmt.Errorf("cv-splits must be at least 2 (received %d)", input.CVSplits)
	}
	cfg.NIter = input.NIter
	cfg.CVSplits = input.CVSplits
	cfg.Seed = input.Seed
	cfg.ReuseBest = input.ReuseBest

	params, err := schema.ParseParams(input.Params)
	if err != nil {
		return fmt.Errorf("invalid --params: %w", err)
	}
	cfg.FixedParams = params

	cfg.Grid = nil
	if len(input.Search.Grid) > 0 {
		cfg.Grid = make(map[string][]float64, len(input.Search.Grid))
		for _, name := range slices.Sorted(maps.Keys(input.Search.Grid)) {
			values := input.Search.Grid[name]
			if len(values) == 0 {
				return fmt.Errorf("grid parameter '%s' has no values", name)
			}
			cfg.Grid[name] = slices.Clone(values)
		}
	}

	cfg.Distributions = nil
	if len(input.Search.Distributions) > 0 {
		cfg.Distributions = make(map[string]Distribution, len(input.Search.Distributions))
		for _, name := range slices.Sorted(maps.Keys(input.Search.Distributions)) {
			dist, err := parseDistribution(input.Search.Distributions[name])
			if err != nil {
				return fmt.Errorf("distribution '%s': %w", name, err)
			}
			cfg.Distributions[name] = dist
		}
	}
	return nil
}

// parseDistribution validates a raw distribution definition.
func parseDistribution(raw DistributionRaw) (Distribution, error) {
	dist := Distribution{
		Kind:   strings.ToLower(strings.TrimSpace(raw.Type)),
		Low:    raw.Low,
		High:   raw.High,
		Loc:    raw.Loc,
		Scale:  raw.Scale,
		Values: slices.Clone(raw.Values),
	}
	switch dist.Kind {
	case RandIntDistribution:
		if dist.High <= dist.Low {
			return Distribution{}, fmt.Errorf("randint requires high > low (received low=%g high=%g)", dist.Low, dist.High)
		}
	case UniformDistribution:
		if dist.Scale <= 0 {
			return Distribution{}, fmt.Errorf("uniform requires scale > 0 (received %g)", dist.Scale)
		}
	case ChoiceDistribution:
		if len(dist.Values) == 0 {
			return Distribution{}, fmt.Errorf("choice requires at least one value")
		}
	default:
		return Distribution{}, fmt.Errorf("unknown type '%s'. must be randint, uniform, choice", raw.Type)
	}
	return dist, nil
}

// processGenerator validates the synthetic ticket generator settings.
func processGenerator(cfg *Config, input *ConfigRawInput) error {
	if input.Tickets < 1 {
		return fmt.Errorf("tickets must be at least 1 (received %d)", input.Tickets)
	}
	cfg.Tickets = input.Tickets
	cfg.GenSeed = input.GenSeed

	cfg.GenEndDate = schema.TruncateDay(time.Now())
	if input.GenEnd != "" {
		t, err := time.Parse(schema.DateFormat, input.GenEnd)
		if err != nil {
			return fmt.Errorf("invalid gen-end date '%s'. expected YYYY-MM-DD: %w", input.GenEnd, err)
		}
		cfg.GenEndDate = t
	}
	if !cfg.GenEndDate.After(schema.PIEpoch) {
		return fmt.Errorf("gen-end must be after %s", schema.PIEpoch.Format(schema.DateFormat))
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// parseKind maps "done" or "flow" in any case to a series kind.
func parseKind(s string) (schema.SeriesKind, bool) {
	for _, kind := range schema.AllSeriesKinds {
		if strings.EqualFold(s, string(kind)) {
			return kind, true
		}
	}
	return "", false
}

// RevalidateForecast re-checks the forecast settings of a config that was
// changed after ProcessAndValidate, e.g. by an MCP tool call.
func RevalidateForecast(cfg *Config) error {
	if cfg.InputPath == "" {
		return fmt.Errorf("input_path is required")
	}
	if cfg.NIn < 1 {
		return fmt.Errorf("n-in must be at least 1 (received %d)", cfg.NIn)
	}
	if cfg.NOut < 1 {
		return fmt.Errorf("n-out must be at least 1 (received %d)", cfg.NOut)
	}
	if cfg.SplitRatio <= 0 || cfg.SplitRatio >= 1 {
		return fmt.Errorf("split-ratio must lie strictly between 0 and 1 (received %g)", cfg.SplitRatio)
	}
	if cfg.LastNDays < 0 {
		return fmt.Errorf("last-n-days cannot be negative (received %d)", cfg.LastNDays)
	}
	if _, ok := schema.ValidModels[cfg.Model]; !ok {
		return fmt.Errorf("invalid model '%s'. must be forest, boost, ridge", cfg.Model)
	}
	if _, ok := schema.ValidStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid strategy '%s'. must be fixed, grid, random", cfg.Strategy)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return nil
}

// ParseKinds parses a comma-separated list of series kinds, e.g. "done,flow".
func ParseKinds(s string) ([]schema.SeriesKind, error) {
	var kinds []schema.SeriesKind
	for _, k := range SplitList(s) {
		kind, ok := parseKind(k)
		if !ok {
			return nil, fmt.Errorf("invalid series kind '%s'. must be done, flow", k)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
