package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/flowcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input matching the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Output:       "text",
		Precision:    DefaultPrecision,
		Workers:      2,
		CacheBackend: "none",
		RunBackend:   "none",
		Emoji:        "no",
		Color:        "yes",
		NIn:          DefaultNIn,
		NOut:         DefaultNOut,
		SplitRatio:   DefaultSplitRatio,
		Strategy:     "random",
		Model:        "boost",
		NIter:        DefaultNIter,
		CVSplits:     DefaultCVSplits,
		Seed:         DefaultSeed,
		Round:        true,
		Tickets:      DefaultTickets,
		GenSeed:      DefaultSeed,
		GenEnd:       "2024-06-30",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{"valid defaults", func(*ConfigRawInput) {}, false},
		{"invalid model", func(in *ConfigRawInput) { in.Model = "xgb" }, true},
		{"invalid strategy", func(in *ConfigRawInput) { in.Strategy = "bayes" }, true},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }, true},
		{"zero n-in", func(in *ConfigRawInput) { in.NIn = 0 }, true},
		{"zero n-out", func(in *ConfigRawInput) { in.NOut = 0 }, true},
		{"ratio of one", func(in *ConfigRawInput) { in.SplitRatio = 1 }, true},
		{"ratio of zero", func(in *ConfigRawInput) { in.SplitRatio = 0 }, true},
		{"single cv split", func(in *ConfigRawInput) { in.CVSplits = 1 }, true},
		{"zero n-iter", func(in *ConfigRawInput) { in.NIter = 0 }, true},
		{"negative last-n-days", func(in *ConfigRawInput) { in.LastNDays = -1 }, true},
		{"last-n-days", func(in *ConfigRawInput) { in.LastNDays = 14 }, false},
		{"bad output", func(in *ConfigRawInput) { in.Output = "xml" }, true},
		{"parquet needs file", func(in *ConfigRawInput) { in.Output = "parquet" }, true},
		{"parquet with file", func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "out.parquet" }, false},
		{"bad precision", func(in *ConfigRawInput) { in.Precision = 9 }, true},
		{"bad kind", func(in *ConfigRawInput) { in.Kinds = "done,velocity" }, true},
		{"bad params", func(in *ConfigRawInput) { in.Params = "alpha" }, true},
		{"bad emoji", func(in *ConfigRawInput) { in.Emoji = "maybe" }, true},
		{"zero tickets", func(in *ConfigRawInput) { in.Tickets = 0 }, true},
		{"bad gen-end", func(in *ConfigRawInput) { in.GenEnd = "30/06/2024" }, true},
		{"gen-end before epoch", func(in *ConfigRawInput) { in.GenEnd = "2022-12-01" }, true},
		{"bad cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }, true},
		{"mysql without dsn", func(in *ConfigRawInput) { in.RunBackend = "mysql" }, true},
		{"empty grid values", func(in *ConfigRawInput) {
			in.Search.Grid = map[string][]float64{"max_depth": {}}
		}, true},
		{"bad distribution type", func(in *ConfigRawInput) {
			in.Search.Distributions = map[string]DistributionRaw{"alpha": {Type: "normal"}}
		}, true},
		{"randint without range", func(in *ConfigRawInput) {
			in.Search.Distributions = map[string]DistributionRaw{"max_depth": {Type: "randint", Low: 4, High: 4}}
		}, true},
		{"uniform without scale", func(in *ConfigRawInput) {
			in.Search.Distributions = map[string]DistributionRaw{"learning_rate": {Type: "uniform", Loc: 0.01}}
		}, true},
		{"empty choice", func(in *ConfigRawInput) {
			in.Search.Distributions = map[string]DistributionRaw{"max_depth": {Type: "choice"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			err := ProcessAndValidate(&Config{}, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateFields(t *testing.T) {
	input := validInput()
	input.InputPathStr = "  tickets.csv "
	input.Kinds = "Done, flow"
	input.Projects = "ADA_Project_1,,ADA_Project_3"
	input.Params = "n_estimators=60,max_depth=4"
	input.Search = SearchRawInput{
		Grid: map[string][]float64{"max_depth": {3, 4}},
		Distributions: map[string]DistributionRaw{
			"learning_rate": {Type: "Uniform", Loc: 0.01, Scale: 0.09},
			"n_estimators":  {Type: "randint", Low: 50, High: 100},
		},
	}

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "tickets.csv", cfg.InputPath)
	assert.Equal(t, []schema.SeriesKind{schema.DoneSeries, schema.FlowSeries}, cfg.Kinds)
	assert.Equal(t, []string{"ADA_Project_1", "ADA_Project_3"}, cfg.Projects)
	assert.Equal(t, schema.Params{"n_estimators": 60, "max_depth": 4}, cfg.FixedParams)
	assert.Equal(t, schema.BoostModel, cfg.Model)
	assert.Equal(t, schema.RandomStrategy, cfg.Strategy)
	assert.Equal(t, UniformDistribution, cfg.Distributions["learning_rate"].Kind)
	assert.Equal(t, []float64{3, 4}, cfg.Grid["max_depth"])
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), cfg.GenEndDate)
	assert.True(t, cfg.Round)
	assert.False(t, cfg.UseEmojis)
	assert.True(t, cfg.UseColors)

	assert.Equal(t, []string{"ADA_Project_3"}, cfg.Projects)
	assert.True(t, cfg.WantsKind(schema.FlowSeries))
}

func TestValidateBackendConfigsSQLiteConflict(t *testing.T) {
	input := validInput()
	input.CacheBackend = "sqlite"
	input.RunBackend = "sqlite"
	input.CacheDBConnect = filepath.Join(t.TempDir(), "same.db")
	input.RunDBConnect = input.CacheDBConnect
	assert.Error(t, ProcessAndValidate(&Config{}, input))

	input.RunDBConnect = filepath.Join(t.TempDir(), "other.db")
	assert.NoError(t, ProcessAndValidate(&Config{}, input))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite anything", schema.SQLiteBackend, "", false},
		{"none anything", schema.NoneBackend, "whatever", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/flowcast", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/flowcast", true},
		{"mysql missing db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=flowcast", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=flowcast", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Projects:      []string{"ADA_Project_1"},
		FixedParams:   schema.Params{"alpha": 1},
		Grid:          map[string][]float64{"alpha": {1, 2}},
		Distributions: map[string]Distribution{"max_depth": {Kind: ChoiceDistribution, Values: []float64{4, 5}}},
	}
	clone := cfg.Clone()
	clone.Projects[0] = "changed"
	clone.FixedParams["alpha"] = 5
	clone.Grid["alpha"][0] = 9
	clone.Distributions["max_depth"].Values[0] = 9

	assert.Equal(t, "ADA_Project_1", cfg.Projects[0])
	assert.Equal(t, 1.0, cfg.FixedParams["alpha"])
	assert.Equal(t, 1.0, cfg.Grid["alpha"][0])
	assert.Equal(t, 4.0, cfg.Distributions["max_depth"].Values[0])
}

func TestConfigParams(t *testing.T) {
	cfg := &Config{NIn: 4, NOut: 1, Model: schema.RidgeModel, FixedParams: schema.Params{"alpha": 2}}
	params := cfg.ConfigParams()
	assert.Equal(t, 4, params["n_in"])
	assert.Equal(t, "ridge", params["model"])
	assert.Equal(t, "alpha=2", params["params"])
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "flowcast"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "flowcast", profile.Prefix)
}

func TestRevalidateForecast(t *testing.T) {
	valid := func() *Config {
		return &Config{
			InputPath:  "tickets.csv",
			NIn:        DefaultNIn,
			NOut:       DefaultNOut,
			SplitRatio: DefaultSplitRatio,
			Model:      schema.RidgeModel,
			Strategy:   schema.FixedStrategy,
		}
	}

	cfg := valid()
	require.NoError(t, RevalidateForecast(cfg))
	assert.Equal(t, 1, cfg.Workers)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing input", func(c *Config) { c.InputPath = "" }},
		{"zero n-in", func(c *Config) { c.NIn = 0 }},
		{"zero n-out", func(c *Config) { c.NOut = 0 }},
		{"ratio above one", func(c *Config) { c.SplitRatio = 1.5 }},
		{"negative last-n-days", func(c *Config) { c.LastNDays = -3 }},
		{"unknown model", func(c *Config) { c.Model = "lstm" }},
		{"unknown strategy", func(c *Config) { c.Strategy = "bayes" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, RevalidateForecast(c))
		})
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds(" FLOW ,done,")
	require.NoError(t, err)
	assert.Equal(t, []schema.SeriesKind{schema.FlowSeries, schema.DoneSeries}, kinds)

	kinds, err = ParseKinds("")
	require.NoError(t, err)
	assert.Empty(t, kinds)

	_, err = ParseKinds("done,velocity")
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a,, b ,"))
	assert.Nil(t, SplitList(""))
}
