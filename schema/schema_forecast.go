package schema

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Params is a set of named numeric hyperparameters, e.g. {"n_estimators": 100}.
type Params map[string]float64

// Clone returns a copy of the parameter set.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// String renders the parameters in key order as "k=v,k=v".
func (p Params) String() string {
	keys := slices.Sorted(maps.Keys(p))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatFloat(p[k], 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

// ParseParams is the inverse of Params.String.
func ParseParams(s string) (Params, error) {
	params := Params{}
	if strings.TrimSpace(s) == "" {
		return params, nil
	}
	for part := range strings.SplitSeq(s, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", part)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter %q: %w", key, err)
		}
		params[strings.TrimSpace(key)] = f
	}
	return params, nil
}

// Step is one walk-forward iteration: the model was fitted on HistorySize rows
// and predicted the target of test row Index.
type Step struct {
	Index       int       `json:"index"`
	Date        time.Time `json:"date"`
	Actual      float64   `json:"actual"`
	Predicted   float64   `json:"predicted"`
	HistorySize int       `json:"history_size"`
	Params      Params    `json:"params,omitempty"`
}

// ValidationResult is the full trace of a walk-forward run.
type ValidationResult struct {
	Steps       []Step  `json:"steps"`
	MAE         float64 `json:"mae"`
	FinalParams Params  `json:"final_params,omitempty"`
}

// Actuals returns the actual values of every step in order.
func (r ValidationResult) Actuals() []float64 {
	out := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Actual
	}
	return out
}

// Predictions returns the predicted values of every step in order.
func (r ValidationResult) Predictions() []float64 {
	out := make([]float64, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Predicted
	}
	return out
}

// SeriesForecast is the validation outcome for one daily series.
type SeriesForecast struct {
	Key       string           `json:"key"`
	Project   string           `json:"project"`
	Kind      SeriesKind       `json:"kind"`
	Model     ModelKind        `json:"model"`
	Strategy  SearchStrategy   `json:"strategy"`
	TrainSize int              `json:"train_size"`
	TestSize  int              `json:"test_size"`
	Result    ValidationResult `json:"result"`
}

// ForecastRow is one line of the combined actual-vs-predicted table.
type ForecastRow struct {
	Date                time.Time  `json:"date"`
	Actual              float64    `json:"actual"`
	Predicted           float64    `json:"predicted"`
	CumulativeActual    float64    `json:"cumulative_actual"`
	CumulativePredicted float64    `json:"cumulative_predicted"`
	PredictionInfo      string     `json:"prediction_info"`
	Type                SeriesKind `json:"type"`
}

// ForecastResult is everything a forecast command produces.
type ForecastResult struct {
	RunID  string           `json:"run_id"`
	Series []SeriesForecast `json:"series"`
	Rows   []ForecastRow    `json:"rows"`
}
