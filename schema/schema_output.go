package schema

import "fmt"

// SeriesSummary is a one-line view of a SeriesForecast used by tables and workbooks.
type SeriesSummary struct {
	Rank      int            `json:"rank"`
	Key       string         `json:"key"`
	Kind      SeriesKind     `json:"kind"`
	Model     ModelKind      `json:"model"`
	Strategy  SearchStrategy `json:"strategy"`
	TrainSize int            `json:"train_size"`
	TestSize  int            `json:"test_size"`
	MAE       float64        `json:"mae"`
	Label     string         `json:"label"`
	Params    string         `json:"params"`
}

// GetAccuracyLabel returns a plain text label for a mean absolute error,
// relative to the mean actual value of the test partition.
func GetAccuracyLabel(mae, meanActual float64) string {
	if meanActual <= 0 {
		if mae == 0 {
			return "Exact"
		}
		return "Unscaled"
	}
	ratio := mae / meanActual
	switch {
	case ratio == 0:
		return "Exact"
	case ratio < 0.1:
		return "Good"
	case ratio < 0.3:
		return "Fair"
	default:
		return "Poor"
	}
}

// Summarize builds the ranked summaries of a set of series forecasts, in input order.
func Summarize(series []SeriesForecast) []SeriesSummary {
	output := make([]SeriesSummary, len(series))
	for i, s := range series {
		var sum float64
		for _, step := range s.Result.Steps {
			sum += step.Actual
		}
		mean := 0.0
		if n := len(s.Result.Steps); n > 0 {
			mean = sum / float64(n)
		}
		output[i] = SeriesSummary{
			Rank:      i + 1,
			Key:       s.Key,
			Kind:      s.Kind,
			Model:     s.Model,
			Strategy:  s.Strategy,
			TrainSize: s.TrainSize,
			TestSize:  s.TestSize,
			MAE:       s.Result.MAE,
			Label:     GetAccuracyLabel(s.Result.MAE, mean),
			Params:    s.Result.FinalParams.String(),
		}
	}
	return output
}

// PredictionInfo is the tag attached to every combined output row of a series.
func PredictionInfo(key string, model ModelKind) string {
	return fmt.Sprintf("%s (%s)", key, model)
}
