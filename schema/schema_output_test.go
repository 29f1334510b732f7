package schema_test

import (
	"testing"

	"github.com/huangsam/flowcast/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetAccuracyLabel(t *testing.T) {
	tests := []struct {
		name     string
		mae      float64
		mean     float64
		expected string
	}{
		{"Exact", 0, 5, "Exact"},
		{"Good", 0.4, 5, "Good"},
		{"Fair Lower", 0.5, 5, "Fair"},
		{"Fair Upper", 1.4, 5, "Fair"},
		{"Poor", 2, 5, "Poor"},
		{"Zero Mean Exact", 0, 0, "Exact"},
		{"Zero Mean Error", 1, 0, "Unscaled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetAccuracyLabel(tt.mae, tt.mean))
		})
	}
}

func TestSummarize(t *testing.T) {
	series := []schema.SeriesForecast{
		{
			Key:   "ADA_Project_1_Done",
			Kind:  schema.DoneSeries,
			Model: schema.BoostModel,
			Result: schema.ValidationResult{
				Steps:       []schema.Step{{Actual: 4, Predicted: 4}, {Actual: 6, Predicted: 6}},
				MAE:         0,
				FinalParams: schema.Params{"max_depth": 4, "n_estimators": 60},
			},
		},
		{
			Key:   "ADA_Project_1_Flow",
			Kind:  schema.FlowSeries,
			Model: schema.BoostModel,
			Result: schema.ValidationResult{
				Steps: []schema.Step{{Actual: 10, Predicted: 5}},
				MAE:   5,
			},
		},
	}

	summaries := schema.Summarize(series)

	assert.Len(t, summaries, 2)
	assert.Equal(t, 1, summaries[0].Rank)
	assert.Equal(t, "Exact", summaries[0].Label)
	assert.Equal(t, "max_depth=4,n_estimators=60", summaries[0].Params)
	assert.Equal(t, 2, summaries[1].Rank)
	assert.Equal(t, "Poor", summaries[1].Label)
	assert.Empty(t, summaries[1].Params)
}

func TestPredictionInfo(t *testing.T) {
	assert.Equal(t, "ADA_Project_2_Flow (ridge)", schema.PredictionInfo("ADA_Project_2_Flow", schema.RidgeModel))
}
