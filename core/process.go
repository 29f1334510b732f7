package core

import (
	"github.com/huangsam/flowcast/core/agg"
	"github.com/huangsam/flowcast/schema"
)

// BuildRows combines the walk-forward steps of every forecast into one table.
// Cumulative columns restart at each series.
func BuildRows(forecasts []schema.SeriesForecast) []schema.ForecastRow {
	var rows []schema.ForecastRow
	for _, f := range forecasts {
		info := schema.PredictionInfo(f.Key, f.Model)
		actual, predicted := stepSeries(f)
		cumActual, cumPredicted := agg.Cumulative(actual), agg.Cumulative(predicted)
		for i, step := range f.Result.Steps {
			rows = append(rows, schema.ForecastRow{
				Date:                step.Date,
				Actual:              step.Actual,
				Predicted:           step.Predicted,
				CumulativeActual:    cumActual.Points[i].Value,
				CumulativePredicted: cumPredicted.Points[i].Value,
				PredictionInfo:      info,
				Type:                f.Kind,
			})
		}
	}
	return rows
}

// stepSeries splits the steps of a forecast into its actual and predicted series.
func stepSeries(f schema.SeriesForecast) (actual, predicted schema.DailySeries) {
	actual = schema.DailySeries{Key: f.Key, Project: f.Project, Kind: f.Kind}
	predicted = actual
	actual.Points = make([]schema.DailyPoint, len(f.Result.Steps))
	predicted.Points = make([]schema.DailyPoint, len(f.Result.Steps))
	for i, step := range f.Result.Steps {
		actual.Points[i] = schema.DailyPoint{Date: step.Date, Value: step.Actual}
		predicted.Points[i] = schema.DailyPoint{Date: step.Date, Value: step.Predicted}
	}
	return actual, predicted
}

// LastNDays keeps the rows of each series that fall within n days of that
// series' latest row. A non-positive n keeps every row.
func LastNDays(rows []schema.ForecastRow, n int) []schema.ForecastRow {
	if n <= 0 {
		return rows
	}
	latest := make(map[string]int, 4)
	for i, r := range rows {
		j, ok := latest[r.PredictionInfo]
		if !ok || r.Date.After(rows[j].Date) {
			latest[r.PredictionInfo] = i
		}
	}
	out := make([]schema.ForecastRow, 0, len(rows))
	for _, r := range rows {
		cutoff := rows[latest[r.PredictionInfo]].Date.AddDate(0, 0, -n)
		if r.Date.After(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
