// Package agg derives per-project daily ticket series from ticket status events.
package agg

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
)

// ErrMissingColumn is returned when a frame lacks a column a series needs.
var ErrMissingColumn = errors.New("required column not found")

// ProjectFrame is the slice of a ticket frame belonging to one project.
type ProjectFrame struct {
	Project string
	Frame   *Frame
}

// warnMissing logs the missing columns of a step and reports whether any are missing.
func warnMissing(f *Frame, step string, cols ...string) bool {
	missing := f.Missing(cols...)
	if len(missing) == 0 {
		return false
	}
	contract.Logger().Warn().Str("step", step).Strs("columns", missing).Msg("required column not found, frame left unchanged")
	return true
}

// SplitAndSort partitions the frame by project, each part sorted by created
// date. With no projects given, every project in the frame is used in name order.
func SplitAndSort(f *Frame, projects []string) []ProjectFrame {
	if warnMissing(f, "split", schema.ColProject, schema.ColCreatedDate) {
		return []ProjectFrame{{Frame: f}}
	}
	if len(projects) == 0 {
		seen := map[string]struct{}{}
		for r := range f.Len() {
			seen[f.Get(r, schema.ColProject)] = struct{}{}
		}
		projects = slices.Sorted(maps.Keys(seen))
	}

	f = normalizeCreatedDates(f)
	out := make([]ProjectFrame, 0, len(projects))
	for _, project := range projects {
		part := f.Filter(func(r int) bool { return f.Get(r, schema.ColProject) == project })
		out = append(out, ProjectFrame{Project: project, Frame: part.SortBy(schema.ColCreatedDate)})
	}
	return out
}

// normalizeCreatedDates rewrites every created date to its calendar day, so
// date-time cells of the same day group together. Unparseable cells are kept.
func normalizeCreatedDates(f *Frame) *Frame {
	values := make([]string, f.Len())
	for r := range values {
		values[r] = dayKey(f.Get(r, schema.ColCreatedDate))
	}
	return f.WithColumn(schema.ColCreatedDate, values)
}

// dayKey returns the YYYY-MM-DD form of a date cell, or the cell itself when it does not parse.
func dayKey(cell string) string {
	d, err := ParseDate(cell)
	if err != nil {
		return cell
	}
	return d.Format(schema.DateFormat)
}

// DoneTicketsPerDate adds DoneTicketsCount: the number of Done rows sharing
// each row's created date, or 0 when there are none.
func DoneTicketsPerDate(f *Frame) *Frame {
	if warnMissing(f, "done per date", schema.ColStatus, schema.ColCreatedDate) {
		return f
	}
	counts := map[string]int{}
	for r := range f.Len() {
		if f.Get(r, schema.ColStatus) == schema.DoneStatus {
			counts[dayKey(f.Get(r, schema.ColCreatedDate))]++
		}
	}
	return withCounts(f, schema.ColDoneCount, counts)
}

// FlowPerDate adds FlowTicketsCount: the number of distinct ticket names in a
// flow status sharing each row's created date, or 0 when there are none.
func FlowPerDate(f *Frame) *Frame {
	if warnMissing(f, "flow per date", schema.ColStatus, schema.ColCreatedDate, schema.ColName) {
		return f
	}
	names := map[string]map[string]struct{}{}
	for r := range f.Len() {
		if !slices.Contains(schema.FlowStatuses, f.Get(r, schema.ColStatus)) {
			continue
		}
		date := dayKey(f.Get(r, schema.ColCreatedDate))
		if names[date] == nil {
			names[date] = map[string]struct{}{}
		}
		names[date][f.Get(r, schema.ColName)] = struct{}{}
	}
	counts := make(map[string]int, len(names))
	for date, set := range names {
		counts[date] = len(set)
	}
	return withCounts(f, schema.ColFlowCount, counts)
}

// withCounts sets a count column from a per-date lookup.
func withCounts(f *Frame, col string, counts map[string]int) *Frame {
	values := make([]string, f.Len())
	for r := range values {
		values[r] = strconv.Itoa(counts[dayKey(f.Get(r, schema.ColCreatedDate))])
	}
	return f.WithColumn(col, values)
}

// FilterFrame keeps the created date and both counts, one row per date.
func FilterFrame(f *Frame) *Frame {
	if warnMissing(f, "filter", schema.ColCreatedDate, schema.ColDoneCount, schema.ColFlowCount) {
		return f
	}
	seen := map[string]struct{}{}
	deduped := f.Filter(func(r int) bool {
		date := dayKey(f.Get(r, schema.ColCreatedDate))
		if _, dup := seen[date]; dup {
			return false
		}
		seen[date] = struct{}{}
		return true
	})
	return deduped.Select(schema.ColCreatedDate, schema.ColDoneCount, schema.ColFlowCount)
}

// FillConsecutiveDates reindexes the frame over every day from the first to
// the last created date. Days without a row repeat the previous day's counts.
func FillConsecutiveDates(f *Frame) (*Frame, error) {
	if warnMissing(f, "fill dates", schema.ColCreatedDate, schema.ColDoneCount, schema.ColFlowCount) {
		return f, nil
	}
	if f.Len() == 0 {
		return f, nil
	}

	byDate := map[string][2]string{}
	first, last, err := dateBounds(f)
	if err != nil {
		return nil, err
	}
	for r := range f.Len() {
		d, _ := ParseDate(f.Get(r, schema.ColCreatedDate))
		key := d.Format(schema.DateFormat)
		if _, ok := byDate[key]; !ok {
			byDate[key] = [2]string{f.Get(r, schema.ColDoneCount), f.Get(r, schema.ColFlowCount)}
		}
	}

	var records [][]string
	var previous [2]string
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(schema.DateFormat)
		if counts, ok := byDate[key]; ok {
			previous = counts
		}
		records = append(records, []string{key, previous[0], previous[1]})
	}
	return NewFrame([]string{schema.ColCreatedDate, schema.ColDoneCount, schema.ColFlowCount}, records), nil
}

// dateBounds returns the earliest and latest created dates of a frame.
func dateBounds(f *Frame) (first, last time.Time, err error) {
	for r := range f.Len() {
		d, perr := ParseDate(f.Get(r, schema.ColCreatedDate))
		if perr != nil {
			return first, last, fmt.Errorf("row %d: %w", r, perr)
		}
		if r == 0 || d.Before(first) {
			first = d
		}
		if r == 0 || d.After(last) {
			last = d
		}
	}
	return first, last, nil
}

// BuildSeries turns a filled frame into the done and flow series of a project.
func BuildSeries(project string, f *Frame) ([]schema.DailySeries, error) {
	if missing := f.Missing(schema.ColCreatedDate, schema.ColDoneCount, schema.ColFlowCount); len(missing) > 0 {
		return nil, fmt.Errorf("%w: project %q lacks %v", ErrMissingColumn, project, missing)
	}
	done := schema.DailySeries{Key: schema.SeriesKey(project, schema.DoneSeries), Project: project, Kind: schema.DoneSeries}
	flow := schema.DailySeries{Key: schema.SeriesKey(project, schema.FlowSeries), Project: project, Kind: schema.FlowSeries}
	for r := range f.Len() {
		date, err := ParseDate(f.Get(r, schema.ColCreatedDate))
		if err != nil {
			return nil, fmt.Errorf("project %q row %d: %w", project, r, err)
		}
		d, err := strconv.ParseFloat(f.Get(r, schema.ColDoneCount), 64)
		if err != nil {
			return nil, fmt.Errorf("project %q row %d: bad %s: %w", project, r, schema.ColDoneCount, err)
		}
		fl, err := strconv.ParseFloat(f.Get(r, schema.ColFlowCount), 64)
		if err != nil {
			return nil, fmt.Errorf("project %q row %d: bad %s: %w", project, r, schema.ColFlowCount, err)
		}
		done.Points = append(done.Points, schema.DailyPoint{Date: date, Value: d})
		flow.Points = append(flow.Points, schema.DailyPoint{Date: date, Value: fl})
	}
	return []schema.DailySeries{done, flow}, nil
}

// FlowPerPI counts the distinct flow tickets of each program increment, in
// increment order, with a running total.
func FlowPerPI(f *Frame) []schema.PIFlow {
	if warnMissing(f, "flow per PI", schema.ColPI, schema.ColStatus, schema.ColName) {
		return nil
	}
	names := map[string]map[string]struct{}{}
	for r := range f.Len() {
		if !slices.Contains(schema.FlowStatuses, f.Get(r, schema.ColStatus)) {
			continue
		}
		pi := f.Get(r, schema.ColPI)
		if names[pi] == nil {
			names[pi] = map[string]struct{}{}
		}
		names[pi][f.Get(r, schema.ColName)] = struct{}{}
	}

	out := make([]schema.PIFlow, 0, len(names))
	total := 0
	for _, pi := range schema.SortPIs(slices.Collect(maps.Keys(names))) {
		total += len(names[pi])
		out = append(out, schema.PIFlow{PI: pi, FlowCount: len(names[pi]), CumulativeFlow: total})
	}
	return out
}

// Cumulative returns the running total of a series.
func Cumulative(s schema.DailySeries) schema.DailySeries {
	out := s
	out.Points = make([]schema.DailyPoint, len(s.Points))
	var total float64
	for i, p := range s.Points {
		total += p.Value
		out.Points[i] = schema.DailyPoint{Date: p.Date, Value: total}
	}
	return out
}

// ProjectResult is the outcome of deriving the series of one project.
type ProjectResult struct {
	Series schema.ProjectSeries
	Err    error
}

// ProjectSeriesFromFrame runs the full derivation for every project. A failing
// project is reported in its result and the others continue.
func ProjectSeriesFromFrame(f *Frame, projects []string) []ProjectResult {
	parts := SplitAndSort(f, projects)
	out := make([]ProjectResult, 0, len(parts))
	for _, part := range parts {
		result := ProjectResult{Series: schema.ProjectSeries{Project: part.Project}}
		result.Series.PIFlows = FlowPerPI(part.Frame)

		filled, err := FillConsecutiveDates(FilterFrame(FlowPerDate(DoneTicketsPerDate(part.Frame))))
		if err == nil {
			result.Series.Series, err = BuildSeries(part.Project, filled)
		}
		result.Err = err
		out = append(out, result)
	}
	return out
}
