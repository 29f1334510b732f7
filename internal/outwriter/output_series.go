package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/internal/parquet"
	"github.com/huangsam/flowcast/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gonum.org/v1/gonum/floats"
)

// WriteSeriesResults outputs derived daily series, dispatching based on the output format configured.
func WriteSeriesResults(projects []schema.ProjectSeries, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := floatFormatter(cfg.Precision)
	series := flattenSeries(projects)

	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, projects)
		}, "Wrote JSON series")
	case schema.CSVOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForSeries(w, series, fmtFloat)
		}, "Wrote CSV series")
	case schema.ParquetOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertSeries(series))
		}, "Wrote Parquet series")
	case schema.ExcelOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExcelResultsForSeries(w, projects, series)
		}, "Wrote series workbook")
	default:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSeriesTable(w, projects, series, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
	}
	return nil
}

func flattenSeries(projects []schema.ProjectSeries) []schema.DailySeries {
	var out []schema.DailySeries
	for _, p := range projects {
		out = append(out, p.Series...)
	}
	return out
}

// writeSeriesTable prints one summary line per series and the flow per PI.
func writeSeriesTable(w io.Writer, projects []schema.ProjectSeries, series []schema.DailySeries, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, heading(cfg, "📊", "Daily series")); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Series", "Days", "First", "Last", "Total", "Mean", "Max"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, s := range series {
		row := []string{s.Key, strconv.Itoa(len(s.Points)), "-", "-", "-", "-", "-"}
		if len(s.Points) > 0 {
			values := s.Values()
			row[2] = s.Points[0].Date.Format(schema.DateFormat)
			row[3] = s.Points[len(s.Points)-1].Date.Format(schema.DateFormat)
			row[4] = fmtFloat(floats.Sum(values))
			row[5] = fmtFloat(floats.Sum(values) / float64(len(values)))
			row[6] = fmtFloat(floats.Max(values))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, heading(cfg, "🚦", "Flow tickets per PI")); err != nil {
		return err
	}
	piTable := tablewriter.NewWriter(w)
	piTable.Header([]string{"Project", "PI", "Flow", "Cumulative"})
	piTable.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	data = data[:0]
	for _, p := range projects {
		for _, f := range p.PIFlows {
			data = append(data, []string{p.Project, f.PI, strconv.Itoa(f.FlowCount), strconv.Itoa(f.CumulativeFlow)})
		}
	}
	if err := piTable.Bulk(data); err != nil {
		return err
	}
	if err := piTable.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Derived %d series for %d projects in %v. Cache backend: %s\n",
		len(series), len(projects), duration, cfg.CacheBackend)
	return err
}

// writeCSVResultsForSeries writes every series in long format, one row per day.
func writeCSVResultsForSeries(w io.Writer, series []schema.DailySeries, fmtFloat func(float64) string) error {
	header := []string{"series_key", "project", "kind", "date", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range series {
			for _, p := range s.Points {
				rec := []string{s.Key, s.Project, string(s.Kind), p.Date.Format(schema.DateFormat), fmtFloat(p.Value)}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeExcelResultsForSeries writes a workbook with a Series and a PI Flow sheet.
func writeExcelResultsForSeries(w io.Writer, projects []schema.ProjectSeries, series []schema.DailySeries) error {
	daily := sheet{name: "Series", headers: []string{"SeriesKey", "Project", "Kind", "Date", "Value"}}
	for _, s := range series {
		for _, p := range s.Points {
			daily.rows = append(daily.rows, []any{s.Key, s.Project, string(s.Kind), p.Date.Format(schema.DateFormat), p.Value})
		}
	}
	flow := sheet{name: "PI Flow", headers: []string{"Project", "PI", "FlowTicketsCount", "CumulativeFlow"}}
	for _, p := range projects {
		for _, f := range p.PIFlows {
			flow.rows = append(flow.rows, []any{p.Project, f.PI, f.FlowCount, f.CumulativeFlow})
		}
	}
	return writeWorkbook(w, []sheet{daily, flow})
}
