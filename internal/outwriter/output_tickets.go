package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/internal/parquet"
	"github.com/huangsam/flowcast/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteTicketResults outputs a generated ticket table and its PI planning window.
// CSV output written to a file also writes the window next to it.
func WriteTicketResults(tickets []schema.Ticket, pis []string, cfg *contract.Config, duration time.Duration) error {
	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Tickets []schema.Ticket `json:"tickets"`
				PIs     []string        `json:"pis"`
			}{tickets, pis})
		}, "Wrote JSON tickets")
	case schema.CSVOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVTickets(w, tickets)
		}, "Wrote CSV tickets")
		if err == nil {
			err = writePIWindow(cfg.OutputFile, pis)
		}
	case schema.ParquetOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertTickets(tickets))
		}, "Wrote Parquet tickets")
	case schema.ExcelOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExcelTickets(w, tickets, pis)
		}, "Wrote ticket workbook")
	default:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTicketTable(w, tickets, pis, cfg, duration)
		}, "Wrote table")
	}
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
	}
	return nil
}

// ticketRecord renders a ticket in TicketColumns order.
func ticketRecord(t schema.Ticket) []string {
	return []string{
		t.PI,
		t.Name,
		t.Status,
		t.Project,
		t.Team,
		t.StatusDate.Format(schema.DateFormat),
		t.CreatedDate.Format(schema.DateFormat),
		t.Feature,
		t.Type,
		t.Priority,
		t.Scope,
		strconv.Itoa(t.TeamMembers),
		strconv.Itoa(t.StoryPoints),
	}
}

// writeCSVTickets writes the ticket table with the columns the series command reads.
func writeCSVTickets(w io.Writer, tickets []schema.Ticket) error {
	return writeCSVWithHeader(w, schema.TicketColumns, func(cw *csv.Writer) error {
		for _, t := range tickets {
			if err := cw.Write(ticketRecord(t)); err != nil {
				return err
			}
		}
		return nil
	})
}

// piWindowPath returns the companion file of a ticket CSV, e.g. tickets_pis.csv.
func piWindowPath(outputFile string) string {
	return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + "_pis.csv"
}

// writePIWindow writes the planning window beside a ticket file, or to stderr
// when tickets went to stdout.
func writePIWindow(outputFile string, pis []string) error {
	if outputFile == "" {
		_, _ = fmt.Fprintf(os.Stderr, "Planning window: %s\n", strings.Join(pis, ", "))
		return nil
	}
	return writeWithFile(piWindowPath(outputFile), func(w io.Writer) error {
		return writeCSVWithHeader(w, []string{"SortedPIs"}, func(cw *csv.Writer) error {
			for _, pi := range pis {
				if err := cw.Write([]string{pi}); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote PI window")
}

// writeExcelTickets writes a workbook with a Tickets and a PIs sheet.
func writeExcelTickets(w io.Writer, tickets []schema.Ticket, pis []string) error {
	ticketSheet := sheet{name: "Tickets", headers: schema.TicketColumns}
	for _, t := range tickets {
		rec := ticketRecord(t)
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		row[11], row[12] = t.TeamMembers, t.StoryPoints
		ticketSheet.rows = append(ticketSheet.rows, row)
	}
	piSheet := sheet{name: "PIs", headers: []string{"SortedPIs"}}
	for _, pi := range pis {
		piSheet.rows = append(piSheet.rows, []any{pi})
	}
	return writeWorkbook(w, []sheet{ticketSheet, piSheet})
}

type projectStats struct {
	tickets map[string]struct{}
	events  int
	done    int
	first   time.Time
	last    time.Time
}

// writeTicketTable prints per-project totals and the planning window.
func writeTicketTable(w io.Writer, tickets []schema.Ticket, pis []string, cfg *contract.Config, duration time.Duration) error {
	stats := map[string]*projectStats{}
	for _, t := range tickets {
		s, ok := stats[t.Project]
		if !ok {
			s = &projectStats{tickets: map[string]struct{}{}, first: t.CreatedDate, last: t.StatusDate}
			stats[t.Project] = s
		}
		s.tickets[t.Name] = struct{}{}
		s.events++
		if t.Status == schema.DoneStatus {
			s.done++
		}
		if t.CreatedDate.Before(s.first) {
			s.first = t.CreatedDate
		}
		if t.StatusDate.After(s.last) {
			s.last = t.StatusDate
		}
	}

	if _, err := fmt.Fprintln(w, heading(cfg, "🎫", "Generated tickets")); err != nil {
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Project", "Tickets", "Events", "Done", "First", "Last"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, project := range slices.Sorted(maps.Keys(stats)) {
		s := stats[project]
		data = append(data, []string{
			project,
			strconv.Itoa(len(s.tickets)),
			strconv.Itoa(s.events),
			strconv.Itoa(s.done),
			s.first.Format(schema.DateFormat),
			s.last.Format(schema.DateFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Planning window: %s\n", strings.Join(pis, ", ")); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Generated %d status events in %v\n", len(tickets), duration)
	return err
}
