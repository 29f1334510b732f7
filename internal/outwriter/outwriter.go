// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteForecast prints walk-forward validation results using the configured output format.
func (ow *OutWriter) WriteForecast(result schema.ForecastResult, cfg *contract.Config, duration time.Duration) error {
	return WriteForecastResults(result, cfg, duration)
}

// WriteSeries prints derived daily series using the configured output format.
func (ow *OutWriter) WriteSeries(series []schema.ProjectSeries, cfg *contract.Config, duration time.Duration) error {
	return WriteSeriesResults(series, cfg, duration)
}

// WriteTickets prints a generated ticket table using the configured output format.
func (ow *OutWriter) WriteTickets(tickets []schema.Ticket, pis []string, cfg *contract.Config, duration time.Duration) error {
	return WriteTicketResults(tickets, pis, cfg, duration)
}
