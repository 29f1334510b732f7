package outwriter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// sheet is one worksheet of a workbook: a header row followed by data rows.
type sheet struct {
	name    string
	headers []string
	rows    [][]any
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "D9D9D9", Style: 1},
	{Type: "top", Color: "D9D9D9", Style: 1},
	{Type: "bottom", Color: "D9D9D9", Style: 1},
	{Type: "right", Color: "D9D9D9", Style: 1},
}

// writeWorkbook renders the sheets into a single xlsx workbook, in order.
func writeWorkbook(w io.Writer, sheets []sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	stripeStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Border: thinBorder,
	})
	if err != nil {
		return fmt.Errorf("create row style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle, stripeStyle); err != nil {
			return fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}

	return f.Write(w)
}

func writeSheet(f *excelize.File, s sheet, headerStyle, stripeStyle int) error {
	header := make([]any, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(max(len(s.headers), 1))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for r, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
		if r%2 == 1 {
			end := fmt.Sprintf("%s%d", lastCol, r+2)
			if err := f.SetCellStyle(s.name, cell, end, stripeStyle); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(s.name, "A", lastCol, 18)
}
