// Package export renders flattened extraction rows as an XLSX workbook.
// It only renders: row order and the four-column shape arrive fixed from the
// flattener and must survive verbatim.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/doculens/doculens/constants"
	"github.com/doculens/doculens/internal/document"
)

// Service produces XLSX bytes from flattened rows.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteRows returns a single-sheet workbook: a header row, then one line per
// flattened row with a 1-based row number in the first column.
func (s *Service) WriteRows(rows []document.Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	sheet := constants.SheetName
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet so the workbook opens on the data.
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range constants.SheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	for i, r := range rows {
		line := i + 2 // 1-based, after header
		write(1, line, i+1)
		write(2, line, r.Section)
		write(3, line, r.Key)
		write(4, line, r.Value)
		write(5, line, r.Comment)
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)  // row number
	_ = f.SetColWidth(sheet, "B", "B", 28) // section
	_ = f.SetColWidth(sheet, "C", "C", 30) // key
	_ = f.SetColWidth(sheet, "D", "D", 50) // value
	_ = f.SetColWidth(sheet, "E", "E", 45) // comments

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
