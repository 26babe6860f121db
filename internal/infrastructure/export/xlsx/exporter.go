// Package xlsx renders extracted inventory batches as spreadsheets.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

const sheet = "Inventory"

var headers = []string{
	"Name",
	"Generic Name",
	"Quantity",
	"Unit",
	"Storage",
	"Category",
	"Shelf Life (days)",
	"Reference Date",
	"Predicted Expiry",
	"Source",
	"Confidence",
}

type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

func (e *Exporter) ExportXLSX(_ context.Context, batch domain.BatchResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i, item := range batch.Items {
		row := i + 2
		values := []any{
			item.Name,
			item.GenericName,
			item.Quantity,
			string(item.Unit),
			string(item.StorageLocation),
			item.Category,
			item.ShelfLifeDays,
			item.ReferenceDate.String(),
			item.PredictedExpiry.String(),
			string(item.Source),
			item.Confidence,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 24)
	_ = f.SetColWidth(sheet, "H", "I", 14)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}

	e.logger.Info("export.xlsx.done",
		"items", len(batch.Items),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
