package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/invoice"
)

// SheetName is the worksheet holding the extracted fields.
const SheetName = "Invoices"

var xlsxHeaders = []string{
	"Document Number",
	"Field",
	"Content",
	"Confidence",
}

// WriteXLSX writes one row per document and allow-listed field. Absent fields get
// empty Content and Confidence cells so every document shows the full list.
func WriteXLSX(path string, records []invoice.DocumentRecord, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	// replace the default sheet so the workbook has exactly one
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		for _, name := range constants.InvoiceFields {
			write(1, r.DocumentNumber)
			write(2, string(name))
			if fld := r.Field(name); fld != nil {
				if fld.Content != nil {
					write(3, *fld.Content)
				}
				if fld.Confidence != nil {
					write(4, *fld.Confidence)
				}
			}
			row++
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 16) // document
	_ = f.SetColWidth(SheetName, "B", "B", 28) // field
	_ = f.SetColWidth(SheetName, "C", "C", 60) // content
	_ = f.SetColWidth(SheetName, "D", "D", 12) // confidence

	if err := f.SaveAs(path); err != nil {
		return common.IOError("xlsx write "+path, err)
	}

	logger.Info("export.xlsx.ok",
		"path", path,
		"documents", len(records),
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
