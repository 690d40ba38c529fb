// =============================================================================
// ExcelTools - Excel Writer
// =============================================================================
//
// This module writes tables to workbook sheets with the house formatting:
// a colored bold header row, optional alternating row fills, thin borders,
// a frozen header pane and column widths fitted to the content. Every export
// of the application funnels through WriteSheet or ReplaceSheet so results
// look the same regardless of which feature produced them.
//
// =============================================================================

package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/exceltoolspro/exceltools/internal/config"
	"github.com/exceltoolspro/exceltools/internal/table"
)

// WriteSheet creates or overwrites a workbook containing the table on a
// single sheet, formatted per cfg.
func WriteSheet(path, sheet string, t *table.Table, cfg config.ExcelExportConfig) error {
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet is renamed rather than deleted so the workbook
	// always keeps at least one sheet.
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}

	if err := writeTable(f, sheet, t, cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// ReplaceSheet writes the table into an existing workbook, replacing the
// named sheet if present. The rest of the workbook is left untouched.
func ReplaceSheet(path, sheet string, t *table.Table, cfg config.ExcelExportConfig) error {
	if sheet == "" {
		return fmt.Errorf("sheet name is required")
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(sheet); idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("failed to replace sheet %q: %w", sheet, err)
		}
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	if err := writeTable(f, sheet, t, cfg); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// writeTable fills a sheet with the table content and applies formatting.
func writeTable(f *excelize.File, sheet string, t *table.Table, cfg config.ExcelExportConfig) error {
	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return applyFormatting(f, sheet, t, cfg)
}

// applyFormatting styles a freshly written sheet: header row, alternating
// fills, borders, frozen pane and fitted column widths.
func applyFormatting(f *excelize.File, sheet string, t *table.Table, cfg config.ExcelExportConfig) error {
	cols := t.NumCols()
	if cols == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return fmt.Errorf("failed to compute last column: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  cfg.HeaderFontBold,
			Size:  cfg.HeaderFontSize,
			Color: strings.TrimPrefix(cfg.HeaderFontColor, "#"),
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(cfg.HeaderBgColor, "#")},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to build header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	if t.NumRows() > 0 {
		plain, err := f.NewStyle(&excelize.Style{
			Font:   &excelize.Font{Size: cfg.DataFontSize},
			Border: thinBorders(cfg),
		})
		if err != nil {
			return fmt.Errorf("failed to build data style: %w", err)
		}
		striped := plain
		if cfg.AlternateRowColors {
			striped, err = f.NewStyle(&excelize.Style{
				Font: &excelize.Font{Size: cfg.DataFontSize},
				Fill: excelize.Fill{
					Type:    "pattern",
					Pattern: 1,
					Color:   []string{strings.TrimPrefix(cfg.AlternateRowColor, "#")},
				},
				Border: thinBorders(cfg),
			})
			if err != nil {
				return fmt.Errorf("failed to build striped style: %w", err)
			}
		}

		for i := 0; i < t.NumRows(); i++ {
			row := i + 2
			style := plain
			if cfg.AlternateRowColors && i%2 == 1 {
				style = striped
			}
			first := fmt.Sprintf("A%d", row)
			last := fmt.Sprintf("%s%d", lastCol, row)
			if err := f.SetCellStyle(sheet, first, last, style); err != nil {
				return fmt.Errorf("failed to style row %d: %w", row, err)
			}
		}
	}

	if cfg.FreezeHeader {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	if cfg.AutoFitColumns {
		if err := autoFitColumns(f, sheet, t, cfg); err != nil {
			return err
		}
	}
	return nil
}

// thinBorders returns the four thin cell borders, or nil when disabled.
func thinBorders(cfg config.ExcelExportConfig) []excelize.Border {
	if !cfg.AddBorders {
		return nil
	}
	borders := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "right", "top", "bottom"} {
		borders = append(borders, excelize.Border{Type: side, Style: 1, Color: "D3D3D3"})
	}
	return borders
}

// autoFitColumns sizes each column to its longest value among the header
// and a bounded sample of rows, clamped to the configured limits.
func autoFitColumns(f *excelize.File, sheet string, t *table.Table, cfg config.ExcelExportConfig) error {
	sample := t.NumRows()
	if cfg.AutofitSampleRows > 0 && sample > cfg.AutofitSampleRows {
		sample = cfg.AutofitSampleRows
	}

	for c := 0; c < t.NumCols(); c++ {
		width := float64(len(t.Headers[c])) + 2
		for r := 0; r < sample; r++ {
			if w := float64(len(t.Cell(r, c))) + 2; w > width {
				width = w
			}
		}
		if width < cfg.MinColumnWidth {
			width = cfg.MinColumnWidth
		}
		if cfg.MaxColumnWidth > 0 && width > cfg.MaxColumnWidth {
			width = cfg.MaxColumnWidth
		}

		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return fmt.Errorf("failed to compute column name: %w", err)
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}
	return nil
}

// =============================================================================
// WORKBOOK COMBINATION
// =============================================================================

// ConcatWorkbooks stacks the first sheets of several workbooks into one
// table. When skipHeaders is true the header row of every workbook after
// the first is dropped; headers are taken from the first workbook.
func ConcatWorkbooks(paths []string, skipHeaders bool) (*table.Table, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no workbooks to combine")
	}

	var out *table.Table
	for _, path := range paths {
		t, err := ReadSheet(path, "")
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = t
			continue
		}
		if skipHeaders {
			out.Rows = append(out.Rows, t.Rows...)
		} else {
			out.Rows = append(out.Rows, t.Headers)
			out.Rows = append(out.Rows, t.Rows...)
		}
	}
	return out, nil
}
