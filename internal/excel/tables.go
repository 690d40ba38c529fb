// =============================================================================
// ExcelTools - Native Tables and Field Sheets
// =============================================================================

package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/exceltoolspro/exceltools/internal/config"
)

// TableName derives a workbook-safe native table name from a label:
// non-alphanumeric characters are dropped, the result is capped at 20
// characters and prefixed with "Tbl_".
func TableName(label string) string {
	var b strings.Builder
	for _, r := range label {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if len(name) > 20 {
		name = name[:20]
	}
	if name == "" {
		name = "Data"
	}
	return "Tbl_" + name
}

// AddNativeTable registers the rectangular range rows x cols starting at A1
// as a named Excel table with a built-in style.
func AddNativeTable(f *excelize.File, sheet, name string, rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("cannot create table over empty range")
	}
	last, err := excelize.CoordinatesToCellName(cols, rows)
	if err != nil {
		return fmt.Errorf("failed to compute table range: %w", err)
	}
	if err := f.AddTable(sheet, &excelize.Table{
		Range:           "A1:" + last,
		Name:            name,
		StyleName:       "TableStyleMedium2",
		ShowFirstColumn: false,
		ShowLastColumn:  false,
		ShowRowStripes:  boolPtr(true),
	}); err != nil {
		return fmt.Errorf("failed to add table %q: %w", name, err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

// =============================================================================
// FIELD SHEETS
// =============================================================================

// Field is one name/value pair of a field sheet.
type Field struct {
	Name  string
	Value string
}

// WriteFieldSheet writes a two-column field/value listing into a workbook,
// under a merged title banner. The named sheet is replaced if present.
// Used by the transfer module for its per-file summary sheet.
func WriteFieldSheet(path, sheet, title string, fields []Field, cfg config.ExcelExportConfig) error {
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

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  cfg.HeaderFontSize + 2,
			Color: strings.TrimPrefix(cfg.HeaderFontColor, "#"),
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(cfg.HeaderBgColor, "#")},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to build title style: %w", err)
	}

	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return fmt.Errorf("failed to merge title cells: %w", err)
	}
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", titleStyle); err != nil {
		return fmt.Errorf("failed to style title: %w", err)
	}

	nameStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: cfg.DataFontSize},
		Border: thinBorders(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to build name style: %w", err)
	}
	valueStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: cfg.DataFontSize},
		Border: thinBorders(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to build value style: %w", err)
	}

	maxName, maxValue := 12.0, 20.0
	for i, field := range fields {
		row := i + 2
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), field.Name); err != nil {
			return fmt.Errorf("failed to write field %q: %w", field.Name, err)
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), field.Value); err != nil {
			return fmt.Errorf("failed to write value of %q: %w", field.Name, err)
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), nameStyle); err != nil {
			return fmt.Errorf("failed to style field row %d: %w", row, err)
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), valueStyle); err != nil {
			return fmt.Errorf("failed to style value row %d: %w", row, err)
		}

		if w := float64(len(field.Name)) + 2; w > maxName {
			maxName = w
		}
		if w := float64(len(field.Value)) + 2; w > maxValue {
			maxValue = w
		}
	}

	if cfg.MaxColumnWidth > 0 && maxName > cfg.MaxColumnWidth {
		maxName = cfg.MaxColumnWidth
	}
	if cfg.MaxColumnWidth > 0 && maxValue > cfg.MaxColumnWidth {
		maxValue = cfg.MaxColumnWidth
	}
	if err := f.SetColWidth(sheet, "A", "A", maxName); err != nil {
		return fmt.Errorf("failed to size name column: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", maxValue); err != nil {
		return fmt.Errorf("failed to size value column: %w", err)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}
