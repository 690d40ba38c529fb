// =============================================================================
// ExcelTools - Excel Reader
// =============================================================================
//
// This module reads workbook sheets into the shared table model. The first
// row of a sheet is treated as the header row; everything below it becomes
// data rows. Cells are read as formatted strings, matching what a user sees
// in the grid.
//
// =============================================================================

package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/exceltoolspro/exceltools/internal/table"
)

// SheetNames returns the sheet names of a workbook, in tab order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ReadSheet loads one sheet of a workbook into a table. An empty sheet name
// selects the first sheet. The sheet's first row becomes the headers.
func ReadSheet(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

// readSheet is the open-workbook form of ReadSheet, shared with callers
// that keep the file open for further work.
func readSheet(f *excelize.File, sheet string) (*table.Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return table.New(), nil
	}

	t := &table.Table{Headers: rows[0]}
	for _, row := range rows[1:] {
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadNamedOrFirst resolves a possibly empty sheet name against a workbook,
// returning the effective sheet name alongside the table.
func ReadNamedOrFirst(path, sheet string) (*table.Table, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, "", fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	t, err := readSheet(f, sheet)
	if err != nil {
		return nil, "", err
	}
	return t, sheet, nil
}
