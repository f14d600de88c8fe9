package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// numFmtText is the builtin Excel "@" number format.
const numFmtText = 49

// readTable reads the header and data rows of a workbook. Rows shorter
// than the header are padded so callers can index columns positionally.
func readTable(path string) (header []string, rows [][]string, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}

	header = all[0]
	for _, row := range all[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// writeTable persists a full table to path: styled header, bordered and
// centered cells, text number format on text columns. The workbook is
// written to a temp file in the same directory and renamed over the
// target, so a concurrent reader never observes a half-written table.
func writeTable(path string, schema Schema, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := schema.Sheet
	if sheet != "Sheet1" {
		f.SetSheetName("Sheet1", sheet)
	}

	border := []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: center,
		Border:    border,
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Alignment: center, Border: border})
	if err != nil {
		return fmt.Errorf("cell style: %w", err)
	}
	textStyle, err := f.NewStyle(&excelize.Style{Alignment: center, Border: border, NumFmt: numFmtText})
	if err != nil {
		return fmt.Errorf("text style: %w", err)
	}

	for i, col := range schema.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col.Title); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, 22); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, col := range schema.Columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			style := cellStyle
			if col.Text {
				style = textStyle
				if err := f.SetCellStr(sheet, cell, fmt.Sprint(row[c])); err != nil {
					return err
				}
			} else if err := f.SetCellValue(sheet, cell, row[c]); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}

	// The temp name must keep the .xlsx extension or SaveAs refuses it;
	// the leading dot keeps it invisible to candidate scans.
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp.xlsx")
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
