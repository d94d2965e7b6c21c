// Package xlsx adapts between uploaded workbook bytes and the in-memory
// table the conversion pipeline works on.
package xlsx

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"manifestconv/internal/manifest/models"
)

// OutputSheet is the sheet name of the converted workbook.
const OutputSheet = "Converted"

// Read parses the first sheet of a workbook into a table. The first row is
// the header; genuinely empty cells stay missing rather than becoming empty
// strings.
func Read(data []byte) (models.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return models.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return models.Table{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return models.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return models.Table{}, fmt.Errorf("sheet %q is empty", sheet)
	}

	t := models.Table{Columns: append([]string(nil), rows[0]...)}
	for _, raw := range rows[1:] {
		row := make(models.Row, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(raw) && raw[i] != "" {
				row[col] = raw[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Write serializes a table into a single-sheet workbook, preserving column
// order and header names exactly. Missing cells stay empty.
func Write(t models.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), OutputSheet); err != nil {
		return nil, fmt.Errorf("name output sheet: %w", err)
	}

	header := make([]any, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(OutputSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]any, len(t.Columns))
		for j, col := range t.Columns {
			if v, ok := row[col]; ok {
				cells[j] = v
			}
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell address for row %d: %w", i, err)
		}
		if err := f.SetSheetRow(OutputSheet, addr, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
