package services

import (
	"bytes"
	"fmt"

	"github.com/360EntSecGroup-Skylar/excelize"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// columnName converts a zero-based index to a spreadsheet column (A, B, ... AA).
func columnName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}

func cell(col, row int) string {
	return fmt.Sprintf("%s%d", columnName(col), row)
}

// writeWorkbook renders a single-sheet workbook with a header row.
func writeWorkbook(sheet string, headers []string, rows [][]any) ([]byte, error) {
	file := excelize.NewFile()
	index := file.NewSheet(sheet)
	file.SetActiveSheet(index)
	file.DeleteSheet("Sheet1")

	for c, h := range headers {
		file.SetCellValue(sheet, cell(c, 1), h)
	}
	for r, row := range rows {
		for c, v := range row {
			file.SetCellValue(sheet, cell(c, r+2), v)
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
