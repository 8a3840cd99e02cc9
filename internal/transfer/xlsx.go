package transfer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/linguabot/pkg/models"
)

// Columns of the spreadsheet layout, in order
var Columns = []string{"word", "translation", "example", "note", "level"}

const sheetName = "Sheet1"

// ReadXLSX reads records from the first sheet of a workbook. A leading
// header row is skipped. Blank rows are ignored.
func ReadXLSX(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", models.ErrValidation, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if isBlank(row) {
			continue
		}
		records = append(records, Record{
			Word:        cell(row, 0),
			Translation: cell(row, 1),
			Example:     cell(row, 2),
			Note:        cell(row, 3),
			Level:       cell(row, 4),
		})
	}
	return records, nil
}

// WriteXLSX writes records to a single-sheet workbook with a header row
func WriteXLSX(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{rec.Word, rec.Translation, rec.Example, rec.Note, rec.Level}
		if err := f.SetSheetRow(sheetName, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isHeader(row []string) bool {
	return strings.EqualFold(cell(row, 0), Columns[0]) && strings.EqualFold(cell(row, 1), Columns[1])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
