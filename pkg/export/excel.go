package export

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
	"github.com/xuri/excelize/v2"
)

// MaxSheetName is the longest sheet name Excel accepts.
const MaxSheetName = 31

// defaultSheet is the sheet excelize creates with every new file.
const defaultSheet = "Sheet1"

// Workbook collects sheets and saves them as one .xlsx file.
type Workbook struct {
	file   *excelize.File
	sheets []string
	rows   int
}

// NewWorkbook returns an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// Sheets returns the sheet names added so far, in order.
func (wb *Workbook) Sheets() []string {
	return append([]string(nil), wb.sheets...)
}

// SheetName truncates name to MaxSheetName characters.
// A part > 0 appends "_{part}", cutting the name further so the suffix
// always survives.
func SheetName(name string, part int) string {
	if part <= 0 {
		return truncate(name, MaxSheetName)
	}
	suffix := fmt.Sprintf("_%d", part)
	return truncate(name, MaxSheetName-len(suffix)) + suffix
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// AddTable adds a sheet with a header row followed by rows.
// The sheet name is cut to MaxSheetName characters.
func (wb *Workbook) AddTable(name string, header []string, rows [][]string) error {
	sheet := SheetName(name, 0)
	if _, err := wb.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	wb.sheets = append(wb.sheets, sheet)

	line := 1
	if len(header) > 0 {
		if err := wb.setRow(sheet, line, header); err != nil {
			return err
		}
		line++
	}
	for _, row := range rows {
		if err := wb.setRow(sheet, line, row); err != nil {
			return err
		}
		line++
	}
	return nil
}

// AddKeyValues adds a two-column Category/Value sheet.
func (wb *Workbook) AddKeyValues(name string, keys []string, values map[string]string) error {
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, values[k]})
	}
	return wb.AddTable(name, []string{"Category", "Value"}, rows)
}

// AddText adds a sheet with a single Data cell.
func (wb *Workbook) AddText(name, text string) error {
	return wb.AddTable(name, []string{"Data"}, [][]string{{text}})
}

// AddRecords adds a sheet of records under the Columns header.
func (wb *Workbook) AddRecords(name string, records []listing.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = Cells(r)
	}
	if err := wb.AddTable(name, Columns(), rows); err != nil {
		return observe(SinkExcel, 0, err)
	}
	wb.rows += len(records)
	return nil
}

func (wb *Workbook) setRow(sheet string, line int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := wb.file.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// SaveAs removes the placeholder sheet, activates the first added sheet
// and writes the workbook to path, creating missing parent directories.
func (wb *Workbook) SaveAs(path string) error {
	if len(wb.sheets) == 0 {
		return ErrNoRecords
	}
	if !wb.hasSheet(defaultSheet) {
		if err := wb.file.DeleteSheet(defaultSheet); err != nil {
			return observe(SinkExcel, 0, fmt.Errorf("remove placeholder sheet: %w", err))
		}
	}
	if idx, err := wb.file.GetSheetIndex(wb.sheets[0]); err == nil {
		wb.file.SetActiveSheet(idx)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := wb.file.SaveAs(path); err != nil {
		return observe(SinkExcel, 0, fmt.Errorf("save %s: %w", path, err))
	}
	return observe(SinkExcel, wb.rows, nil)
}

func (wb *Workbook) hasSheet(name string) bool {
	for _, s := range wb.sheets {
		if s == name {
			return true
		}
	}
	return false
}

// Close releases the workbook's temporary resources.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}
