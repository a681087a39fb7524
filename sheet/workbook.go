// Package sheet reads batch rows from an xlsx workbook and writes badge
// counts back, aligned by row position.
package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/use-agent/badgecount/models"
)

// ErrMissingURLColumn is returned by Open when the header row has no URL
// column.
var ErrMissingURLColumn = errors.New("sheet has no profile URL column")

// Columns names the header cells the sync reads and writes.
type Columns struct {
	URL   string
	Name  string
	Count string
}

// DefaultColumns returns the headers used by the tracker spreadsheet.
func DefaultColumns() Columns {
	return Columns{URL: "Profile URL", Name: "Name", Count: "Badge Count"}
}

// Workbook is one open worksheet with a header row.
// It is not safe for concurrent use.
type Workbook struct {
	file  *excelize.File
	path  string
	sheet string
	cols  Columns

	header   []string
	data     [][]string
	urlCol   int // 0-based
	nameCol  int // -1 when absent
	countCol int // -1 until written
}

// Open loads path and locates the columns on sheetName's header row.
// An empty sheetName selects the first sheet.
func Open(path, sheetName string, cols Columns) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open %s: %w", path, err)
	}

	w, err := load(f, path, sheetName, cols)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func load(f *excelize.File, path, sheetName string, cols Columns) (*Workbook, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet: %s has no sheet named %q", path, sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("sheet: read %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet: %q has no header row", sheetName)
	}

	w := &Workbook{
		file:   f,
		path:   path,
		sheet:  sheetName,
		cols:   cols,
		header: rows[0],
		data:   rows[1:],
	}

	w.urlCol = w.column(cols.URL)
	if w.urlCol < 0 {
		return nil, fmt.Errorf("sheet: %q must have a %q column: %w", sheetName, cols.URL, ErrMissingURLColumn)
	}
	w.nameCol = w.column(cols.Name)
	w.countCol = w.column(cols.Count)
	return w, nil
}

// column finds a header cell by name, ignoring case and surrounding spaces.
func (w *Workbook) column(name string) int {
	if name == "" {
		return -1
	}
	for i, h := range w.header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// Sheet returns the worksheet name in use.
func (w *Workbook) Sheet() string { return w.sheet }

// Len returns the number of data rows below the header.
func (w *Workbook) Len() int { return len(w.data) }

// Rows returns one BatchRow per data row, in sheet order. Empty rows are
// kept so results stay aligned with the sheet.
func (w *Workbook) Rows() []models.BatchRow {
	out := make([]models.BatchRow, len(w.data))
	for i, cells := range w.data {
		out[i] = models.BatchRow{
			Name: cell(cells, w.nameCol),
			URL:  strings.TrimSpace(cell(cells, w.urlCol)),
		}
	}
	return out
}

// WriteCounts stores each row's count in the count column, adding the
// column after the last header cell if the sheet lacks one. Skipped rows
// get an empty cell. rows must be aligned with Rows.
func (w *Workbook) WriteCounts(rows []models.BatchRow) error {
	if len(rows) != len(w.data) {
		return fmt.Errorf("sheet: got %d results for %d rows", len(rows), len(w.data))
	}

	if w.countCol < 0 {
		w.countCol = len(w.header)
		w.header = append(w.header, w.cols.Count)
		if err := w.set(w.countCol, 1, w.cols.Count); err != nil {
			return err
		}
	}

	for i, row := range rows {
		var v any = row.Count
		if row.Skipped() {
			v = ""
		}
		if err := w.set(w.countCol, i+2, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) set(col, row int, v any) error {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Errorf("sheet: cell name: %w", err)
	}
	if err := w.file.SetCellValue(w.sheet, name, v); err != nil {
		return fmt.Errorf("sheet: write %s: %w", name, err)
	}
	return nil
}

// Save writes the workbook back to the path it was opened from.
func (w *Workbook) Save() error {
	return w.SaveAs(w.path)
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("sheet: save %s: %w", path, err)
	}
	return nil
}

// Close releases the workbook's temporary files.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
