package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "conflictpanel/internal/errors"
	"conflictpanel/pkg/contracts/domain"
)

// sheetTable is one worksheet read as a header row plus raw data rows
type sheetTable struct {
	source   string
	sheet    string
	header   []string
	columns  map[string]int
	rows     [][]string
	firstRow int
	date1904 bool
}

// readSheet loads a worksheet with raw cell values so that dates arrive as
// serial numbers. An empty sheet name selects the first sheet. skip rows are
// discarded before the header row.
func readSheet(path, sheet string, skip int) (*sheetTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewSchemaError(path, "<first sheet>")
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q in %s", sheet, path))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("file", path)
	}
	if len(rows) <= skip {
		return nil, apperrors.NewSchemaError(path, "<header row>").WithContext("sheet", sheet)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	header := rows[skip]
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.TrimSpace(name)
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	return &sheetTable{
		source:   path,
		sheet:    sheet,
		header:   header,
		columns:  columns,
		rows:     rows[skip+1:],
		firstRow: skip + 2,
		date1904: date1904,
	}, nil
}

// require fails with a schema error naming the first absent column
func (t *sheetTable) require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.columns[strings.TrimSpace(c)]; !ok {
			return apperrors.NewSchemaError(t.source, c)
		}
	}
	return nil
}

// cell returns the raw value of column in row, or "" when the row is short
func (t *sheetTable) cell(row []string, column string) string {
	i, ok := t.columns[strings.TrimSpace(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// rowNumber is the 1-based spreadsheet row of data row i
func (t *sheetTable) rowNumber(i int) int {
	return t.firstRow + i
}

// parseError attaches file and row context to a cell parse failure
func (t *sheetTable) parseError(i int, column string, err error) error {
	return apperrors.NewParsingError(fmt.Sprintf("invalid value in column %q", column), err).
		WithContext("file", t.source).
		WithContext("sheet", t.sheet).
		WithContext("row", t.rowNumber(i))
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// sheetDateLayouts are tried when a date cell holds text instead of a serial
var sheetDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
}

// parseSheetDate converts an Excel serial or a text date to a calendar day.
// Empty cells yield the zero time.
func parseSheetDate(raw string, date1904 bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, err
		}
		return domain.DateOnly(t), nil
	}
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return domain.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parseCode reads an integer code that may be stored as a float ("2.0").
// Empty cells yield 0.
func parseCode(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return int(f), nil
}

// missingMarkers are the cell contents read as "no value" in numeric columns
var missingMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"N/A":      {},
	"NA":       {},
	"n/a":      {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"NULL":     {},
	"null":     {},
	"None":     {},
	"<NA>":     {},
}

// parseOptionalFloat returns nil for missing markers and extra
func parseOptionalFloat(raw string, extra ...string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if _, missing := missingMarkers[raw]; missing {
		return nil, nil
	}
	for _, m := range extra {
		if raw == strings.TrimSpace(m) {
			return nil, nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
