package dataprocessing

import (
	"strings"
	"time"

	"conflictpanel/internal/config"
	apperrors "conflictpanel/internal/errors"
	"conflictpanel/pkg/contracts/domain"
)

const (
	colNewsDate       = "date"
	colNewsStartDate3 = "start_date3"
	newsSuffix        = "_news"
)

// newsRenamed are the content columns that would collide with the conflict
// panel and therefore carry a suffix
var newsRenamed = map[string]bool{
	"conflict_episode_id": true,
	"conflict_id":         true,
	colNewsStartDate3:     true,
	"location":            true,
}

// ContentSheet is the coded content-analysis worksheet as read
type ContentSheet struct {
	Source   string
	Header   []string
	Rows     [][]string
	firstRow int
	date1904 bool
}

// NewsStats counts the rows of the content-analysis table
type NewsStats struct {
	Read     int `json:"read"`
	Undated  int `json:"undated"`
	Blank    int `json:"blank"`
	Records  int `json:"records"`
	Columns  int `json:"columns"`
	Suffixed int `json:"suffixed"`
}

// LoadContent reads the content-analysis worksheet
func LoadContent(path, sheet string) (*ContentSheet, error) {
	table, err := readSheet(path, sheet, 0)
	if err != nil {
		return nil, err
	}
	if err := table.require(colNewsDate); err != nil {
		return nil, err
	}
	header := make([]string, len(table.header))
	for i, h := range table.header {
		header[i] = strings.TrimSpace(h)
	}
	return &ContentSheet{
		Source:   path,
		Header:   header,
		Rows:     table.rows,
		firstRow: table.firstRow,
		date1904: table.date1904,
	}, nil
}

// AdaptContent renames the colliding columns, parses the date columns and
// carries every other analyst column through untouched
func AdaptContent(sheet *ContentSheet) (domain.NewsTable, NewsStats, error) {
	stats := NewsStats{Read: len(sheet.Rows)}
	table := sheetTable{source: sheet.Source, sheet: "content", firstRow: sheet.firstRow}

	dateCol := -1
	startCol := -1
	var header []string
	var sourceCols []int
	for i, name := range sheet.Header {
		if name == colNewsDate && dateCol < 0 {
			dateCol = i
			continue
		}
		if newsRenamed[name] {
			if name == colNewsStartDate3 {
				startCol = len(header)
			}
			name += newsSuffix
			stats.Suffixed++
		}
		header = append(header, name)
		sourceCols = append(sourceCols, i)
	}
	if dateCol < 0 {
		return domain.NewsTable{}, stats, apperrors.NewSchemaError(sheet.Source, colNewsDate)
	}
	stats.Columns = len(header)

	var records []domain.NewsContentRecord
	for i, row := range sheet.Rows {
		if isBlankRow(row) {
			stats.Blank++
			continue
		}

		var date time.Time
		if dateCol < len(row) {
			d, err := parseSheetDate(row[dateCol], sheet.date1904)
			if err != nil {
				return domain.NewsTable{}, stats, table.parseError(i, colNewsDate, err)
			}
			date = d
		}
		if date.IsZero() {
			stats.Undated++
		}

		values := make([]string, len(sourceCols))
		for j, src := range sourceCols {
			if src < len(row) {
				values[j] = row[src]
			}
		}
		if startCol >= 0 {
			d, err := parseSheetDate(values[startCol], sheet.date1904)
			if err != nil {
				return domain.NewsTable{}, stats, table.parseError(i, colNewsStartDate3, err)
			}
			values[startCol] = formatDay(d)
		}

		records = append(records, domain.NewsContentRecord{Date: date, Values: values})
	}
	stats.Records = len(records)

	return domain.NewsTable{Header: header, Records: records}, stats, nil
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(config.OutputDateLayout)
}
