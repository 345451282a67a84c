package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "conflictpanel/internal/errors"
)

// Bloomberg export columns
const (
	colDates         = "Dates"
	colTicker        = "company_ticker"
	colCompanyName   = "company_name"
	colOTC           = "otc"
	colLast          = "PX_LAST"
	colBookValue     = "BOOK_VAL_PER_SH"
	colPriceToBook   = "PX_TO_BOOK_RATIO"
	colMarketCap     = "CUR_MKT_CAP"
	colCountry       = "country"
	colIndexName     = "index_name"
	utf8BOM          = "\ufeff"
	feedHeaderRowNum = 1
)

var priceColumns = []string{
	colDates, colTicker, colCompanyName, colOTC, colLast,
	colBookValue, colPriceToBook, colMarketCap, colCountry,
}

var indexColumns = []string{colDates, colIndexName, colLast, colCountry}

// RawPrice is a price feed row whose date is still text
type RawPrice struct {
	Source      string
	Line        int
	Dates       string
	Ticker      string
	CompanyName string
	OTC         string
	Last        *float64
	BookValue   *float64
	PriceToBook *float64
	MarketCap   *float64
	Country     string
}

// RawIndex is an index feed row whose date is still text
type RawIndex struct {
	Source    string
	Line      int
	Dates     string
	IndexName string
	Last      *float64
	Country   string
}

// feedTable is a CSV export read into memory with its header resolved
type feedTable struct {
	source  string
	columns map[string]int
	records [][]string
}

func readFeed(path string, required []string) (*feedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open feed %s", path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewSchemaError(path, required[0])
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read feed header", err).WithContext("file", path)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, c := range required {
		if _, ok := columns[c]; !ok {
			return nil, apperrors.NewSchemaError(path, c)
		}
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read feed records", err).WithContext("file", path)
	}

	return &feedTable{source: path, columns: columns, records: records}, nil
}

func (t *feedTable) field(rec []string, column string) string {
	i := t.columns[column]
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

func (t *feedTable) number(i int, rec []string, column string) (*float64, error) {
	v, err := parseOptionalFloat(t.field(rec, column))
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("invalid number in column %q", column), err).
			WithContext("file", t.source).
			WithContext("line", t.line(i))
	}
	return v, nil
}

// line is the 1-based file line of record i, assuming single-line records
func (t *feedTable) line(i int) int {
	return i + feedHeaderRowNum + 1
}

// LoadPriceFeed reads one Bloomberg company price export
func LoadPriceFeed(path string) ([]RawPrice, error) {
	table, err := readFeed(path, priceColumns)
	if err != nil {
		return nil, err
	}

	prices := make([]RawPrice, 0, len(table.records))
	for i, rec := range table.records {
		p := RawPrice{
			Source:      path,
			Line:        table.line(i),
			Dates:       strings.TrimSpace(table.field(rec, colDates)),
			Ticker:      table.field(rec, colTicker),
			CompanyName: table.field(rec, colCompanyName),
			OTC:         table.field(rec, colOTC),
			Country:     table.field(rec, colCountry),
		}
		numbers := []struct {
			column string
			dst    **float64
		}{
			{colLast, &p.Last},
			{colBookValue, &p.BookValue},
			{colPriceToBook, &p.PriceToBook},
			{colMarketCap, &p.MarketCap},
		}
		for _, n := range numbers {
			v, err := table.number(i, rec, n.column)
			if err != nil {
				return nil, err
			}
			*n.dst = v
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// LoadIndexFeed reads the Bloomberg index export
func LoadIndexFeed(path string) ([]RawIndex, error) {
	table, err := readFeed(path, indexColumns)
	if err != nil {
		return nil, err
	}

	indices := make([]RawIndex, 0, len(table.records))
	for i, rec := range table.records {
		last, err := table.number(i, rec, colLast)
		if err != nil {
			return nil, err
		}
		indices = append(indices, RawIndex{
			Source:    path,
			Line:      table.line(i),
			Dates:     strings.TrimSpace(table.field(rec, colDates)),
			IndexName: table.field(rec, colIndexName),
			Last:      last,
			Country:   table.field(rec, colCountry),
		})
	}
	return indices, nil
}

// AllMissing reports whether none of the four price measures is present
func (p RawPrice) AllMissing() bool {
	return p.Last == nil && p.BookValue == nil && p.PriceToBook == nil && p.MarketCap == nil
}
