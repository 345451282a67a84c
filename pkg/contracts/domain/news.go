package domain

import "time"

// NewsTable is the coded content-analysis sheet. Analyst columns are carried
// as raw strings in sheet order; Header excludes the date column.
type NewsTable struct {
	Header  []string            `json:"header"`
	Records []NewsContentRecord `json:"records"`
}

// NewsContentRecord is one coded news item
type NewsContentRecord struct {
	Date   time.Time `json:"date"`
	Values []string  `json:"values"`
}

// Column returns the index of name in the header, or -1
func (t NewsTable) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}
