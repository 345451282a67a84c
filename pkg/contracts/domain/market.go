package domain

import (
	"sort"
	"time"
)

// PriceObservation is one company on one trading date, joined with its
// country's index when available
type PriceObservation struct {
	TradingDate       time.Time `json:"trading_date"`
	CompanyTicker     string    `json:"company_ticker"`
	CompanyName       string    `json:"company_name"`
	OTC               string    `json:"otc"`
	CompanyPrice      *float64  `json:"company_price,omitempty"`
	PriceToBook       *float64  `json:"company_price_to_book,omitempty"`
	MarketCap         *float64  `json:"company_market_cap,omitempty"`
	IndexName         string    `json:"index_name,omitempty"`
	IndexPrice        *float64  `json:"index_price,omitempty"`
	Country           string    `json:"country"`
	BookValuePerShare *float64  `json:"-"`
}

// IndexObservation is one market index close on one trading date
type IndexObservation struct {
	TradingDate time.Time `json:"trading_date"`
	IndexName   string    `json:"index_name"`
	IndexPrice  *float64  `json:"index_price,omitempty"`
	Country     string    `json:"country"`
}

// TradingCalendarEntry is a (date, country) pair on which the market traded
type TradingCalendarEntry struct {
	TradingDate time.Time `json:"trading_date"`
	Country     string    `json:"country"`
}

// TradingCalendar holds the sorted, de-duplicated trading dates per country
type TradingCalendar struct {
	dates map[string][]time.Time
}

// NewTradingCalendar builds a calendar from entries in any order
func NewTradingCalendar(entries []TradingCalendarEntry) *TradingCalendar {
	seen := make(map[string]map[time.Time]struct{})
	cal := &TradingCalendar{dates: make(map[string][]time.Time)}
	for _, e := range entries {
		if e.TradingDate.IsZero() {
			continue
		}
		day := DateOnly(e.TradingDate)
		if seen[e.Country] == nil {
			seen[e.Country] = make(map[time.Time]struct{})
		}
		if _, dup := seen[e.Country][day]; dup {
			continue
		}
		seen[e.Country][day] = struct{}{}
		cal.dates[e.Country] = append(cal.dates[e.Country], day)
	}
	for country := range cal.dates {
		dates := cal.dates[country]
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	}
	return cal
}

// Dates returns the sorted trading dates of a country
func (c *TradingCalendar) Dates(country string) []time.Time {
	return c.dates[country]
}

// NextOnOrAfter returns the first trading date of country that is not before t
func (c *TradingCalendar) NextOnOrAfter(country string, t time.Time) (time.Time, bool) {
	dates := c.dates[country]
	day := DateOnly(t)
	i := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(day) })
	if i == len(dates) {
		return time.Time{}, false
	}
	return dates[i], true
}

// Countries returns the calendar's countries in sorted order
func (c *TradingCalendar) Countries() []string {
	countries := make([]string, 0, len(c.dates))
	for country := range c.dates {
		countries = append(countries, country)
	}
	sort.Strings(countries)
	return countries
}

// Entries flattens the calendar ordered by country, then date
func (c *TradingCalendar) Entries() []TradingCalendarEntry {
	var entries []TradingCalendarEntry
	for _, country := range c.Countries() {
		for _, d := range c.dates[country] {
			entries = append(entries, TradingCalendarEntry{TradingDate: d, Country: country})
		}
	}
	return entries
}

// Len returns the number of distinct (date, country) pairs
func (c *TradingCalendar) Len() int {
	n := 0
	for _, dates := range c.dates {
		n += len(dates)
	}
	return n
}
