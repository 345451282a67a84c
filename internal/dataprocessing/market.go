package dataprocessing

import (
	"fmt"
	"sort"
	"time"

	"conflictpanel/internal/config"
	apperrors "conflictpanel/internal/errors"
	"conflictpanel/pkg/contracts/domain"
)

// MarketOptions tunes ConsolidateMarket
type MarketOptions struct {
	DateLayout  string
	InvalidDate string
}

// DefaultMarketOptions matches the Bloomberg export conventions
func DefaultMarketOptions() MarketOptions {
	return MarketOptions{
		DateLayout:  config.PriceDateLayout,
		InvalidDate: config.PriceInvalidDate,
	}
}

// MarketStats counts the rows of the consolidated price table
type MarketStats struct {
	PriceRows       int `json:"price_rows"`
	IndexRows       int `json:"index_rows"`
	InvalidDate     int `json:"invalid_date"`
	Empty           int `json:"empty"`
	Unqualified     int `json:"unqualified"`
	Unindexed       int `json:"unindexed"`
	Rows            int `json:"rows"`
	CalendarEntries int `json:"calendar_entries"`
	Countries       int `json:"countries"`
}

// MarketData is the consolidated market side of the panels
type MarketData struct {
	Prices    []domain.PriceObservation
	Indices   []domain.IndexObservation
	Calendar  *domain.TradingCalendar
	Countries []string
}

type dateCountry struct {
	day     string
	country string
}

func keyOf(t time.Time, country string) dateCountry {
	return dateCountry{day: t.Format(config.OutputDateLayout), country: country}
}

// ConsolidateMarket merges the company feeds, attaches each row's country
// index, orders rows by country, company and date and keeps qualified
// companies only. The trading calendar is built from both the index rows and
// the kept price rows.
func ConsolidateMarket(feeds [][]RawPrice, indices []RawIndex, qualified domain.CompanySet, opts MarketOptions) (*MarketData, MarketStats, error) {
	var stats MarketStats

	var prices []domain.PriceObservation
	for _, feed := range feeds {
		stats.PriceRows += len(feed)
		for _, raw := range feed {
			if raw.Dates == opts.InvalidDate {
				stats.InvalidDate++
				continue
			}
			if raw.AllMissing() {
				stats.Empty++
				continue
			}
			day, err := parseFeedDate(raw.Dates, opts.DateLayout, raw.Source, raw.Line)
			if err != nil {
				return nil, stats, err
			}
			prices = append(prices, domain.PriceObservation{
				TradingDate:       day,
				CompanyTicker:     raw.Ticker,
				CompanyName:       raw.CompanyName,
				OTC:               raw.OTC,
				CompanyPrice:      raw.Last,
				PriceToBook:       raw.PriceToBook,
				MarketCap:         raw.MarketCap,
				BookValuePerShare: raw.BookValue,
				Country:           raw.Country,
			})
		}
	}

	stats.IndexRows = len(indices)
	indexRows := make([]domain.IndexObservation, 0, len(indices))
	byKey := make(map[dateCountry][]domain.IndexObservation, len(indices))
	for _, raw := range indices {
		day, err := parseFeedDate(raw.Dates, opts.DateLayout, raw.Source, raw.Line)
		if err != nil {
			return nil, stats, err
		}
		obs := domain.IndexObservation{
			TradingDate: day,
			IndexName:   raw.IndexName,
			IndexPrice:  raw.Last,
			Country:     raw.Country,
		}
		indexRows = append(indexRows, obs)
		k := keyOf(day, raw.Country)
		byKey[k] = append(byKey[k], obs)
	}

	joined := make([]domain.PriceObservation, 0, len(prices))
	for _, p := range prices {
		matches := byKey[keyOf(p.TradingDate, p.Country)]
		if len(matches) == 0 {
			joined = append(joined, p)
			continue
		}
		for _, idx := range matches {
			row := p
			row.IndexName = idx.IndexName
			row.IndexPrice = idx.IndexPrice
			joined = append(joined, row)
		}
	}

	sort.SliceStable(joined, func(i, j int) bool {
		a, b := joined[i], joined[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.CompanyName != b.CompanyName {
			return a.CompanyName < b.CompanyName
		}
		return a.TradingDate.Before(b.TradingDate)
	})

	kept := joined[:0]
	for _, p := range joined {
		if !qualified.Contains(p.CompanyName) {
			stats.Unqualified++
			continue
		}
		if p.IndexName == "" && p.IndexPrice == nil {
			stats.Unindexed++
		}
		kept = append(kept, p)
	}

	entries := make([]domain.TradingCalendarEntry, 0, len(indexRows)+len(kept))
	for _, idx := range indexRows {
		entries = append(entries, domain.TradingCalendarEntry{TradingDate: idx.TradingDate, Country: idx.Country})
	}
	var countries []string
	seen := make(map[string]struct{})
	for _, p := range kept {
		entries = append(entries, domain.TradingCalendarEntry{TradingDate: p.TradingDate, Country: p.Country})
		if _, ok := seen[p.Country]; !ok {
			seen[p.Country] = struct{}{}
			countries = append(countries, p.Country)
		}
	}

	data := &MarketData{
		Prices:    kept,
		Indices:   indexRows,
		Calendar:  domain.NewTradingCalendar(entries),
		Countries: countries,
	}
	stats.Rows = len(kept)
	stats.CalendarEntries = data.Calendar.Len()
	stats.Countries = len(countries)

	return data, stats, nil
}

func parseFeedDate(raw, layout, source string, line int) (time.Time, error) {
	t, err := time.Parse(layout, raw)
	if err != nil {
		return time.Time{}, apperrors.NewParsingError(fmt.Sprintf("invalid trading date %q", raw), err).
			WithContext("file", source).
			WithContext("line", line)
	}
	return domain.DateOnly(t), nil
}
