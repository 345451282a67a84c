package dataprocessing

import (
	"conflictpanel/pkg/contracts/domain"
)

// JoinConflictPanel left-joins the price rows to the matched episodes on
// trading date and country. A price row with several episodes repeats once
// per episode in match order; rows without an episode appear once.
func JoinConflictPanel(prices []domain.PriceObservation, matches []domain.MatchedEpisode) []domain.ConflictPanelRow {
	byKey := make(map[dateCountry][]int)
	for i, m := range matches {
		if !m.Matched() {
			continue
		}
		k := keyOf(m.TradingDate, m.Country)
		byKey[k] = append(byKey[k], i)
	}

	rows := make([]domain.ConflictPanelRow, 0, len(prices))
	for _, p := range prices {
		idx := byKey[keyOf(p.TradingDate, p.Country)]
		if len(idx) == 0 {
			rows = append(rows, domain.ConflictPanelRow{Price: p})
			continue
		}
		for _, i := range idx {
			ep := matches[i]
			rows = append(rows, domain.ConflictPanelRow{Price: p, Episode: &ep})
		}
	}
	return rows
}

// JoinNewsPanel left-joins the price rows to the news items on trading date
// only; the content table carries no country.
func JoinNewsPanel(prices []domain.PriceObservation, news domain.NewsTable) []domain.NewsPanelRow {
	byDay := make(map[string][]int)
	for i, rec := range news.Records {
		if rec.Date.IsZero() {
			continue
		}
		day := formatDay(rec.Date)
		byDay[day] = append(byDay[day], i)
	}

	rows := make([]domain.NewsPanelRow, 0, len(prices))
	for _, p := range prices {
		idx := byDay[formatDay(p.TradingDate)]
		if len(idx) == 0 {
			rows = append(rows, domain.NewsPanelRow{Price: p})
			continue
		}
		for _, i := range idx {
			rec := news.Records[i]
			rows = append(rows, domain.NewsPanelRow{Price: p, News: &rec})
		}
	}
	return rows
}
