package dataprocessing

import (
	"conflictpanel/pkg/contracts/domain"
)

// MatchOptions tunes MatchEpisodes
type MatchOptions struct {
	// MaxGapDays is the largest accepted distance between an episode start
	// and the trading date it is attributed to
	MaxGapDays int
}

// MatchStats counts match outcomes over all episode/country pairs
type MatchStats struct {
	Pairs         int `json:"pairs"`
	Matched       int `json:"matched"`
	NoTradingDate int `json:"no_trading_date"`
	GapExceeded   int `json:"gap_exceeded"`
}

// MatchEpisodes pairs every episode with every market country and finds the
// first trading date of that country on or after the episode start. The
// output is country-major: all episodes for countries[0], then countries[1].
// A trading date further than MaxGapDays from the start is discarded while
// its gap is kept.
func MatchEpisodes(episodes []domain.ConflictEpisode, countries []string, calendar *domain.TradingCalendar, opts MatchOptions) ([]domain.MatchedEpisode, MatchStats) {
	stats := MatchStats{Pairs: len(episodes) * len(countries)}
	matches := make([]domain.MatchedEpisode, 0, stats.Pairs)

	for _, country := range countries {
		for _, ep := range episodes {
			m := domain.MatchedEpisode{ConflictEpisode: ep, Country: country}
			next, ok := calendar.NextOnOrAfter(country, ep.StartDate)
			if !ok {
				stats.NoTradingDate++
				matches = append(matches, m)
				continue
			}
			m.GapDays = domain.DaysBetween(ep.StartDate, next)
			m.HasGap = true
			if m.GapDays > opts.MaxGapDays {
				stats.GapExceeded++
			} else {
				m.TradingDate = next
				stats.Matched++
			}
			matches = append(matches, m)
		}
	}
	return matches, stats
}
