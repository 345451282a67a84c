package exporter

import (
	"conflictpanel/pkg/contracts/domain"
)

// Table is a named output table rendered one row at a time. The writer adds
// the leading unnamed row-index column.
type Table interface {
	Name() string
	Header() []string
	Len() int
	Row(i int) []string
}

// Column order of the output tables. Downstream scripts address some of these
// by position, so the order is part of the file format.
var (
	priceHeader = []string{
		"trading_date", "company_ticker", "company_name", "otc", "company_price",
		"company_price_to_book", "company_market_cap", "index_name", "index_price",
		"country",
	}

	episodeHeader = []string{
		"conflict_id", "conflict_episode_id", "zero_episode", "official_start",
		"start_date3", "start_prec3", "high_intensity_start",
		"type_start_international", "location", "side_a", "side_b",
		"territory_name", "region", "version",
	}

	matchedEpisodeHeader = []string{
		"conflict_id", "conflict_episode_id", "zero_episode", "official_start",
		"start_date3", "start_prec3", "difference_dates", "high_intensity_start",
		"type_start_international", "location", "side_a", "side_b",
		"territory_name", "region", "version",
	}
)

func priceFields(p domain.PriceObservation) []string {
	return []string{
		formatDate(p.TradingDate),
		p.CompanyTicker,
		p.CompanyName,
		p.OTC,
		formatOptionalFloat(p.CompanyPrice),
		formatOptionalFloat(p.PriceToBook),
		formatOptionalFloat(p.MarketCap),
		p.IndexName,
		formatOptionalFloat(p.IndexPrice),
		p.Country,
	}
}

func episodeFields(e domain.ConflictEpisode) []string {
	return []string{
		formatInt(e.ConflictID),
		e.EpisodeID,
		formatFlag(e.ZeroEpisode),
		formatFlag(e.OfficialStart),
		formatDate(e.StartDate),
		formatInt(int(e.StartPrec)),
		e.HighIntensityStart.String(),
		e.TypeStartInternational.String(),
		e.Location,
		e.SideA,
		e.SideB,
		e.TerritoryName,
		e.Region,
		e.Version,
	}
}

func matchedEpisodeFields(m *domain.MatchedEpisode) []string {
	if m == nil {
		return make([]string, len(matchedEpisodeHeader))
	}
	e := m.ConflictEpisode
	return []string{
		formatInt(e.ConflictID),
		e.EpisodeID,
		formatFlag(e.ZeroEpisode),
		formatFlag(e.OfficialStart),
		formatDate(e.StartDate),
		formatInt(int(e.StartPrec)),
		formatGap(m.GapDays, m.HasGap),
		e.HighIntensityStart.String(),
		e.TypeStartInternational.String(),
		e.Location,
		e.SideA,
		e.SideB,
		e.TerritoryName,
		e.Region,
		e.Version,
	}
}

// EpisodesTable is the cleaned episode table before country replication
type EpisodesTable struct {
	FileName string
	Episodes []domain.ConflictEpisode
}

func (t EpisodesTable) Name() string       { return t.FileName }
func (t EpisodesTable) Header() []string   { return episodeHeader }
func (t EpisodesTable) Len() int           { return len(t.Episodes) }
func (t EpisodesTable) Row(i int) []string { return episodeFields(t.Episodes[i]) }

// PricesTable is the consolidated price panel
type PricesTable struct {
	FileName string
	Prices   []domain.PriceObservation
}

func (t PricesTable) Name() string       { return t.FileName }
func (t PricesTable) Header() []string   { return priceHeader }
func (t PricesTable) Len() int           { return len(t.Prices) }
func (t PricesTable) Row(i int) []string { return priceFields(t.Prices[i]) }

// ConflictPanelTable is the market vs. conflict panel
type ConflictPanelTable struct {
	FileName string
	Rows     []domain.ConflictPanelRow
}

func (t ConflictPanelTable) Name() string { return t.FileName }

func (t ConflictPanelTable) Header() []string {
	return concat(priceHeader, matchedEpisodeHeader)
}

func (t ConflictPanelTable) Len() int { return len(t.Rows) }

func (t ConflictPanelTable) Row(i int) []string {
	r := t.Rows[i]
	return concat(priceFields(r.Price), matchedEpisodeFields(r.Episode))
}

// NewsPanelTable is the market vs. news panel. Its trailing columns are the
// content-analysis columns in sheet order.
type NewsPanelTable struct {
	FileName   string
	NewsHeader []string
	Rows       []domain.NewsPanelRow
}

func (t NewsPanelTable) Name() string { return t.FileName }

func (t NewsPanelTable) Header() []string {
	return concat(priceHeader, t.NewsHeader)
}

func (t NewsPanelTable) Len() int { return len(t.Rows) }

func (t NewsPanelTable) Row(i int) []string {
	r := t.Rows[i]
	news := make([]string, len(t.NewsHeader))
	if r.News != nil {
		copy(news, r.News.Values)
	}
	return concat(priceFields(r.Price), news)
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
