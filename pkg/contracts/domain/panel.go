package domain

// ConflictPanelRow is one row of the market vs. conflict panel. Episode is nil
// when no episode started on the row's trading date in the row's country.
type ConflictPanelRow struct {
	Price   PriceObservation
	Episode *MatchedEpisode
}

// NewsPanelRow is one row of the market vs. news panel
type NewsPanelRow struct {
	Price PriceObservation
	News  *NewsContentRecord
}
