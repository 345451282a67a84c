package domain

import (
	"time"
)

// Precision is the UCDP start-date precision code.
type Precision int

const (
	PrecisionUnknown Precision = 0
	PrecisionDay     Precision = 1
	PrecisionMonth   Precision = 2
	PrecisionYear    Precision = 5
)

// IsPrecise reports whether the code pins a start date to a day or a month.
func (p Precision) IsPrecise() bool {
	return p == PrecisionDay || p == PrecisionMonth
}

// Indicator is a 0/1 coded variable that may be missing.
type Indicator int8

const (
	IndicatorMissing Indicator = iota
	IndicatorFalse
	IndicatorTrue
)

// String renders the indicator the way the output tables expect it
func (i Indicator) String() string {
	switch i {
	case IndicatorTrue:
		return "1"
	case IndicatorFalse:
		return "0"
	default:
		return ""
	}
}

// IndicatorOf converts a bool into a set indicator
func IndicatorOf(b bool) Indicator {
	if b {
		return IndicatorTrue
	}
	return IndicatorFalse
}

// UCDP intensity and conflict-type codes
const (
	IntensityMinor = 1
	IntensityWar   = 2

	ConflictExtrasystemic           = 1
	ConflictInterstate              = 2
	ConflictIntrastate              = 3
	ConflictInternationalIntrastate = 4
)

// ConflictRecord is one conflict-year row of the armed conflict dataset
type ConflictRecord struct {
	ConflictID     int       `json:"conflict_id"`
	Location       string    `json:"location"`
	SideA          string    `json:"side_a"`
	SideB          string    `json:"side_b"`
	TerritoryName  string    `json:"territory_name"`
	Year           int       `json:"year"`
	IntensityLevel int       `json:"intensity_level"`
	TypeOfConflict int       `json:"type_of_conflict"`
	StartDate      time.Time `json:"start_date"`
	StartPrec      Precision `json:"start_prec"`
	StartDate2     time.Time `json:"start_date2"`
	StartPrec2     Precision `json:"start_prec2"`
	Region         string    `json:"region"`
	Version        string    `json:"version"`
}

// ConflictEpisode is a conflict start with exactly one authoritative date.
// One conflict may yield several episodes (the recorded start and a split-off
// zero episode).
type ConflictEpisode struct {
	ConflictID             int       `json:"conflict_id" validate:"required"`
	EpisodeID              string    `json:"conflict_episode_id" validate:"required"`
	ZeroEpisode            bool      `json:"zero_episode"`
	OfficialStart          bool      `json:"official_start"`
	StartDate              time.Time `json:"start_date3" validate:"required"`
	StartPrec              Precision `json:"start_prec3" validate:"oneof=1 2"`
	HighIntensityStart     Indicator `json:"high_intensity_start"`
	TypeStartInternational Indicator `json:"type_start_international"`
	Location               string    `json:"location"`
	SideA                  string    `json:"side_a"`
	SideB                  string    `json:"side_b"`
	TerritoryName          string    `json:"territory_name"`
	Region                 string    `json:"region"`
	Version                string    `json:"version"`
}

// MatchedEpisode pairs an episode with one market country and the first
// trading date of that market on or after the episode start.
type MatchedEpisode struct {
	ConflictEpisode
	Country string `json:"country"`
	// TradingDate is zero when no trading date was found or the gap was too large
	TradingDate time.Time `json:"start_trading_date"`
	// GapDays is set whenever a candidate date existed, even if it was discarded
	GapDays int  `json:"difference_dates"`
	HasGap  bool `json:"-"`
}

// Matched reports whether the episode found a usable trading date
func (m MatchedEpisode) Matched() bool {
	return !m.TradingDate.IsZero()
}
