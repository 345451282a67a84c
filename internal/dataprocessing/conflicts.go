package dataprocessing

import (
	"fmt"
	"time"

	"conflictpanel/internal/config"
	"conflictpanel/pkg/contracts/domain"
)

// Conflict dataset columns read by ParseConflicts
const (
	colConflictID     = "conflict_id"
	colLocation       = "location"
	colSideA          = "side_a"
	colSideB          = "side_b"
	colTerritoryName  = "territory_name"
	colYear           = "year"
	colIntensityLevel = "intensity_level"
	colTypeOfConflict = "type_of_conflict"
	colStartDate      = "start_date"
	colStartPrec      = "start_prec"
	colStartDate2     = "start_date2"
	colStartPrec2     = "start_prec2"
	colRegion         = "region"
	colVersion        = "version"
)

var conflictColumns = []string{
	colConflictID, colLocation, colSideA, colSideB, colTerritoryName, colYear,
	colIntensityLevel, colTypeOfConflict, colStartDate, colStartPrec,
	colStartDate2, colStartPrec2, colRegion, colVersion,
}

// ParseConflicts reads the conflict-year rows of the armed conflict workbook
func ParseConflicts(path, sheet string) ([]domain.ConflictRecord, error) {
	table, err := readSheet(path, sheet, 0)
	if err != nil {
		return nil, err
	}
	if err := table.require(conflictColumns...); err != nil {
		return nil, err
	}

	records := make([]domain.ConflictRecord, 0, len(table.rows))
	for i, row := range table.rows {
		if isBlankRow(row) {
			continue
		}
		rec, err := parseConflictRow(table, i, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseConflictRow(table *sheetTable, i int, row []string) (domain.ConflictRecord, error) {
	rec := domain.ConflictRecord{
		Location:      table.cell(row, colLocation),
		SideA:         table.cell(row, colSideA),
		SideB:         table.cell(row, colSideB),
		TerritoryName: table.cell(row, colTerritoryName),
		Region:        table.cell(row, colRegion),
		Version:       table.cell(row, colVersion),
	}

	ints := []struct {
		column string
		dst    *int
	}{
		{colConflictID, &rec.ConflictID},
		{colYear, &rec.Year},
		{colIntensityLevel, &rec.IntensityLevel},
		{colTypeOfConflict, &rec.TypeOfConflict},
	}
	for _, f := range ints {
		n, err := parseCode(table.cell(row, f.column))
		if err != nil {
			return rec, table.parseError(i, f.column, err)
		}
		*f.dst = n
	}
	if rec.ConflictID == 0 {
		return rec, table.parseError(i, colConflictID, fmt.Errorf("missing conflict id"))
	}

	precs := []struct {
		column string
		dst    *domain.Precision
	}{
		{colStartPrec, &rec.StartPrec},
		{colStartPrec2, &rec.StartPrec2},
	}
	for _, f := range precs {
		n, err := parseCode(table.cell(row, f.column))
		if err != nil {
			return rec, table.parseError(i, f.column, err)
		}
		*f.dst = domain.Precision(n)
	}

	dates := []struct {
		column string
		dst    *time.Time
	}{
		{colStartDate, &rec.StartDate},
		{colStartDate2, &rec.StartDate2},
	}
	for _, f := range dates {
		d, err := parseSheetDate(table.cell(row, f.column), table.date1904)
		if err != nil {
			return rec, table.parseError(i, f.column, err)
		}
		*f.dst = d
	}

	return rec, nil
}

// EpisodeOptions tunes NormalizeEpisodes
type EpisodeOptions struct {
	// SplitGapDays is the largest start_date to start_date2 gap, in days,
	// for which a first episode keeps its recorded start
	SplitGapDays int
}

// EpisodeStats counts what NormalizeEpisodes kept and dropped
type EpisodeStats struct {
	Read             int `json:"read"`
	Imprecise        int `json:"imprecise"`
	Duplicates       int `json:"duplicates"`
	Split            int `json:"split"`
	UnresolvedDate   int `json:"unresolved_date"`
	ImpreciseOutcome int `json:"imprecise_outcome"`
	Episodes         int `json:"episodes"`
	ZeroEpisodes     int `json:"zero_episodes"`
}

type episodeKey struct {
	conflictID int
	startDate2 time.Time
}

// candidate is an episode before the final precision check
type candidate struct {
	rec  domain.ConflictRecord
	date time.Time
	prec domain.Precision
	zero bool
	high domain.Indicator
	intl domain.Indicator
}

// NormalizeEpisodes turns conflict-year rows into episodes with exactly one
// start date each. Rows keep their input order; zero episodes split off a
// first episode are appended after all original episodes.
func NormalizeEpisodes(records []domain.ConflictRecord, opts EpisodeOptions) ([]domain.ConflictEpisode, EpisodeStats) {
	stats := EpisodeStats{Read: len(records)}

	seen := make(map[episodeKey]struct{}, len(records))
	kept := make([]domain.ConflictRecord, 0, len(records))
	for _, r := range records {
		if !r.StartPrec.IsPrecise() && !r.StartPrec2.IsPrecise() {
			stats.Imprecise++
			continue
		}
		key := episodeKey{conflictID: r.ConflictID, startDate2: domain.DateOnly(r.StartDate2)}
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}

	firstYear := make(map[int]int)
	for _, r := range kept {
		if y, ok := firstYear[r.ConflictID]; !ok || r.Year < y {
			firstYear[r.ConflictID] = r.Year
		}
	}

	originals := make([]candidate, 0, len(kept))
	var zeros []candidate
	for _, r := range kept {
		c := candidate{
			rec:  r,
			high: highIntensityStart(r.IntensityLevel),
			intl: typeStartInternational(r.TypeOfConflict),
		}
		first := r.Year == firstYear[r.ConflictID]
		bothDates := !r.StartDate.IsZero() && !r.StartDate2.IsZero()

		switch {
		case !first:
			c.date, c.prec = r.StartDate2, r.StartPrec2
		case !bothDates:
			// day gap undefined: no authoritative start
		case domain.DaysBetween(r.StartDate, r.StartDate2) <= opts.SplitGapDays:
			c.date, c.prec = r.StartDate, r.StartPrec
		default:
			c.date, c.prec = r.StartDate2, r.StartPrec2
			zeros = append(zeros, zeroEpisode(r, c))
			stats.Split++
		}
		originals = append(originals, c)
	}

	all := append(originals, zeros...)
	episodes := make([]domain.ConflictEpisode, 0, len(all))
	for _, c := range all {
		if c.date.IsZero() {
			stats.UnresolvedDate++
			continue
		}
		if !c.prec.IsPrecise() {
			stats.ImpreciseOutcome++
			continue
		}
		episodes = append(episodes, c.episode())
		if c.zero {
			stats.ZeroEpisodes++
		}
	}
	stats.Episodes = len(episodes)

	return episodes, stats
}

// zeroEpisode is the earlier start of a first episode whose two recorded
// dates are far apart. A start that falls in an earlier year than the
// escalation cannot already be high intensity.
func zeroEpisode(r domain.ConflictRecord, original candidate) candidate {
	z := candidate{
		rec:  r,
		date: r.StartDate,
		prec: r.StartPrec,
		zero: true,
		high: original.high,
		intl: original.intl,
	}
	if r.StartDate.Year() != r.StartDate2.Year() {
		z.high = domain.IndicatorFalse
		z.rec.IntensityLevel = domain.IntensityMinor
	}
	return z
}

func (c candidate) episode() domain.ConflictEpisode {
	date := domain.DateOnly(c.date)
	return domain.ConflictEpisode{
		ConflictID:             c.rec.ConflictID,
		EpisodeID:              EpisodeID(c.rec.ConflictID, date),
		ZeroEpisode:            c.zero,
		OfficialStart:          true,
		StartDate:              date,
		StartPrec:              c.prec,
		HighIntensityStart:     c.high,
		TypeStartInternational: c.intl,
		Location:               c.rec.Location,
		SideA:                  c.rec.SideA,
		SideB:                  c.rec.SideB,
		TerritoryName:          c.rec.TerritoryName,
		Region:                 c.rec.Region,
		Version:                c.rec.Version,
	}
}

// EpisodeID derives the episode identifier from the conflict and its start
func EpisodeID(conflictID int, start time.Time) string {
	return fmt.Sprintf("%d_%s", conflictID, start.Format(config.EpisodeIDDateLayout))
}

func highIntensityStart(level int) domain.Indicator {
	switch level {
	case domain.IntensityWar:
		return domain.IndicatorTrue
	case domain.IntensityMinor:
		return domain.IndicatorFalse
	default:
		return domain.IndicatorMissing
	}
}

func typeStartInternational(code int) domain.Indicator {
	switch code {
	case domain.ConflictExtrasystemic, domain.ConflictInterstate, domain.ConflictInternationalIntrastate:
		return domain.IndicatorTrue
	case domain.ConflictIntrastate:
		return domain.IndicatorFalse
	default:
		return domain.IndicatorMissing
	}
}
