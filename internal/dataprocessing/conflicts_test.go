package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "conflictpanel/internal/errors"
	"conflictpanel/pkg/contracts/domain"
)

func conflict(id, year, intensity, typ int, start time.Time, prec int, start2 time.Time, prec2 int) domain.ConflictRecord {
	return domain.ConflictRecord{
		ConflictID:     id,
		Location:       "Somewhere",
		SideA:          "Government",
		SideB:          "Rebels",
		Year:           year,
		IntensityLevel: intensity,
		TypeOfConflict: typ,
		StartDate:      start,
		StartPrec:      domain.Precision(prec),
		StartDate2:     start2,
		StartPrec2:     domain.Precision(prec2),
		Region:         "1",
		Version:        "20.1",
	}
}

func episodeIDs(episodes []domain.ConflictEpisode) []string {
	ids := make([]string, len(episodes))
	for i, ep := range episodes {
		ids[i] = ep.EpisodeID
	}
	return ids
}

func TestNormalizeEpisodes(t *testing.T) {
	records := []domain.ConflictRecord{
		// first episode, dates 5 days apart: recorded start wins
		conflict(100, 2020, 1, 3, day(2020, 1, 10), 1, day(2020, 1, 15), 1),
		// duplicate of the row above
		conflict(100, 2020, 1, 3, day(2020, 1, 10), 1, day(2020, 1, 15), 1),
		// later year, escalation date only known to the year
		conflict(100, 2021, 2, 3, day(2020, 1, 10), 1, day(2021, 2, 1), 5),
		// first episode, dates far apart in different years: split
		conflict(200, 2019, 2, 3, day(2018, 3, 1), 1, day(2019, 6, 15), 2),
		// no usable precision at all
		conflict(300, 2019, 1, 2, day(2019, 1, 1), 5, day(2019, 1, 1), 5),
	}

	episodes, stats := NormalizeEpisodes(records, EpisodeOptions{SplitGapDays: 10})

	assert.Equal(t, []string{"100_20200110", "200_20190615", "200_20180301"}, episodeIDs(episodes))
	assert.Equal(t, EpisodeStats{
		Read:             5,
		Imprecise:        1,
		Duplicates:       1,
		Split:            1,
		ImpreciseOutcome: 1,
		Episodes:         3,
		ZeroEpisodes:     1,
	}, stats)

	first := episodes[0]
	assert.Equal(t, day(2020, 1, 10), first.StartDate)
	assert.Equal(t, domain.PrecisionDay, first.StartPrec)
	assert.False(t, first.ZeroEpisode)
	assert.True(t, first.OfficialStart)
	assert.Equal(t, domain.IndicatorFalse, first.HighIntensityStart)
	assert.Equal(t, domain.IndicatorFalse, first.TypeStartInternational)

	escalation := episodes[1]
	assert.Equal(t, day(2019, 6, 15), escalation.StartDate)
	assert.Equal(t, domain.PrecisionMonth, escalation.StartPrec)
	assert.False(t, escalation.ZeroEpisode)
	assert.Equal(t, domain.IndicatorTrue, escalation.HighIntensityStart)

	zero := episodes[2]
	assert.Equal(t, day(2018, 3, 1), zero.StartDate)
	assert.Equal(t, domain.PrecisionDay, zero.StartPrec)
	assert.True(t, zero.ZeroEpisode)
	assert.Equal(t, domain.IndicatorFalse, zero.HighIntensityStart)
	assert.Equal(t, escalation.TypeStartInternational, zero.TypeStartInternational)
}

func TestNormalizeEpisodes_SplitWithinYearKeepsIntensity(t *testing.T) {
	records := []domain.ConflictRecord{
		conflict(400, 2019, 2, 4, day(2019, 1, 1), 2, day(2019, 3, 1), 1),
	}

	episodes, stats := NormalizeEpisodes(records, EpisodeOptions{SplitGapDays: 10})
	require.Len(t, episodes, 2)
	assert.Equal(t, 1, stats.ZeroEpisodes)

	original, zero := episodes[0], episodes[1]
	assert.Equal(t, domain.IndicatorTrue, original.HighIntensityStart)
	assert.Equal(t, domain.IndicatorTrue, zero.HighIntensityStart)
	assert.Equal(t, domain.IndicatorTrue, zero.TypeStartInternational)
}

func TestNormalizeEpisodes_SplitConsistency(t *testing.T) {
	records := []domain.ConflictRecord{
		conflict(1, 2000, 1, 3, day(1999, 5, 1), 1, day(2000, 2, 1), 1),
		conflict(2, 2001, 2, 1, day(2001, 1, 1), 2, day(2001, 1, 11), 1),
		conflict(2, 2002, 2, 1, day(2001, 1, 1), 2, day(2002, 4, 2), 1),
		conflict(3, 2005, 1, 2, day(2004, 12, 1), 2, day(2005, 8, 30), 2),
	}

	episodes, _ := NormalizeEpisodes(records, EpisodeOptions{SplitGapDays: 10})

	originals := map[int]domain.ConflictEpisode{}
	for _, ep := range episodes {
		assert.True(t, ep.StartPrec.IsPrecise(), ep.EpisodeID)
		assert.True(t, ep.OfficialStart)
		if !ep.ZeroEpisode {
			if _, ok := originals[ep.ConflictID]; !ok {
				originals[ep.ConflictID] = ep
			}
		}
	}

	zeros := 0
	for _, ep := range episodes {
		if !ep.ZeroEpisode {
			continue
		}
		zeros++
		orig, ok := originals[ep.ConflictID]
		require.True(t, ok)
		assert.True(t, ep.StartDate.Before(orig.StartDate))
		assert.Greater(t, domain.DaysBetween(ep.StartDate, orig.StartDate), 10)
	}
	assert.Equal(t, 2, zeros)

	// conflict 2: 10 days apart is not a split
	assert.Contains(t, episodeIDs(episodes), "2_20010101")
	assert.NotContains(t, episodeIDs(episodes), "2_20010111")
}

func TestNormalizeEpisodes_UnknownCodesAreMissing(t *testing.T) {
	records := []domain.ConflictRecord{
		conflict(9, 2010, 0, 7, day(2010, 1, 1), 1, day(2010, 1, 1), 1),
	}

	episodes, _ := NormalizeEpisodes(records, EpisodeOptions{SplitGapDays: 10})
	require.Len(t, episodes, 1)
	assert.Equal(t, domain.IndicatorMissing, episodes[0].HighIntensityStart)
	assert.Equal(t, domain.IndicatorMissing, episodes[0].TypeStartInternational)
	assert.Equal(t, "", episodes[0].HighIntensityStart.String())
}

func TestNormalizeEpisodes_MissingDateIsUnresolved(t *testing.T) {
	records := []domain.ConflictRecord{
		conflict(5, 2010, 1, 3, day(2010, 1, 1), 1, time.Time{}, 1),
		conflict(5, 2011, 1, 3, day(2010, 1, 1), 1, time.Time{}, 1),
	}

	episodes, stats := NormalizeEpisodes(records, EpisodeOptions{SplitGapDays: 10})
	assert.Empty(t, episodes)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.UnresolvedDate)
}

func TestEpisodeID(t *testing.T) {
	assert.Equal(t, "11345_20140315", EpisodeID(11345, day(2014, 3, 15)))
}

func TestParseConflicts(t *testing.T) {
	header := []interface{}{
		"conflict_id", "location", "side_a", "side_b", "incompatibility", "territory_name",
		"year", "intensity_level", "type_of_conflict", "start_date", "start_prec",
		"start_date2", "start_prec2", "region", "version",
	}
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		header,
		{11345, "Ukraine", "Government of Ukraine", "DPR", 1, "Donetsk", 2014, 2, 3,
			day(2014, 3, 15), 1, "2014-04-14", 1, "1", "20.1"},
		{},
		{333, "Mali", "Government of Mali", "AQIM", 2, "", 2009, 1, 4,
			day(2009, 6, 1), 2, day(2009, 6, 4), 1, "4", "20.1"},
	})

	records, err := ParseConflicts(path, "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	rec := records[0]
	assert.Equal(t, 11345, rec.ConflictID)
	assert.Equal(t, "Ukraine", rec.Location)
	assert.Equal(t, "Donetsk", rec.TerritoryName)
	assert.Equal(t, 2014, rec.Year)
	assert.Equal(t, 2, rec.IntensityLevel)
	assert.Equal(t, day(2014, 3, 15), rec.StartDate)
	assert.Equal(t, day(2014, 4, 14), rec.StartDate2)
	assert.Equal(t, domain.PrecisionDay, rec.StartPrec2)
	assert.Equal(t, "20.1", rec.Version)

	assert.Equal(t, 333, records[1].ConflictID)
	assert.Equal(t, domain.PrecisionMonth, records[1].StartPrec)
}

func TestParseConflicts_Errors(t *testing.T) {
	missing := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"conflict_id", "location"},
		{1, "Somewhere"},
	})
	_, err := ParseConflicts(missing, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))

	header := make([]interface{}, len(conflictColumns))
	for i, c := range conflictColumns {
		header[i] = c
	}
	row := []interface{}{"abc", "x", "a", "b", "", 2000, 1, 3, "2000-01-01", 1, "2000-01-01", 1, "1", "20.1"}
	bad := writeWorkbook(t, "Sheet1", [][]interface{}{header, row})
	_, err = ParseConflicts(bad, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 2, appErr.Context["row"])
}
