package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "conflictpanel/internal/errors"
	"conflictpanel/pkg/contracts/domain"
)

func validEpisode(id int, prec domain.Precision) domain.ConflictEpisode {
	return domain.ConflictEpisode{
		ConflictID:    id,
		EpisodeID:     "x",
		OfficialStart: true,
		StartDate:     time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC),
		StartPrec:     prec,
	}
}

func TestEpisodeValidator(t *testing.T) {
	v := NewEpisodeValidator()

	assert.NoError(t, v.Validate(nil))
	assert.NoError(t, v.Validate([]domain.ConflictEpisode{
		validEpisode(1, domain.PrecisionDay),
		validEpisode(2, domain.PrecisionMonth),
	}))

	noDate := validEpisode(3, domain.PrecisionDay)
	noDate.StartDate = time.Time{}

	err := v.Validate([]domain.ConflictEpisode{
		validEpisode(1, domain.PrecisionDay),
		validEpisode(4, domain.PrecisionYear),
		noDate,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "StartPrec failed oneof")
	assert.Contains(t, err.Error(), "StartDate failed required")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 2, appErr.Context["violations"])
}

func TestDuplicateIDs(t *testing.T) {
	episodes := []domain.ConflictEpisode{
		{EpisodeID: "1_20200101"},
		{EpisodeID: "2_20200101"},
		{EpisodeID: "1_20200101"},
		{EpisodeID: "1_20200101"},
	}
	assert.Equal(t, []string{"1_20200101"}, DuplicateIDs(episodes))
	assert.Empty(t, DuplicateIDs(episodes[:2]))
}
