package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "conflictpanel/internal/errors"
	"conflictpanel/pkg/contracts/domain"
)

// maxReportedViolations bounds the detail carried in a validation error
const maxReportedViolations = 5

// EpisodeValidator checks normalized episodes against their struct tags
type EpisodeValidator struct {
	validate *validator.Validate
}

// NewEpisodeValidator creates a validator for domain.ConflictEpisode
func NewEpisodeValidator() *EpisodeValidator {
	return &EpisodeValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks every episode. The error names the first few offending
// episodes.
func (v *EpisodeValidator) Validate(episodes []domain.ConflictEpisode) error {
	var violations []string

	for i, ep := range episodes {
		if err := v.validate.Struct(ep); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) {
				for _, fe := range fieldErrs {
					violations = append(violations,
						fmt.Sprintf("episode %d (%s): %s failed %s", i, ep.EpisodeID, fe.Field(), fe.Tag()))
				}
			} else {
				violations = append(violations, fmt.Sprintf("episode %d: %v", i, err))
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}

	shown := violations
	if len(shown) > maxReportedViolations {
		shown = shown[:maxReportedViolations]
	}
	return apperrors.NewAppValidationError(fmt.Sprintf("%d invalid episodes: %s",
		len(violations), strings.Join(shown, "; "))).
		WithContext("violations", len(violations))
}

// DuplicateIDs lists episode ids that occur more than once, in first-seen
// order. Two rows of one conflict can resolve to the same start date.
func DuplicateIDs(episodes []domain.ConflictEpisode) []string {
	counts := make(map[string]int, len(episodes))
	var dups []string
	for _, ep := range episodes {
		counts[ep.EpisodeID]++
		if counts[ep.EpisodeID] == 2 {
			dups = append(dups, ep.EpisodeID)
		}
	}
	return dups
}
