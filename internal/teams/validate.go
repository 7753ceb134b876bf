package teams

import (
	"errors"
	"fmt"
)

var (
	ErrRatingMissing    = errors.New("rating is required")
	ErrRatingOutOfRange = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	ErrDuplicatePlayer  = errors.New("player appears more than once")
)

// RatingError reports a player whose rating cannot be used for balancing.
type RatingError struct {
	UserID string
	Rating *int
	Err    error
}

func (e RatingError) Error() string {
	if e.Rating == nil {
		return fmt.Sprintf("player %s: %v", e.UserID, e.Err)
	}
	return fmt.Sprintf("player %s: %v (got %d)", e.UserID, e.Err, *e.Rating)
}

func (e RatingError) Unwrap() error {
	return e.Err
}

// ValidRating reports whether rating is on the 1-5 scale.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// ValidateRoster checks the preconditions Balance relies on: every player has
// a recorded rating in range and no user id repeats. All problems are joined
// into the returned error.
func ValidateRoster(players []Player) error {
	var errs []error
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, ok := seen[p.UserID]; ok {
			errs = append(errs, fmt.Errorf("player %s: %w", p.UserID, ErrDuplicatePlayer))
			continue
		}
		seen[p.UserID] = struct{}{}

		switch {
		case p.Rating == nil:
			errs = append(errs, RatingError{UserID: p.UserID, Err: ErrRatingMissing})
		case !ValidRating(*p.Rating):
			errs = append(errs, RatingError{UserID: p.UserID, Rating: p.Rating, Err: ErrRatingOutOfRange})
		}
	}
	return errors.Join(errs...)
}
