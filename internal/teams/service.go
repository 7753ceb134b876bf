package teams

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mandrade85ma-cloud/site/internal/db"
	dbgen "github.com/mandrade85ma-cloud/site/internal/db/generated"
	"github.com/mandrade85ma-cloud/site/internal/metrics"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrTeamsDisabled     = errors.New("balanced teams are not enabled for this event")
	ErrTeamsNotGenerated = errors.New("teams have not been generated yet")
	ErrNotOnRoster       = errors.New("player has not confirmed attendance")
	ErrEmptyRatings      = errors.New("at least one rating is required")
	ErrUnknownUser       = errors.New("user not found")
)

// RatingInput is one organizer-supplied rating for a confirmed player.
type RatingInput struct {
	UserID       string `json:"userId"`
	Rating       int    `json:"rating"`
	IsGoalkeeper bool   `json:"isGoalkeeper"`
}

// StoredResult is the persisted lineup of an event.
type StoredResult struct {
	EventID string `json:"eventId"`
	BalanceResult
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	db *db.DB
}

func NewService(database *db.DB) (*Service, error) {
	if database == nil || database.Queries == nil {
		return nil, errors.New("teams service requires a database")
	}
	return &Service{db: database}, nil
}

// Roster returns the accepted players of an event with their stored ratings.
func (s *Service) Roster(ctx context.Context, eventID string) ([]Player, error) {
	if _, err := requireTeamsEnabled(ctx, s.db.Queries, eventID); err != nil {
		return nil, err
	}
	return loadRoster(ctx, s.db.Queries, eventID)
}

// SaveRatings upserts ratings for confirmed players, keyed by event and user.
// Either every rating is stored or none is.
func (s *Service) SaveRatings(ctx context.Context, eventID string, ratings []RatingInput) error {
	logger := serviceLogger(ctx, eventID)

	if len(ratings) == 0 {
		return ErrEmptyRatings
	}
	if err := validateRatingInputs(ratings); err != nil {
		return err
	}

	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		if _, err := requireTeamsEnabled(ctx, txdb.Queries, eventID); err != nil {
			return err
		}

		roster, err := loadRoster(ctx, txdb.Queries, eventID)
		if err != nil {
			return err
		}
		confirmed := make(map[string]struct{}, len(roster))
		for _, p := range roster {
			confirmed[p.UserID] = struct{}{}
		}

		var missing []error
		for _, r := range ratings {
			if _, ok := confirmed[r.UserID]; !ok {
				missing = append(missing, fmt.Errorf("player %s: %w", r.UserID, ErrNotOnRoster))
			}
		}
		if len(missing) > 0 {
			return errors.Join(missing...)
		}

		for _, r := range ratings {
			if err := txdb.Queries.UpsertEventPlayerRating(ctx, dbgen.UpsertEventPlayerRatingParams{
				EventID:      eventID,
				UserID:       r.UserID,
				Rating:       int64(r.Rating),
				IsGoalkeeper: r.IsGoalkeeper,
			}); err != nil {
				return fmt.Errorf("upsert rating for %s: %w", r.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Int("rating_count", len(ratings)).Msg("Failed to save player ratings")
		return err
	}

	logger.Info().Int("rating_count", len(ratings)).Msg("Player ratings saved")
	return nil
}

// Generate balances the confirmed roster of an event and replaces any
// previously stored lineup with the new one.
func (s *Service) Generate(ctx context.Context, eventID, createdBy string) (result BalanceResult, err error) {
	logger := serviceLogger(ctx, eventID)
	start := time.Now()
	defer func() {
		metrics.BalanceDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.BalanceRunsTotal.WithLabelValues(metrics.ResultFailure).Inc()
			return
		}
		metrics.BalanceRunsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	}()

	if _, err := requireTeamsEnabled(ctx, s.db.Queries, eventID); err != nil {
		return BalanceResult{}, err
	}

	roster, err := loadRoster(ctx, s.db.Queries, eventID)
	if err != nil {
		return BalanceResult{}, err
	}
	if err := ValidateRoster(roster); err != nil {
		logger.Warn().Err(err).Int("roster_size", len(roster)).Msg("Roster is not ready for balancing")
		return BalanceResult{}, err
	}

	result = Balance(roster)

	params, err := encodeResult(eventID, createdBy, result)
	if err != nil {
		return BalanceResult{}, err
	}
	if err := s.db.Queries.UpsertEventTeams(ctx, params); err != nil {
		if db.IsForeignKeyViolation(err) {
			return BalanceResult{}, fmt.Errorf("created by %s: %w", createdBy, ErrUnknownUser)
		}
		logger.Error().Err(err).Msg("Failed to store generated teams")
		return BalanceResult{}, fmt.Errorf("store teams: %w", err)
	}

	metrics.RosterSize.Observe(float64(len(roster)))
	for _, w := range result.Warnings {
		metrics.BalanceWarningsTotal.WithLabelValues(warningKind(w)).Inc()
	}

	logger.Info().
		Int("roster_size", len(roster)).
		Int("team_a_size", len(result.TeamA)).
		Int("team_b_size", len(result.TeamB)).
		Int("diff", result.Stats.Diff).
		Strs("warnings", result.Warnings).
		Msg("Teams generated")
	return result, nil
}

// Result returns the stored lineup of an event.
func (s *Service) Result(ctx context.Context, eventID string) (StoredResult, error) {
	if _, err := requireTeamsEnabled(ctx, s.db.Queries, eventID); err != nil {
		return StoredResult{}, err
	}

	row, err := s.db.Queries.GetEventTeams(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StoredResult{}, ErrTeamsNotGenerated
		}
		return StoredResult{}, fmt.Errorf("load teams: %w", err)
	}
	return decodeResult(row)
}

func serviceLogger(ctx context.Context, eventID string) zerolog.Logger {
	return log.Ctx(ctx).With().
		Str("component", "teams_service").
		Str("event_id", eventID).
		Logger()
}

func requireTeamsEnabled(ctx context.Context, q *dbgen.Queries, eventID string) (dbgen.Event, error) {
	event, err := q.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Event{}, ErrEventNotFound
		}
		return dbgen.Event{}, fmt.Errorf("load event: %w", err)
	}
	if !event.TeamsEnabled {
		return dbgen.Event{}, ErrTeamsDisabled
	}
	return event, nil
}

func loadRoster(ctx context.Context, q *dbgen.Queries, eventID string) ([]Player, error) {
	rows, err := q.ListAcceptedRoster(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list accepted roster: %w", err)
	}

	players := make([]Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, playerFromRow(row))
	}
	return players, nil
}

// playerFromRow fills unrated players with the default rating and no
// goalkeeper flag, so an organizer sees a complete form to confirm.
func playerFromRow(row dbgen.ListAcceptedRosterRow) Player {
	name := strings.TrimSpace(row.Name.String)
	if !row.Name.Valid || name == "" {
		name = row.UserID
	}

	rating := DefaultRating
	if row.Rating.Valid {
		rating = int(row.Rating.Int64)
	}
	goalkeeper := row.IsGoalkeeper.Valid && row.IsGoalkeeper.Bool

	return Player{
		UserID:       row.UserID,
		Name:         name,
		Rating:       &rating,
		IsGoalkeeper: &goalkeeper,
	}
}

func validateRatingInputs(ratings []RatingInput) error {
	var errs []error
	seen := make(map[string]struct{}, len(ratings))
	for _, r := range ratings {
		if strings.TrimSpace(r.UserID) == "" {
			errs = append(errs, errors.New("userId is required"))
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			errs = append(errs, fmt.Errorf("player %s: %w", r.UserID, ErrDuplicatePlayer))
			continue
		}
		seen[r.UserID] = struct{}{}
		if !ValidRating(r.Rating) {
			rating := r.Rating
			errs = append(errs, RatingError{UserID: r.UserID, Rating: &rating, Err: ErrRatingOutOfRange})
		}
	}
	return errors.Join(errs...)
}

func encodeResult(eventID, createdBy string, result BalanceResult) (dbgen.UpsertEventTeamsParams, error) {
	teamA, err := json.Marshal(result.TeamA)
	if err != nil {
		return dbgen.UpsertEventTeamsParams{}, fmt.Errorf("encode team A: %w", err)
	}
	teamB, err := json.Marshal(result.TeamB)
	if err != nil {
		return dbgen.UpsertEventTeamsParams{}, fmt.Errorf("encode team B: %w", err)
	}
	stats, err := json.Marshal(result.Stats)
	if err != nil {
		return dbgen.UpsertEventTeamsParams{}, fmt.Errorf("encode stats: %w", err)
	}
	warnings, err := json.Marshal(result.Warnings)
	if err != nil {
		return dbgen.UpsertEventTeamsParams{}, fmt.Errorf("encode warnings: %w", err)
	}

	return dbgen.UpsertEventTeamsParams{
		EventID:   eventID,
		TeamA:     string(teamA),
		TeamB:     string(teamB),
		Stats:     string(stats),
		Warnings:  string(warnings),
		CreatedBy: createdBy,
	}, nil
}

func decodeResult(row dbgen.EventTeam) (StoredResult, error) {
	stored := StoredResult{
		EventID:   row.EventID,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.TeamA), &stored.TeamA); err != nil {
		return StoredResult{}, fmt.Errorf("decode team A: %w", err)
	}
	if err := json.Unmarshal([]byte(row.TeamB), &stored.TeamB); err != nil {
		return StoredResult{}, fmt.Errorf("decode team B: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Stats), &stored.Stats); err != nil {
		return StoredResult{}, fmt.Errorf("decode stats: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Warnings), &stored.Warnings); err != nil {
		return StoredResult{}, fmt.Errorf("decode warnings: %w", err)
	}
	if stored.Warnings == nil {
		stored.Warnings = []string{}
	}
	return stored, nil
}

func warningKind(warning string) string {
	switch {
	case warning == warningNoGoalkeepers:
		return "no_goalkeepers"
	case warning == warningOneGoalkeeper:
		return "single_goalkeeper"
	case strings.HasSuffix(warning, "Só 2 foram usados."):
		return "extra_goalkeepers"
	default:
		return "other"
	}
}
