// internal/api/teams/handlers.go
package teams

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mandrade85ma-cloud/site/internal/api/apiutil"
	appdb "github.com/mandrade85ma-cloud/site/internal/db"
	"github.com/mandrade85ma-cloud/site/internal/ratelimit"
	teamsvc "github.com/mandrade85ma-cloud/site/internal/teams"
)

const (
	teamsRequestTimeout = 5 * time.Second
	eventIDPathKey      = "id"
)

var (
	service     *teamsvc.Service
	serviceOnce sync.Once

	generateLimiter *ratelimit.Limiter
	trustProxy      bool
)

type ratingRequest struct {
	UserID       string `json:"userId"`
	Rating       int    `json:"rating"`
	IsGoalkeeper bool   `json:"isGoalkeeper"`
}

type saveRatingsRequest struct {
	Ratings []ratingRequest `json:"ratings"`
}

type generateTeamsRequest struct {
	CreatedBy string `json:"createdBy"`
}

type rosterResponse struct {
	EventID string           `json:"eventId"`
	Players []teamsvc.Player `json:"players"`
}

type generateTeamsResponse struct {
	EventID string `json:"eventId"`
	teamsvc.BalanceResult
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) error {
	if database == nil {
		return errors.New("teams handlers require a database")
	}
	svc, err := teamsvc.NewService(database)
	if err != nil {
		return err
	}
	serviceOnce.Do(func() {
		service = svc
	})
	return nil
}

// InitRateLimit throttles HandleGenerateTeams. A nil limiter disables it.
func InitRateLimit(limiter *ratelimit.Limiter, trustProxyHeaders bool) {
	generateLimiter = limiter
	trustProxy = trustProxyHeaders
}

// GET /api/v1/events/{id}/roster
func HandleRoster(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Teams service not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	eventID, err := apiutil.UUIDFromPath(r, eventIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsRequestTimeout)
	defer cancel()

	players, err := svc.Roster(ctx, eventID)
	if err != nil {
		writeServiceError(w, r, err, eventID, "Failed to load roster")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, rosterResponse{EventID: eventID, Players: players}); err != nil {
		logger.Error().Err(err).Str("event_id", eventID).Msg("Failed to write roster response")
	}
}

// PUT /api/v1/events/{id}/ratings
func HandleSaveRatings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Teams service not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	eventID, err := apiutil.UUIDFromPath(r, eventIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req saveRatingsRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	inputs, err := ratingInputs(req.Ratings)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsRequestTimeout)
	defer cancel()

	if err := svc.SaveRatings(ctx, eventID, inputs); err != nil {
		writeServiceError(w, r, err, eventID, "Failed to save ratings")
		return
	}

	players, err := svc.Roster(ctx, eventID)
	if err != nil {
		writeServiceError(w, r, err, eventID, "Failed to load roster")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, rosterResponse{EventID: eventID, Players: players}); err != nil {
		logger.Error().Err(err).Str("event_id", eventID).Msg("Failed to write ratings response")
	}
}

// POST /api/v1/events/{id}/teams
func HandleGenerateTeams(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Teams service not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	eventID, err := apiutil.UUIDFromPath(r, eventIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req generateTeamsRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	createdBy, err := apiutil.ParseUUIDField(req.CreatedBy, "createdBy")
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	clientIP := ratelimit.GetClientIP(r, trustProxy)
	if generateLimiter != nil {
		if limit := generateLimiter.CheckGenerate(eventID, clientIP); !limit.Allowed {
			ratelimit.LogRateLimitExceeded(r.Context(), eventID, clientIP, limit)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(limit.RetryAfter.Seconds()))))
			apiutil.WriteError(w, r, http.StatusTooManyRequests, "Teams were generated too recently, try again later")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsRequestTimeout)
	defer cancel()

	result, err := svc.Generate(ctx, eventID, createdBy)
	if err != nil {
		writeServiceError(w, r, err, eventID, "Failed to generate teams")
		return
	}
	if generateLimiter != nil {
		generateLimiter.RecordGenerate(eventID, clientIP)
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, generateTeamsResponse{EventID: eventID, BalanceResult: result}); err != nil {
		logger.Error().Err(err).Str("event_id", eventID).Msg("Failed to write teams response")
	}
}

// GET /api/v1/events/{id}/teams
func HandleTeamsResult(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Teams service not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	eventID, err := apiutil.UUIDFromPath(r, eventIDPathKey)
	if err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamsRequestTimeout)
	defer cancel()

	stored, err := svc.Result(ctx, eventID)
	if err != nil {
		writeServiceError(w, r, err, eventID, "Failed to load teams")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, stored); err != nil {
		logger.Error().Err(err).Str("event_id", eventID).Msg("Failed to write teams response")
	}
}

func loadService() *teamsvc.Service {
	return service
}

func ratingInputs(ratings []ratingRequest) ([]teamsvc.RatingInput, error) {
	inputs := make([]teamsvc.RatingInput, 0, len(ratings))
	for i, rating := range ratings {
		userID, err := apiutil.ParseUUIDField(rating.UserID, fmt.Sprintf("ratings[%d].userId", i))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, teamsvc.RatingInput{
			UserID:       userID,
			Rating:       rating.Rating,
			IsGoalkeeper: rating.IsGoalkeeper,
		})
	}
	return inputs, nil
}

// classifyError maps service errors onto HTTP statuses. Unknown errors are
// returned unchanged so the caller answers 500.
func classifyError(err error) error {
	switch {
	case errors.Is(err, teamsvc.ErrEventNotFound),
		errors.Is(err, teamsvc.ErrTeamsNotGenerated):
		return apiutil.HandlerError{Status: http.StatusNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, teamsvc.ErrTeamsDisabled):
		return apiutil.HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}
	case errors.Is(err, teamsvc.ErrEmptyRatings),
		errors.Is(err, teamsvc.ErrRatingMissing),
		errors.Is(err, teamsvc.ErrRatingOutOfRange),
		errors.Is(err, teamsvc.ErrDuplicatePlayer),
		errors.Is(err, teamsvc.ErrNotOnRoster),
		errors.Is(err, teamsvc.ErrUnknownUser):
		return apiutil.HandlerError{Status: http.StatusUnprocessableEntity, Message: err.Error(), Err: err}
	default:
		return err
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, eventID string, msg string) {
	mapped := classifyError(err)

	var handlerErr apiutil.HandlerError
	if errors.As(mapped, &handlerErr) {
		log.Ctx(r.Context()).Warn().Err(err).Str("event_id", eventID).Int("status", handlerErr.Status).Msg(msg)
	} else {
		log.Ctx(r.Context()).Error().Err(err).Str("event_id", eventID).Msg(msg)
	}
	apiutil.WriteHandlerError(w, r, mapped)
}
