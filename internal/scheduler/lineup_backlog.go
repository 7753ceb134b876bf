package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mandrade85ma-cloud/site/internal/db"
	dbgen "github.com/mandrade85ma-cloud/site/internal/db/generated"
	"github.com/mandrade85ma-cloud/site/internal/metrics"
)

const (
	lineupBacklogJobName = "lineup_backlog"
	lineupBacklogTimeout = 30 * time.Second
)

// RegisterLineupBacklogJob periodically counts events that still need a lineup
// and publishes the number as a gauge.
func RegisterLineupBacklogJob(s *Service, database *db.DB, cronExpr string) error {
	if database == nil {
		return fmt.Errorf("lineup backlog job requires database")
	}

	jobLogger := log.With().
		Str("component", "lineup_backlog_job").
		Str("job_name", lineupBacklogJobName).
		Logger()

	_, err := s.AddJob(lineupBacklogJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), lineupBacklogTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if err := refreshLineupBacklog(ctx, database.Queries); err != nil {
			jobLogger.Error().Err(err).Msg("Failed to refresh lineup backlog")
		}
	})
	return err
}

func refreshLineupBacklog(ctx context.Context, q *dbgen.Queries) error {
	count, err := q.CountEventsAwaitingTeams(ctx)
	if err != nil {
		metrics.SchedulerJobRunsTotal.WithLabelValues(lineupBacklogJobName, metrics.ResultFailure).Inc()
		return fmt.Errorf("count events awaiting teams: %w", err)
	}

	metrics.EventsAwaitingTeams.Set(float64(count))
	metrics.SchedulerJobRunsTotal.WithLabelValues(lineupBacklogJobName, metrics.ResultSuccess).Inc()
	log.Ctx(ctx).Debug().Int64("events_awaiting_lineup", count).Msg("Lineup backlog refreshed")
	return nil
}
