package ratingqueue_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	ratingservice "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application"
	ratingmetrics "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/metrics"
	ratingqueue "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/queue"
	"github.com/Black-And-White-Club/inhouse-bot/integration_tests/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopEnder struct{}

func (noopEnder) EndSeason(ctx context.Context, seasonID string) (ratingservice.SeasonResult, error) {
	return ratingservice.SeasonResult{}, nil
}

func TestService_ScheduleAndCancel(t *testing.T) {
	env := testutils.NewTestEnvironment(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := ratingqueue.NewService(env.Ctx, env.DB, logger, env.PgConnStr, ratingmetrics.NoOpMetrics{}, noopEnder{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Stop(env.Ctx) })

	require.NoError(t, svc.HealthCheck(env.Ctx))

	at := time.Now().Add(24 * time.Hour)
	first, err := svc.ScheduleSeasonEnd(env.Ctx, "2026-spring", at)
	require.NoError(t, err)
	second, err := svc.ScheduleSeasonEnd(env.Ctx, "2026-spring", at)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same args should dedupe")

	_, err = svc.ScheduleSeasonEnd(env.Ctx, "2026-spring", time.Now())
	require.Error(t, err)

	jobs, err := svc.GetScheduledJobs(env.Ctx, "2026-spring")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "scheduled", jobs[0].State)
	assert.Equal(t, "season_end", jobs[0].Kind)

	cancelled, err := svc.CancelSeasonEnd(env.Ctx, "2026-spring")
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	jobs, err = svc.GetScheduledJobs(env.Ctx, "2026-spring")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "cancelled", jobs[0].State)
}
