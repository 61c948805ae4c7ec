package ratingrouter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	ratingevents "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/events"
	ratinghandlers "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/handlers"
	ratingmetrics "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/metrics"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// fakeHandlers answers every request with a fixed event.
type fakeHandlers struct {
	seasonIDs chan string
}

var _ ratinghandlers.Handlers = (*fakeHandlers)(nil)

func (f *fakeHandlers) HandleCreateMatchRequested(_ context.Context, p *ratingevents.CreateMatchRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	f.seasonIDs <- p.SeasonID
	return []handlerwrapper.Result{{
		Topic:   ratingevents.MatchCreatedV1,
		Payload: &ratingevents.MatchPayloadV1{MatchID: uuid.Nil, SeasonID: p.SeasonID, IsRandom: true},
	}}, nil
}

func (f *fakeHandlers) HandleResolveMatchRequested(context.Context, *ratingevents.ResolveMatchRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return nil, nil
}

func (f *fakeHandlers) HandlePredictMatchRequested(context.Context, *ratingevents.PredictMatchRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return nil, nil
}

func (f *fakeHandlers) HandleEndSeasonRequested(_ context.Context, p *ratingevents.EndSeasonRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return []handlerwrapper.Result{{
		Topic:   ratingevents.SeasonEndFailedV1,
		Payload: &ratingevents.OperationFailedPayloadV1{Operation: "end_season", SeasonID: p.SeasonID, Kind: "state_conflict", Reason: "already ended"},
	}}, nil
}

func (f *fakeHandlers) HandleActivateSeasonRequested(context.Context, *ratingevents.ActivateSeasonRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	return nil, nil
}

func startRouter(t *testing.T, handlers ratinghandlers.Handlers) *gochannel.GoChannel {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pubSub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NopLogger{})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	handlerMetrics, err := ratingmetrics.NewPrometheusMetrics(registry, "test")
	require.NoError(t, err)

	r := NewRatingRouter(logger, router, pubSub, pubSub, noop.NewTracerProvider().Tracer("test"), registry, handlerMetrics)
	require.NoError(t, r.Configure(context.Background(), handlers))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = router.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = r.Close()
		_ = pubSub.Close()
	})

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	return pubSub
}

func publishJSON(t *testing.T, pub message.Publisher, topic, correlationID string, payload any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	msg := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID(correlationID, msg)
	require.NoError(t, pub.Publish(topic, msg))
}

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestRatingRouter_RoutesResultsToTheirTopics(t *testing.T) {
	handlers := &fakeHandlers{seasonIDs: make(chan string, 1)}
	pubSub := startRouter(t, handlers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	created, err := pubSub.Subscribe(ctx, ratingevents.MatchCreatedV1)
	require.NoError(t, err)

	publishJSON(t, pubSub, ratingevents.MatchCreateRequestedV1, "corr-1", ratingevents.CreateMatchRequestedPayloadV1{SeasonID: "s1"})

	msg := receive(t, created)
	assert.Equal(t, "s1", <-handlers.seasonIDs)
	assert.Equal(t, "corr-1", middleware.MessageCorrelationID(msg))
	assert.Equal(t, ratingevents.MatchCreatedV1, msg.Metadata.Get(handlerwrapper.MetadataTopic))

	var payload ratingevents.MatchPayloadV1
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "s1", payload.SeasonID)
	assert.True(t, payload.IsRandom)
}

func TestRatingRouter_FailedEvents(t *testing.T) {
	pubSub := startRouter(t, &fakeHandlers{seasonIDs: make(chan string, 1)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	failures, err := pubSub.Subscribe(ctx, ratingevents.SeasonEndFailedV1)
	require.NoError(t, err)

	publishJSON(t, pubSub, ratingevents.SeasonEndRequestedV1, "corr-2", ratingevents.EndSeasonRequestedPayloadV1{SeasonID: "spring"})

	msg := receive(t, failures)
	var payload ratingevents.OperationFailedPayloadV1
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "spring", payload.SeasonID)
	assert.Equal(t, "end_season", payload.Operation)
	assert.Equal(t, "corr-2", middleware.MessageCorrelationID(msg))
}
