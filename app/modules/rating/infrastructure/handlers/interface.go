package ratinghandlers

import (
	"context"

	ratingevents "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/events"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/handlerwrapper"
)

// Handlers defines the rating event handlers. Every handler answers with
// exactly one success or failed event.
type Handlers interface {
	// --- MATCHES ---

	// HandleCreateMatchRequested balances ten players into a pending match.
	HandleCreateMatchRequested(ctx context.Context, payload *ratingevents.CreateMatchRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleResolveMatchRequested settles a pending match and updates ratings.
	HandleResolveMatchRequested(ctx context.Context, payload *ratingevents.ResolveMatchRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandlePredictMatchRequested forecasts a fixed lineup without writing.
	HandlePredictMatchRequested(ctx context.Context, payload *ratingevents.PredictMatchRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// --- SEASONS ---

	HandleEndSeasonRequested(ctx context.Context, payload *ratingevents.EndSeasonRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleActivateSeasonRequested(ctx context.Context, payload *ratingevents.ActivateSeasonRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
