package ratinghandlers

import (
	"context"

	ratingevents "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/events"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/handlerwrapper"
)

// HandleCreateMatchRequested balances the requested players into a match.
func (h *RatingHandlers) HandleCreateMatchRequested(
	ctx context.Context,
	payload *ratingevents.CreateMatchRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	withSeason := func(p *ratingevents.OperationFailedPayloadV1) { p.SeasonID = payload.SeasonID }

	result, err := h.service.CreateRandomMatch(ctx, payload.SeasonID, payload.PlayerIDs)
	if err != nil {
		h.logger.ErrorContext(ctx, "Create match failed",
			attr.SeasonID(payload.SeasonID),
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return failed(ratingevents.MatchCreateFailedV1, "create_match", err, withSeason), nil
	}
	if result.IsFailure() {
		return failed(ratingevents.MatchCreateFailedV1, "create_match", *result.Failure, withSeason), nil
	}

	match := ratingevents.NewMatchPayload(*result.Success)
	h.logger.InfoContext(ctx, "Match created",
		attr.MatchID(match.MatchID),
		attr.SeasonID(match.SeasonID),
		attr.ExtractCorrelationID(ctx),
	)
	return []handlerwrapper.Result{{Topic: ratingevents.MatchCreatedV1, Payload: &match}}, nil
}

// HandleResolveMatchRequested records the outcome of a pending match.
func (h *RatingHandlers) HandleResolveMatchRequested(
	ctx context.Context,
	payload *ratingevents.ResolveMatchRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	withMatch := func(p *ratingevents.OperationFailedPayloadV1) {
		id := payload.MatchID
		p.MatchID = &id
	}

	req, err := payload.Request()
	if err != nil {
		return failed(ratingevents.MatchResolveFailedV1, "resolve_match", err, withMatch), nil
	}

	result, err := h.service.ResolveMatch(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "Resolve match failed",
			attr.MatchID(payload.MatchID),
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return failed(ratingevents.MatchResolveFailedV1, "resolve_match", err, withMatch), nil
	}
	if result.IsFailure() {
		return failed(ratingevents.MatchResolveFailedV1, "resolve_match", *result.Failure, withMatch), nil
	}

	match := ratingevents.NewMatchPayload(*result.Success)
	h.logger.InfoContext(ctx, "Match resolved",
		attr.MatchID(match.MatchID),
		attr.String("winner", string(match.WinnerColor)),
		attr.ExtractCorrelationID(ctx),
	)
	return []handlerwrapper.Result{{Topic: ratingevents.MatchResolvedV1, Payload: &match}}, nil
}

// HandlePredictMatchRequested forecasts the requested lineup.
func (h *RatingHandlers) HandlePredictMatchRequested(
	ctx context.Context,
	payload *ratingevents.PredictMatchRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	result, err := h.service.PredictMatch(ctx, payload.BlueIDs, payload.RedIDs)
	if err != nil {
		return failed(ratingevents.MatchPredictFailedV1, "predict_match", err, nil), nil
	}
	if result.IsFailure() {
		return failed(ratingevents.MatchPredictFailedV1, "predict_match", *result.Failure, nil), nil
	}

	return []handlerwrapper.Result{{
		Topic: ratingevents.MatchPredictedV1,
		Payload: &ratingevents.MatchPredictedPayloadV1{
			BlueIDs:    payload.BlueIDs,
			RedIDs:     payload.RedIDs,
			Prediction: *result.Success,
		},
	}}, nil
}
