package ratinghandlers

import (
	"context"

	ratingevents "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/events"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/handlerwrapper"
)

// HandleEndSeasonRequested freezes the season's rankings.
func (h *RatingHandlers) HandleEndSeasonRequested(
	ctx context.Context,
	payload *ratingevents.EndSeasonRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	withSeason := func(p *ratingevents.OperationFailedPayloadV1) { p.SeasonID = payload.SeasonID }

	result, err := h.service.EndSeason(ctx, payload.SeasonID)
	if err != nil {
		h.logger.ErrorContext(ctx, "End season failed",
			attr.SeasonID(payload.SeasonID),
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return failed(ratingevents.SeasonEndFailedV1, "end_season", err, withSeason), nil
	}
	if result.IsFailure() {
		return failed(ratingevents.SeasonEndFailedV1, "end_season", *result.Failure, withSeason), nil
	}

	season := result.Success
	h.logger.InfoContext(ctx, "Season ended",
		attr.SeasonID(season.ID),
		attr.Int("ranked_players", len(season.Rankings)),
		attr.ExtractCorrelationID(ctx),
	)
	return []handlerwrapper.Result{{
		Topic: ratingevents.SeasonEndedV1,
		Payload: &ratingevents.SeasonEndedPayloadV1{
			SeasonID: season.ID,
			Name:     season.Name,
			EndedAt:  season.EndedAt,
			Rankings: season.Rankings,
		},
	}}, nil
}

// HandleActivateSeasonRequested makes the season the active one.
func (h *RatingHandlers) HandleActivateSeasonRequested(
	ctx context.Context,
	payload *ratingevents.ActivateSeasonRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	withSeason := func(p *ratingevents.OperationFailedPayloadV1) { p.SeasonID = payload.SeasonID }

	result, err := h.service.ActivateSeason(ctx, payload.SeasonID)
	if err != nil {
		return failed(ratingevents.SeasonActivateFailedV1, "activate_season", err, withSeason), nil
	}
	if result.IsFailure() {
		return failed(ratingevents.SeasonActivateFailedV1, "activate_season", *result.Failure, withSeason), nil
	}

	return []handlerwrapper.Result{{
		Topic: ratingevents.SeasonActivatedV1,
		Payload: &ratingevents.SeasonActivatedPayloadV1{
			SeasonID: result.Success.ID,
			Name:     result.Success.Name,
		},
	}}, nil
}
