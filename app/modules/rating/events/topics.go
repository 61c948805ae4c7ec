// Package ratingevents defines the topics and payloads of the rating engine.
package ratingevents

// Match lifecycle.
const (
	MatchCreateRequestedV1 = "rating.match.create.requested.v1"
	MatchCreatedV1         = "rating.match.created.v1"
	MatchCreateFailedV1    = "rating.match.create.failed.v1"

	MatchResolveRequestedV1 = "rating.match.resolve.requested.v1"
	MatchResolvedV1         = "rating.match.resolved.v1"
	MatchResolveFailedV1    = "rating.match.resolve.failed.v1"

	MatchPredictRequestedV1 = "rating.match.predict.requested.v1"
	MatchPredictedV1        = "rating.match.predicted.v1"
	MatchPredictFailedV1    = "rating.match.predict.failed.v1"
)

// Season lifecycle.
const (
	SeasonEndRequestedV1 = "rating.season.end.requested.v1"
	SeasonEndedV1        = "rating.season.ended.v1"
	SeasonEndFailedV1    = "rating.season.end.failed.v1"

	SeasonActivateRequestedV1 = "rating.season.activate.requested.v1"
	SeasonActivatedV1         = "rating.season.activated.v1"
	SeasonActivateFailedV1    = "rating.season.activate.failed.v1"
)
