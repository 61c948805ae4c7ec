package eventbus

import (
	"context"
	"fmt"
)

// RatingStream captures every rating topic.
const RatingStream = "rating"

// StreamConfigs lists the JetStream streams the engine needs.
var StreamConfigs = map[string][]string{
	RatingStream: {"rating.>"},
}

// InitializeStreams creates the necessary streams during application startup.
func InitializeStreams(ctx context.Context, bus EventBus) error {
	for name, subjects := range StreamConfigs {
		if err := bus.CreateStream(ctx, name, subjects); err != nil {
			return fmt.Errorf("initialize stream %s: %w", name, err)
		}
	}
	return nil
}
