// Package eventbus holds publishing helpers shared by the transport layer.
package eventbus

import (
	"fmt"

	"github.com/Black-And-White-Club/inhouse-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicRouter publishes each message to the topic named in its metadata,
// falling back to the topic passed to Publish. Handlers registered on a
// watermill router with an empty publish topic rely on it.
type TopicRouter struct {
	next message.Publisher
}

var _ message.Publisher = (*TopicRouter)(nil)

func NewTopicRouter(next message.Publisher) *TopicRouter {
	return &TopicRouter{next: next}
}

func (r *TopicRouter) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		target := ResolveTopic(topic, msg)
		if target == "" {
			return fmt.Errorf("message %s has no destination topic", msg.UUID)
		}
		if err := r.next.Publish(target, msg); err != nil {
			return fmt.Errorf("publish to %s: %w", target, err)
		}
	}
	return nil
}

func (r *TopicRouter) Close() error {
	return r.next.Close()
}

// ResolveTopic returns the metadata topic of msg, or fallback when unset.
func ResolveTopic(fallback string, msg *message.Message) string {
	if t := msg.Metadata.Get(handlerwrapper.MetadataTopic); t != "" {
		return t
	}
	return fallback
}
