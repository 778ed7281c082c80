package notifications

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
)

// PubSubPublisher adapts a Pub/Sub publisher handle to the eventPublisher
// surface, waiting on the publish result so failures become errors.
type PubSubPublisher struct {
	topic *pubsub.Publisher
}

// NewPubSubPublisher wraps the provided topic publisher.
func NewPubSubPublisher(topic *pubsub.Publisher) (*PubSubPublisher, error) {
	if topic == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	return &PubSubPublisher{topic: topic}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	res := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})
	return res.Get(ctx)
}
