// Package mqtt defines the publishing side of the roster notifications.
package mqtt

import "context"

// Publisher sends a payload to an MQTT topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}
