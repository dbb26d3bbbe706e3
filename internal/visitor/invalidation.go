package visitor

import (
	"context"
	"strings"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/logger"
)

// InvalidationTopic is the Redis channel suffix carrying "<instance>|<session>" messages.
const InvalidationTopic = "visitor_state"

type Publisher interface {
	Publish(ctx context.Context, topic string, message string) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan string, error)
}

// Invalidator is anything that can drop cached state for a session.
type Invalidator interface {
	Invalidate(sessionID string)
}

// Broadcaster tells other gateway instances that a visitor's state changed here.
// A nil *Broadcaster is a no-op, which is how single-instance deployments run.
type Broadcaster struct {
	pub        Publisher
	instanceID string
	logg       *logger.Logger
}

func NewBroadcaster(pub Publisher, instanceID string, logg *logger.Logger) *Broadcaster {
	if pub == nil {
		return nil
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Broadcaster{pub: pub, instanceID: instanceID, logg: logg}
}

// Changed announces that sessionID's state was mutated. Failures are logged only;
// peers fall back to their own idle eviction.
func (b *Broadcaster) Changed(ctx context.Context, sessionID string) {
	if b == nil || sessionID == "" {
		return
	}
	if err := b.pub.Publish(ctx, InvalidationTopic, encodeMessage(b.instanceID, sessionID)); err != nil {
		b.logg.Warn(b.logg.WithField(ctx, "error", err.Error()), "visitor invalidation publish failed")
	}
}

// Listen forwards invalidations from other instances to targets until ctx ends.
func Listen(ctx context.Context, sub Subscriber, instanceID string, logg *logger.Logger, targets ...Invalidator) error {
	if logg == nil {
		logg = logger.Nop()
	}
	messages, err := sub.Subscribe(ctx, InvalidationTopic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			origin, sessionID, ok := decodeMessage(msg)
			if !ok || origin == instanceID {
				continue
			}
			for _, target := range targets {
				target.Invalidate(sessionID)
			}
			logg.Debug(logg.WithSessionID(ctx, sessionID), "visitor state invalidated by peer")
		}
	}()
	return nil
}

func encodeMessage(instanceID, sessionID string) string {
	return instanceID + "|" + sessionID
}

func decodeMessage(msg string) (string, string, bool) {
	origin, sessionID, ok := strings.Cut(msg, "|")
	if !ok || sessionID == "" {
		return "", "", false
	}
	return origin, sessionID, true
}
