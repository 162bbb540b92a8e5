package pubsub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Broker is an in-memory pub/sub system keyed by job stream topic. Every
// message published to a topic is cached, so a client that subscribes
// mid-run still receives the job's full history of case transitions.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan []byte // topic -> list of subscriber channels
	cache       map[string][][]byte      // topic -> list of cached messages
}

// JobEvent is the wire shape pushed down a job's stream topic: a job
// snapshot, tagged with what happened to it.
type JobEvent struct {
	Event string          `json:"event"`
	Job   json.RawMessage `json:"job"`
}

var (
	once   sync.Once
	broker *Broker
)

// GetBroker returns the singleton instance of the Broker.
func GetBroker() *Broker {
	once.Do(func() {
		broker = &Broker{
			subscribers: make(map[string][]chan []byte),
			cache:       make(map[string][][]byte),
		}
	})
	return broker
}

// Subscribe joins a job's stream topic, replaying every event published
// so far before any live ones.
func (b *Broker) Subscribe(topic string) (<-chan []byte, func()) {
	b.mu.Lock()

	// Replay the cached history into the new subscriber's buffer while
	// still holding the lock, so no live message can be published ahead of
	// it. The buffer holds the whole history plus room for live messages.
	history := b.cache[topic]
	ch := make(chan []byte, len(history)+128)
	for _, msg := range history {
		ch <- msg
	}

	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock() // Unlock after modifying subscribers map

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subscribers := b.subscribers[topic]
		for i, sub := range subscribers {
			if sub == ch {
				// Remove the channel from the slice
				b.subscribers[topic] = append(subscribers[:i], subscribers[i+1:]...)
				close(ch)
				break
			}
		}
		zap.S().Debugf("unsubscribed from topic %s", topic)
	}

	zap.S().Debugf("new subscription to topic %s, sent %d cached messages", topic, len(history))
	return ch, unsubscribe
}

// Publish records msg in topic's history and fans it out to current
// subscribers.
func (b *Broker) Publish(topic string, msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A job's topic is closed (and its cache freed) once the job reaches a
	// terminal state, so this cache only ever holds one job's lifetime.
	b.cache[topic] = append(b.cache[topic], msg)

	// Broadcast to live subscribers (non-blocking).
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// If a subscriber's channel is full, drop the message for them.
			// This prevents a slow client from blocking the publisher.
		}
	}
}

// CloseTopic disconnects every subscriber of a finished job's stream and
// drops its cached history.
func (b *Broker) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[topic]; ok {
		for _, ch := range subscribers {
			close(ch)
		}
		delete(b.subscribers, topic)
		zap.S().Infof("closed pubsub topic %s", topic)
	}
	// Crucially, delete the cache to free up memory, whether or not the
	// topic ever had a subscriber.
	delete(b.cache, topic)
}

// FormatJobEvent wraps a marshaled Job in a JobEvent envelope for
// publishing on its stream topic.
func FormatJobEvent(event string, job []byte) []byte {
	msg := JobEvent{Event: event, Job: job}
	out, err := json.Marshal(msg)
	if err != nil {
		return []byte(`{"event": "error", "job": null}`)
	}
	return out
}
