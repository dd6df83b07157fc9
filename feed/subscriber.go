// Package feed consumes the live push-event stream and drives the canonical
// state. Messages arrive over Redis pub/sub topics, go through an explicit
// FIFO queue and are applied by a single consumer goroutine in delivery
// order; the feed never reorders or batches speculatively. The transport
// guarantees at-least-once delivery at best; that is enough because event
// application is idempotent.
package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/Kush-Patel15/KDS-system/domain"
)

// Applier is the slice of the state container the feed drives.
type Applier interface {
	ApplyMenuEvent(domain.MenuEvent)
	ApplyOrderEvent(domain.OrderEvent)
}

// Options configures a subscription. Zero values get sane defaults.
type Options struct {
	MenuTopic    string
	OrdersTopic  string
	HighlightTTL time.Duration
	QueueSize    int
}

func (o Options) withDefaults() Options {
	if o.MenuTopic == "" {
		o.MenuTopic = "menu"
	}
	if o.OrdersTopic == "" {
		o.OrdersTopic = "orders"
	}
	if o.HighlightTTL <= 0 {
		o.HighlightTTL = 6 * time.Second
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	return o
}

// Subscription is the live-feed handle. Unsubscribe stops consumption; the
// recency set keeps expiring on its own until then.
type Subscription struct {
	cancel  context.CancelFunc
	done    chan struct{}
	recency *RecencySet
}

type message struct {
	topic   string
	payload string
}

// Subscribe registers interest in the menu and orders topics and starts the
// receive and consume loops. The returned handle owns the recency markers
// for just-arrived orders.
func Subscribe(ctx context.Context, rc *redis.Client, store Applier, opts Options) *Subscription {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		cancel:  cancel,
		done:    make(chan struct{}),
		recency: NewRecencySet(opts.HighlightTTL),
	}
	queue := make(chan message, opts.QueueSize)

	go receive(ctx, rc, queue, opts)
	go func() {
		defer close(sub.done)
		for msg := range queue {
			apply(store, sub.recency, msg, opts)
		}
	}()
	return sub
}

// Recency exposes the transient highlight set for display projections.
func (s *Subscription) Recency() *RecencySet {
	return s.recency
}

// Unsubscribe stops the feed and waits for the queue to drain.
func (s *Subscription) Unsubscribe() {
	s.cancel()
	<-s.done
	s.recency.Stop()
}

// receive pumps raw pub/sub messages into the queue, resubscribing when the
// transport drops the channel. It closes the queue on context cancellation.
func receive(ctx context.Context, rc *redis.Client, queue chan<- message, opts Options) {
	defer close(queue)
	for {
		pubsub := rc.Subscribe(ctx, opts.MenuTopic, opts.OrdersTopic)
		ch := pubsub.Channel()
	recv:
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				select {
				case queue <- message{topic: msg.Channel, payload: msg.Payload}:
				case <-ctx.Done():
					_ = pubsub.Close()
					return
				}
			}
		}
		_ = pubsub.Close()
		if ctx.Err() != nil {
			return
		}
		log.Warn("feed channel closed, resubscribing")
		time.Sleep(time.Second)
	}
}

type envelope struct {
	Type  string          `json:"type"`
	Item  json.RawMessage `json:"item"`
	Order json.RawMessage `json:"order"`
	ID    any             `json:"id"`
}

// apply decodes one message and feeds it to the reducer. A malformed
// message is logged and dropped; it never crashes the subscriber or aborts
// the subscription.
func apply(store Applier, recency *RecencySet, msg message, opts Options) {
	var env envelope
	if err := sonic.ConfigStd.Unmarshal([]byte(msg.payload), &env); err != nil {
		log.WithError(err).WithField("topic", msg.topic).Warn("dropping malformed feed message")
		return
	}
	switch msg.topic {
	case opts.MenuTopic:
		applyMenu(store, env)
	case opts.OrdersTopic:
		applyOrder(store, recency, env)
	default:
		log.WithField("topic", msg.topic).Debug("ignoring message on unknown topic")
	}
}

func applyMenu(store Applier, env envelope) {
	switch env.Type {
	case "created", "updated":
		var raw domain.RawMenuItem
		if err := sonic.ConfigStd.Unmarshal(env.Item, &raw); err != nil {
			log.WithError(err).Warn("dropping undecodable menu event")
			return
		}
		item, err := domain.NormalizeMenuItem(raw)
		if err != nil {
			log.WithError(err).Warn("dropping malformed menu event")
			return
		}
		store.ApplyMenuEvent(domain.MenuEvent{Type: domain.EventType(env.Type), Item: &item})
	case "deleted":
		id := domain.NormalizeID(env.ID)
		if id == "" {
			log.Warn("dropping menu delete without id")
			return
		}
		store.ApplyMenuEvent(domain.MenuEvent{Type: domain.EventDeleted, ID: id})
	default:
		log.WithField("type", env.Type).Debug("ignoring menu event")
	}
}

func applyOrder(store Applier, recency *RecencySet, env envelope) {
	switch env.Type {
	case "created", "updated":
		order, ok := decodeOrder(env)
		if !ok {
			return
		}
		store.ApplyOrderEvent(domain.OrderEvent{Type: domain.EventType(env.Type), Order: order})
		if env.Type == "created" {
			recency.Mark(order.ID)
		}
	case "status":
		var raw domain.RawOrder
		if err := sonic.ConfigStd.Unmarshal(env.Order, &raw); err != nil {
			log.WithError(err).Warn("dropping undecodable status event")
			return
		}
		id := domain.NormalizeID(raw.ID)
		if id == "" {
			log.Warn("dropping status event without id")
			return
		}
		ev := domain.OrderEvent{Type: domain.EventStatus, ID: id}
		// A status message missing the status field keeps the current one.
		if raw.Status != "" {
			ev.Status = domain.NormalizeStatus(raw.Status)
		}
		if o, err := domain.NormalizeOrder(raw); err == nil {
			ev.CompletedAt = o.CompletedAt
		}
		store.ApplyOrderEvent(ev)
	case "deleted":
		id := domain.NormalizeID(env.ID)
		if id == "" {
			log.Warn("dropping order delete without id")
			return
		}
		store.ApplyOrderEvent(domain.OrderEvent{Type: domain.EventDeleted, ID: id})
	default:
		log.WithField("type", env.Type).Debug("ignoring order event")
	}
}

func decodeOrder(env envelope) (*domain.Order, bool) {
	var raw domain.RawOrder
	if err := sonic.ConfigStd.Unmarshal(env.Order, &raw); err != nil {
		log.WithError(err).Warn("dropping undecodable order event")
		return nil, false
	}
	order, err := domain.NormalizeOrder(raw)
	if err != nil {
		log.WithError(err).Warn("dropping malformed order event")
		return nil, false
	}
	return &order, true
}
