// Package events publishes engagement events to subscribers outside the
// request path.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to the event kind to form the NATS subject.
const SubjectPrefix = "devsocial.engagement."

type Kind string

const (
	KindFollow      Kind = "follow"
	KindUnfollow    Kind = "unfollow"
	KindLike        Kind = "like"
	KindUnlike      Kind = "unlike"
	KindComment     Kind = "comment"
	KindPostCreated Kind = "post.created"
	KindPostDeleted Kind = "post.deleted"
)

type Event struct {
	Kind         Kind      `json:"kind"`
	ActorID      string    `json:"actor_id"`
	TargetUserID string    `json:"target_user_id,omitempty"`
	PostID       string    `json:"post_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Subject returns the NATS subject the event is published on.
func (e Event) Subject() string {
	return SubjectPrefix + string(e.Kind)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// NATSPublisher publishes JSON-encoded events on core NATS subjects.
type NATSPublisher struct {
	mu     sync.Mutex
	nc     *nats.Conn
	closed bool
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("devsocial"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.nc.Publish(event.Subject(), data)
}

func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.nc.Drain()
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
