// Package broadcast implements the Snapshot Broadcaster: a per-table
// subscriber set with ordered, per-subscriber outbound queues, so a slow
// subscriber cannot block the table controller's mutating operations.
package broadcast

import (
	"sync"

	"poker-platform/internal/game"
)

// PushKind is the "kind" discriminator of a pushed subscription message.
type PushKind string

const (
	PushSnapshot    PushKind = "snapshot"
	PushGameSummary PushKind = "game_summary_notification"
)

// Push is one message sent down a subscriber's channel.
type Push struct {
	Kind PushKind    `json:"kind"`
	Data interface{} `json:"data"`
}

// GameSummaryNotification is the payload of a game_summary_notification
// push, per spec.md §6.
type GameSummaryNotification struct {
	GameID      string           `json:"gameId"`
	GameSummary game.GameSummary `json:"gameSummary"`
	TotalHands  int              `json:"totalHands"`
}

// subscriber is one connected client's outbound queue. Buffered so a single
// slow reader doesn't block Publish; a full queue drops the oldest pending
// snapshot rather than the newest, since only the latest snapshot matters to
// a reconnecting viewer.
type subscriber struct {
	id string
	ch chan Push
}

const subscriberQueueDepth = 8

// Broadcaster fans out snapshots and game-summary notifications to every
// subscriber of a table.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[string]map[string]*subscriber // tableID -> subscriberID -> subscriber
}

// New builds an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{
		subscribers: map[string]map[string]*subscriber{},
	}
}

// Subscribe registers a new subscriber for a table and returns a channel
// the caller should range over to forward pushes to its transport (a
// websocket connection, typically). Call Unsubscribe when the connection
// closes.
func (b *Broadcaster) Subscribe(tableID, subscriberID string) <-chan Push {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[tableID] == nil {
		b.subscribers[tableID] = map[string]*subscriber{}
	}
	sub := &subscriber{id: subscriberID, ch: make(chan Push, subscriberQueueDepth)}
	b.subscribers[tableID][subscriberID] = sub
	return sub.ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(tableID, subscriberID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	table, ok := b.subscribers[tableID]
	if !ok {
		return
	}
	if sub, ok := table[subscriberID]; ok {
		close(sub.ch)
		delete(table, subscriberID)
	}
	if len(table) == 0 {
		delete(b.subscribers, tableID)
	}
}

// Publish implements game.Broadcaster: it fans the snapshot out to every
// current subscriber of the table, dropping the oldest queued push for any
// subscriber whose queue is full rather than blocking.
func (b *Broadcaster) Publish(tableID string, snapshot game.Snapshot) {
	b.fanOut(tableID, Push{Kind: PushSnapshot, Data: snapshot})
}

// PublishGameSummary implements game.Broadcaster: it is sent exactly once,
// when the table controller determines every seat has a final stack.
func (b *Broadcaster) PublishGameSummary(tableID string, summary game.GameSummary) {
	b.fanOut(tableID, Push{
		Kind: PushGameSummary,
		Data: GameSummaryNotification{
			GameID:      tableID,
			GameSummary: summary,
			TotalHands:  summary.HandsPlayed,
		},
	})
}

func (b *Broadcaster) fanOut(tableID string, push Push) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers[tableID] {
		select {
		case sub.ch <- push:
		default:
			// Queue full: drop the oldest pending push and retry once. A
			// reconnecting or lagging subscriber only needs the latest
			// state, not a full replay.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- push:
			default:
			}
		}
	}
}
