package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"poker-platform/internal/game"
)

func TestSubscribeReceivesPublishedSnapshot(t *testing.T) {
	b := New()
	ch := b.Subscribe("table-1", "sub-1")

	b.Publish("table-1", game.Snapshot{TableID: "table-1", Phase: "PREFLOP"})

	select {
	case push := <-ch:
		require.Equal(t, PushSnapshot, push.Kind)
		snap := push.Data.(game.Snapshot)
		require.Equal(t, "PREFLOP", snap.Phase)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot push")
	}
}

func TestPublishDoesNotReachOtherTables(t *testing.T) {
	b := New()
	chA := b.Subscribe("table-a", "sub-1")
	chB := b.Subscribe("table-b", "sub-1")

	b.Publish("table-a", game.Snapshot{TableID: "table-a"})

	select {
	case push := <-chA:
		require.Equal(t, PushSnapshot, push.Kind)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot on table-a")
	}

	select {
	case <-chB:
		t.Fatal("table-b subscriber should not receive table-a's push")
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch := b.Subscribe("table-1", "sub-1")
	b.Unsubscribe("table-1", "sub-1")

	_, open := <-ch
	require.False(t, open)
}

func TestPublishGameSummarySentOnce(t *testing.T) {
	b := New()
	ch := b.Subscribe("table-1", "sub-1")

	b.PublishGameSummary("table-1", game.GameSummary{TableID: "table-1", HandsPlayed: 5})

	select {
	case push := <-ch:
		require.Equal(t, PushGameSummary, push.Kind)
		note := push.Data.(GameSummaryNotification)
		require.Equal(t, 5, note.TotalHands)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for game summary push")
	}

	select {
	case <-ch:
		t.Fatal("expected exactly one push")
	default:
	}
}

func TestFullQueueDropsOldestRatherThanBlocking(t *testing.T) {
	b := New()
	ch := b.Subscribe("table-1", "sub-1")

	for i := 0; i < subscriberQueueDepth+4; i++ {
		b.Publish("table-1", game.Snapshot{TableID: "table-1", DealerIndex: i})
	}

	var last game.Snapshot
	for {
		select {
		case push := <-ch:
			last = push.Data.(game.Snapshot)
		default:
			require.Equal(t, subscriberQueueDepth+3, last.DealerIndex, "publish must never block on a full queue")
			return
		}
	}
}
