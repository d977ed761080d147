package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"poker-platform/internal/broadcast"
)

const (
	closeUnauthenticated = 4001
	closeNotParticipant  = 4003
	closeInternal        = 1011

	writeWait = 5 * time.Second
)

// handleWebSocket implements the Subscription Gateway (spec.md §4.7):
// authenticate, verify the caller is seated at the table, attach to the
// broadcaster, and push the current snapshot immediately on attach.
// Grounded on the teacher's handleWebSocket upgrade-then-serve loop.
func (s *Server) handleWebSocket(c *gin.Context) {
	tableID := c.Param("id")
	token := c.Query("token")

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Printf("websocket upgrade failed for table %s: %v", tableID, err)
		return
	}
	defer conn.Close()

	claims, err := s.authn.Authenticate(token)
	if err != nil {
		closeWithCode(conn, closeUnauthenticated, "unauthenticated")
		return
	}

	table, ok := s.lookupTable(tableID)
	if !ok {
		closeWithCode(conn, closeInternal, "table not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	snap, err := table.Snapshot(ctx)
	cancel()
	if err != nil {
		closeWithCode(conn, closeInternal, "snapshot unavailable")
		return
	}
	if !isSeatedPlayer(snap, claims.PlayerID) {
		closeWithCode(conn, closeNotParticipant, "not a participant")
		return
	}

	subscriberID := uuid.NewString()
	pushes := s.bcast.Subscribe(tableID, subscriberID)
	defer s.bcast.Unsubscribe(tableID, subscriberID)

	if err := conn.WriteJSON(broadcast.Push{Kind: broadcast.PushSnapshot, Data: snap}); err != nil {
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case push, ok := <-pushes:
			if !ok {
				return
			}
			if err := conn.WriteJSON(push); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func closeWithCode(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
