// Package api implements the Command Gateway (gin HTTP handlers) and
// Subscription Gateway (gorilla/websocket push channel) of spec.md §4.6
// and §4.7: thin, stateless layers that authenticate the caller, locate
// the owning Table Controller, and delegate.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"poker-platform/internal/auth"
	"poker-platform/internal/broadcast"
	"poker-platform/internal/engine"
	"poker-platform/internal/events"
	"poker-platform/internal/game"
	"poker-platform/internal/obslog"
	"poker-platform/internal/storage"
	"poker-platform/pkg/rng"
)

// Server wires the command and subscription gateways to the set of
// in-memory Table Controllers and their shared dependencies.
type Server struct {
	mu     sync.RWMutex
	tables map[string]*game.Table

	defaultConfig engine.Config
	rng           *rng.System
	audit         *rng.AuditLogger

	players    storage.PlayerStore
	tableStore storage.TableStore
	hands      storage.HandRecordStore
	summaries  storage.GameSummaryStore

	bcast      *broadcast.Broadcaster
	publisher  *events.Publisher
	analytics  *storage.AnalyticsSink
	log        *obslog.Logger
	authn      auth.Authenticator
	upgrader   websocket.Upgrader
}

// Dependencies bundles everything NewServer needs, so call sites don't
// have to remember a long positional argument list.
type Dependencies struct {
	DefaultConfig engine.Config
	RNG           *rng.System
	Audit         *rng.AuditLogger
	Players       storage.PlayerStore
	Tables        storage.TableStore
	Hands         storage.HandRecordStore
	Summaries     storage.GameSummaryStore
	Broadcaster   *broadcast.Broadcaster
	Publisher     *events.Publisher
	Analytics     *storage.AnalyticsSink
	Logger        *obslog.Logger
	Authenticator auth.Authenticator
}

// NewServer builds a Server ready to register routes on a gin.Engine.
func NewServer(deps Dependencies) *Server {
	return &Server{
		tables:        make(map[string]*game.Table),
		defaultConfig: deps.DefaultConfig,
		rng:           deps.RNG,
		audit:         deps.Audit,
		players:       deps.Players,
		tableStore:    deps.Tables,
		hands:         deps.Hands,
		summaries:     deps.Summaries,
		bcast:         deps.Broadcaster,
		publisher:     deps.Publisher,
		analytics:     deps.Analytics,
		log:           deps.Logger,
		authn:         deps.Authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes attaches the command and subscription surfaces to router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.POST("/tables/:id/join", s.authMiddleware(), s.handleJoin)
	router.POST("/games/:id/start", s.authMiddleware(), s.handleStart)
	router.POST("/games/:id/action", s.authMiddleware(), s.handleAction)
	router.POST("/games/:id/cash_out", s.authMiddleware(), s.handleCashOut)
	router.POST("/games/:id/buy_back_in", s.authMiddleware(), s.handleBuyBackIn)
	router.POST("/games/:id/leave", s.authMiddleware(), s.handleLeave)
	router.POST("/games/:id/ready", s.authMiddleware(), s.handleReady)
	router.GET("/games/:id", s.authMiddleware(), s.handleGetSnapshot)
	router.GET("/games/:id/hand-history", s.authMiddleware(), s.handleHandHistory)
	router.GET("/games/:id/summary", s.authMiddleware(), s.handleSummary)
	router.GET("/ws/games/:id", s.handleWebSocket)
}

// getOrCreateTable returns the in-memory Table Controller for id, loading
// its persisted configuration or — mirroring the teacher's
// handleWebSocket "get or create table" pattern — creating it with the
// server's default configuration on first access, since table admin/CRUD
// is an out-of-scope external collaborator (spec.md §1).
func (s *Server) getOrCreateTable(ctx context.Context, tableID string) (*game.Table, error) {
	s.mu.RLock()
	if t, ok := s.tables[tableID]; ok {
		s.mu.RUnlock()
		return t, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tables[tableID]; ok {
		return t, nil
	}

	cfg := s.defaultConfig
	if s.tableStore != nil {
		if rec, err := s.tableStore.GetTable(ctx, tableID); err == nil {
			cfg = rec.Config
		} else {
			_ = s.tableStore.CreateTable(ctx, storage.TableRecord{
				TableID: tableID,
				Config:  cfg,
				Status:  game.StatusActive,
			})
		}
	}

	t := game.NewTable(tableID, cfg, s.rng, s.audit, s.players, s.bcast, s.hands, s.summaries, s.log)
	if s.analytics != nil {
		t = t.WithAnalytics(s.analytics)
	}
	s.tables[tableID] = t
	return t, nil
}

func (s *Server) lookupTable(tableID string) (*game.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableID]
	return t, ok
}

const requestTimeout = 5 * time.Second

func withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
