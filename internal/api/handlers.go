package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"poker-platform/internal/apierr"
	"poker-platform/internal/auth"
	"poker-platform/internal/game"
	"poker-platform/pkg/money"
)

const claimsKey = "poker.claims"

// authMiddleware verifies the bearer token and attaches the caller's
// Claims to the gin context. Every command is authenticated (spec.md §6).
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.authn.Authenticate(bearerToken(c))
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	return c.Query("token")
}

func callerID(c *gin.Context) string {
	claims, _ := c.Get(claimsKey)
	cl, _ := claims.(auth.Claims)
	return cl.PlayerID
}

// withTable resolves the table named by the :id param (creating it on
// first access) and invokes fn under a bounded request context. Errors
// resolving the table are written directly; fn is responsible for writing
// its own response or error.
func (s *Server) withTable(c *gin.Context, fn func(ctx context.Context, table *game.Table)) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	table, err := s.getOrCreateTable(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	fn(ctx, table)
}

func respondSnapshot(c *gin.Context, snap game.Snapshot, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleJoin(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apierr.New(apierr.KindInvalidAmount, "malformed request body"))
		return
	}

	s.withTable(c, func(ctx context.Context, table *game.Table) {
		playerID := callerID(c)
		displayName := playerID
		if s.players != nil {
			if p, err := s.players.GetPlayer(ctx, playerID); err == nil {
				displayName = p.DisplayName
			}
		}
		snap, err := table.Join(ctx, playerID, displayName, req.BuyIn)
		respondSnapshot(c, snap, err)
	})
}

func (s *Server) handleStart(c *gin.Context) {
	s.withTable(c, func(ctx context.Context, table *game.Table) {
		snap, err := table.Start(ctx)
		respondSnapshot(c, snap, err)
	})
}

func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apierr.New(apierr.KindInvalidAction, "malformed request body"))
		return
	}
	kind, ok := parseActionKind(req.Kind)
	if !ok {
		writeError(c, apierr.New(apierr.KindInvalidAction, "unknown action kind"))
		return
	}

	s.withTable(c, func(ctx context.Context, table *game.Table) {
		snap, err := table.Action(ctx, callerID(c), kind, req.Amount)
		respondSnapshot(c, snap, err)
	})
}

func (s *Server) handleCashOut(c *gin.Context) {
	s.withTable(c, func(ctx context.Context, table *game.Table) {
		stack, generated, summary, err := table.CashOut(ctx, callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		if generated && s.publisher != nil {
			if history, herr := table.HandHistory(ctx); herr == nil && len(history) > 0 {
				if perr := s.publisher.PublishHandCompleted(c.Param("id"), history[len(history)-1]); perr != nil {
					s.log.ForTable(c.Param("id")).Printf("failed to publish hand-completed event: %v", perr)
				}
			}
		}
		c.JSON(http.StatusOK, cashOutResponse{Stack: stack, GameSummaryGenerated: generated, GameSummary: summary})
	})
}

func (s *Server) handleBuyBackIn(c *gin.Context) {
	var req buyBackInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apierr.New(apierr.KindInvalidAmount, "malformed request body"))
		return
	}

	s.withTable(c, func(ctx context.Context, table *game.Table) {
		total, err := table.BuyBackIn(ctx, callerID(c), req.Amount)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, buyBackInResponse{TotalStack: total, NewBalance: s.bankrollOf(ctx, callerID(c))})
	})
}

func (s *Server) handleLeave(c *gin.Context) {
	s.withTable(c, func(ctx context.Context, table *game.Table) {
		left, err := table.Leave(ctx, callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, leaveResponse{LeftWith: left, NewBalance: s.bankrollOf(ctx, callerID(c))})
	})
}

// bankrollOf best-effort re-reads a player's persisted bankroll after a
// debit/credit; if no player store is wired, it returns the zero amount
// rather than failing the command.
func (s *Server) bankrollOf(ctx context.Context, playerID string) money.Amount {
	if s.players == nil {
		return money.Zero
	}
	p, err := s.players.GetPlayer(ctx, playerID)
	if err != nil {
		return money.Zero
	}
	return p.Bankroll
}

func (s *Server) handleReady(c *gin.Context) {
	s.withTable(c, func(ctx context.Context, table *game.Table) {
		snap, err := table.Ready(ctx, callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, readyTally(snap))
	})
}

func (s *Server) handleGetSnapshot(c *gin.Context) {
	s.withTable(c, func(ctx context.Context, table *game.Table) {
		snap, err := table.Snapshot(ctx)
		respondSnapshot(c, snap, err)
	})
}

func (s *Server) handleHandHistory(c *gin.Context) {
	s.withTable(c, func(ctx context.Context, table *game.Table) {
		history, err := table.HandHistory(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, handHistoryResponse{HandHistory: history})
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	s.withTable(c, func(ctx context.Context, table *game.Table) {
		summary, status, err := table.GameSummaryInfo(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, summaryResponse{GameSummary: summary, GameStatus: status})
	})
}
