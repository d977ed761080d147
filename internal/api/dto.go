package api

import (
	"poker-platform/internal/engine"
	"poker-platform/internal/game"
	"poker-platform/pkg/money"
)

// joinRequest is the body of POST /tables/:id/join.
type joinRequest struct {
	BuyIn money.Amount `json:"buyIn"`
}

// actionRequest is the body of POST /games/:id/action.
type actionRequest struct {
	Kind   string       `json:"kind"`
	Amount money.Amount `json:"amount"`
}

// buyBackInRequest is the body of POST /games/:id/buy_back_in.
type buyBackInRequest struct {
	Amount money.Amount `json:"amount"`
}

// cashOutResponse is the result of POST /games/:id/cash_out.
type cashOutResponse struct {
	Stack                money.Amount      `json:"stack"`
	GameSummaryGenerated bool              `json:"gameSummaryGenerated"`
	GameSummary          *game.GameSummary `json:"gameSummary,omitempty"`
}

// buyBackInResponse is the result of POST /games/:id/buy_back_in.
type buyBackInResponse struct {
	TotalStack money.Amount `json:"totalStack"`
	NewBalance money.Amount `json:"newBalance"`
}

// leaveResponse is the result of POST /games/:id/leave.
type leaveResponse struct {
	LeftWith   money.Amount `json:"leftWith"`
	NewBalance money.Amount `json:"newBalance"`
}

// readyResponse is the result of POST /games/:id/ready.
type readyResponse struct {
	ReadyCount int `json:"readyCount"`
	TotalCount int `json:"totalCount"`
}

// handHistoryResponse is the result of GET /games/:id/hand-history.
type handHistoryResponse struct {
	HandHistory []engine.HandRecord `json:"handHistory"`
}

// summaryResponse is the result of GET /games/:id/summary.
type summaryResponse struct {
	GameSummary *game.GameSummary `json:"gameSummary,omitempty"`
	GameStatus  game.Status       `json:"gameStatus"`
}

// errorResponse is the body of every non-2xx command response.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func parseActionKind(s string) (engine.ActionKind, bool) {
	switch s {
	case "fold":
		return engine.ActionFold, true
	case "check":
		return engine.ActionCheck, true
	case "call":
		return engine.ActionCall, true
	case "bet":
		return engine.ActionBet, true
	case "raise":
		return engine.ActionRaise, true
	default:
		return 0, false
	}
}

// readyTally derives {readyCount, totalCount} from a snapshot: the
// readiness vote only concerns seats still in the game (not yet cashed
// out), since Table Controller eligibility (engine.LifecycleActive, stack
// > 0) isn't itself part of the wire snapshot.
func readyTally(snap game.Snapshot) readyResponse {
	var resp readyResponse
	for _, p := range snap.Players {
		if p.FinalStack != nil {
			continue
		}
		resp.TotalCount++
		if p.ReadyForNext {
			resp.ReadyCount++
		}
	}
	return resp
}

func isSeatedPlayer(snap game.Snapshot, playerID string) bool {
	for _, p := range snap.Players {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}
