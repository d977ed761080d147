package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"poker-platform/internal/apierr"
	"poker-platform/internal/auth"
	"poker-platform/internal/broadcast"
	"poker-platform/internal/engine"
	"poker-platform/internal/obslog"
	"poker-platform/internal/storage"
	"poker-platform/pkg/money"
	"poker-platform/pkg/rng"
)

type fakePlayerStore struct {
	balances map[string]money.Amount
}

func newFakePlayerStore() *fakePlayerStore {
	return &fakePlayerStore{balances: map[string]money.Amount{}}
}

func (f *fakePlayerStore) fund(playerID string, amount money.Amount) {
	f.balances[playerID] = f.balances[playerID].Add(amount)
}

func (f *fakePlayerStore) Debit(playerID string, amount money.Amount) error {
	bal := f.balances[playerID]
	if bal.LessThan(amount) {
		return apierr.New(apierr.KindInsufficientFunds, "insufficient bankroll")
	}
	f.balances[playerID] = bal.Sub(amount)
	return nil
}

func (f *fakePlayerStore) Credit(playerID string, amount money.Amount) error {
	f.balances[playerID] = f.balances[playerID].Add(amount)
	return nil
}

func (f *fakePlayerStore) CreatePlayer(ctx context.Context, playerID, displayName string, startingBankroll money.Amount) error {
	f.balances[playerID] = startingBankroll
	return nil
}

func (f *fakePlayerStore) GetPlayer(ctx context.Context, playerID string) (*storage.Player, error) {
	return &storage.Player{PlayerID: playerID, DisplayName: playerID, Bankroll: f.balances[playerID]}, nil
}

func testServer(t *testing.T) (*gin.Engine, *fakePlayerStore, *auth.HMACAuthenticator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r, err := rng.NewSystemWithSeed([]byte("api-test"))
	require.NoError(t, err)
	audit := rng.NewAuditLogger(nil)
	players := newFakePlayerStore()
	authn := auth.NewHMACAuthenticator("test-signing-key")

	s := NewServer(Dependencies{
		DefaultConfig: engine.Config{
			SmallBlind: money.New(1),
			BigBlind:   money.New(2),
			MinBuyIn:   money.New(40),
			MaxBuyIn:   money.New(400),
			MaxSeats:   6,
		},
		RNG:           r,
		Audit:         audit,
		Players:       players,
		Broadcaster:   broadcast.New(),
		Logger:        obslog.New(),
		Authenticator: authn,
	})

	router := gin.New()
	s.RegisterRoutes(router)
	return router, players, authn
}

func doRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJoinRequiresAuthentication(t *testing.T) {
	router, _, _ := testServer(t)
	rec := doRequest(router, http.MethodPost, "/tables/t1/join", "", joinRequest{BuyIn: money.New(100)})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJoinThenStartThenSecondStartConflicts(t *testing.T) {
	router, players, authn := testServer(t)
	players.fund("p1", money.New(1000))
	players.fund("p2", money.New(1000))

	rec := doRequest(router, http.MethodPost, "/tables/t1/join", authn.Sign("p1"), joinRequest{BuyIn: money.New(100)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPost, "/tables/t1/join", authn.Sign("p2"), joinRequest{BuyIn: money.New(100)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPost, "/games/t1/start", authn.Sign("p1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Equal(t, "PREFLOP", snap["phase"])

	rec = doRequest(router, http.MethodPost, "/games/t1/start", authn.Sign("p1"), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestJoinRejectsBuyInBelowLimit(t *testing.T) {
	router, players, authn := testServer(t)
	players.fund("p1", money.New(1000))

	rec := doRequest(router, http.MethodPost, "/tables/t1/join", authn.Sign("p1"), joinRequest{BuyIn: money.New(1)})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, string(apierr.KindInvalidAmount), resp.Error)
}

func TestGetSnapshotForUnknownTableAutoCreatesIt(t *testing.T) {
	router, _, authn := testServer(t)
	rec := doRequest(router, http.MethodGet, "/games/fresh-table", authn.Sign("p1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandHistoryAndSummaryEndpointsRespond(t *testing.T) {
	router, _, authn := testServer(t)
	rec := doRequest(router, http.MethodGet, "/games/t2/hand-history", authn.Sign("p1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/games/t2/summary", authn.Sign("p1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyEndpointBeforeAnyHandIsInvalidAction(t *testing.T) {
	router, players, authn := testServer(t)
	players.fund("p1", money.New(1000))
	doRequest(router, http.MethodPost, "/tables/t3/join", authn.Sign("p1"), joinRequest{BuyIn: money.New(100)})

	rec := doRequest(router, http.MethodPost, "/games/t3/ready", authn.Sign("p1"), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
