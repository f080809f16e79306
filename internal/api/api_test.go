package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/deckduel/internal/api"
	"github.com/mcoot/deckduel/internal/api/apierr"
	"github.com/mcoot/deckduel/internal/api/response"
	"github.com/mcoot/deckduel/internal/factory"
	"github.com/mcoot/deckduel/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:         slog.New(slog.DiscardHandler),
		AuthService:    app.AuthService,
		DeckService:    app.DeckService,
		MatchService:   app.MatchService,
		LedgerService:  app.LedgerService,
		HistoryService: app.HistoryService,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) register(t *testing.T, username string) response.AuthResponse {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{
		"username": username,
		"password": "hunter22",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

// fund tops up and converts enough for the given number of play credits
func (ts *testServer) fund(t *testing.T, token string, credits int64) {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/wallet/topup", map[string]int64{"amount": credits * 5000}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/v1/wallet/convert", map[string]int64{"amount": credits}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func (ts *testServer) createDeck(t *testing.T, token, name, prefix, leader string) response.DeckSaved {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/decks", map[string]any{
		"name":   name,
		"cards":  testutil.CardNames(prefix, 1, 22),
		"leader": leader,
	}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.DeckSaved
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registered := ts.register(t, "alice")
	assert.Equal(t, "alice", registered.Player.Username)
	assert.Equal(t, "player", registered.Player.Role)
	assert.NotEmpty(t, registered.SessionToken)

	rr := ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"username": "alice",
		"password": "hunter22",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var login response.AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&login))
	assert.Equal(t, registered.Player.ID, login.Player.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{
		"username": "alice",
		"password": "another1",
	}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, decodeError(t, rr).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, decodeError(t, rr).Code)
}

func TestInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/players/register", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/players/me", "/api/v1/decks", "/api/v1/matches", "/api/v1/wallet"} {
		rr := ts.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := ts.request(http.MethodGet, "/api/v1/wallet", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var account response.Account
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&account))
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, int64(0), account.Balance)
	assert.Empty(t, account.Inventory)
}

func TestDeckSavedReportsCatalogLeaderName(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	created := ts.createDeck(t, alice.SessionToken, "North", testutil.NorthPrefix, "  King Foltest  ")
	assert.Equal(t, "King Foltest", created.Leader)

	rr := ts.request(http.MethodPut, "/api/v1/decks/"+created.ID, map[string]any{
		"name":   "Empire",
		"cards":  testutil.CardNames(testutil.NilfgaardPrefix, 1, 22),
		"leader": "\tEmhyr var Emreis ",
	}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated response.DeckSaved
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "Emhyr var Emreis", updated.Leader)
}

func TestDeckLifecycle(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	created := ts.createDeck(t, alice.SessionToken, "Northern Wall", testutil.NorthPrefix, "King Foltest")
	assert.Equal(t, "Northern Wall", created.Name)
	assert.Equal(t, "King Foltest", created.Leader)
	assert.Equal(t, 22, created.TotalCards)

	// Get returns the resolved detail
	rr := ts.request(http.MethodGet, "/api/v1/decks/"+created.ID, nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail response.DeckDetail
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&detail))
	assert.Equal(t, "Northern Realms", detail.Faction)
	assert.Len(t, detail.Cards, 22)

	// List filters by name
	rr = ts.request(http.MethodGet, "/api/v1/decks?name=wall", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var decks []response.Deck
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&decks))
	assert.Len(t, decks, 1)

	// Replace with a Nilfgaard deck
	rr = ts.request(http.MethodPut, "/api/v1/decks/"+created.ID, map[string]any{
		"name":   "Empire",
		"cards":  testutil.CardNames(testutil.NilfgaardPrefix, 1, 22),
		"leader": "Emhyr var Emreis",
	}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated response.DeckSaved
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "Empire", updated.Name)
	assert.Equal(t, string(testutil.FactionNilfgaard), updated.FactionID)

	// Delete
	rr = ts.request(http.MethodDelete, "/api/v1/decks/"+created.ID, nil, alice.SessionToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/decks/"+created.ID, nil, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeDeckNotFound, decodeError(t, rr).Code)
}

func TestCreateDeckValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{
			name: "too few cards",
			body: map[string]any{"name": "Small", "cards": testutil.CardNames(testutil.NorthPrefix, 1, 5), "leader": "King Foltest"},
			code: apierr.CodeValidation,
		},
		{
			name: "unknown cards",
			body: map[string]any{"name": "Ghosts", "cards": append(testutil.CardNames(testutil.NorthPrefix, 1, 22), "Ghost"), "leader": "King Foltest"},
			code: apierr.CodeUnknownCards,
		},
		{
			name: "mixed factions",
			body: map[string]any{
				"name":   "Mixed",
				"cards":  append(testutil.CardNames(testutil.NorthPrefix, 1, 21), testutil.NilfgaardPrefix+" 1"),
				"leader": "King Foltest",
			},
			code: apierr.CodeMixedFactions,
		},
		{
			name: "unknown leader",
			body: map[string]any{"name": "Leaderless", "cards": testutil.CardNames(testutil.NorthPrefix, 1, 22), "leader": "Nobody"},
			code: apierr.CodeUnknownLeader,
		},
		{
			name: "leader from another faction",
			body: map[string]any{"name": "Traitor", "cards": testutil.CardNames(testutil.NorthPrefix, 1, 22), "leader": "Emhyr var Emreis"},
			code: apierr.CodeLeaderMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/decks", tt.body, alice.SessionToken)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
}

func TestDuplicateDeckName(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	ts.createDeck(t, alice.SessionToken, "North", testutil.NorthPrefix, "King Foltest")

	rr := ts.request(http.MethodPost, "/api/v1/decks", map[string]any{
		"name":   "North",
		"cards":  testutil.CardNames(testutil.NorthPrefix, 1, 22),
		"leader": "King Foltest",
	}, alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeDuplicateDeckName, decodeError(t, rr).Code)
}

func TestPlayMatch(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	ts.fund(t, alice.SessionToken, 1)
	ts.fund(t, bob.SessionToken, 1)
	ts.createDeck(t, alice.SessionToken, "North", testutil.NorthPrefix, "King Foltest")
	ts.createDeck(t, bob.SessionToken, "Empire", testutil.NilfgaardPrefix, "Emhyr var Emreis")

	rr := ts.request(http.MethodPost, "/api/v1/matches", map[string]string{
		"deck_player1": "North",
		"player2":      "bob",
		"deck_player2": "Empire",
	}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var outcome response.MatchOutcome
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&outcome))
	assert.Equal(t, 113, outcome.TotalPower1)
	assert.Equal(t, 110, outcome.TotalPower2)
	assert.Equal(t, "player1", outcome.Result)
	require.NotNil(t, outcome.Winner)
	assert.Equal(t, "alice", *outcome.Winner)
	assert.Equal(t, "Total power Player 1: 113, Total power Player 2: 110. Player 1 Menang!", outcome.Message)

	// Both players see the match; credits are spent
	for _, token := range []string{alice.SessionToken, bob.SessionToken} {
		rr = ts.request(http.MethodGet, "/api/v1/matches", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		var matches []response.Match
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&matches))
		require.Len(t, matches, 1)
		assert.Equal(t, outcome.MatchID, matches[0].ID)

		rr = ts.request(http.MethodGet, "/api/v1/wallet", nil, token)
		var account response.Account
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&account))
		assert.Equal(t, int64(0), account.PlayCredits)
		assert.Equal(t, 1, account.GamesPlayed)
	}

	// No credits left for a rematch
	rr = ts.request(http.MethodPost, "/api/v1/matches", map[string]string{
		"deck_player1": "North",
		"player2":      "bob",
		"deck_player2": "Empire",
	}, alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInsufficientCredits, decodeError(t, rr).Code)
}

func TestPlayMatchUnknownOpponent(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/matches", map[string]string{
		"deck_player1": "North",
		"player2":      "nobody",
		"deck_player2": "Empire",
	}, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeOpponentNotFound, decodeError(t, rr).Code)
}

func TestWalletFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/wallet/topup", map[string]int64{"amount": 4999}, alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeBelowMinimumTopUp, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/wallet/topup", map[string]int64{"amount": 10000}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var balance response.Balance
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&balance))
	assert.Equal(t, int64(10000), balance.Balance)

	rr = ts.request(http.MethodPost, "/api/v1/wallet/powerups", map[string]any{"name": "Scorch", "amount": 2}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var receipt response.Receipt
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&receipt))
	assert.Equal(t, int64(4000), receipt.Balance)
	assert.Equal(t, 2, receipt.Owned)
	assert.Equal(t, int64(6000), receipt.Transaction.Total)

	rr = ts.request(http.MethodPost, "/api/v1/wallet/convert", map[string]int64{"amount": 1}, alice.SessionToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInsufficientBalance, decodeError(t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/v1/wallet/powerups", map[string]any{"name": "Nothing", "amount": 1}, alice.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePowerUpNotFound, decodeError(t, rr).Code)

	rr = ts.request(http.MethodGet, "/api/v1/wallet/topups", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var topups []response.Topup
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&topups))
	assert.Len(t, topups, 1)

	rr = ts.request(http.MethodGet, "/api/v1/wallet/transactions", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var txs []response.Transaction
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "Scorch", txs[0].Lines[0].Name)
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/admin/matches", nil, alice.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	created, err := ts.app.AuthService.BootstrapAdmin(t.Context(), "root", "rootpass")
	require.NoError(t, err)
	require.True(t, created)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"username": "root",
		"password": "rootpass",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var admin response.AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&admin))
	assert.Equal(t, "admin", admin.Player.Role)

	// Admin top-up for another user shows up in the global history
	rr = ts.request(http.MethodPost, "/api/v1/admin/users/"+alice.Player.ID+"/topup", map[string]int64{"amount": 5000}, admin.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/v1/admin/topups", nil, admin.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var topups []response.Topup
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&topups))
	require.Len(t, topups, 1)
	assert.Equal(t, alice.Player.ID, topups[0].UserID)

	rr = ts.request(http.MethodGet, "/api/v1/admin/transactions", nil, admin.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/admin/matches/missing", nil, admin.SessionToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeMatchNotFound, decodeError(t, rr).Code)
}

func TestAdminDeletesMatch(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	ts.fund(t, alice.SessionToken, 1)
	ts.fund(t, bob.SessionToken, 1)
	ts.createDeck(t, alice.SessionToken, "North", testutil.NorthPrefix, "King Foltest")
	ts.createDeck(t, bob.SessionToken, "Empire", testutil.NilfgaardPrefix, "Emhyr var Emreis")

	rr := ts.request(http.MethodPost, "/api/v1/matches", map[string]string{
		"deck_player1": "North",
		"player2":      "bob",
		"deck_player2": "Empire",
	}, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var outcome response.MatchOutcome
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&outcome))

	_, err := ts.app.AuthService.BootstrapAdmin(t.Context(), "root", "rootpass")
	require.NoError(t, err)
	session, err := ts.app.AuthService.Login(t.Context(), "root", "rootpass")
	require.NoError(t, err)

	rr = ts.request(http.MethodDelete, "/api/v1/admin/matches/"+outcome.MatchID, nil, session.Token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/matches", nil, alice.SessionToken)
	var matches []response.Match
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&matches))
	assert.Empty(t, matches)
}
