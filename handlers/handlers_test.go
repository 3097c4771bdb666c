package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tripplanner-backend/handlers"
	"tripplanner-backend/models"
	"tripplanner-backend/services"
	"tripplanner-backend/testutil"
	"tripplanner-backend/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details map[string]any  `json:"details"`
}

type server struct {
	t      *testing.T
	router *gin.Engine
	tokens *utils.TokenManager
}

func newServer(t *testing.T) (*server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)
	notifs := services.NewNotificationService(db, nil, nil)
	h := &handlers.Handler{
		Tokens:        utils.NewTokenManager("test-secret", time.Hour),
		Users:         services.NewUserService(db),
		Trips:         services.NewTripService(db, notifs),
		Invites:       services.NewInviteService(db, notifs, nil, "http://trips.test"),
		Itinerary:     services.NewItineraryService(db, notifs),
		Polls:         services.NewPollService(db, notifs),
		Chat:          services.NewChatService(db, notifs),
		Notifications: notifs,
	}
	r := handlers.NewRouter(h, handlers.RouterConfig{AppName: "test"})
	return &server{t: t, router: r, tokens: h.Tokens}, db
}

func (s *server) token(u *models.User) string {
	tok, err := s.tokens.Generate(u.ID, u.Email)
	require.NoError(s.t, err)
	return tok
}

func (s *server) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthAndAuth(t *testing.T) {
	s, _ := newServer(t)

	code, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	auth := decode[handlers.AuthResponse](t, env.Data)
	assert.NotEmpty(t, auth.Token)

	code, _ = s.do(http.MethodPost, "/auth/login", "", map[string]string{"identifier": "ALICE@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, "/auth/login", "", map[string]string{"identifier": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/trips", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(http.MethodGet, "/api/users/me", auth.Token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", decode[models.UserResponse](t, env.Data).Username)
}

func TestTripInviteFlow(t *testing.T) {
	s, db := newServer(t)
	owner := testutil.CreateUser(t, db, "owner")
	collab := testutil.CreateUser(t, db, "collab")
	eve := testutil.CreateUser(t, db, "eve")

	code, env := s.do(http.MethodPost, "/api/trips", s.token(owner), map[string]string{"title": "Alps"})
	require.Equal(t, http.StatusCreated, code)
	trip := decode[models.TripResponse](t, env.Data)
	base := "/api/trips/" + trip.ID.String()

	code, _ = s.do(http.MethodPost, base+"/add-collaborator", s.token(owner), map[string]string{"username": "collab"})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodPost, base+"/invite", s.token(owner), map[string]string{"identifier": "collab@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User is already a member.", env.Message)

	code, _ = s.do(http.MethodPost, base+"/invite", s.token(owner), map[string]string{"identifier": "ghost"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, base+"/invite", s.token(collab), map[string]string{"identifier": "x@x.com"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodPost, base+"/invite", s.token(owner), map[string]string{"identifier": "bob@x.com"})
	require.Equal(t, http.StatusOK, code)
	invite := decode[models.InviteResponse](t, env.Data)

	code, env = s.do(http.MethodPost, base+"/invite", s.token(owner), map[string]string{"identifier": "BOB@x.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "User already invited.", env.Message)

	accept := fmt.Sprintf("/api/invites/%s/accept", invite.Token)
	code, _ = s.do(http.MethodPost, accept, s.token(eve), nil)
	assert.Equal(t, http.StatusForbidden, code)

	bob := testutil.CreateUser(t, db, "bob")
	require.NoError(t, db.Model(bob).Update("email", "bob@x.com").Error)
	bob.Email = "bob@x.com"

	code, env = s.do(http.MethodGet, "/api/invitations", s.token(bob), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.InviteResponse](t, env.Data), 1)

	code, _ = s.do(http.MethodGet, fmt.Sprintf("/api/invites/accept/%s", invite.Token), s.token(bob), nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodPost, accept, s.token(bob), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invitation is no longer pending.", env.Message)

	code, env = s.do(http.MethodGet, base, s.token(bob), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[models.TripResponse](t, env.Data).Collaborators, 2)

	code, _ = s.do(http.MethodPost, "/api/invites/not-a-token/accept", s.token(bob), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestChatPollsAndItinerary(t *testing.T) {
	s, db := newServer(t)
	owner := testutil.CreateUser(t, db, "owner")
	anna := testutil.CreateUser(t, db, "anna")
	outsider := testutil.CreateUser(t, db, "outsider")
	trip := testutil.CreateTrip(t, db, owner, anna)
	base := "/api/trips/" + trip.ID.String()

	code, _ := s.do(http.MethodPost, base+"/chat", s.token(anna), map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, base+"/chat", s.token(outsider), map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodPost, base+"/chat", s.token(anna), map[string]string{"message": " "})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := s.do(http.MethodGet, "/api/notifications", s.token(owner), nil)
	require.Equal(t, http.StatusOK, code)
	summary := decode[models.NotificationSummary](t, env.Data)
	assert.Equal(t, 1, summary.Total)

	code, _ = s.do(http.MethodPost, "/api/notifications/mark-read", s.token(owner), map[string]string{"trip_id": trip.ID.String(), "type": "chat"})
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, "/api/notifications/mark-read", s.token(owner), map[string]string{"type": "chat"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, base+"/polls", s.token(owner), map[string]any{
		"question": "Where?", "options": []map[string]string{{"text": "Rome"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPost, base+"/polls", s.token(owner), map[string]any{
		"question": "Where?", "options": []map[string]string{{"text": "Rome"}, {"text": "Rome"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	code, env = s.do(http.MethodPost, base+"/polls", s.token(owner), map[string]any{
		"question": "Where?", "options": []map[string]string{{"text": "Rome"}, {"text": "Paris"}},
	})
	require.Equal(t, http.StatusCreated, code)
	poll := decode[models.PollResponse](t, env.Data)

	vote := fmt.Sprintf("/api/polls/%d/vote", poll.ID)
	code, _ = s.do(http.MethodPost, vote, s.token(anna), map[string]uint{"option_id": poll.Options[0].ID})
	assert.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodPost, vote, s.token(anna), map[string]uint{"option_id": poll.Options[1].ID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, services.ErrAlreadyVoted.Message, env.Message)
	code, _ = s.do(http.MethodPost, vote, s.token(owner), map[string]uint{"option_id": 9999})
	assert.Equal(t, http.StatusBadRequest, code)

	var ids []uint
	for _, title := range []string{"A", "B", "C"} {
		code, env = s.do(http.MethodPost, base+"/itinerary", s.token(owner), map[string]string{"title": title})
		require.Equal(t, http.StatusCreated, code)
		ids = append(ids, decode[models.ItineraryItem](t, env.Data).ID)
	}
	code, env = s.do(http.MethodPost, base+"/itinerary/reorder", s.token(anna), map[string][]uint{"item_ids": {ids[2], ids[0]}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Details, "missing_ids")

	code, env = s.do(http.MethodPost, base+"/itinerary/reorder", s.token(anna), map[string][]uint{"item_ids": {ids[2], ids[0], ids[1]}})
	require.Equal(t, http.StatusOK, code)
	items := decode[[]models.ItineraryItem](t, env.Data)
	assert.Equal(t, []uint{ids[2], ids[0], ids[1]}, []uint{items[0].ID, items[1].ID, items[2].ID})

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("%s/itinerary/%d", base, ids[0]), s.token(anna), nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodDelete, fmt.Sprintf("%s/itinerary/%d", base, ids[0]), s.token(owner), nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, env = s.do(http.MethodGet, "/api/notifications/history", s.token(owner), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), services.VerbVoted)
}
