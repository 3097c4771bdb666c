package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"tripplanner-backend/apperr"
	"tripplanner-backend/services"
	"tripplanner-backend/testutil"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []services.InviteEmail
	err  error
}

func (m *fakeMailer) SendInvite(_ context.Context, e services.InviteEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return m.err
}

type pushCall struct {
	Tokens      []string
	Title, Body string
	Data        map[string]string
}

type fakePusher struct {
	mu    sync.Mutex
	calls []pushCall
}

func (p *fakePusher) Push(_ context.Context, tokens []string, title, body string, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, pushCall{Tokens: tokens, Title: title, Body: body, Data: data})
	return nil
}

type env struct {
	db        *gorm.DB
	mailer    *fakeMailer
	pusher    *fakePusher
	notifs    *services.NotificationService
	invites   *services.InviteService
	trips     *services.TripService
	polls     *services.PollService
	itinerary *services.ItineraryService
	chat      *services.ChatService
	users     *services.UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewTestDB(t)
	e := &env{db: db, mailer: &fakeMailer{}, pusher: &fakePusher{}}
	e.notifs = services.NewNotificationService(db, nil, e.pusher)
	e.invites = services.NewInviteService(db, e.notifs, e.mailer, "http://trips.test/")
	e.trips = services.NewTripService(db, e.notifs)
	e.polls = services.NewPollService(db, e.notifs)
	e.itinerary = services.NewItineraryService(db, e.notifs)
	e.chat = services.NewChatService(db, e.notifs)
	e.users = services.NewUserService(db)
	return e
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if !assert.Error(t, err) {
		return
	}
	assert.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}

var errBoom = errors.New("boom")

// onceAfterQuery runs fn the first time a query on table completes and match
// accepts its statement. fn receives a fresh session on the same connection,
// so writes made inside a transaction land in that transaction.
func onceAfterQuery(t *testing.T, db *gorm.DB, table string, match func(*gorm.Statement) bool, fn func(tx *gorm.DB)) {
	t.Helper()
	var once sync.Once
	err := db.Callback().Query().After("gorm:query").Register("test:after_"+table, func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Table != table || !match(tx.Statement) {
			return
		}
		once.Do(func() { fn(tx.Session(&gorm.Session{NewDB: true})) })
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}
