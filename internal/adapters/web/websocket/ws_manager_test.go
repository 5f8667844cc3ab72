package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	events chan domain.AttackEvent
	status domain.AttackStatus
}

func (f *fakeSource) Subscribe() (<-chan domain.AttackEvent, func()) {
	return f.events, func() {}
}

func (f *fakeSource) Status(ctx context.Context) domain.AttackStatus {
	return f.status
}

func dial(t *testing.T, m *WSManager, user *domain.User) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HandleWebSocket(w, r.WithContext(domain.ContextWithUser(r.Context(), user)))
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWSManager_ForwardsEvents(t *testing.T) {
	src := &fakeSource{events: make(chan domain.AttackEvent, 4), status: domain.AttackStatus{Phase: domain.PhaseIdle}}
	m := NewWSManager(src, nil)
	m.StatusInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	conn := dial(t, m, &domain.User{Username: "op", Role: domain.RoleOperator})
	hello := readMessage(t, conn)
	assert.Equal(t, "attack.status", hello.Type)

	ev := domain.NewAttackEvent("a1", domain.EventCredentialFound)
	ev.Candidate = "sunshine99"
	src.events <- ev

	msg := readMessage(t, conn)
	assert.Equal(t, string(domain.EventCredentialFound), msg.Type)
	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "sunshine99", payload["candidate"])
}

func TestWSManager_RedactsForViewers(t *testing.T) {
	src := &fakeSource{events: make(chan domain.AttackEvent, 4), status: domain.AttackStatus{Phase: domain.PhaseIdle}}
	m := NewWSManager(src, nil)
	m.StatusInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	conn := dial(t, m, &domain.User{Username: "guest", Role: domain.RoleViewer})
	readMessage(t, conn)

	ev := domain.NewAttackEvent("a1", domain.EventCredentialFound)
	ev.Candidate = "sunshine99"
	src.events <- ev

	msg := readMessage(t, conn)
	payload := msg.Payload.(map[string]interface{})
	assert.NotContains(t, payload, "candidate")
}

func TestWSManager_RejectsUnknownOrigin(t *testing.T) {
	check := checkOrigin([]string{"http://localhost:8080"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req), "same-origin requests carry no Origin")

	req.Header.Set("Origin", "http://localhost:8080")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}

func TestWSManager_RequiresUser(t *testing.T) {
	m := NewWSManager(&fakeSource{events: make(chan domain.AttackEvent)}, nil)
	rr := httptest.NewRecorder()
	m.HandleWebSocket(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
