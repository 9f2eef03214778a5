package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salachat/internal/app/msglog"
	"salachat/internal/app/presence"
	"salachat/internal/configs"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	router  http.Handler
	nextIP  int
	deps    *AppDeps
}

func newTestServer(t *testing.T) *testServer {
	store := presence.NewMemoryStore()
	deps := &AppDeps{
		Presence: store,
		Messages: msglog.NewMemoryLog(store),
		Config: &configs.AppConfig{
			Environment:      "development",
			Port:             5000,
			SweepInterval:    15 * time.Second,
			StaleAfter:       10 * time.Second,
			MaxMessageLength: 1000,
		},
	}
	return &testServer{t: t, router: Router(deps), deps: deps}
}

// do issues a request from a fresh client address so the registration rate
// limiter never interferes with scenario tests.
func (s *testServer) do(method, target, user, body string) *httptest.ResponseRecorder {
	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	} else {
		rdr = strings.NewReader("")
	}

	r := httptest.NewRequest(method, target, rdr)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		r.Header.Set("User", user)
	}

	s.nextIP++
	r.RemoteAddr = fmt.Sprintf("10.0.%d.%d:4000", s.nextIP/250, s.nextIP%250+1)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s *testServer) register(name string) *httptest.ResponseRecorder {
	return s.do("POST", "/participants", "", fmt.Sprintf(`{"name":%q}`, name))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeMessages(t *testing.T, w *httptest.ResponseRecorder) []msglog.Message {
	env := decodeEnvelope(t, w)
	var msgs []msglog.Message
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	return msgs
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do("GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.register("ana")
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	var p presence.Participant
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "ana", p.Name)
	assert.False(t, p.LastSeen.IsZero())

	// Duplicate name is a conflict.
	w = s.register("ana")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Markup is stripped before the name is stored.
	w = s.register("<script>bob</script>")
	require.Equal(t, http.StatusCreated, w.Code)
	env = decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "bob", p.Name)

	// A name that is only markup is rejected.
	w = s.register("<br>")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// The broadcast address cannot be claimed.
	w = s.register("Todos")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do("GET", "/participants", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	var roster []presence.Participant
	require.NoError(t, json.Unmarshal(env.Data, &roster))
	assert.Len(t, roster, 2)
}

func TestBroadcastScenario(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusCreated, s.register("ana").Code)
	require.Equal(t, http.StatusCreated, s.register("bob").Code)

	w := s.do("POST", "/messages", "ana", `{"to":"Todos","text":"oi","type":"broadcast"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do("GET", "/messages", "bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decodeMessages(t, w)

	// bob sees both arrival announcements plus ana's broadcast, in order.
	require.Len(t, msgs, 3)
	assert.Equal(t, msglog.KindStatus, msgs[0].Kind)
	assert.Equal(t, "ana", msgs[0].From)
	assert.Equal(t, ArrivalText, msgs[0].Text)
	assert.Equal(t, "oi", msgs[2].Text)
	assert.Equal(t, "ana", msgs[2].From)
}

func TestDirectMessageScenario(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusCreated, s.register("ana").Code)
	require.Equal(t, http.StatusCreated, s.register("bob").Code)
	require.Equal(t, http.StatusCreated, s.register("carol").Code)

	w := s.do("POST", "/messages", "ana", `{"to":"bob","text":"psst","type":"direct"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	hasPsst := func(msgs []msglog.Message) bool {
		for _, m := range msgs {
			if m.Text == "psst" {
				return true
			}
		}
		return false
	}

	assert.True(t, hasPsst(decodeMessages(t, s.do("GET", "/messages", "ana", ""))))
	assert.True(t, hasPsst(decodeMessages(t, s.do("GET", "/messages", "bob", ""))))
	assert.False(t, hasPsst(decodeMessages(t, s.do("GET", "/messages", "carol", ""))))
}

func TestPostMessageErrors(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register("ana").Code)

	// Unknown sender.
	w := s.do("POST", "/messages", "ghost", `{"to":"Todos","text":"boo","type":"broadcast"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Missing sender header.
	w = s.do("POST", "/messages", "", `{"to":"Todos","text":"oi","type":"broadcast"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Clients cannot forge system status messages.
	w = s.do("POST", "/messages", "ana", `{"to":"Todos","text":"oi","type":"status"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Empty text.
	w = s.do("POST", "/messages", "ana", `{"to":"Todos","text":"","type":"broadcast"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Oversized text.
	long := strings.Repeat("a", s.deps.Config.MaxMessageLength+1)
	w = s.do("POST", "/messages", "ana", fmt.Sprintf(`{"to":"Todos","text":%q,"type":"broadcast"}`, long))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListMessagesErrors(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register("ana").Code)

	// Unknown viewer.
	w := s.do("GET", "/messages", "ghost", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Bad limit.
	w = s.do("GET", "/messages?limit=zero", "ana", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do("GET", "/messages?limit=-2", "ana", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListMessagesLimit(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register("ana").Code)

	for i := 0; i < 4; i++ {
		w := s.do("POST", "/messages", "ana", fmt.Sprintf(`{"to":"Todos","text":"m%d","type":"broadcast"}`, i))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	msgs := decodeMessages(t, s.do("GET", "/messages?limit=2", "ana", ""))
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[0].Text)
	assert.Equal(t, "m3", msgs[1].Text)
}

func TestEditAndDeleteMessage(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register("ana").Code)
	require.Equal(t, http.StatusCreated, s.register("bob").Code)

	w := s.do("POST", "/messages", "ana", `{"to":"Todos","text":"oi","type":"broadcast"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	var m msglog.Message
	require.NoError(t, json.Unmarshal(env.Data, &m))

	// Non-owner edit is forbidden.
	w = s.do("PUT", "/messages/"+m.ID, "bob", `{"to":"Todos","text":"hacked","type":"broadcast"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Owner edit succeeds.
	w = s.do("PUT", "/messages/"+m.ID, "ana", `{"to":"bob","text":"edited","type":"direct"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	msgs := decodeMessages(t, s.do("GET", "/messages", "bob", ""))
	found := false
	for _, got := range msgs {
		if got.ID == m.ID {
			found = true
			assert.Equal(t, "edited", got.Text)
			assert.Equal(t, "bob", got.To)
			assert.Equal(t, msglog.KindDirect, got.Kind)
			assert.Equal(t, m.Time, got.Time)
		}
	}
	assert.True(t, found)

	// Unknown id.
	w = s.do("PUT", "/messages/does-not-exist", "ana", `{"to":"Todos","text":"x","type":"broadcast"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Non-owner delete is forbidden, owner delete succeeds.
	w = s.do("DELETE", "/messages/"+m.ID, "bob", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do("DELETE", "/messages/"+m.ID, "ana", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do("DELETE", "/messages/"+m.ID, "ana", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHeartbeat(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register("ana").Code)

	w := s.do("POST", "/status", "ana", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do("POST", "/status", "ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("POST", "/status", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRegisterRateLimit(t *testing.T) {
	s := newTestServer(t)

	// All requests from one address: the burst allows a few, then 429.
	limited := false
	for i := 0; i < RegisterBurst+2; i++ {
		r := httptest.NewRequest("POST", "/participants", strings.NewReader(fmt.Sprintf(`{"name":"user%d"}`, i)))
		r.Header.Set("Content-Type", "application/json")
		r.RemoteAddr = "203.0.113.7:4000"

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, r)
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited)
}
