package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"byte_battle/internal/battle"
)

type call struct {
	op     string
	actor  battle.Actor
	code   string
	arg    string
	accept bool
	upd    battle.ConfigUpdate
}

type fakeBattles struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeBattles) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeBattles) last(t *testing.T) call {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatalf("no engine call recorded")
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeBattles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBattles) Create(_ context.Context, a battle.Actor) (string, error) {
	f.record(call{op: "create", actor: a})
	return "AB12", nil
}
func (f *fakeBattles) Rejoin(a battle.Actor, code string) {
	f.record(call{op: "rejoin", actor: a, code: code})
}
func (f *fakeBattles) RequestJoin(a battle.Actor, code string) {
	f.record(call{op: "join", actor: a, code: code})
}
func (f *fakeBattles) DecideJoin(a battle.Actor, code string, accept bool) {
	f.record(call{op: "decide", actor: a, code: code, accept: accept})
}
func (f *fakeBattles) ConfirmJoin(a battle.Actor, code string) {
	f.record(call{op: "confirm", actor: a, code: code})
}
func (f *fakeBattles) UpdateConfig(a battle.Actor, code string, upd battle.ConfigUpdate) {
	f.record(call{op: "config", actor: a, code: code, upd: upd})
}
func (f *fakeBattles) Submit(a battle.Actor, code, source string) {
	f.record(call{op: "submit", actor: a, code: code, arg: source})
}
func (f *fakeBattles) Vote(a battle.Actor, code, vote string) {
	f.record(call{op: "vote", actor: a, code: code, arg: vote})
}
func (f *fakeBattles) Chat(a battle.Actor, code, text string) {
	f.record(call{op: "chat", actor: a, code: code, arg: text})
}
func (f *fakeBattles) Disconnect(userID int64, connID string) {
	f.record(call{op: "disconnect", arg: connID})
}

func newTestClient(b Battles, buffer int) *Client {
	return &Client{
		ID:      "conn-1",
		UserID:  7,
		Name:    "Player 7",
		battles: b,
		send:    make(chan []byte, buffer),
		done:    make(chan struct{}),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func nextFrame(t *testing.T, c *Client) (string, map[string]any) {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("bad frame %s: %v", raw, err)
		}
		return msg.Type, msg.Payload
	default:
		t.Fatalf("no frame queued")
		return "", nil
	}
}

func TestRouterForwardsToEngine(t *testing.T) {
	cases := []struct {
		frame  string
		op     string
		code   string
		arg    string
		accept bool
		name   string
	}{
		{`{"type":"create","payload":{"display_name":"  Ada  "}}`, "create", "", "", false, "Ada"},
		{`{"type":"create"}`, "create", "", "", false, "Player 7"},
		{`{"type":"rejoin_attempt","payload":{"room_code":"ab12"}}`, "rejoin", "AB12", "", false, "Player 7"},
		{`{"type":"join_request","payload":{"room_code":" ab12 ","display_name":"Grace"}}`, "join", "AB12", "", false, "Grace"},
		{`{"type":"join_decision","payload":{"room_code":"AB12","accept":true}}`, "decide", "AB12", "", true, "Player 7"},
		{`{"type":"confirm_join","payload":{"room_code":"AB12"}}`, "confirm", "AB12", "", false, "Player 7"},
		{`{"type":"submit","payload":{"room_code":"AB12","code":"print(42)"}}`, "submit", "AB12", "print(42)", false, "Player 7"},
		{`{"type":"rematch_vote","payload":{"room_code":"AB12","vote":"yes"}}`, "vote", "AB12", "yes", false, "Player 7"},
		{`{"type":"chat_send","payload":{"room_code":"AB12","message":"gg"}}`, "chat", "AB12", "gg", false, "Player 7"},
	}
	for _, tc := range cases {
		fb := &fakeBattles{}
		c := newTestClient(fb, 4)
		c.handle([]byte(tc.frame))

		got := fb.last(t)
		if got.op != tc.op || got.code != tc.code || got.arg != tc.arg || got.accept != tc.accept {
			t.Fatalf("%s: got %+v", tc.frame, got)
		}
		if got.actor.UserID != 7 || got.actor.Name != tc.name || got.actor.Handle != battle.Handle(c) {
			t.Fatalf("%s: actor = %+v", tc.frame, got.actor)
		}
	}
}

func TestRouterConfigUpdate(t *testing.T) {
	fb := &fakeBattles{}
	c := newTestClient(fb, 4)
	c.handle([]byte(`{"type":"config_update","payload":{"room_code":"AB12","difficulty":"Hard"}}`))
	got := fb.last(t)
	if got.upd.Difficulty == nil || *got.upd.Difficulty != "Hard" || got.upd.Language != nil {
		t.Fatalf("update = %+v", got.upd)
	}

	c.handle([]byte(`{"type":"config_update","payload":{"room_code":"AB12"}}`))
	typ, payload := nextFrame(t, c)
	if typ != battle.MsgError || payload["code"] != string(battle.CodeInvalidConfig) {
		t.Fatalf("got %s %v", typ, payload)
	}
	if fb.count() != 1 {
		t.Fatalf("empty update forwarded")
	}
}

func TestRouterRejectsBadFrames(t *testing.T) {
	frames := []string{
		`not json`,
		`{"payload":{}}`,
		`{"type":"teleport"}`,
		`{"type":"submit","payload":{"code":"x"}}`,
		`{"type":"submit","payload":"oops"}`,
	}
	for _, f := range frames {
		fb := &fakeBattles{}
		c := newTestClient(fb, 4)
		c.handle([]byte(f))
		typ, payload := nextFrame(t, c)
		if typ != battle.MsgError || payload["code"] != string(battle.CodeBadRequest) {
			t.Fatalf("%s: got %s %v", f, typ, payload)
		}
		if fb.count() != 0 {
			t.Fatalf("%s: forwarded to engine", f)
		}
	}
}

func TestRouterPing(t *testing.T) {
	c := newTestClient(&fakeBattles{}, 4)
	c.handle([]byte(`{"type":"ping"}`))
	if typ, _ := nextFrame(t, c); typ != MsgPong {
		t.Fatalf("got %s; want pong", typ)
	}
}

func TestSendNeverBlocks(t *testing.T) {
	c := newTestClient(&fakeBattles{}, 1)
	if !c.Send(battle.Message{Type: "a"}) {
		t.Fatalf("first send refused")
	}
	if c.Send(battle.Message{Type: "b"}) {
		t.Fatalf("send into a full buffer reported success")
	}
	<-c.send
	c.Close()
	c.Close()
	if c.Send(battle.Message{Type: "c"}) {
		t.Fatalf("send after close reported success")
	}
}
