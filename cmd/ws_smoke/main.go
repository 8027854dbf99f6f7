package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"byte_battle/internal/service"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type player struct {
	name string
	conn *websocket.Conn
}

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "", "server host:port (default 127.0.0.1:$APP_PORT)")
	idA := flag.Int64("a", 3001, "user id of the host")
	idB := flag.Int64("b", 3002, "user id of the guest")
	wait := flag.Duration("wait", 2*time.Minute, "how long to wait for generation and judging")
	flag.Parse()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(jwtSecret)

	if *addr == "" {
		port := os.Getenv("APP_PORT")
		if port == "" {
			port = "8080"
		}
		// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
		*addr = "127.0.0.1:" + port
	}

	a := dial(*addr, *idA, "Smoke A")
	defer a.conn.Close()
	b := dial(*addr, *idB, "Smoke B")
	defer b.conn.Close()

	a.send("create", map[string]any{"display_name": "Smoke A"})
	var created struct {
		RoomCode string `json:"room_code"`
	}
	a.expect("created", 5*time.Second, &created)
	log.Printf("room %s created", created.RoomCode)
	room := map[string]any{"room_code": created.RoomCode}

	b.send("join_request", map[string]any{"room_code": created.RoomCode, "display_name": "Smoke B"})
	a.expect("join_requested", 5*time.Second, nil)
	a.send("join_decision", map[string]any{"room_code": created.RoomCode, "accept": true})
	b.expect("join_accepted", 5*time.Second, nil)
	b.send("confirm_join", room)
	a.expect("player_joined", 5*time.Second, nil)

	a.send("config_update", map[string]any{"room_code": created.RoomCode, "difficulty": "Easy", "language": "Python"})
	var started struct {
		Problem struct {
			Title string `json:"title"`
		} `json:"problem"`
		Fallback bool `json:"fallback"`
	}
	a.expect("battle_started", *wait, &started)
	b.expect("battle_started", 5*time.Second, nil)
	log.Printf("battle started: %q (fallback=%v)", started.Problem.Title, started.Fallback)

	a.send("submit", map[string]any{"room_code": created.RoomCode, "code": "def solve(s):\n    t = [c.lower() for c in s if c.isalnum()]\n    return t == t[::-1]"})
	b.send("submit", map[string]any{"room_code": created.RoomCode, "code": "def solve(s):\n    return True"})

	var result map[string]any
	a.expect("result", *wait, &result)
	log.Printf("result: winner=%v outcome=%v reason=%v", result["winner"], result["outcome"], result["reason"])

	b.send("rematch_vote", map[string]any{"room_code": created.RoomCode, "vote": "no"})
	a.expect("rematch_declined", 5*time.Second, nil)

	log.Println("smoke test finished")
}

func dial(addr string, userID int64, name string) *player {
	token, err := service.GenerateJWT(userID, name, time.Hour)
	if err != nil {
		log.Fatalf("gen token for %d: %v", userID, err)
	}
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws", RawQuery: "token=" + url.QueryEscape(token)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial %s: %v", name, err)
	}
	p := &player{name: name, conn: conn}
	p.expect("ready", 5*time.Second, nil)
	return p
}

func (p *player) send(typ string, payload any) {
	body, _ := json.Marshal(payload)
	msg, _ := json.Marshal(envelope{Type: typ, Payload: body})
	if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Fatalf("%s write %s: %v", p.name, typ, err)
	}
}

// expect reads until a message of type typ arrives, failing on error frames.
func (p *player) expect(typ string, timeout time.Duration, into any) {
	deadline := time.Now().Add(timeout)
	for {
		_ = p.conn.SetReadDeadline(deadline)
		_, raw, err := p.conn.ReadMessage()
		if err != nil {
			log.Fatalf("%s waiting for %s: %v", p.name, typ, err)
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		if env.Type == "error" {
			log.Fatalf("%s got error while waiting for %s: %s", p.name, typ, env.Payload)
		}
		if env.Type != typ {
			continue
		}
		if into != nil {
			if err := json.Unmarshal(env.Payload, into); err != nil {
				log.Fatalf("%s decode %s: %v", p.name, typ, err)
			}
		}
		fmt.Printf("%s <- %s\n", p.name, typ)
		return
	}
}
