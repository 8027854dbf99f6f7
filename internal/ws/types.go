package ws

import "encoding/json"

const (
	// client -> server
	MsgCreate        = "create"
	MsgRejoinAttempt = "rejoin_attempt"
	MsgJoinRequest   = "join_request"
	MsgJoinDecision  = "join_decision"
	MsgConfirmJoin   = "confirm_join"
	MsgConfigUpdate  = "config_update"
	MsgSubmit        = "submit"
	MsgRematchVote   = "rematch_vote"
	MsgChatSend      = "chat_send"
	MsgPing          = "ping"

	// server -> client, transport level only; room events use battle.Msg*
	MsgReady = "ready"
	MsgPong  = "pong"
)

// Envelope is the frame every message travels in, both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
