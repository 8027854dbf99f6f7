package battle

import "time"

// Handle is a player's current transport endpoint. Send must not block.
type Handle interface {
	ConnID() string
	Send(msg Message) bool
}

// Actor is the identity and connection behind one inbound event.
type Actor struct {
	UserID int64
	Name   string
	Handle Handle
}

// Message is one outbound event.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// server -> client
const (
	MsgCreated            = "created"
	MsgRejoined           = "rejoined"
	MsgJoinRequested      = "join_requested"
	MsgJoinRequestSent    = "join_request_sent"
	MsgJoinCancelled      = "join_request_cancelled"
	MsgJoinAccepted       = "join_accepted"
	MsgJoinRejected       = "join_rejected"
	MsgPlayerJoined       = "player_joined"
	MsgPlayerDisconnected = "player_disconnected"
	MsgPlayerReconnected  = "player_reconnected"
	MsgStateChanged       = "state_changed"
	MsgConfigUpdated      = "config_updated"
	MsgBattleStarted      = "battle_started"
	MsgOpponentSubmitted  = "opponent_submitted"
	MsgSubmissionReceived = "submission_received"
	MsgResult             = "result"
	MsgRematchVote        = "rematch_vote_recorded"
	MsgRematchDeclined    = "rematch_declined"
	MsgRestart            = "restart"
	MsgChat               = "chat_message"
	MsgError              = "error"
)

type CreatedPayload struct {
	RoomCode string `json:"room_code"`
	PlayerID int64  `json:"player_id"`
}

type PlayerInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"is_host"`
	Connected bool   `json:"connected"`
}

// RoomView is everything a (re)connecting player needs to rebuild their screen.
type RoomView struct {
	RoomCode          string       `json:"room_code"`
	State             State        `json:"state"`
	IsHost            bool         `json:"is_host"`
	Players           []PlayerInfo `json:"players"`
	Config            RoundConfig  `json:"config"`
	Round             int          `json:"round"`
	Problem           *Problem     `json:"problem,omitempty"`
	StartedAt         *time.Time   `json:"started_at,omitempty"`
	Duration          int          `json:"duration,omitempty"`
	Remaining         int          `json:"remaining,omitempty"`
	Submitted         bool         `json:"submitted"`
	OpponentSubmitted bool         `json:"opponent_submitted"`
	Result            *Result      `json:"result,omitempty"`
	PendingJoin       *PlayerInfo  `json:"pending_join,omitempty"`
}

type JoinRequestedPayload struct {
	RoomCode    string `json:"room_code"`
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type RoomCodePayload struct {
	RoomCode string `json:"room_code"`
}

type PlayersPayload struct {
	RoomCode string       `json:"room_code"`
	Players  []PlayerInfo `json:"players"`
}

type PlayerPayload struct {
	PlayerID int64 `json:"player_id"`
}

type StatePayload struct {
	State State `json:"state"`
}

type BattleStartedPayload struct {
	Problem          Problem    `json:"problem"`
	Difficulty       Difficulty `json:"difficulty"`
	Language         string     `json:"language"`
	Duration         int        `json:"duration"`
	StartedAt        time.Time  `json:"started_at"`
	DeadlineEnforced bool       `json:"deadline_enforced"`
	Fallback         bool       `json:"fallback"`
}

type SubmissionReceivedPayload struct {
	TimeTaken float64 `json:"time_taken"`
}

type RematchVotePayload struct {
	PlayerID int64 `json:"player_id"`
	Vote     Vote  `json:"vote"`
}

type RematchDeclinedPayload struct {
	DeclinedBy int64 `json:"declined_by"`
}

type RestartPayload struct {
	Config RoundConfig `json:"config"`
	Round  int         `json:"round"`
}

type ChatPayload struct {
	SenderID int64  `json:"sender_id"`
	Sender   string `json:"sender"`
	Message  string `json:"message"`
	Kind     string `json:"type"`
}

// RoomSummary is the public, pre-join view of a room.
type RoomSummary struct {
	RoomCode string `json:"room_code"`
	State    State  `json:"state"`
	Host     string `json:"host"`
	Players  int    `json:"players"`
	Joinable bool   `json:"joinable"`
}

func errorMessage(err *Error) Message {
	return Message{Type: MsgError, Payload: err}
}
