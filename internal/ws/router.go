package ws

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"byte_battle/internal/battle"
)

const (
	createTimeout = 5 * time.Second
	maxNameRunes  = 32
)

// Battles is the slice of the battle engine the transport drives.
type Battles interface {
	Create(ctx context.Context, a battle.Actor) (string, error)
	Rejoin(a battle.Actor, code string)
	RequestJoin(a battle.Actor, code string)
	DecideJoin(a battle.Actor, code string, accept bool)
	ConfirmJoin(a battle.Actor, code string)
	UpdateConfig(a battle.Actor, code string, upd battle.ConfigUpdate)
	Submit(a battle.Actor, code, source string)
	Vote(a battle.Actor, code, vote string)
	Chat(a battle.Actor, code, text string)
	Disconnect(userID int64, connID string)
}

func (c *Client) actor() battle.Actor {
	return battle.Actor{UserID: c.UserID, Name: c.Name, Handle: c}
}

func (c *Client) sendError(code battle.Code, msg string) {
	c.Send(battle.Message{Type: battle.MsgError, Payload: &battle.Error{Code: code, Message: msg}})
}

// handle decodes one inbound frame and forwards it to the engine.
func (c *Client) handle(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		c.sendError(battle.CodeBadRequest, "malformed message")
		return
	}
	a := c.actor()

	switch env.Type {
	case MsgPing:
		c.Send(battle.Message{Type: MsgPong})

	case MsgCreate:
		var p CreatePayload
		if !c.decode(env, &p) {
			return
		}
		if name := cleanName(p.DisplayName); name != "" {
			a.Name = name
		}
		ctx, cancel := context.WithTimeout(context.Background(), createTimeout)
		defer cancel()
		if _, err := c.battles.Create(ctx, a); err != nil {
			c.log.Warn("create room failed", "error", err)
		}

	case MsgRejoinAttempt:
		var p RoomPayload
		if c.decodeRoom(env, &p, &p.RoomCode) {
			c.battles.Rejoin(a, p.RoomCode)
		}

	case MsgJoinRequest:
		var p JoinRequestPayload
		if !c.decodeRoom(env, &p, &p.RoomCode) {
			return
		}
		if name := cleanName(p.DisplayName); name != "" {
			a.Name = name
		}
		c.battles.RequestJoin(a, p.RoomCode)

	case MsgJoinDecision:
		var p JoinDecisionPayload
		if c.decodeRoom(env, &p, &p.RoomCode) {
			c.battles.DecideJoin(a, p.RoomCode, p.Accept)
		}

	case MsgConfirmJoin:
		var p RoomPayload
		if c.decodeRoom(env, &p, &p.RoomCode) {
			c.battles.ConfirmJoin(a, p.RoomCode)
		}

	case MsgConfigUpdate:
		var p ConfigUpdatePayload
		if !c.decodeRoom(env, &p, &p.RoomCode) {
			return
		}
		if p.Difficulty == nil && p.Language == nil {
			c.sendError(battle.CodeInvalidConfig, "difficulty or language required")
			return
		}
		c.battles.UpdateConfig(a, p.RoomCode, battle.ConfigUpdate{Difficulty: p.Difficulty, Language: p.Language})

	case MsgSubmit:
		var p SubmitPayload
		if c.decodeRoom(env, &p, &p.RoomCode) {
			c.battles.Submit(a, p.RoomCode, p.Code)
		}

	case MsgRematchVote:
		var p RematchVotePayload
		if c.decodeRoom(env, &p, &p.RoomCode) {
			c.battles.Vote(a, p.RoomCode, p.Vote)
		}

	case MsgChatSend:
		var p ChatSendPayload
		if c.decodeRoom(env, &p, &p.RoomCode) {
			c.battles.Chat(a, p.RoomCode, p.Message)
		}

	default:
		c.sendError(battle.CodeBadRequest, "unknown message type: "+env.Type)
	}
}

func (c *Client) decode(env Envelope, dst any) bool {
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return true
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		c.sendError(battle.CodeBadRequest, "invalid payload for "+env.Type)
		return false
	}
	return true
}

// decodeRoom decodes dst and requires a room code in it.
func (c *Client) decodeRoom(env Envelope, dst any, code *string) bool {
	if !c.decode(env, dst) {
		return false
	}
	*code = battle.NormalizeCode(*code)
	if *code == "" {
		c.sendError(battle.CodeBadRequest, "room_code required")
		return false
	}
	return true
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxNameRunes {
		s = string([]rune(s)[:maxNameRunes])
	}
	return s
}
