package battle

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxChatRunes = 500

func send(h Handle, msg Message) {
	if h != nil {
		h.Send(msg)
	}
}

func fallbackName(userID int64) string {
	return fmt.Sprintf("Player %d", userID)
}

func (e *Engine) handleCreate(ev createEvent) {
	a := ev.actor
	if a.Name == "" {
		a.Name = fallbackName(a.UserID)
	}
	host := &Player{
		UserID:    a.UserID,
		Name:      a.Name,
		JoinedAt:  e.clock.Now(),
		Confirmed: true,
		handle:    a.Handle,
	}
	s, err := e.registry.Create(host, e.clock.Now())
	if err != nil {
		e.log.Error("create battle room failed", "user", a.UserID, "error", err)
		e.sendError(a.Handle, &Error{Code: CodeInternal, Message: "Could not create a room, try again."})
		ev.reply <- createResult{err: err}
		return
	}
	roomsCreated.Inc()
	e.roomsChanged()
	e.log.Info("battle room created", "room", s.Code, "host", a.UserID)

	host.send(Message{Type: MsgCreated, Payload: CreatedPayload{RoomCode: s.Code, PlayerID: a.UserID}})
	ev.reply <- createResult{code: s.Code}
}

// handleRejoin binds a new handle to an existing member. It never adds or
// removes players.
func (e *Engine) handleRejoin(a Actor, code string) {
	s, ok := e.registry.Get(code)
	if !ok {
		e.sendError(a.Handle, ErrRoomNotFound)
		return
	}
	p := s.Player(a.UserID)
	if p == nil {
		e.sendError(a.Handle, ErrNotAMember)
		return
	}
	e.attach(s, p, a.Handle)
	p.send(Message{Type: MsgRejoined, Payload: s.view(p.UserID, e.clock.Now(), e.opts.RoundDuration)})
	e.log.Debug("player rejoined", "room", s.Code, "user", p.UserID, "state", s.State)
	e.maybeStartSetup(s)
}

// attach makes h the player's live handle and cancels any pending teardown.
func (e *Engine) attach(s *Session, p *Player, h Handle) {
	wasLive := p.Connected()
	p.handle = h
	p.Confirmed = true
	s.graceSeq++
	if s.destroyTimer != nil {
		s.destroyTimer.Stop()
		s.destroyTimer = nil
	}
	if !wasLive {
		s.broadcastExcept(p.UserID, Message{Type: MsgPlayerReconnected, Payload: PlayerPayload{PlayerID: p.UserID}})
	}
}

func (e *Engine) handleJoinRequest(ev joinRequestEvent) {
	a := ev.actor
	s, ok := e.registry.Get(ev.code)
	if !ok {
		e.sendError(a.Handle, ErrRoomNotFound)
		return
	}
	if s.Player(a.UserID) != nil {
		e.handleRejoin(a, ev.code)
		return
	}
	if s.Full() {
		e.sendError(a.Handle, ErrRoomFull)
		return
	}
	if s.Pending != nil {
		if s.Pending.UserID != a.UserID {
			e.sendError(a.Handle, ErrJoinPending)
			return
		}
		// same requester on a new connection
		s.Pending.handle = a.Handle
		send(a.Handle, Message{Type: MsgJoinRequestSent, Payload: RoomCodePayload{RoomCode: s.Code}})
		return
	}

	name := a.Name
	if name == "" {
		name = fallbackName(a.UserID)
	}
	s.Pending = &JoinRequest{UserID: a.UserID, Name: name, RequestedAt: e.clock.Now(), handle: a.Handle}
	e.registry.track(a.UserID, s.Code)
	send(a.Handle, Message{Type: MsgJoinRequestSent, Payload: RoomCodePayload{RoomCode: s.Code}})
	if h := s.Host(); h != nil {
		h.send(Message{Type: MsgJoinRequested, Payload: JoinRequestedPayload{RoomCode: s.Code, UserID: a.UserID, DisplayName: name}})
	}
	e.log.Info("join requested", "room", s.Code, "user", a.UserID)
}

func (e *Engine) handleJoinDecision(ev joinDecisionEvent) {
	s, _, ok := e.lookupMember(ev.code, ev.actor)
	if !ok {
		return
	}
	if ev.actor.UserID != s.HostID {
		e.sendError(ev.actor.Handle, ErrNotHost)
		return
	}
	req := s.Pending
	if req == nil {
		return
	}
	s.Pending = nil

	if !ev.accept || s.Full() {
		e.registry.untrack(req.UserID, s.Code)
		send(req.handle, Message{Type: MsgJoinRejected, Payload: ErrJoinRejected})
		e.log.Info("join rejected", "room", s.Code, "user", req.UserID)
		return
	}

	p := &Player{UserID: req.UserID, Name: req.Name, JoinedAt: e.clock.Now(), handle: req.handle}
	s.addPlayer(p)
	p.send(Message{Type: MsgJoinAccepted, Payload: RoomCodePayload{RoomCode: s.Code}})
	e.log.Info("join accepted", "room", s.Code, "user", req.UserID)
}

func (e *Engine) handleConfirmJoin(ev confirmJoinEvent) {
	s, p, ok := e.lookupMember(ev.code, ev.actor)
	if !ok {
		return
	}
	if s.State != StateWaiting || p.Confirmed && p.handle == ev.actor.Handle {
		// already past the lobby, or a repeat: answer with the current view
		e.handleRejoin(ev.actor, ev.code)
		return
	}
	e.attach(s, p, ev.actor.Handle)
	e.log.Debug("join confirmed", "room", s.Code, "user", p.UserID)
	e.maybeStartSetup(s)
}

// maybeStartSetup fires waiting -> setup once both players are confirmed.
func (e *Engine) maybeStartSetup(s *Session) {
	if s.State != StateWaiting || !s.allConfirmed() {
		return
	}
	if err := s.transition(StateSetup); err != nil {
		e.log.Error("start setup", "room", s.Code, "error", err)
		return
	}
	s.broadcast(Message{Type: MsgPlayerJoined, Payload: PlayersPayload{RoomCode: s.Code, Players: s.roster()}})
	s.broadcast(Message{Type: MsgStateChanged, Payload: StatePayload{State: s.State}})
	e.log.Info("battle room full", "room", s.Code)
}

func (e *Engine) handleDisconnect(ev disconnectEvent) {
	for _, code := range e.registry.CodesFor(ev.userID) {
		s, ok := e.registry.Get(code)
		if !ok {
			continue
		}
		if req := s.Pending; req != nil && req.UserID == ev.userID && isConn(req.handle, ev.connID) {
			s.Pending = nil
			e.registry.untrack(ev.userID, code)
			if h := s.Host(); h != nil {
				h.send(Message{Type: MsgJoinCancelled, Payload: PlayerPayload{PlayerID: ev.userID}})
			}
			continue
		}
		p := s.Player(ev.userID)
		if p == nil || !isConn(p.handle, ev.connID) {
			continue
		}
		p.handle = nil
		s.broadcast(Message{Type: MsgPlayerDisconnected, Payload: PlayerPayload{PlayerID: ev.userID}})
		e.log.Info("player disconnected", "room", code, "user", ev.userID, "state", s.State)
		if s.liveCount() == 0 {
			e.scheduleDestroy(s)
		}
	}
}

func isConn(h Handle, connID string) bool {
	return h != nil && h.ConnID() == connID
}

// scheduleDestroy tears the room down after the grace window unless a
// player comes back first.
func (e *Engine) scheduleDestroy(s *Session) {
	if e.opts.ReconnectGrace <= 0 {
		e.destroy(s.Code, "abandoned")
		return
	}
	s.graceSeq++
	seq, code := s.graceSeq, s.Code
	if s.destroyTimer != nil {
		s.destroyTimer.Stop()
	}
	s.destroyTimer = e.clock.AfterFunc(e.opts.ReconnectGrace, func() {
		e.post(destroyDueEvent{code: code, seq: seq})
	})
}

func (e *Engine) handleDestroyDue(ev destroyDueEvent) {
	s, ok := e.registry.Get(ev.code)
	if !ok || s.graceSeq != ev.seq || s.liveCount() > 0 {
		return
	}
	s.destroyTimer = nil
	e.destroy(s.Code, "abandoned")
}

func (e *Engine) handleChat(ev chatEvent) {
	s, p, ok := e.lookupMember(ev.code, ev.actor)
	if !ok {
		return
	}
	text := trimChat(ev.text)
	if text == "" {
		return
	}
	s.broadcastExcept(p.UserID, Message{Type: MsgChat, Payload: ChatPayload{
		SenderID: p.UserID,
		Sender:   p.Name,
		Message:  text,
		Kind:     "user",
	}})
}

func trimChat(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > maxChatRunes {
		text = string([]rune(text)[:maxChatRunes])
	}
	return text
}
