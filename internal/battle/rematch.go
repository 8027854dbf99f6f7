package battle

func (e *Engine) handleVote(ev voteEvent) {
	s, p, ok := e.lookupMember(ev.code, ev.actor)
	if !ok {
		return
	}
	vote, valid := ParseVote(ev.vote)
	if !valid || s.State != StateResult {
		e.sendError(ev.actor.Handle, ErrInvalidVote)
		return
	}

	if vote == VoteNo {
		s.broadcast(Message{Type: MsgRematchDeclined, Payload: RematchDeclinedPayload{DeclinedBy: p.UserID}})
		e.destroy(s.Code, "rematch_declined")
		return
	}

	s.Votes[p.UserID] = vote
	s.broadcast(Message{Type: MsgRematchVote, Payload: RematchVotePayload{PlayerID: p.UserID, Vote: vote}})
	if !e.rematchAgreed(s) {
		return
	}

	s.resetRound()
	if err := s.transition(StateSetup); err != nil {
		e.log.Error("restart round", "room", s.Code, "error", err)
		return
	}
	s.broadcast(Message{Type: MsgRestart, Payload: RestartPayload{Config: s.Config, Round: s.Round}})
	e.log.Info("rematch agreed", "room", s.Code, "round", s.Round)
}

// rematchAgreed reports whether both players currently vote yes.
func (e *Engine) rematchAgreed(s *Session) bool {
	if !s.Full() {
		return false
	}
	for _, p := range s.players {
		if s.Votes[p.UserID] != VoteYes {
			return false
		}
	}
	return true
}
