package battle

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxLanguageRunes = 40

func (e *Engine) handleConfig(ev configEvent) {
	s, _, ok := e.lookupMember(ev.code, ev.actor)
	if !ok {
		return
	}
	if ev.actor.UserID != s.HostID {
		e.sendError(ev.actor.Handle, ErrNotHost)
		return
	}
	if s.State != StateSetup {
		return
	}

	next := s.Config
	if ev.update.Difficulty != nil {
		d, ok := ParseDifficulty(*ev.update.Difficulty)
		if !ok {
			e.sendError(ev.actor.Handle, invalidConfig("Difficulty must be Easy, Medium or Hard."))
			return
		}
		next.Difficulty = d
	}
	if ev.update.Language != nil {
		lang := strings.TrimSpace(*ev.update.Language)
		if lang == "" || utf8.RuneCountInString(lang) > maxLanguageRunes {
			e.sendError(ev.actor.Handle, invalidConfig("Language must be a non-empty name."))
			return
		}
		next.Language = lang
	}
	if next == s.Config {
		return
	}
	s.Config = next
	s.broadcast(Message{Type: MsgConfigUpdated, Payload: s.Config})

	if s.Config.Complete() {
		e.startGeneration(s)
	}
}

func (e *Engine) startGeneration(s *Session) {
	if err := s.transition(StateGenerating); err != nil {
		e.log.Error("start generation", "room", s.Code, "error", err)
		return
	}
	s.broadcast(Message{Type: MsgStateChanged, Payload: StatePayload{State: s.State}})

	code, round, cfg := s.Code, s.Round, s.Config
	e.log.Info("generating problem", "room", code, "round", round, "difficulty", cfg.Difficulty, "language", cfg.Language)
	e.goBackground(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, e.opts.GenerationTimeout)
		defer cancel()
		p, err := e.problems.Generate(ctx, cfg.Difficulty, cfg.Language)
		e.post(generationDone{code: code, round: round, problem: p, err: err})
	})
}

// current returns the session if a completion for (code, round) still applies.
func (e *Engine) current(kind, code string, round int, want State) (*Session, bool) {
	s, ok := e.registry.Get(code)
	if !ok || s.Round != round || s.State != want {
		droppedEvents.WithLabelValues(kind).Inc()
		e.log.Debug("dropping stale completion", "kind", kind, "room", code, "round", round)
		return nil, false
	}
	return s, true
}

func (e *Engine) handleGenerationDone(ev generationDone) {
	s, ok := e.current("generation", ev.code, ev.round, StateGenerating)
	if !ok {
		return
	}
	if ev.err != nil {
		e.log.Warn("problem generation failed, using fallback", "room", s.Code, "error", ev.err)
	}
	if err := s.transition(StateBattle); err != nil {
		e.log.Error("start battle", "room", s.Code, "error", err)
		return
	}
	p := ev.problem
	s.Problem = &p
	s.Fallback = ev.err != nil
	s.StartTime = e.clock.Now()

	s.broadcast(Message{Type: MsgBattleStarted, Payload: BattleStartedPayload{
		Problem:          p,
		Difficulty:       s.Config.Difficulty,
		Language:         s.Config.Language,
		Duration:         int(e.opts.RoundDuration / time.Second),
		StartedAt:        s.StartTime,
		DeadlineEnforced: e.opts.EnforceDeadline,
		Fallback:         s.Fallback,
	}})
	e.log.Info("battle started", "room", s.Code, "round", s.Round, "problem", p.Title, "fallback", s.Fallback)

	if e.opts.EnforceDeadline {
		code, round := s.Code, s.Round
		s.deadlineTimer = e.clock.AfterFunc(e.opts.RoundDuration, func() {
			e.post(deadlineEvent{code: code, round: round})
		})
	}
}

func (e *Engine) handleSubmit(ev submitEvent) {
	s, p, ok := e.lookupMember(ev.code, ev.actor)
	if !ok {
		return
	}
	if s.State != StateBattle {
		e.sendError(ev.actor.Handle, ErrSubmissionClosed)
		return
	}
	now := e.clock.Now()
	sub := Submission{Code: ev.source, SubmittedAt: now, TimeTaken: now.Sub(s.StartTime)}
	_, resubmit := s.Submissions[p.UserID]
	s.Submissions[p.UserID] = sub

	send(ev.actor.Handle, Message{Type: MsgSubmissionReceived, Payload: SubmissionReceivedPayload{TimeTaken: sub.TimeTaken.Seconds()}})
	s.broadcastExcept(p.UserID, Message{Type: MsgOpponentSubmitted, Payload: PlayerPayload{PlayerID: p.UserID}})
	e.log.Info("code submitted", "room", s.Code, "user", p.UserID, "time_taken", sub.TimeTaken, "resubmit", resubmit)

	if len(s.Submissions) == len(s.players) && s.Full() {
		e.startJudging(s)
	}
}

func (e *Engine) handleDeadline(ev deadlineEvent) {
	s, ok := e.current("deadline", ev.code, ev.round, StateBattle)
	if !ok {
		return
	}
	s.deadlineTimer = nil
	e.log.Info("round deadline reached", "room", s.Code, "submissions", len(s.Submissions))
	e.startJudging(s)
}

// startJudging fires battle -> judging; the state check makes it happen once.
func (e *Engine) startJudging(s *Session) {
	if err := s.transition(StateJudging); err != nil {
		e.log.Error("start judging", "room", s.Code, "error", err)
		return
	}
	if s.deadlineTimer != nil {
		s.deadlineTimer.Stop()
		s.deadlineTimer = nil
	}
	s.broadcast(Message{Type: MsgStateChanged, Payload: StatePayload{State: s.State}})

	contestants := make([]Contestant, 0, len(s.players))
	for _, p := range s.players {
		contestants = append(contestants, Contestant{UserID: p.UserID, Name: p.Name, Code: s.Submissions[p.UserID].Code})
	}
	problem := FallbackProblem()
	if s.Problem != nil {
		problem = *s.Problem
	}
	code, round, lang := s.Code, s.Round, s.Config.Language
	e.goBackground(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, e.opts.JudgeTimeout)
		defer cancel()
		v, err := e.judge.Evaluate(ctx, problem, lang, contestants)
		e.post(judgingDone{code: code, round: round, verdict: v, err: err})
	})
}

func (e *Engine) handleJudgingDone(ev judgingDone) {
	s, ok := e.current("judging", ev.code, ev.round, StateJudging)
	if !ok {
		return
	}
	if ev.err != nil {
		e.log.Warn("judging failed, recording unresolved draw", "room", s.Code, "error", ev.err)
	}
	times := make(map[int64]float64, len(s.Submissions))
	for id, sub := range s.Submissions {
		times[id] = sub.TimeTaken.Seconds()
	}
	if err := s.transition(StateResult); err != nil {
		e.log.Error("publish result", "room", s.Code, "error", err)
		return
	}

	v := ev.verdict
	rewards := ComputeRewards(s.Config.Difficulty, v, s.playerIDs())
	res := &Result{
		Outcome:   v.Outcome,
		Reason:    v.Reason,
		Rewards:   rewards,
		TimeTaken: times,
		Round:     s.Round,
	}
	if v.Outcome == OutcomeWin {
		id := v.WinnerID
		res.WinnerID = &id
		if p := s.Player(id); p != nil {
			res.Winner = p.Name
		}
	}
	s.Result = res
	s.broadcast(Message{Type: MsgResult, Payload: res})
	e.log.Info("battle result", "room", s.Code, "round", s.Round, "outcome", v.Outcome, "winner", v.WinnerID)

	e.dispatchAwards(s.Code, rewardSource(v.Outcome), rewards)
}

// dispatchAwards sends one independent award call per non-zero reward.
func (e *Engine) dispatchAwards(code, source string, rewards map[int64]int64) {
	if e.rewards == nil {
		return
	}
	for userID, amount := range rewards {
		if amount <= 0 {
			continue
		}
		e.goBackground(func(ctx context.Context) {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), awardTimeout)
			defer cancel()
			total, err := e.rewards.Award(ctx, userID, source, amount)
			if err != nil {
				rewardsTotal.WithLabelValues(source, "error").Inc()
				if !errors.Is(err, context.DeadlineExceeded) {
					e.log.Error("xp award failed", "room", code, "user", userID, "amount", amount, "error", err)
				} else {
					e.log.Warn("xp award timed out", "room", code, "user", userID, "amount", amount)
				}
				return
			}
			rewardsTotal.WithLabelValues(source, "ok").Inc()
			e.log.Info("xp awarded", "room", code, "user", userID, "amount", amount, "total", total)
		})
	}
}
