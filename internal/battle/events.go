package battle

type event interface{ isEvent() }

type createResult struct {
	code string
	err  error
}

type createEvent struct {
	actor Actor
	reply chan createResult
}

type rejoinEvent struct {
	actor Actor
	code  string
}

type joinRequestEvent struct {
	actor Actor
	code  string
}

type joinDecisionEvent struct {
	actor  Actor
	code   string
	accept bool
}

type confirmJoinEvent struct {
	actor Actor
	code  string
}

type configEvent struct {
	actor  Actor
	code   string
	update ConfigUpdate
}

type submitEvent struct {
	actor  Actor
	code   string
	source string
}

type voteEvent struct {
	actor Actor
	code  string
	vote  string
}

type chatEvent struct {
	actor Actor
	code  string
	text  string
}

type disconnectEvent struct {
	userID int64
	connID string
}

// Completions from background work carry the round they were started for.

type generationDone struct {
	code    string
	round   int
	problem Problem
	err     error
}

type judgingDone struct {
	code    string
	round   int
	verdict Verdict
	err     error
}

type deadlineEvent struct {
	code  string
	round int
}

type destroyDueEvent struct {
	code string
	seq  int
}

type summaryQuery struct {
	code  string
	reply chan *RoomSummary
}

func (createEvent) isEvent()       {}
func (rejoinEvent) isEvent()       {}
func (joinRequestEvent) isEvent()  {}
func (joinDecisionEvent) isEvent() {}
func (confirmJoinEvent) isEvent()  {}
func (configEvent) isEvent()       {}
func (submitEvent) isEvent()       {}
func (voteEvent) isEvent()         {}
func (chatEvent) isEvent()         {}
func (disconnectEvent) isEvent()   {}
func (generationDone) isEvent()    {}
func (judgingDone) isEvent()       {}
func (deadlineEvent) isEvent()     {}
func (destroyDueEvent) isEvent()   {}
func (summaryQuery) isEvent()      {}
