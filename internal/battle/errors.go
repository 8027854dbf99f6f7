package battle

// Code identifies an error kind on the wire.
type Code string

const (
	CodeRoomNotFound      Code = "room_not_found"
	CodeNotAMember        Code = "not_a_member"
	CodeNotHost           Code = "not_host"
	CodeRoomFull          Code = "room_full"
	CodeJoinPending       Code = "join_pending"
	CodeJoinRejected      Code = "join_rejected"
	CodeInvalidConfig     Code = "invalid_config"
	CodeSubmissionClosed  Code = "submission_closed"
	CodeInvalidVote       Code = "invalid_vote"
	CodeGenerationFailure Code = "generation_failure"
	CodeJudgingFailure    Code = "judging_failure"
	CodeBadRequest        Code = "bad_request"
	CodeInternal          Code = "internal"
)

// Error is a structured, non-fatal error reported to one connection.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is matches on Code so wrapped copies with other messages still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrRoomNotFound     = &Error{Code: CodeRoomNotFound, Message: "Room invalid or expired."}
	ErrNotAMember       = &Error{Code: CodeNotAMember, Message: "You are not in this room."}
	ErrNotHost          = &Error{Code: CodeNotHost, Message: "Only the host can do that."}
	ErrRoomFull         = &Error{Code: CodeRoomFull, Message: "Room is full."}
	ErrJoinPending      = &Error{Code: CodeJoinPending, Message: "Another player is already waiting for the host."}
	ErrJoinRejected     = &Error{Code: CodeJoinRejected, Message: "Host rejected request."}
	ErrSubmissionClosed = &Error{Code: CodeSubmissionClosed, Message: "Submissions are closed for this round."}
	ErrInvalidVote      = &Error{Code: CodeInvalidVote, Message: "Vote must be \"yes\" or \"no\" while results are shown."}
	ErrGeneration       = &Error{Code: CodeGenerationFailure, Message: "Problem generation failed."}
	ErrJudging          = &Error{Code: CodeJudgingFailure, Message: "Judging failed."}
)

func invalidConfig(msg string) *Error {
	return &Error{Code: CodeInvalidConfig, Message: msg}
}
