package ws

// client → server
type CreatePayload struct {
	DisplayName string `json:"display_name"`
}

type RoomPayload struct {
	RoomCode string `json:"room_code"`
}

type JoinRequestPayload struct {
	RoomCode    string `json:"room_code"`
	DisplayName string `json:"display_name"`
}

type JoinDecisionPayload struct {
	RoomCode string `json:"room_code"`
	Accept   bool   `json:"accept"`
}

type ConfigUpdatePayload struct {
	RoomCode   string  `json:"room_code"`
	Difficulty *string `json:"difficulty"`
	Language   *string `json:"language"`
}

type SubmitPayload struct {
	RoomCode string `json:"room_code"`
	Code     string `json:"code"`
}

type RematchVotePayload struct {
	RoomCode string `json:"room_code"`
	Vote     string `json:"vote"`
}

type ChatSendPayload struct {
	RoomCode string `json:"room_code"`
	Message  string `json:"message"`
}

// server → client
type ReadyPayload struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}
