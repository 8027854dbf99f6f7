package battle

// Result is the published outcome of one round.
type Result struct {
	Round     int               `json:"round"`
	Outcome   Outcome           `json:"outcome"`
	WinnerID  *int64            `json:"winner_id"`
	Winner    string            `json:"winner,omitempty"`
	Reason    string            `json:"reason"`
	Rewards   map[int64]int64   `json:"rewards"`
	TimeTaken map[int64]float64 `json:"time_taken"`
}
