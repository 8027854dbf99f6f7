package battle

import "context"

const (
	SourceBattleWin  = "battle_win"
	SourceBattleDraw = "battle_draw"
)

// RewardAwarder credits XP to a user and returns their new total.
type RewardAwarder interface {
	Award(ctx context.Context, userID int64, source string, amount int64) (int64, error)
}

var rewardPools = map[Difficulty]int64{
	Easy:   100,
	Medium: 500,
	Hard:   1000,
}

func RewardPool(d Difficulty) int64 {
	return rewardPools[d]
}

// ComputeRewards splits the difficulty pool: the whole pool to a winner,
// half the pool shared on a tie, nothing on an unresolved draw. Every player
// appears in the result, zero or not.
func ComputeRewards(d Difficulty, v Verdict, players []int64) map[int64]int64 {
	out := make(map[int64]int64, len(players))
	for _, id := range players {
		out[id] = 0
	}
	pool := RewardPool(d)
	switch v.Outcome {
	case OutcomeWin:
		if _, ok := out[v.WinnerID]; ok {
			out[v.WinnerID] = pool
		}
	case OutcomeTie:
		if len(players) > 0 {
			share := pool / 2 / int64(len(players))
			for _, id := range players {
				out[id] = share
			}
		}
	}
	return out
}

func rewardSource(o Outcome) string {
	if o == OutcomeWin {
		return SourceBattleWin
	}
	return SourceBattleDraw
}
