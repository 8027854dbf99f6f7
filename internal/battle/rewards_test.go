package battle

import "testing"

func TestComputeRewards(t *testing.T) {
	players := []int64{1, 2}
	cases := []struct {
		name string
		d    Difficulty
		v    Verdict
		want map[int64]int64
	}{
		{"easy win", Easy, Verdict{Outcome: OutcomeWin, WinnerID: 1}, map[int64]int64{1: 100, 2: 0}},
		{"medium win", Medium, Verdict{Outcome: OutcomeWin, WinnerID: 2}, map[int64]int64{1: 0, 2: 500}},
		{"hard win", Hard, Verdict{Outcome: OutcomeWin, WinnerID: 1}, map[int64]int64{1: 1000, 2: 0}},
		{"easy tie", Easy, Verdict{Outcome: OutcomeTie}, map[int64]int64{1: 25, 2: 25}},
		{"hard tie", Hard, Verdict{Outcome: OutcomeTie}, map[int64]int64{1: 250, 2: 250}},
		{"unresolved", Medium, Verdict{Outcome: OutcomeUnresolved}, map[int64]int64{1: 0, 2: 0}},
		{"winner not playing", Easy, Verdict{Outcome: OutcomeWin, WinnerID: 9}, map[int64]int64{1: 0, 2: 0}},
	}
	for _, tc := range cases {
		got := ComputeRewards(tc.d, tc.v, players)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v; want %v", tc.name, got, tc.want)
		}
		for id, amt := range tc.want {
			if got[id] != amt {
				t.Fatalf("%s: got %v; want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestParseDifficultyAndVote(t *testing.T) {
	if d, ok := ParseDifficulty(" medium "); !ok || d != Medium {
		t.Fatalf("ParseDifficulty = %q, %v", d, ok)
	}
	if _, ok := ParseDifficulty("Insane"); ok {
		t.Fatalf("unknown difficulty accepted")
	}
	if v, ok := ParseVote("YES"); !ok || v != VoteYes {
		t.Fatalf("ParseVote = %q, %v", v, ok)
	}
	if _, ok := ParseVote("maybe"); ok {
		t.Fatalf("maybe accepted as a vote")
	}
}
