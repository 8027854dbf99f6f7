package battle

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRegistryCreate(t *testing.T) {
	r := NewRegistry(4)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		s, err := r.Create(&Player{UserID: int64(i + 1)}, testEpoch)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(s.Code) != 4 || strings.Trim(s.Code, codeAlphabet) != "" {
			t.Fatalf("bad code %q", s.Code)
		}
		if seen[s.Code] {
			t.Fatalf("duplicate code %q", s.Code)
		}
		seen[s.Code] = true
		if s.State != StateWaiting || s.HostID != int64(i+1) || len(s.Players()) != 1 {
			t.Fatalf("unexpected new session %+v", s)
		}
	}
	if r.Len() != 200 {
		t.Fatalf("Len = %d", r.Len())
	}
}

func TestRegistryRegeneratesOnCollision(t *testing.T) {
	r := NewRegistry(4)
	codes := []string{"AB12", "AB12", "AB12", "CD34"}
	r.newCode = func(int) (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}
	first, err := r.Create(&Player{UserID: 1}, testEpoch)
	if err != nil || first.Code != "AB12" {
		t.Fatalf("first = %v, %v", first, err)
	}
	second, err := r.Create(&Player{UserID: 2}, testEpoch)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.Code != "CD34" {
		t.Fatalf("second code = %q; want CD34", second.Code)
	}
}

func TestRegistryGivesUpWhenExhausted(t *testing.T) {
	r := NewRegistry(4)
	r.newCode = func(int) (string, error) { return "SAME", nil }
	if _, err := r.Create(&Player{UserID: 1}, testEpoch); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.Create(&Player{UserID: 2}, testEpoch); !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("err = %v; want ErrCodeSpaceExhausted", err)
	}
}

func TestRegistryGetNormalizesAndDestroyUntracks(t *testing.T) {
	r := NewRegistry(4)
	s, _ := r.Create(&Player{UserID: 7}, testEpoch)

	if got, ok := r.Get("  " + strings.ToLower(s.Code) + " "); !ok || got != s {
		t.Fatalf("lookup by lower-case code failed")
	}
	if codes := r.CodesFor(7); len(codes) != 1 || codes[0] != s.Code {
		t.Fatalf("CodesFor = %v", codes)
	}

	r.Destroy(s.Code)
	if _, ok := r.Get(s.Code); ok {
		t.Fatalf("session still present after Destroy")
	}
	if codes := r.CodesFor(7); len(codes) != 0 {
		t.Fatalf("CodesFor after destroy = %v", codes)
	}
}
