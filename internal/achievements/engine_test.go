package achievements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/sommelier/internal/store"
)

type fakeRepo struct {
	unlocked map[string]int
	xp       int
	failKey  string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{unlocked: map[string]int{}}
}

func (f *fakeRepo) Achievements(ctx context.Context, chatID int64) ([]store.UnlockedAchievement, error) {
	var out []store.UnlockedAchievement
	for k, p := range f.unlocked {
		out = append(out, store.UnlockedAchievement{Key: k, Points: p, UnlockedAt: time.Unix(0, 0)})
	}
	return out, nil
}

func (f *fakeRepo) UnlockAchievement(ctx context.Context, chatID int64, key string, points int) (bool, error) {
	if key == f.failKey {
		return false, errors.New("insert failed")
	}
	if _, ok := f.unlocked[key]; ok {
		return false, nil
	}
	f.unlocked[key] = points
	f.xp += points
	return true, nil
}

func keys(as []Achievement) []string {
	var out []string
	for _, a := range as {
		out = append(out, a.Key)
	}
	return out
}

func TestCheckAndAward_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	eng := NewEngine(repo, nil)
	stats := Stats{TotalQuestions: 12, TotalCorrect: 11, TotalScore: 130, MaxStreak: 6}

	first, err := eng.CheckAndAward(context.Background(), 1, stats)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first_answer", "questions_10", "streak_5", "score_100"}
	got := keys(first)
	if len(got) != len(want) {
		t.Fatalf("awarded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("award %d = %s, want %s", i, got[i], want[i])
		}
	}
	if repo.xp != 10+25+30+20 {
		t.Errorf("xp = %d", repo.xp)
	}

	second, err := eng.CheckAndAward(context.Background(), 1, stats)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Errorf("second check awarded %v", keys(second))
	}
	if repo.xp != 85 {
		t.Errorf("xp changed on second check: %d", repo.xp)
	}
}

func TestCheckAndAward_PerfectAndDays(t *testing.T) {
	repo := newFakeRepo()
	eng := NewEngine(repo, nil)
	got, err := eng.CheckAndAward(context.Background(), 1, Stats{PerfectSession: true, ConsecutiveDays: 30})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"perfect_session": true, "days_7": true, "days_30": true}
	if len(got) != len(want) {
		t.Fatalf("awarded %v", keys(got))
	}
	for _, a := range got {
		if !want[a.Key] {
			t.Errorf("unexpected award %s", a.Key)
		}
	}
}

func TestCheckAndAward_ErrorKeepsEarlierAwards(t *testing.T) {
	repo := newFakeRepo()
	repo.failKey = "questions_10"
	eng := NewEngine(repo, nil)

	got, err := eng.CheckAndAward(context.Background(), 1, Stats{TotalQuestions: 10})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(got) != 1 || got[0].Key != "first_answer" {
		t.Errorf("awarded %v before failure", keys(got))
	}
}

func TestList(t *testing.T) {
	repo := newFakeRepo()
	repo.unlocked["streak_5"] = 30
	eng := NewEngine(repo, nil)

	list, err := eng.List(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != len(Table) {
		t.Fatalf("len = %d, want %d", len(list), len(Table))
	}
	for _, st := range list {
		if st.Key == "streak_5" != st.Unlocked {
			t.Errorf("%s unlocked = %v", st.Key, st.Unlocked)
		}
	}
}

func TestTableKeysUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range Table {
		if seen[a.Key] {
			t.Errorf("duplicate key %s", a.Key)
		}
		seen[a.Key] = true
		if a.Points <= 0 {
			t.Errorf("%s has no reward", a.Key)
		}
	}
	if _, ok := Lookup("perfect_session"); !ok {
		t.Error("Lookup failed")
	}
}
