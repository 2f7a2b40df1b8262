package learning

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sommelier/internal/achievements"
	"github.com/abhisek/sommelier/internal/analytics"
	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/challenges"
	"github.com/abhisek/sommelier/internal/llm"
	"github.com/abhisek/sommelier/internal/questiongen"
	"github.com/abhisek/sommelier/internal/session"
	"github.com/abhisek/sommelier/internal/store"
)

var t0 = time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

type harness struct {
	svc   *Service
	store *store.Store
}

func newHarness(t *testing.T, provider llm.Provider) *harness {
	t.Helper()
	return newHarnessTTL(t, provider, time.Hour)
}

func newHarnessTTL(t *testing.T, provider llm.Provider, sessionTTL time.Duration) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cat, err := catalog.NewStore(nil, catalog.Options{}, logger)
	require.NoError(t, err)
	an, err := analytics.NewService(st, 16, logger)
	require.NoError(t, err)

	templates := questiongen.NewTemplateGenerator(1)
	var gen questiongen.Generator
	if provider != nil {
		gen = questiongen.NewLLM(provider, questiongen.DefaultConfig(), templates)
	}
	consultant, err := NewConsultant(provider, ConsultOptions{}, logger)
	require.NoError(t, err)

	clock := challenges.FixedClock(t0, time.UTC)
	svc := New(Deps{
		Repo:         st,
		Catalogue:    cat,
		Templates:    templates,
		LLM:          gen,
		Sessions:     session.NewStore(sessionTTL, logger),
		Planner:      session.NewPlanner(1),
		Analytics:    an,
		Achievements: achievements.NewEngine(st, logger),
		Challenges:   challenges.NewEngine(st, clock, logger),
		Consultant:   consultant,
		Clock:        clock,
		Logger:       logger,
	})
	return &harness{svc: svc, store: st}
}

// answer replies to the open question, correctly or not.
func (h *harness) answer(t *testing.T, chatID int64, correct bool) *AnswerOutcome {
	t.Helper()
	cur := h.svc.Current(chatID)
	require.NotNil(t, cur)
	require.NotNil(t, cur.Current, "no open question")
	label := cur.Current.Correct
	if !correct {
		for _, l := range questiongen.Labels {
			if l != label {
				label = l
				break
			}
		}
	}
	out, err := h.svc.Answer(context.Background(), chatID, cur.Current.ID, label)
	require.NoError(t, err)
	return out
}

func TestQuickTest_FourOfFive(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	st, err := h.svc.Start(ctx, 1, "Sofia", session.ModeQuick)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Target)
	require.NotNil(t, st.Current)
	assert.Equal(t, "template", st.Current.Source)

	var last *AnswerOutcome
	for i, ok := range []bool{true, true, false, true, true} {
		last = h.answer(t, 1, ok)
		if i == 2 {
			u, err := h.store.GetUser(ctx, 1)
			require.NoError(t, err)
			assert.Zero(t, u.Streak, "streak resets on a wrong answer")
		}
		if i < 4 {
			assert.NotNil(t, last.Next, "answer %d should present the next question", i)
		}
	}

	require.NotNil(t, last.Summary)
	assert.True(t, last.Result.Done)
	assert.Nil(t, last.Next)
	assert.Equal(t, "B", last.Summary.Grade)
	assert.Equal(t, questiongen.Intermediate, last.Summary.DifficultyAfter)

	u, err := h.store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, u.TotalQuestions)
	assert.Equal(t, 4, u.TotalCorrect)
	assert.Equal(t, 44, u.TotalScore)
	assert.Equal(t, "intermediate", u.Difficulty)
	assert.Equal(t, 1, u.ConsecutiveDays)
	assert.GreaterOrEqual(t, u.Experience, 44+10, "points plus the first-answer achievement")

	sess, err := h.store.GetSession(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, sess.Closed())

	ach, err := h.svc.Achievements(ctx, 1)
	require.NoError(t, err)
	unlocked := map[string]bool{}
	for _, a := range ach {
		unlocked[a.Key] = a.Unlocked
	}
	assert.True(t, unlocked["first_answer"])
	assert.False(t, unlocked["perfect_session"])

	_, err = h.svc.Answer(ctx, 1, "", "A")
	assert.ErrorIs(t, err, session.ErrFinished)
}

func TestPerfectSessionBonus(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.svc.Start(ctx, 2, "", session.ModeQuick)
	require.NoError(t, err)

	var last *AnswerOutcome
	for i := 0; i < 5; i++ {
		last = h.answer(t, 2, true)
	}
	require.NotNil(t, last.Summary)
	assert.True(t, last.Summary.Perfect)
	assert.Equal(t, session.PerfectBonus, last.Summary.Bonus)

	u, err := h.store.GetUser(ctx, 2)
	require.NoError(t, err)
	// 10+12+14+16+18 plus the bonus
	assert.Equal(t, 70+session.PerfectBonus, u.TotalScore)

	var keys []string
	for _, a := range last.Achievements {
		keys = append(keys, a.Key)
	}
	assert.Contains(t, keys, "perfect_session")
	assert.Contains(t, keys, "streak_5")
}

func TestAnswerWithoutSession(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.Answer(context.Background(), 3, "", "A")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = h.svc.NextQuestion(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = h.svc.Finish(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStaleAnswerRejected(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.svc.Start(ctx, 4, "", session.ModeQuick)
	require.NoError(t, err)

	_, err = h.svc.Answer(ctx, 4, "old-question", "A")
	assert.ErrorIs(t, err, session.ErrQuestionMismatch)

	u, err := h.store.GetUser(ctx, 4)
	require.NoError(t, err)
	assert.Zero(t, u.TotalQuestions)
}

func TestNextQuestionIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	st, err := h.svc.Start(ctx, 5, "", session.ModeQuick)
	require.NoError(t, err)

	q1, err := h.svc.NextQuestion(ctx, 5)
	require.NoError(t, err)
	q2, err := h.svc.NextQuestion(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, st.Current.ID, q1.ID)
	assert.Equal(t, q1.ID, q2.ID)
}

func TestRestartClosesPreviousSession(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	first, err := h.svc.Start(ctx, 6, "", session.ModeQuick)
	require.NoError(t, err)
	h.answer(t, 6, true)

	second, err := h.svc.Start(ctx, 6, "", session.ModeAI)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 10, second.Target)
	assert.Equal(t, "template", second.Current.Source, "no LLM configured")

	old, err := h.store.GetSession(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, old.Closed())
	assert.Equal(t, 1, old.QuestionsAnswered)
}

func TestRestartCarriesPromotionFromAbandonedSession(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.svc.Start(ctx, 13, "", session.ModeAI)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		h.answer(t, 13, true)
	}

	next, err := h.svc.Start(ctx, 13, "", session.ModeQuick)
	require.NoError(t, err)
	assert.Equal(t, questiongen.Intermediate, next.Difficulty)

	u, err := h.store.GetUser(ctx, 13)
	require.NoError(t, err)
	assert.Equal(t, string(questiongen.Intermediate), u.Difficulty)

	sess, err := h.store.GetSession(ctx, next.ID)
	require.NoError(t, err)
	assert.Equal(t, string(questiongen.Intermediate), sess.Difficulty)
}

func TestFinishEarly(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.svc.Start(ctx, 7, "", session.ModeAI)
	require.NoError(t, err)
	h.answer(t, 7, true)
	h.answer(t, 7, false)

	fin, err := h.svc.Finish(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, fin.Summary.Answered)
	require.NotNil(t, fin.Session)
	endTime := *fin.Session.EndTime

	again, err := h.svc.Finish(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Summary.Answered)

	sess, err := h.store.GetSession(ctx, fin.Session.ID)
	require.NoError(t, err)
	assert.True(t, endTime.Equal(*sess.EndTime))
}

func TestAIModeFallsBackOnBadLLMOutput(t *testing.T) {
	mock := llm.NewMockProvider()
	for i := 0; i < 3; i++ {
		mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	}
	h := newHarness(t, mock)
	ctx := context.Background()

	st, err := h.svc.Start(ctx, 8, "", session.ModeAI)
	require.NoError(t, err)
	assert.Equal(t, "template", st.Current.Source)
	assert.Equal(t, 1, mock.CallCount())

	quick, err := h.svc.Start(ctx, 9, "", session.ModeQuick)
	require.NoError(t, err)
	assert.Equal(t, "template", quick.Current.Source)
	assert.Equal(t, 1, mock.CallCount(), "quick tests never call the LLM")
}

func TestPersonalizedPromptCarriesLearner(t *testing.T) {
	mock := llm.NewMockProvider()
	h := newHarness(t, mock)
	ctx := context.Background()

	_, err := h.svc.Start(ctx, 10, "", session.ModePersonalized)
	require.NoError(t, err)
	require.Equal(t, 1, mock.CallCount())
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Learner:")
}

func TestStatsAndReset(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.svc.Start(ctx, 11, "Ivo", session.ModeQuick)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		h.answer(t, 11, i%2 == 0)
	}

	stats, err := h.svc.Stats(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.User.TotalQuestions)
	assert.InDelta(t, 0.6, stats.Accuracy, 1e-9)
	assert.NotEmpty(t, stats.Categories)
	assert.Positive(t, stats.Achievements)

	ch, err := h.svc.DailyChallenges(ctx, 11)
	require.NoError(t, err)
	assert.NotEmpty(t, ch)

	board, err := h.svc.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Ivo", board[0].DisplayName)

	require.NoError(t, h.svc.Reset(ctx, 11))
	stats, err = h.svc.Stats(ctx, 11)
	require.NoError(t, err)
	assert.Zero(t, stats.User.TotalQuestions)
	assert.Zero(t, stats.Achievements)
	assert.Nil(t, h.svc.Current(11))

	_, err = h.svc.Stats(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFeedback(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	require.NoError(t, h.svc.Feedback(ctx, 12, "Eva", "  more cocktail questions please "))
	assert.Error(t, h.svc.Feedback(ctx, 12, "", "   "))

	list, err := h.store.ListFeedback(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "more cocktail questions please", list[0].Message)
}

func TestFeedbackTruncatesOnRuneBoundary(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	text := strings.Repeat("a", MaxFeedbackLength-1) + "ж"
	require.NoError(t, h.svc.Feedback(ctx, 14, "", text))

	list, err := h.store.ListFeedback(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, utf8.ValidString(list[0].Message))
	assert.Equal(t, strings.Repeat("a", MaxFeedbackLength-1), list[0].Message)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"abж", 3, "ab"},
		{"жжж", 4, "жж"},
		{"ж", 1, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got, "truncate(%q, %d)", tt.in, tt.n)
		assert.True(t, utf8.ValidString(got))
	}
}

func TestIdleSessionIsClosedInStorage(t *testing.T) {
	h := newHarnessTTL(t, nil, 250*time.Millisecond)
	ctx := context.Background()
	st, err := h.svc.Start(ctx, 15, "", session.ModeQuick)
	require.NoError(t, err)
	h.answer(t, 15, true)

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 1, h.svc.Sessions().Sweep())
	assert.Nil(t, h.svc.Current(15))

	sess, err := h.store.GetSession(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, sess.Closed())
	assert.Equal(t, 1, sess.QuestionsAnswered)
}
