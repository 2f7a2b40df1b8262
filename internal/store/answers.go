package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var answerColumns = []string{
	"id", "session_id", "chat_id", "question_text", "chosen_option", "correct_option",
	"is_correct", "category", "question_type", "response_time_ms", "points", "created_at",
}

// ApplyAnswer records a graded answer and moves every counter it touches in
// one transaction: the answer row, both stat tables, the user totals and the
// open session. It returns the answer id. Answers for a closed session are
// rejected with ErrNotFound.
func (s *Store) ApplyAnswer(ctx context.Context, a AnswerData) (int64, error) {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	at := a.At.UTC()

	var answerID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		correct := boolInt(a.Correct)

		query, args := builder().Update(LearningSessionsTable.Name).
			Add("questions_answered", 1).
			Add("correct_answers", correct).
			Add("score", a.Points).
			Add("experience_gained", a.Points).
			Where(entsql.And(
				entsql.EQ("id", a.SessionID),
				entsql.EQ("chat_id", a.ChatID),
				entsql.IsNull("end_time"),
			)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if a.Streak > 0 {
			query, args = builder().Update(LearningSessionsTable.Name).
				Set("max_streak", a.Streak).
				Where(entsql.And(
					entsql.EQ("id", a.SessionID),
					entsql.LT("max_streak", a.Streak),
				)).
				Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("update session streak: %w", err)
			}
		}

		query, args = builder().Insert(UserAnswersTable.Name).
			Columns("session_id", "chat_id", "question_text", "chosen_option", "correct_option",
				"is_correct", "category", "question_type", "response_time_ms", "points", "created_at").
			Values(a.SessionID, a.ChatID, a.QuestionText, a.ChosenOption, a.CorrectOption,
				a.Correct, a.Category, a.QuestionType, a.ResponseTimeMs, a.Points, at).
			Query()
		res, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
		if answerID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("answer id: %w", err)
		}

		if err := upsertStat(ctx, tx, CategoryStatsTable.Name, "category", a.ChatID, a.Category, correct, at); err != nil {
			return err
		}
		if err := upsertStat(ctx, tx, QuestionTypeStatsTable.Name, "question_type", a.ChatID, a.QuestionType, correct, at); err != nil {
			return err
		}

		query, args = builder().Update(UsersTable.Name).
			Add("total_questions", 1).
			Add("total_correct", correct).
			Add("total_score", a.Points).
			Add("experience", a.Points).
			Set("streak", a.Streak).
			Set("updated_at", at).
			Where(entsql.EQ("chat_id", a.ChatID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update user totals: %w", err)
		}
		query, args = builder().Update(UsersTable.Name).
			Set("max_streak", a.Streak).
			Where(entsql.And(
				entsql.EQ("chat_id", a.ChatID),
				entsql.LT("max_streak", a.Streak),
			)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update user max streak: %w", err)
		}

		return appendActivity(ctx, tx, a.ChatID, "answer", a.QuestionType)
	})
	if err != nil {
		return 0, err
	}
	return answerID, nil
}

func upsertStat(ctx context.Context, tx *sql.Tx, table, keyColumn string, chatID int64, key string, correct int, at time.Time) error {
	query, args := builder().Insert(table).
		Columns("chat_id", keyColumn, "total", "correct", "updated_at").
		Values(chatID, key, 1, correct, at).
		OnConflict(
			entsql.ConflictColumns("chat_id", keyColumn),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("total", 1)
				u.Add("correct", correct)
				u.Set("updated_at", at)
			}),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// ListAnswers returns a user's answers within opts, oldest first. With a
// limit the newest answers are kept.
func (s *Store) ListAnswers(ctx context.Context, chatID int64, opts QueryOpts) ([]Answer, error) {
	preds := append([]*entsql.Predicate{entsql.EQ("chat_id", chatID)}, timeRange("created_at", opts)...)
	sel := builder().Select(answerColumns...).
		From(entsql.Table(UserAnswersTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()
	out, err := s.queryAnswers(ctx, query, args)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// SessionAnswers returns the answers recorded for one session, oldest first.
func (s *Store) SessionAnswers(ctx context.Context, sessionID string) ([]Answer, error) {
	query, args := builder().Select(answerColumns...).
		From(entsql.Table(UserAnswersTable.Name)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("id").
		Query()
	return s.queryAnswers(ctx, query, args)
}

func (s *Store) queryAnswers(ctx context.Context, query string, args []any) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.ChatID, &a.QuestionText, &a.ChosenOption, &a.CorrectOption,
			&a.Correct, &a.Category, &a.QuestionType, &a.ResponseTimeMs, &a.Points, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CategoryStats returns per-category totals for a user.
func (s *Store) CategoryStats(ctx context.Context, chatID int64) ([]Stat, error) {
	return s.stats(ctx, CategoryStatsTable.Name, "category", chatID)
}

// QuestionTypeStats returns per-question-type totals for a user.
func (s *Store) QuestionTypeStats(ctx context.Context, chatID int64) ([]Stat, error) {
	return s.stats(ctx, QuestionTypeStatsTable.Name, "question_type", chatID)
}

func (s *Store) stats(ctx context.Context, table, keyColumn string, chatID int64) ([]Stat, error) {
	query, args := builder().Select(keyColumn, "total", "correct").
		From(entsql.Table(table)).
		Where(entsql.EQ("chat_id", chatID)).
		OrderBy(keyColumn).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []Stat
	for rows.Next() {
		var st Stat
		if err := rows.Scan(&st.Key, &st.Total, &st.Correct); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
