package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var sessionColumns = []string{
	"id", "chat_id", "mode", "difficulty", "target_questions", "questions_answered",
	"correct_answers", "score", "experience_gained", "max_streak", "start_time", "end_time",
}

func scanSession(sc interface{ Scan(...any) error }) (*Session, error) {
	var (
		s   Session
		end sql.NullTime
	)
	err := sc.Scan(
		&s.ID, &s.ChatID, &s.Mode, &s.Difficulty, &s.TargetQuestions, &s.QuestionsAnswered,
		&s.CorrectAnswers, &s.Score, &s.ExperienceGained, &s.MaxStreak, &s.StartTime, &end,
	)
	if err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		s.EndTime = &t
	}
	return &s, nil
}

// CreateSession persists a new open session.
func (s *Store) CreateSession(ctx context.Context, sess *Session) error {
	if sess.StartTime.IsZero() {
		sess.StartTime = time.Now().UTC()
	}
	query, args := builder().Insert(LearningSessionsTable.Name).
		Columns("id", "chat_id", "mode", "difficulty", "target_questions", "start_time").
		Values(sess.ID, sess.ChatID, sess.Mode, sess.Difficulty, sess.TargetQuestions, sess.StartTime.UTC()).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return s.AppendActivity(ctx, sess.ChatID, "session_start", sess.Mode)
}

// GetSession returns a session by id or ErrNotFound.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	return getSession(ctx, s.db, id)
}

func getSession(ctx context.Context, q queryer, id string) (*Session, error) {
	query, args := builder().Select(sessionColumns...).
		From(entsql.Table(LearningSessionsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	sess, err := scanSession(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns a user's sessions started within opts, newest first.
func (s *Store) ListSessions(ctx context.Context, chatID int64, opts QueryOpts) ([]Session, error) {
	return s.listSessions(ctx, chatID, "start_time", opts)
}

// ListFinishedSessions returns a user's sessions closed within opts, most
// recently closed first.
func (s *Store) ListFinishedSessions(ctx context.Context, chatID int64, opts QueryOpts) ([]Session, error) {
	return s.listSessions(ctx, chatID, "end_time", opts)
}

func (s *Store) listSessions(ctx context.Context, chatID int64, column string, opts QueryOpts) ([]Session, error) {
	preds := []*entsql.Predicate{entsql.EQ("chat_id", chatID)}
	if column == "end_time" {
		preds = append(preds, entsql.NotNull("end_time"))
	}
	sel := builder().Select(sessionColumns...).
		From(entsql.Table(LearningSessionsTable.Name)).
		Where(entsql.And(append(preds, timeRange(column, opts)...)...)).
		OrderBy(entsql.Desc(column))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

// FinishSession closes a session and applies end-of-session effects to the
// user: the bonus, the difficulty tier and the consecutive-day counter.
// A session already closed is returned unchanged; end_time is written once.
func (s *Store) FinishSession(ctx context.Context, data FinishData) (*Session, error) {
	var out *Session
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		at := data.At.UTC()
		query, args := builder().Update(LearningSessionsTable.Name).
			Set("end_time", at).
			Add("score", data.Bonus).
			Add("experience_gained", data.Bonus).
			Where(entsql.And(
				entsql.EQ("id", data.SessionID),
				entsql.IsNull("end_time"),
			)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			sess, err := getSession(ctx, tx, data.SessionID)
			if err != nil {
				return err
			}
			out = sess
			return nil
		}

		u, err := getUser(ctx, tx, data.ChatID)
		if err != nil {
			return err
		}
		days := NextConsecutiveDays(u.LastActiveDay, u.ConsecutiveDays, data.Day, data.PrevDay)

		upd := builder().Update(UsersTable.Name).
			Add("total_score", data.Bonus).
			Add("experience", data.Bonus).
			Set("consecutive_days", days).
			Set("last_active_day", data.Day).
			Set("streak", 0).
			Set("updated_at", at)
		if data.Difficulty != "" {
			upd.Set("difficulty", data.Difficulty)
		}
		query, args = upd.Where(entsql.EQ("chat_id", data.ChatID)).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("apply session to user: %w", err)
		}

		if err := appendActivity(ctx, tx, data.ChatID, "session_finish", data.SessionID); err != nil {
			return err
		}
		out, err = getSession(ctx, tx, data.SessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NextConsecutiveDays returns the consecutive-day counter after activity on
// day. Activity on the same day keeps it, activity the day after increments
// it, anything else starts a new run.
func NextConsecutiveDays(lastDay string, current int, day, prevDay string) int {
	switch lastDay {
	case day:
		if current == 0 {
			return 1
		}
		return current
	case prevDay:
		return current + 1
	default:
		return 1
	}
}

// timeRange bounds column by opts.From (inclusive) and opts.To (exclusive).
// Times are stored in UTC, so bounds are compared in UTC too.
func timeRange(column string, opts QueryOpts) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(column, opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LT(column, opts.To.UTC()))
	}
	return preds
}
