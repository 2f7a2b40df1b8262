package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var userColumns = []string{
	"chat_id", "display_name", "total_score", "total_questions", "total_correct",
	"experience", "streak", "max_streak", "consecutive_days", "difficulty",
	"last_active_day", "created_at", "updated_at",
}

func scanUser(sc interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := sc.Scan(
		&u.ChatID, &u.DisplayName, &u.TotalScore, &u.TotalQuestions, &u.TotalCorrect,
		&u.Experience, &u.Streak, &u.MaxStreak, &u.ConsecutiveDays, &u.Difficulty,
		&u.LastActiveDay, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureUser creates the user on first contact and refreshes the display
// name on later contacts. It returns the current row.
func (s *Store) EnsureUser(ctx context.Context, chatID int64, displayName string) (*User, error) {
	now := time.Now().UTC()
	conflict := entsql.DoNothing()
	if displayName != "" {
		conflict = entsql.ResolveWith(func(u *entsql.UpdateSet) {
			u.Set("display_name", displayName)
			u.Set("updated_at", now)
		})
	}
	query, args := builder().Insert(UsersTable.Name).
		Columns("chat_id", "display_name", "difficulty", "created_at", "updated_at").
		Values(chatID, displayName, "beginner", now, now).
		OnConflict(entsql.ConflictColumns("chat_id"), conflict).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("ensure user %d: %w", chatID, err)
	}
	return s.GetUser(ctx, chatID)
}

// GetUser returns the user for chatID or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, chatID int64) (*User, error) {
	return getUser(ctx, s.db, chatID)
}

func getUser(ctx context.Context, q queryer, chatID int64) (*User, error) {
	query, args := builder().Select(userColumns...).
		From(entsql.Table(UsersTable.Name)).
		Where(entsql.EQ("chat_id", chatID)).
		Query()
	u, err := scanUser(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", chatID, err)
	}
	return u, nil
}

// TopUsers returns users ordered by experience, highest first.
func (s *Store) TopUsers(ctx context.Context, limit int) ([]User, error) {
	sel := builder().Select(userColumns...).
		From(entsql.Table(UsersTable.Name)).
		OrderBy(entsql.Desc("experience"), "chat_id")
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CountUsers returns the number of known users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	query, args := builder().Select(entsql.Count("*")).
		From(entsql.Table(UsersTable.Name)).
		Query()
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// AddExperience credits (or with a negative delta, debits) a user's experience.
func (s *Store) AddExperience(ctx context.Context, chatID int64, delta int) error {
	return addExperience(ctx, s.db, chatID, delta)
}

func addExperience(ctx context.Context, q queryer, chatID int64, delta int) error {
	query, args := builder().Update(UsersTable.Name).
		Add("experience", delta).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("chat_id", chatID)).
		Query()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("add experience: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetUser wipes a user's learning progress: sessions, answers, stats,
// achievements and challenges are deleted and counters return to zero.
// Purchases and feedback are kept.
func (s *Store) ResetUser(ctx context.Context, chatID int64) error {
	if _, err := s.GetUser(ctx, chatID); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, t := range []string{
			UserAnswersTable.Name,
			LearningSessionsTable.Name,
			CategoryStatsTable.Name,
			QuestionTypeStatsTable.Name,
			AchievementsTable.Name,
			DailyChallengesTable.Name,
		} {
			query, args := builder().Delete(t).Where(entsql.EQ("chat_id", chatID)).Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("reset %s: %w", t, err)
			}
		}

		query, args := builder().Update(UsersTable.Name).
			Set("total_score", 0).
			Set("total_questions", 0).
			Set("total_correct", 0).
			Set("experience", 0).
			Set("streak", 0).
			Set("max_streak", 0).
			Set("consecutive_days", 0).
			Set("difficulty", "beginner").
			Set("last_active_day", "").
			Set("updated_at", time.Now().UTC()).
			Where(entsql.EQ("chat_id", chatID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("reset user counters: %w", err)
		}
		return appendActivity(ctx, tx, chatID, "reset", "")
	})
}
