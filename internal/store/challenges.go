package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var challengeColumns = []string{
	"id", "chat_id", "day", "challenge_key", "title", "target", "progress",
	"reward", "completed", "completed_at", "created_at",
}

// InsertChallenges stores challenges for a day. Rows that already exist for
// the same (chat, day, key) are left untouched, so repeated calls are safe.
func (s *Store) InsertChallenges(ctx context.Context, challenges []DailyChallenge) error {
	if len(challenges) == 0 {
		return nil
	}
	now := time.Now().UTC()
	ins := builder().Insert(DailyChallengesTable.Name).
		Columns("chat_id", "day", "challenge_key", "title", "target", "progress", "reward", "completed", "created_at")
	for _, c := range challenges {
		ins.Values(c.ChatID, c.Day, c.Key, c.Title, c.Target, 0, c.Reward, false, now)
	}
	query, args := ins.OnConflict(
		entsql.ConflictColumns("chat_id", "day", "challenge_key"),
		entsql.DoNothing(),
	).Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert challenges: %w", err)
	}
	return nil
}

// ChallengesForDay returns a user's challenges for day in creation order.
func (s *Store) ChallengesForDay(ctx context.Context, chatID int64, day string) ([]DailyChallenge, error) {
	query, args := builder().Select(challengeColumns...).
		From(entsql.Table(DailyChallengesTable.Name)).
		Where(entsql.And(
			entsql.EQ("chat_id", chatID),
			entsql.EQ("day", day),
		)).
		OrderBy("id").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query challenges: %w", err)
	}
	defer rows.Close()

	var out []DailyChallenge
	for rows.Next() {
		var (
			c    DailyChallenge
			done sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.ChatID, &c.Day, &c.Key, &c.Title, &c.Target, &c.Progress,
			&c.Reward, &c.Completed, &done, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		if done.Valid {
			t := done.Time
			c.CompletedAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetChallengeProgress updates the progress of an uncompleted challenge.
// Completed challenges are never modified.
func (s *Store) SetChallengeProgress(ctx context.Context, id, progress int) error {
	query, args := builder().Update(DailyChallengesTable.Name).
		Set("progress", progress).
		Where(entsql.And(
			entsql.EQ("id", id),
			entsql.EQ("completed", false),
		)).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set challenge progress: %w", err)
	}
	return nil
}

// CompleteChallenge marks a challenge done, pins its progress to the target
// and credits the reward. It reports false when the challenge was already
// complete, in which case nothing changes.
func (s *Store) CompleteChallenge(ctx context.Context, c DailyChallenge, at time.Time) (bool, error) {
	var completed bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := builder().Update(DailyChallengesTable.Name).
			Set("progress", c.Target).
			Set("completed", true).
			Set("completed_at", at.UTC()).
			Where(entsql.And(
				entsql.EQ("id", c.ID),
				entsql.EQ("completed", false),
			)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("complete challenge: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		completed = true
		if c.Reward > 0 {
			if err := addExperience(ctx, tx, c.ChatID, c.Reward); err != nil {
				return err
			}
		}
		return appendActivity(ctx, tx, c.ChatID, "challenge_complete", c.Key)
	})
	if err != nil {
		return false, err
	}
	return completed, nil
}
