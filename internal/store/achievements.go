package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// UnlockAchievement records an achievement and credits its points as
// experience. It reports false, and changes nothing, when the user already
// holds the achievement.
func (s *Store) UnlockAchievement(ctx context.Context, chatID int64, key string, points int) (bool, error) {
	var unlocked bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := builder().Insert(AchievementsTable.Name).
			Columns("chat_id", "achievement_key", "points", "unlocked_at").
			Values(chatID, key, points, time.Now().UTC()).
			OnConflict(
				entsql.ConflictColumns("chat_id", "achievement_key"),
				entsql.DoNothing(),
			).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert achievement: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		unlocked = true
		if points > 0 {
			if err := addExperience(ctx, tx, chatID, points); err != nil {
				return err
			}
		}
		return appendActivity(ctx, tx, chatID, "achievement", key)
	})
	if err != nil {
		return false, err
	}
	return unlocked, nil
}

// Achievements returns a user's unlocked achievements in unlock order.
func (s *Store) Achievements(ctx context.Context, chatID int64) ([]UnlockedAchievement, error) {
	query, args := builder().Select("achievement_key", "points", "unlocked_at").
		From(entsql.Table(AchievementsTable.Name)).
		Where(entsql.EQ("chat_id", chatID)).
		OrderBy("id").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	var out []UnlockedAchievement
	for rows.Next() {
		var a UnlockedAchievement
		if err := rows.Scan(&a.Key, &a.Points, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
