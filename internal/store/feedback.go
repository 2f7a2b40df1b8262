package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// AddFeedback stores a free-form message from a user.
func (s *Store) AddFeedback(ctx context.Context, chatID int64, message string) error {
	query, args := builder().Insert(UserFeedbackTable.Name).
		Columns("chat_id", "message", "created_at").
		Values(chatID, message, time.Now().UTC()).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return s.AppendActivity(ctx, chatID, "feedback", "")
}

// ListFeedback returns the most recent feedback, newest first.
func (s *Store) ListFeedback(ctx context.Context, limit int) ([]Feedback, error) {
	sel := builder().Select("id", "chat_id", "message", "created_at").
		From(entsql.Table(UserFeedbackTable.Name)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.ChatID, &f.Message, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// AppendActivity adds an activity_log row.
func (s *Store) AppendActivity(ctx context.Context, chatID int64, action, details string) error {
	return appendActivity(ctx, s.db, chatID, action, details)
}

func appendActivity(ctx context.Context, q queryer, chatID int64, action, details string) error {
	query, args := builder().Insert(ActivityLogTable.Name).
		Columns("chat_id", "action", "details", "created_at").
		Values(chatID, action, details, time.Now().UTC()).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append activity %s: %w", action, err)
	}
	return nil
}

// Activities returns a user's activity log, newest first.
func (s *Store) Activities(ctx context.Context, chatID int64, limit int) ([]Activity, error) {
	sel := builder().Select("chat_id", "action", "details", "created_at").
		From(entsql.Table(ActivityLogTable.Name)).
		Where(entsql.EQ("chat_id", chatID)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ChatID, &a.Action, &a.Details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
