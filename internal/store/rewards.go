package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var rewardColumns = []string{"id", "name", "description", "price", "quantity_left", "active"}

func scanReward(sc interface{ Scan(...any) error }) (*RewardItem, error) {
	var r RewardItem
	if err := sc.Scan(&r.ID, &r.Name, &r.Description, &r.Price, &r.QuantityLeft, &r.Active); err != nil {
		return nil, err
	}
	return &r, nil
}

// SeedRewards inserts items that are not yet present, matched by name.
func (s *Store) SeedRewards(ctx context.Context, items []RewardItem) error {
	if len(items) == 0 {
		return nil
	}
	ins := builder().Insert(RewardShopTable.Name).
		Columns("name", "description", "price", "quantity_left", "active")
	for _, it := range items {
		ins.Values(it.Name, it.Description, it.Price, it.QuantityLeft, it.Active)
	}
	query, args := ins.OnConflict(entsql.ConflictColumns("name"), entsql.DoNothing()).Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed rewards: %w", err)
	}
	return nil
}

// ListRewards returns shop items ordered by price.
func (s *Store) ListRewards(ctx context.Context, activeOnly bool) ([]RewardItem, error) {
	sel := builder().Select(rewardColumns...).
		From(entsql.Table(RewardShopTable.Name)).
		OrderBy("price", "id")
	if activeOnly {
		sel.Where(entsql.EQ("active", true))
	}
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rewards: %w", err)
	}
	defer rows.Close()

	var out []RewardItem
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetReward returns a shop item by id or ErrNotFound.
func (s *Store) GetReward(ctx context.Context, id int64) (*RewardItem, error) {
	return getReward(ctx, s.db, id)
}

func getReward(ctx context.Context, q queryer, id int64) (*RewardItem, error) {
	query, args := builder().Select(rewardColumns...).
		From(entsql.Table(RewardShopTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	r, err := scanReward(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reward %d: %w", id, err)
	}
	return r, nil
}

// Purchase debits the user's experience, decrements stock and records the
// purchase atomically. It fails with ErrNotFound for a missing or inactive
// item, ErrSoldOut when stock is exhausted, ErrUnknownUser for a missing
// user and ErrInsufficientFunds when the user cannot afford it. No row
// changes on any failure.
func (s *Store) Purchase(ctx context.Context, chatID, itemID int64) (*Purchase, error) {
	var p *Purchase
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := getReward(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if !item.Active {
			return ErrNotFound
		}
		if item.QuantityLeft <= 0 {
			return ErrSoldOut
		}

		now := time.Now().UTC()
		query, args := builder().Update(UsersTable.Name).
			Add("experience", -item.Price).
			Set("updated_at", now).
			Where(entsql.And(
				entsql.EQ("chat_id", chatID),
				entsql.GTE("experience", item.Price),
			)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("debit experience: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if _, err := getUser(ctx, tx, chatID); errors.Is(err, ErrNotFound) {
				return ErrUnknownUser
			} else if err != nil {
				return err
			}
			return ErrInsufficientFunds
		}

		query, args = builder().Update(RewardShopTable.Name).
			Add("quantity_left", -1).
			Where(entsql.And(
				entsql.EQ("id", itemID),
				entsql.GT("quantity_left", 0),
				entsql.EQ("active", true),
			)).
			Query()
		res, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrSoldOut
		}

		p = &Purchase{
			ID:          uuid.NewString(),
			ChatID:      chatID,
			ItemID:      itemID,
			Price:       item.Price,
			PurchasedAt: now,
		}
		query, args = builder().Insert(RewardPurchasesTable.Name).
			Columns("id", "chat_id", "item_id", "price", "purchased_at").
			Values(p.ID, p.ChatID, p.ItemID, p.Price, p.PurchasedAt).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		return appendActivity(ctx, tx, chatID, "purchase", item.Name)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Purchases returns a user's purchases, newest first.
func (s *Store) Purchases(ctx context.Context, chatID int64) ([]Purchase, error) {
	query, args := builder().Select("id", "chat_id", "item_id", "price", "purchased_at").
		From(entsql.Table(RewardPurchasesTable.Name)).
		Where(entsql.EQ("chat_id", chatID)).
		OrderBy(entsql.Desc("purchased_at")).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.ChatID, &p.ItemID, &p.Price, &p.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
