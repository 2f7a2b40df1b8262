package rewards

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sommelier/internal/store"
)

func setup(t *testing.T, xp int) (*Shop, *store.Store) {
	t.Helper()
	s, err := store.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	_, err = s.EnsureUser(ctx, 1, "Lena")
	require.NoError(t, err)
	if xp > 0 {
		require.NoError(t, s.AddExperience(ctx, 1, xp))
	}
	require.NoError(t, s.SeedRewards(ctx, []store.RewardItem{
		{Name: "Tasting seat", Price: 100, QuantityLeft: 2, Active: true},
		{Name: "Retired item", Price: 10, QuantityLeft: 5, Active: false},
		{Name: "Empty shelf", Price: 10, QuantityLeft: 0, Active: true},
	}))
	return NewShop(s, nil), s
}

func itemID(t *testing.T, s *store.Store, name string) int64 {
	t.Helper()
	items, err := s.ListRewards(context.Background(), false)
	require.NoError(t, err)
	for _, it := range items {
		if it.Name == name {
			return it.ID
		}
	}
	t.Fatalf("item %q not seeded", name)
	return 0
}

func snapshot(t *testing.T, s *store.Store, id int64) (xp, stock, purchases int) {
	t.Helper()
	ctx := context.Background()
	u, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	it, err := s.GetReward(ctx, id)
	require.NoError(t, err)
	ps, err := s.Purchases(ctx, 1)
	require.NoError(t, err)
	return u.Experience, it.QuantityLeft, len(ps)
}

func TestBuy(t *testing.T) {
	shop, s := setup(t, 250)
	id := itemID(t, s, "Tasting seat")

	p, err := shop.Buy(context.Background(), 1, id)
	require.NoError(t, err)
	assert.Equal(t, 100, p.Price)
	assert.NotEmpty(t, p.ID)

	xp, stock, n := snapshot(t, s, id)
	assert.Equal(t, 150, xp)
	assert.Equal(t, 1, stock)
	assert.Equal(t, 1, n)
}

func TestBuy_InsufficientFundsChangesNothing(t *testing.T) {
	shop, s := setup(t, 99)
	id := itemID(t, s, "Tasting seat")

	_, err := shop.Buy(context.Background(), 1, id)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	xp, stock, n := snapshot(t, s, id)
	assert.Equal(t, 99, xp)
	assert.Equal(t, 2, stock)
	assert.Zero(t, n)
}

func TestBuy_SoldOutRegardlessOfXP(t *testing.T) {
	shop, s := setup(t, 10000)
	id := itemID(t, s, "Empty shelf")

	_, err := shop.Buy(context.Background(), 1, id)
	assert.ErrorIs(t, err, ErrSoldOut)

	xp, stock, n := snapshot(t, s, id)
	assert.Equal(t, 10000, xp)
	assert.Zero(t, stock)
	assert.Zero(t, n)
}

func TestBuy_StockRunsOut(t *testing.T) {
	shop, s := setup(t, 1000)
	id := itemID(t, s, "Tasting seat")
	ctx := context.Background()

	_, err := shop.Buy(ctx, 1, id)
	require.NoError(t, err)
	_, err = shop.Buy(ctx, 1, id)
	require.NoError(t, err)
	_, err = shop.Buy(ctx, 1, id)
	assert.ErrorIs(t, err, ErrSoldOut)

	xp, stock, n := snapshot(t, s, id)
	assert.Equal(t, 800, xp)
	assert.Zero(t, stock)
	assert.Equal(t, 2, n)
}

func TestBuy_NotFound(t *testing.T) {
	shop, s := setup(t, 1000)
	_, err := shop.Buy(context.Background(), 1, itemID(t, s, "Retired item"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = shop.Buy(context.Background(), 1, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuy_UnknownUser(t *testing.T) {
	shop, s := setup(t, 1000)
	id := itemID(t, s, "Tasting seat")

	_, err := shop.Buy(context.Background(), 42, id)
	assert.ErrorIs(t, err, ErrUnknownUser)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, Message(err), "/start")

	it, err := s.GetReward(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, it.QuantityLeft)
}

func TestSeedAndItems(t *testing.T) {
	shop, _ := setup(t, 0)
	ctx := context.Background()
	require.NoError(t, shop.Seed(ctx))
	require.NoError(t, shop.Seed(ctx))

	items, err := shop.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2+len(DefaultItems), "inactive items are hidden, seeding twice adds nothing")
	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i-1].Price, items[i].Price)
	}
}

func TestMessage(t *testing.T) {
	assert.Contains(t, Message(ErrSoldOut), "sold out")
	assert.Contains(t, Message(ErrInsufficientFunds), "enough experience")
	assert.Contains(t, Message(assert.AnError), "try again")
}
