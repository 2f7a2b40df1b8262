package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	calls atomic.Int32
	items []Item
	err   error
	delay time.Duration
}

func (f *fakeLoader) Load(ctx context.Context) ([]Item, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func sheetItems() []Item {
	return []Item{
		{ID: "w1", Name: "Sancerre", Category: CategoryWine, Country: "France", Sugar: "dry"},
		{ID: "w2", Name: "Rioja Reserva", Category: CategoryWine, Country: "Spain", Sugar: "dry"},
		{ID: "c1", Name: "Daiquiri", Category: CategoryCocktail, Ingredients: []string{"rum", "lime", "sugar"}},
	}
}

func TestParseRows(t *testing.T) {
	rows := [][]string{
		{"Name", "Type", "Country", "ABV", "Sugar", "Glass", "Ingredients"},
		{"Chianti Classico", "Red", "Italy", "13,5%", "Dry", "Bordeaux glass", ""},
		{"", "Red", "Italy"},
		{"Sazerac", "Cocktail", "USA", "30", "", "rocks glass", "rye; absinthe; sugar; Peychaud's bitters"},
		{"Mystery", "Kombucha", "", "", "", "", ""},
	}

	items, skipped := ParseRows(rows, "")
	require.Len(t, items, 2)
	assert.Equal(t, 2, skipped)

	assert.Equal(t, CategoryWine, items[0].Category)
	assert.Equal(t, 13.5, items[0].Alcohol)
	assert.Equal(t, "dry", items[0].Sugar)
	assert.Equal(t, "Bordeaux glass", items[0].Glassware)
	assert.NotEmpty(t, items[0].ID)

	assert.Equal(t, CategoryCocktail, items[1].Category)
	assert.Equal(t, []string{"rye", "absinthe", "sugar", "Peychaud's bitters"}, items[1].Ingredients)
}

func TestParseRows_TabCategoryKeepsStyle(t *testing.T) {
	rows := [][]string{
		{"Name", "Category", "Country"},
		{"Ardbeg 10", "Islay single malt", "Scotland"},
	}
	items, skipped := ParseRows(rows, defaultCategory("Whisky!A1:Z"))
	require.Len(t, items, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, CategoryWhisky, items[0].Category)
	assert.Equal(t, "Islay single malt", items[0].Style)
}

func TestSheetLoader(t *testing.T) {
	var gotPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(map[string]any{
			"range": "Wine!A1:C3",
			"values": [][]string{
				{"Name", "Country", "Sugar"},
				{"Muscadet", "France", "dry"},
			},
		})
	}))
	defer srv.Close()

	l, err := NewSheetLoader(context.Background(), SheetConfig{
		SpreadsheetID: "sheet-1",
		APIKey:        "secret",
		Ranges:        []string{"Wine!A1:C"},
		BaseURL:       srv.URL,
	}, nil)
	require.NoError(t, err)

	items, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, CategoryWine, items[0].Category)
	assert.Equal(t, []string{"/v4/spreadsheets/sheet-1/values/Wine!A1:C"}, gotPaths)
}

func TestSheetLoader_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	l, err := NewSheetLoader(context.Background(), SheetConfig{SpreadsheetID: "x", Ranges: []string{"Wine"}, BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	_, err = l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSheetLoader_IDsUniqueAcrossTabs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows := [][]string{{"Name", "Country"}, {"Soave", "Italy"}, {"Vouvray", "France"}}
		if r.URL.Path == "/v4/spreadsheets/sheet-2/values/Sparkling!A1:B" {
			rows = [][]string{{"ID", "Name", "Category"}, {"wine-1", "Cava Brut", "wine"}}
		}
		json.NewEncoder(w).Encode(map[string]any{"values": rows})
	}))
	defer srv.Close()

	l, err := NewSheetLoader(context.Background(), SheetConfig{
		SpreadsheetID: "sheet-2",
		Ranges:        []string{"Wine!A1:B", "Red wine!A1:B", "Sparkling!A1:B"},
		BaseURL:       srv.URL,
	}, nil)
	require.NoError(t, err)

	items, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 5)
	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
		seen[it.ID] = true
	}
	assert.Equal(t, "wine-1", items[0].ID)
	assert.Equal(t, "wine-1-2", items[2].ID)
	assert.Equal(t, "wine-1-3", items[4].ID)
}

func TestNewSheetLoader_RequiresConfig(t *testing.T) {
	_, err := NewSheetLoader(context.Background(), SheetConfig{}, nil)
	assert.Error(t, err)
	_, err = NewSheetLoader(context.Background(), SheetConfig{SpreadsheetID: "x"}, nil)
	assert.Error(t, err)
}

func TestStore_FallbackOnLoadError(t *testing.T) {
	loader := &fakeLoader{err: errors.New("sheet unreachable")}
	s, err := NewStore(loader, Options{}, nil)
	require.NoError(t, err)

	items, src := s.Get(context.Background())
	assert.Equal(t, SourceFallback, src)
	require.NotEmpty(t, items)
	for _, it := range items {
		assert.NotEmpty(t, it.Category, "item %s has no category", it.ID)
	}

	// Served from cache until the fallback TTL passes.
	_, src = s.Get(context.Background())
	assert.Equal(t, SourceCache, src)
	assert.Equal(t, int32(1), loader.calls.Load())

	_, lastErr := s.Status()
	assert.Error(t, lastErr)
}

func TestStore_NilLoaderServesFallback(t *testing.T) {
	s, err := NewStore(nil, Options{}, nil)
	require.NoError(t, err)
	items, src := s.Get(context.Background())
	assert.Equal(t, SourceFallback, src)
	assert.Len(t, items, len(fallbackItems))

	_, err = s.Refresh(context.Background())
	assert.Error(t, err)
}

func TestStore_CacheExpiry(t *testing.T) {
	loader := &fakeLoader{items: sheetItems()}
	s, err := NewStore(loader, Options{TTL: time.Minute}, nil)
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, src := s.Get(context.Background())
	assert.Equal(t, SourceSheet, src)
	_, src = s.Get(context.Background())
	assert.Equal(t, SourceCache, src)

	now = now.Add(2 * time.Minute)
	_, src = s.Get(context.Background())
	assert.Equal(t, SourceSheet, src)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestStore_RefreshFailureKeepsCache(t *testing.T) {
	loader := &fakeLoader{items: sheetItems()}
	s, err := NewStore(loader, Options{}, nil)
	require.NoError(t, err)

	items, _ := s.Get(context.Background())
	require.Len(t, items, 3)

	loader.err = errors.New("quota exceeded")
	_, err = s.Refresh(context.Background())
	require.Error(t, err)

	items, src := s.Get(context.Background())
	assert.Equal(t, SourceCache, src)
	assert.Len(t, items, 3)

	loader.err = nil
	loader.items = append(sheetItems(), Item{ID: "b1", Name: "Pilsner Urquell", Category: CategoryBeer})
	n, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	items, _ = s.Get(context.Background())
	assert.Len(t, items, 4)
}

func TestStore_ConcurrentMissLoadsOnce(t *testing.T) {
	loader := &fakeLoader{items: sheetItems(), delay: 50 * time.Millisecond}
	s, err := NewStore(loader, Options{}, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, _ := s.Get(context.Background())
			assert.Len(t, items, 3)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestStore_FilterAndFind(t *testing.T) {
	s, err := NewStore(&fakeLoader{items: sheetItems()}, Options{}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	wines := s.Filter(ctx, Filter{Category: CategoryWine})
	assert.Len(t, wines, 2)

	spanish := s.Filter(ctx, Filter{Category: CategoryWine, Country: "spain"})
	require.Len(t, spanish, 1)
	assert.Equal(t, "Rioja Reserva", spanish[0].Name)

	found := s.Filter(ctx, Filter{Query: "daiq"})
	require.Len(t, found, 1)
	assert.Equal(t, "c1", found[0].ID)

	it, ok := s.Find(ctx, "w1")
	assert.True(t, ok)
	assert.Equal(t, "Sancerre", it.Name)
	_, ok = s.Find(ctx, "nope")
	assert.False(t, ok)
}

func TestSearchRanksBestMatchFirst(t *testing.T) {
	got := Search(Fallback(), "negroni")
	require.NotEmpty(t, got)
	assert.Equal(t, "Negroni", got[0].Name)
}

func TestValuesAndAttributes(t *testing.T) {
	items := Fallback()
	sugars := Values(Apply(items, Filter{Category: CategorySparkling}), "sugar")
	assert.Contains(t, sugars, "brut")
	assert.Equal(t, "12.5%", FormatAlcohol(12.5))
	assert.Equal(t, "40%", FormatAlcohol(40))

	c, err := ParseCategory("Whiskey")
	require.NoError(t, err)
	assert.Equal(t, CategoryWhisky, c)
	_, err = ParseCategory("kombucha")
	assert.Error(t, err)
}
