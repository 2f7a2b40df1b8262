package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Loader fetches the full catalogue from an external source.
type Loader interface {
	Load(ctx context.Context) ([]Item, error)
}

// SheetConfig locates the catalogue spreadsheet.
type SheetConfig struct {
	SpreadsheetID string
	APIKey        string
	// Ranges are A1 ranges, one per tab, e.g. "Wine!A1:Z". The tab name
	// sets the category for rows that have no category column.
	Ranges []string
	// BaseURL overrides the Sheets API endpoint.
	BaseURL string
	Timeout time.Duration
}

// SheetLoader reads catalogue rows through the Google Sheets values API.
type SheetLoader struct {
	cfg    SheetConfig
	values *sheets.SpreadsheetsValuesService
	logger *slog.Logger
}

// NewSheetLoader creates a loader. It returns an error when the sheet is
// not configured.
func NewSheetLoader(ctx context.Context, cfg SheetConfig, logger *slog.Logger) (*SheetLoader, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if len(cfg.Ranges) == 0 {
		return nil, fmt.Errorf("at least one sheet range is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &SheetLoader{
		cfg:    cfg,
		values: svc.Spreadsheets.Values,
		logger: logger,
	}, nil
}

// Load fetches every configured range and normalizes the rows. Any failed
// range fails the whole load so a partial catalogue is never cached.
// Rows get ids unique across the whole catalogue.
func (l *SheetLoader) Load(ctx context.Context) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	var items []Item
	ids := make(map[string]bool)
	for _, rng := range l.cfg.Ranges {
		rows, err := l.fetchRange(ctx, rng)
		if err != nil {
			return nil, err
		}
		parsed, skipped := ParseRows(rows, defaultCategory(rng))
		if skipped > 0 {
			l.logger.Warn("skipped catalogue rows", "range", rng, "skipped", skipped)
		}
		for _, it := range parsed {
			it.ID = uniqueID(ids, it.ID)
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("sheet returned no catalogue rows")
	}
	return items, nil
}

// uniqueID returns id, or id with the first free numeric suffix when it
// is taken, and marks the result as taken.
func uniqueID(taken map[string]bool, id string) string {
	out := id
	for n := 2; taken[out]; n++ {
		out = fmt.Sprintf("%s-%d", id, n)
	}
	taken[out] = true
	return out
}

func (l *SheetLoader) fetchRange(ctx context.Context, rng string) ([][]string, error) {
	resp, err := l.values.Get(l.cfg.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch range %s: %w", rng, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				rows[i][j] = fmt.Sprint(cell)
			}
		}
	}
	return rows, nil
}

func defaultCategory(rng string) Category {
	tab, _, _ := strings.Cut(rng, "!")
	tab = strings.Trim(tab, "'")
	c, err := ParseCategory(tab)
	if err != nil {
		return ""
	}
	return c
}

// headerAliases maps normalized header text to item fields.
var headerAliases = map[string]string{
	"id": "id", "sku": "id",
	"name": "name", "title": "name", "drink": "name", "wine": "name",
	"category": "category", "type": "category", "group": "category",
	"style": "style", "color": "style", "colour": "style", "kind": "style",
	"country": "country", "origin": "country",
	"region": "region", "appellation": "region",
	"grape": "grape", "grapes": "grape", "variety": "grape",
	"sugar": "sugar", "sweetness": "sugar", "sugar content": "sugar",
	"alcohol": "alcohol", "abv": "alcohol", "alcohol %": "alcohol", "strength": "alcohol",
	"aging": "aging", "age": "aging", "ageing": "aging",
	"serving temperature": "serving_temp", "serving temp": "serving_temp", "temperature": "serving_temp",
	"glass": "glassware", "glassware": "glassware",
	"ingredients": "ingredients", "recipe": "ingredients",
	"method": "method", "technique": "method",
	"garnish":     "garnish",
	"description": "description", "notes": "description", "tasting notes": "description",
	"pairing": "pairing", "food pairing": "pairing",
	"price": "price",
	"image": "image", "image url": "image", "photo": "image",
}

// ParseRows normalizes sheet rows. The first row is the header. Rows without
// a name or with an unknown category are skipped and counted.
func ParseRows(rows [][]string, fallback Category) ([]Item, int) {
	if len(rows) < 2 {
		return nil, 0
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if field, ok := headerAliases[key]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}

	var items []Item
	skipped := 0
	for n, row := range rows[1:] {
		get := func(field string) string {
			i, ok := cols[field]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := get("name")
		if name == "" {
			skipped++
			continue
		}

		category := fallback
		style := get("style")
		if raw := get("category"); raw != "" {
			if c, err := ParseCategory(raw); err == nil {
				category = c
			} else if style == "" {
				// On a single-category tab the column holds a style.
				style = raw
			}
		}
		if category == "" {
			skipped++
			continue
		}

		it := Item{
			ID:          get("id"),
			Name:        name,
			Category:    category,
			Style:       style,
			Country:     get("country"),
			Region:      get("region"),
			Grape:       get("grape"),
			Sugar:       strings.ToLower(get("sugar")),
			Alcohol:     parseAlcohol(get("alcohol")),
			Aging:       get("aging"),
			ServingTemp: get("serving_temp"),
			Glassware:   get("glassware"),
			Ingredients: splitList(get("ingredients")),
			Method:      get("method"),
			Garnish:     get("garnish"),
			Description: get("description"),
			Pairing:     get("pairing"),
			Price:       get("price"),
			ImageURL:    get("image"),
		}
		if it.ID == "" {
			it.ID = fmt.Sprintf("%s-%d", category, n+1)
		}
		items = append(items, it)
	}
	return items, skipped
}

func parseAlcohol(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 100 {
		return 0
	}
	return v
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '\n' })
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
