// Package catalog loads the beverage catalogue from a Google Sheet,
// normalizes rows into typed items, caches them and serves filtered
// lookups. When the sheet is unreachable a built-in dataset is served.
package catalog

import (
	"fmt"
	"strings"
)

// Category is a beverage family. Each family carries a different subset
// of the item attributes.
type Category string

const (
	CategoryWine      Category = "wine"
	CategorySparkling Category = "sparkling"
	CategoryWhisky    Category = "whisky"
	CategoryCognac    Category = "cognac"
	CategoryRum       Category = "rum"
	CategoryGin       Category = "gin"
	CategoryVodka     Category = "vodka"
	CategoryTequila   Category = "tequila"
	CategoryBeer      Category = "beer"
	CategoryCocktail  Category = "cocktail"
)

// AllCategories lists the categories in menu order.
var AllCategories = []Category{
	CategoryWine, CategorySparkling, CategoryWhisky, CategoryCognac, CategoryRum,
	CategoryGin, CategoryVodka, CategoryTequila, CategoryBeer, CategoryCocktail,
}

var categoryTitles = map[Category]string{
	CategoryWine:      "Wine",
	CategorySparkling: "Sparkling",
	CategoryWhisky:    "Whisky",
	CategoryCognac:    "Cognac & Brandy",
	CategoryRum:       "Rum",
	CategoryGin:       "Gin",
	CategoryVodka:     "Vodka",
	CategoryTequila:   "Tequila & Mezcal",
	CategoryBeer:      "Beer",
	CategoryCocktail:  "Cocktails",
}

// Title returns a display name for the category.
func (c Category) Title() string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// ParseCategory maps free-form sheet or user text to a Category.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "wine", "wines", "red", "white", "rose", "rosé", "red wine", "white wine":
		return CategoryWine, nil
	case "sparkling", "champagne", "prosecco", "cava", "sparkling wine":
		return CategorySparkling, nil
	case "whisky", "whiskey", "scotch", "bourbon":
		return CategoryWhisky, nil
	case "cognac", "brandy", "armagnac", "calvados":
		return CategoryCognac, nil
	case "rum":
		return CategoryRum, nil
	case "gin":
		return CategoryGin, nil
	case "vodka":
		return CategoryVodka, nil
	case "tequila", "mezcal":
		return CategoryTequila, nil
	case "beer", "beers", "cider":
		return CategoryBeer, nil
	case "cocktail", "cocktails":
		return CategoryCocktail, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// IsWine reports whether sugar level applies to the category.
func (c Category) IsWine() bool {
	return c == CategoryWine || c == CategorySparkling
}

// Item is one normalized catalogue record. Fields that do not apply to the
// item's category are left empty.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Style       string   `json:"style,omitempty"` // red, white, single malt, IPA...
	Country     string   `json:"country,omitempty"`
	Region      string   `json:"region,omitempty"`
	Grape       string   `json:"grape,omitempty"`
	Sugar       string   `json:"sugar,omitempty"`
	Alcohol     float64  `json:"alcohol,omitempty"` // percent ABV
	Aging       string   `json:"aging,omitempty"`
	ServingTemp string   `json:"servingTemp,omitempty"`
	Glassware   string   `json:"glassware,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Method      string   `json:"method,omitempty"`
	Garnish     string   `json:"garnish,omitempty"`
	Description string   `json:"description,omitempty"`
	Pairing     string   `json:"pairing,omitempty"`
	Price       string   `json:"price,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// Attribute returns the display value of a named attribute, or "" when the
// item has none. Names match the question types that quiz on them.
func (it Item) Attribute(name string) string {
	switch name {
	case "category":
		return it.Category.Title()
	case "country":
		return it.Country
	case "sugar":
		return it.Sugar
	case "alcohol":
		if it.Alcohol <= 0 {
			return ""
		}
		return FormatAlcohol(it.Alcohol)
	case "serving_temp":
		return it.ServingTemp
	case "glassware":
		return it.Glassware
	case "ingredients":
		return strings.Join(it.Ingredients, ", ")
	case "method":
		return it.Method
	case "grape":
		return it.Grape
	case "region":
		return it.Region
	}
	return ""
}

// FormatAlcohol renders an ABV value, dropping a trailing ".0".
func FormatAlcohol(abv float64) string {
	s := fmt.Sprintf("%.1f", abv)
	s = strings.TrimSuffix(s, ".0")
	return s + "%"
}

// Source tells callers where a catalogue came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceSheet    Source = "sheet"
	SourceFallback Source = "fallback"
)

// Filter narrows a catalogue. Zero fields match everything.
type Filter struct {
	Category Category
	Sugar    string
	Country  string
	Query    string // fuzzy name search
	Limit    int
}
