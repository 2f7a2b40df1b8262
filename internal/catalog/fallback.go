package catalog

// fallbackItems is served when the sheet cannot be loaded. Every category
// has enough items for a four-option question.
var fallbackItems = []Item{
	{ID: "fb-wine-1", Name: "Chablis Premier Cru", Category: CategoryWine, Style: "white", Country: "France", Region: "Burgundy", Grape: "Chardonnay", Sugar: "dry", Alcohol: 12.5, ServingTemp: "10-12°C", Glassware: "white wine glass", Pairing: "oysters, goat cheese"},
	{ID: "fb-wine-2", Name: "Barolo DOCG", Category: CategoryWine, Style: "red", Country: "Italy", Region: "Piedmont", Grape: "Nebbiolo", Sugar: "dry", Alcohol: 14, Aging: "38 months", ServingTemp: "16-18°C", Glassware: "Burgundy glass", Pairing: "truffle risotto, braised beef"},
	{ID: "fb-wine-3", Name: "Riesling Spätlese", Category: CategoryWine, Style: "white", Country: "Germany", Region: "Mosel", Grape: "Riesling", Sugar: "semi-sweet", Alcohol: 8.5, ServingTemp: "8-10°C", Glassware: "white wine glass", Pairing: "spicy Asian dishes"},
	{ID: "fb-wine-4", Name: "Malbec Reserva", Category: CategoryWine, Style: "red", Country: "Argentina", Region: "Mendoza", Grape: "Malbec", Sugar: "dry", Alcohol: 14, ServingTemp: "16-18°C", Glassware: "Bordeaux glass", Pairing: "grilled steak"},
	{ID: "fb-wine-5", Name: "Sauvignon Blanc", Category: CategoryWine, Style: "white", Country: "New Zealand", Region: "Marlborough", Grape: "Sauvignon Blanc", Sugar: "dry", Alcohol: 13, ServingTemp: "7-9°C", Glassware: "white wine glass", Pairing: "seafood, salads"},
	{ID: "fb-wine-6", Name: "Tokaji Aszú 5 Puttonyos", Category: CategoryWine, Style: "dessert", Country: "Hungary", Region: "Tokaj", Grape: "Furmint", Sugar: "sweet", Alcohol: 11, ServingTemp: "10-12°C", Glassware: "dessert wine glass", Pairing: "foie gras, blue cheese"},
	{ID: "fb-wine-7", Name: "Provence Rosé", Category: CategoryWine, Style: "rosé", Country: "France", Region: "Provence", Grape: "Grenache", Sugar: "dry", Alcohol: 12.5, ServingTemp: "8-10°C", Glassware: "white wine glass", Pairing: "Mediterranean salads"},
	{ID: "fb-wine-8", Name: "Lambrusco Amabile", Category: CategoryWine, Style: "red", Country: "Italy", Region: "Emilia-Romagna", Grape: "Lambrusco", Sugar: "semi-sweet", Alcohol: 8, ServingTemp: "10-12°C", Glassware: "white wine glass", Pairing: "cured meats"},

	{ID: "fb-spk-1", Name: "Champagne Brut", Category: CategorySparkling, Country: "France", Region: "Champagne", Grape: "Chardonnay, Pinot Noir", Sugar: "brut", Alcohol: 12, Method: "traditional method", ServingTemp: "6-8°C", Glassware: "flute"},
	{ID: "fb-spk-2", Name: "Prosecco Extra Dry", Category: CategorySparkling, Country: "Italy", Region: "Veneto", Grape: "Glera", Sugar: "extra dry", Alcohol: 11, Method: "Charmat method", ServingTemp: "6-8°C", Glassware: "flute"},
	{ID: "fb-spk-3", Name: "Cava Brut Nature", Category: CategorySparkling, Country: "Spain", Region: "Penedès", Grape: "Macabeo", Sugar: "brut nature", Alcohol: 11.5, Method: "traditional method", ServingTemp: "6-8°C", Glassware: "flute"},
	{ID: "fb-spk-4", Name: "Asti Spumante", Category: CategorySparkling, Country: "Italy", Region: "Piedmont", Grape: "Moscato Bianco", Sugar: "sweet", Alcohol: 7, Method: "Asti method", ServingTemp: "6-8°C", Glassware: "coupe"},

	{ID: "fb-wsk-1", Name: "Lagavulin 16", Category: CategoryWhisky, Style: "single malt", Country: "Scotland", Region: "Islay", Alcohol: 43, Aging: "16 years", ServingTemp: "room temperature", Glassware: "Glencairn glass"},
	{ID: "fb-wsk-2", Name: "Maker's Mark", Category: CategoryWhisky, Style: "bourbon", Country: "USA", Region: "Kentucky", Alcohol: 45, ServingTemp: "room temperature", Glassware: "rocks glass"},
	{ID: "fb-wsk-3", Name: "Jameson", Category: CategoryWhisky, Style: "blended", Country: "Ireland", Alcohol: 40, ServingTemp: "room temperature", Glassware: "rocks glass"},
	{ID: "fb-wsk-4", Name: "Yamazaki 12", Category: CategoryWhisky, Style: "single malt", Country: "Japan", Alcohol: 43, Aging: "12 years", ServingTemp: "room temperature", Glassware: "Glencairn glass"},

	{ID: "fb-cog-1", Name: "Hennessy VS", Category: CategoryCognac, Country: "France", Region: "Cognac", Alcohol: 40, Aging: "2 years", ServingTemp: "room temperature", Glassware: "snifter"},
	{ID: "fb-cog-2", Name: "Rémy Martin XO", Category: CategoryCognac, Country: "France", Region: "Cognac", Alcohol: 40, Aging: "10 years", ServingTemp: "room temperature", Glassware: "snifter"},
	{ID: "fb-rum-1", Name: "Diplomático Reserva Exclusiva", Category: CategoryRum, Country: "Venezuela", Alcohol: 40, Aging: "12 years", ServingTemp: "room temperature", Glassware: "snifter"},
	{ID: "fb-gin-1", Name: "Hendrick's", Category: CategoryGin, Country: "Scotland", Alcohol: 41.4, ServingTemp: "chilled", Glassware: "copa glass"},
	{ID: "fb-vdk-1", Name: "Belvedere", Category: CategoryVodka, Country: "Poland", Alcohol: 40, ServingTemp: "-6 to -4°C", Glassware: "shot glass"},
	{ID: "fb-teq-1", Name: "Don Julio Reposado", Category: CategoryTequila, Country: "Mexico", Region: "Jalisco", Alcohol: 38, Aging: "8 months", ServingTemp: "room temperature", Glassware: "caballito"},
	{ID: "fb-beer-1", Name: "Guinness Draught", Category: CategoryBeer, Style: "stout", Country: "Ireland", Alcohol: 4.2, ServingTemp: "6°C", Glassware: "tulip pint"},
	{ID: "fb-beer-2", Name: "Weihenstephaner Hefeweissbier", Category: CategoryBeer, Style: "wheat", Country: "Germany", Alcohol: 5.4, ServingTemp: "6-8°C", Glassware: "weizen glass"},

	{ID: "fb-ctl-1", Name: "Negroni", Category: CategoryCocktail, Alcohol: 24, Ingredients: []string{"gin", "Campari", "sweet vermouth"}, Method: "stirred", Garnish: "orange peel", Glassware: "rocks glass", ServingTemp: "on the rocks"},
	{ID: "fb-ctl-2", Name: "Margarita", Category: CategoryCocktail, Alcohol: 22, Ingredients: []string{"tequila", "triple sec", "lime juice"}, Method: "shaken", Garnish: "salt rim", Glassware: "margarita glass", ServingTemp: "chilled"},
	{ID: "fb-ctl-3", Name: "Mojito", Category: CategoryCocktail, Alcohol: 13, Ingredients: []string{"white rum", "lime", "mint", "sugar", "soda water"}, Method: "muddled and built", Garnish: "mint sprig", Glassware: "highball glass", ServingTemp: "over crushed ice"},
	{ID: "fb-ctl-4", Name: "Old Fashioned", Category: CategoryCocktail, Alcohol: 32, Ingredients: []string{"bourbon", "sugar", "Angostura bitters"}, Method: "stirred", Garnish: "orange peel", Glassware: "rocks glass", ServingTemp: "on the rocks"},
	{ID: "fb-ctl-5", Name: "Aperol Spritz", Category: CategoryCocktail, Alcohol: 11, Ingredients: []string{"Aperol", "prosecco", "soda water"}, Method: "built", Garnish: "orange slice", Glassware: "wine glass", ServingTemp: "over ice"},
	{ID: "fb-ctl-6", Name: "Espresso Martini", Category: CategoryCocktail, Alcohol: 18, Ingredients: []string{"vodka", "coffee liqueur", "espresso"}, Method: "shaken", Garnish: "coffee beans", Glassware: "coupe", ServingTemp: "chilled"},
}

// Fallback returns a copy of the built-in dataset.
func Fallback() []Item {
	out := make([]Item, len(fallbackItems))
	copy(out, fallbackItems)
	return out
}
