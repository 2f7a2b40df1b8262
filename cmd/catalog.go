package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/sommelier/internal/app"
	"github.com/abhisek/sommelier/internal/catalog"
	"github.com/abhisek/sommelier/internal/ui/components"
	"github.com/abhisek/sommelier/internal/ui/theme"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the beverage catalogue",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogue items",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, closer, err := cliLogger(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		var f catalog.Filter
		if raw, _ := cmd.Flags().GetString("category"); raw != "" {
			if f.Category, err = catalog.ParseCategory(raw); err != nil {
				return err
			}
		}
		f.Sugar, _ = cmd.Flags().GetString("sugar")
		f.Country, _ = cmd.Flags().GetString("country")
		f.Query, _ = cmd.Flags().GetString("search")
		f.Limit, _ = cmd.Flags().GetInt("limit")

		store, err := app.NewCatalog(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		_, source := store.Get(ctx)
		items := store.Filter(ctx, f)
		if len(items) == 0 {
			fmt.Println("No drinks match.")
			return nil
		}

		rows := make([][]string, len(items))
		for i, it := range items {
			abv := ""
			if it.Alcohol > 0 {
				abv = strconv.FormatFloat(it.Alcohol, 'f', -1, 64) + "%"
			}
			rows[i] = []string{it.ID, it.Name, it.Category.Title(), it.Country, it.Sugar, abv, it.ServingTemp}
		}
		fmt.Println(theme.Title.Render(fmt.Sprintf("%d drinks", len(items))) + theme.Hint.Render("  source: "+string(source)))
		fmt.Print(components.Table{
			Headers:  []string{"ID", "Name", "Category", "Country", "Sugar", "ABV", "Serve at"},
			Rows:     rows,
			MaxWidth: 32,
		}.View())
		return nil
	},
}

var catalogRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the catalogue from the Google Sheet and report what was read",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !cfg.Sheets.Enabled() {
			return fmt.Errorf("no sheet configured: set SOMMELIER_SHEET_ID and SOMMELIER_SHEET_API_KEY")
		}
		logger, closer, err := cliLogger(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		store, err := app.NewCatalog(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		n, err := store.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		items, _ := store.Get(cmd.Context())
		fmt.Println(theme.Good.Render(fmt.Sprintf("Read %d items from the sheet.", n)))
		for cat, n := range orderedCategories(items) {
			fmt.Printf("  %s %s\n", theme.Label.Width(14).Render(cat.Title()), theme.Value.Render(strconv.Itoa(n)))
		}
		return nil
	},
}

// orderedCategories counts items per category in catalogue order.
func orderedCategories(items []catalog.Item) func(yield func(catalog.Category, int) bool) {
	groups := catalog.ByCategory(items)
	return func(yield func(catalog.Category, int) bool) {
		for _, c := range catalog.AllCategories {
			if n := len(groups[c]); n > 0 && !yield(c, n) {
				return
			}
		}
	}
}

func init() {
	catalogListCmd.Flags().StringP("category", "c", "", "Only this category (wine, sparkling, whisky, ...)")
	catalogListCmd.Flags().String("sugar", "", "Only this sugar level (dry, semi-sweet, brut, ...)")
	catalogListCmd.Flags().String("country", "", "Only this country")
	catalogListCmd.Flags().StringP("search", "s", "", "Fuzzy search on the drink name")
	catalogListCmd.Flags().IntP("limit", "n", 0, "Max rows (0 = all)")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogRefreshCmd)
}
