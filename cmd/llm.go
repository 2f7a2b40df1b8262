package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/sommelier/internal/app"
	"github.com/abhisek/sommelier/internal/llm"
	"github.com/abhisek/sommelier/internal/store"
	"github.com/abhisek/sommelier/internal/ui/components"
	"github.com/abhisek/sommelier/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

// openStore opens the configured database for read-only inspection.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.OpenStore(cfg)
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.QueryLLMRequests(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query requests: %w", err)
		}

		var rows [][]string
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := theme.Good.Render("✓")
			if !e.Success {
				ok = theme.Bad.Render("✗")
			}
			rows = append(rows, []string{
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				e.Model,
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				ok,
			})
			if limit > 0 && len(rows) == limit {
				break
			}
		}
		if len(rows) == 0 {
			fmt.Println("No LLM requests found.")
			return nil
		}
		fmt.Print(components.Table{
			Headers:  []string{"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK"},
			Rows:     rows,
			MaxWidth: 28,
		}.View())
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.QueryLLMRequests(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query requests: %w", err)
		}
		var e *store.LLMRequestEventRecord
		for i := range events {
			if events[i].ID == id {
				e = &events[i]
				break
			}
		}
		if e == nil {
			return fmt.Errorf("request %d not found", id)
		}

		sep := strings.Repeat("─", 60)
		fmt.Printf("ID:        %d\n", e.ID)
		fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", e.Provider)
		fmt.Printf("Model:     %s\n", e.Model)
		fmt.Printf("Purpose:   %s\n", e.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Printf("Latency:   %dms\n", e.LatencyMs)
		fmt.Printf("Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", e.ErrorMessage)
		}
		for _, part := range []struct{ title, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			fmt.Println(sep)
			fmt.Println(part.title)
			fmt.Println(sep)
			if part.body == "" {
				fmt.Println("(not captured)")
				continue
			}
			fmt.Println(part.body)
		}
		return nil
	},
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage and estimated cost per purpose and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		var opts store.QueryOpts
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		usage, err := s.LLMUsage(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(usage) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		var (
			rows          [][]string
			totalCost     float64
			totalIn       int
			totalOut      int
			unknownModels []string
		)
		for _, u := range usage {
			cost := "?"
			if price := llm.LookupCost(u.Model); price != nil {
				c := price.Cost(u.InputTokens, u.OutputTokens)
				totalCost += c
				cost = formatCost(c)
			} else {
				unknownModels = append(unknownModels, u.Model)
			}
			totalIn += u.InputTokens
			totalOut += u.OutputTokens
			rows = append(rows, []string{
				u.Purpose, u.Model,
				strconv.Itoa(u.Requests), strconv.Itoa(u.Failures),
				strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), cost,
			})
		}
		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		rows = append(rows, []string{label, "", "", "", strconv.Itoa(totalIn), strconv.Itoa(totalOut), formatCost(totalCost)})

		fmt.Print(components.Table{
			Headers:  []string{"Purpose", "Model", "Calls", "Failed", "Input", "Output", "Cost"},
			Rows:     rows,
			MaxWidth: 32,
		}.View())
		if len(unknownModels) > 0 {
			fmt.Println(theme.Hint.Render("Pricing unavailable for: " + strings.Join(unknownModels, ", ")))
		}
		return nil
	},
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (question-gen, consultation)")
	llmUsageCmd.Flags().Duration("since", 0, "Only count requests this recent, e.g. 24h (0 = all)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmUsageCmd)
}
