package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmirandamx/agentspend/internal/cli"
	"github.com/rmirandamx/agentspend/internal/metrics"
	"github.com/rmirandamx/agentspend/internal/model"
)

var (
	flagReqPage           int
	flagReqLimit          int
	flagReqClassification string
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List individual requests from the ledger",
	RunE:  runRequests,
}

func init() {
	requestsCmd.Flags().IntVar(&flagReqPage, "page", 1, "Page number")
	requestsCmd.Flags().IntVar(&flagReqLimit, "limit", 20, "Requests per page")
	requestsCmd.Flags().StringVarP(&flagReqClassification, "classification", "c", "", "Filter by classification (LOCAL_VIABLE, NEEDS_CLAUDE, EDGE_CASE)")
	rootCmd.AddCommand(requestsCmd)
}

func runRequests(_ *cobra.Command, _ []string) error {
	rc, err := newRunContext()
	if err != nil {
		return err
	}

	result, err := rc.ingest()
	if err != nil {
		return err
	}

	filtered := metrics.Filter{
		Agent:          flagAgent,
		Classification: model.Classification(flagReqClassification),
		Model:          flagModel,
		Days:           rc.days,
	}.Apply(result.Retained, time.Now())

	page := metrics.Paginate(filtered, flagReqPage, flagReqLimit)
	if page.Total == 0 {
		fmt.Println("\n  No requests match the filters.")
		return nil
	}

	rows := make([][]string, 0, len(page.Requests))
	for _, r := range page.Requests {
		preview := r.PromptPreview
		if runes := []rune(preview); len(runes) > 40 {
			preview = string(runes[:40])
		}
		rows = append(rows, []string{
			r.Time().Format("01-02 15:04"),
			r.AgentName,
			string(r.Classification),
			cli.FormatTokens(r.InputTokens),
			fmt.Sprintf("$%.4f", r.TotalCostUSD),
			preview,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Requests  page %d/%d  (%s total)", page.Page, page.Pages, cli.FormatNumber(int64(page.Total))),
		Headers: []string{"Time", "Agent", "Class", "In", "Cost", "Prompt"},
		Rows:    rows,
	}))

	if page.Page < page.Pages {
		fmt.Printf("  Next: agentspend requests --page %d\n", page.Page+1)
	}
	return nil
}
