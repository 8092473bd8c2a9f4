package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/layover-engine/internal/engine"
	"github.com/pdiddy/layover-engine/pkg/types"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show market statistics for a route",
	Long: `Insights reports aggregate market statistics for a route and month: average
and bounding prices, price confidence, typical layover durations, popular
layover cities, and the seasonal price factor. Served from the insights cache
when fresh; otherwise computed by running a discovery search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadPipelineConfig()
		if err != nil {
			return err
		}

		origin, _ := cmd.Flags().GetString("from")
		destination, _ := cmd.Flags().GetString("to")
		if origin == "" || destination == "" {
			return fmt.Errorf("--from and --to are required")
		}
		date, _ := cmd.Flags().GetString("date")
		dep, err := parseDate(date, "date")
		if err != nil {
			return err
		}
		if dep.IsZero() {
			return fmt.Errorf("--date is required")
		}

		eng, closer, err := buildEngine(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer closer()

		params := types.SearchParams{Origin: origin, Destination: destination, DepartureDate: dep}
		m := eng.Insights(cmd.Context(), params.Normalize())

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		}
		engine.FormatInsights(m, os.Stdout)
		return nil
	},
}

func init() {
	insightsCmd.Flags().String("from", "", "origin airport IATA code")
	insightsCmd.Flags().String("to", "", "destination airport IATA code")
	insightsCmd.Flags().String("date", "", "departure date (YYYY-MM-DD)")
	insightsCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(insightsCmd)
}
