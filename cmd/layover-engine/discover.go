package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/layover-engine/internal/engine"
	"github.com/pdiddy/layover-engine/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search flights and score layover opportunities",
	Long: `Discover queries the enabled flight providers for itineraries between two
airports, extracts viable connection windows, enriches them with weather,
transit and activity context, and prints each opportunity with its score.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadPipelineConfig()
		if err != nil {
			return err
		}

		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}
		if params.Origin == "" || params.Destination == "" {
			return fmt.Errorf("--from and --to are required")
		}
		if params.DepartureDate.IsZero() {
			return fmt.Errorf("--date is required")
		}

		eng, closer, err := buildEngine(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer closer()

		res := eng.Discover(cmd.Context(), params)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return engine.FormatJSON(res, os.Stdout)
		}
		engine.FormatTable(res, os.Stdout)
		return nil
	},
}

func paramsFromFlags(cmd *cobra.Command) (types.SearchParams, error) {
	var p types.SearchParams

	p.Origin, _ = cmd.Flags().GetString("from")
	p.Destination, _ = cmd.Flags().GetString("to")
	p.Passengers, _ = cmd.Flags().GetInt("passengers")
	p.CabinClass, _ = cmd.Flags().GetString("cabin")
	p.MaxConnections, _ = cmd.Flags().GetInt("max-connections")
	p.PreferLayovers, _ = cmd.Flags().GetBool("prefer-layovers")
	p.MinLayoverMinutes, _ = cmd.Flags().GetInt("min-layover")
	p.MaxLayoverMinutes, _ = cmd.Flags().GetInt("max-layover")
	p.HasCheckedBaggage, _ = cmd.Flags().GetBool("baggage")

	if interests, _ := cmd.Flags().GetString("interests"); interests != "" {
		p.Interests = strings.Split(interests, ",")
	}

	date, _ := cmd.Flags().GetString("date")
	dep, err := parseDate(date, "date")
	if err != nil {
		return types.SearchParams{}, err
	}
	p.DepartureDate = dep

	ret, _ := cmd.Flags().GetString("return")
	retDate, err := parseDate(ret, "return")
	if err != nil {
		return types.SearchParams{}, err
	}
	p.ReturnDate = retDate

	return p.Normalize(), nil
}

func init() {
	discoverCmd.Flags().String("from", "", "origin airport IATA code")
	discoverCmd.Flags().String("to", "", "destination airport IATA code")
	discoverCmd.Flags().String("date", "", "departure date (YYYY-MM-DD)")
	discoverCmd.Flags().String("return", "", "return date for round trips (YYYY-MM-DD)")
	discoverCmd.Flags().Int("passengers", 1, "number of travelers")
	discoverCmd.Flags().String("cabin", "", "cabin class: economy, premium_economy, business, first")
	discoverCmd.Flags().Int("max-connections", 0, "maximum stops per direction (0 = provider default)")
	discoverCmd.Flags().Bool("prefer-layovers", true, "favor itineraries with usable connection windows")
	discoverCmd.Flags().Int("min-layover", 0, "minimum layover minutes (0 = configured default)")
	discoverCmd.Flags().Int("max-layover", 0, "maximum layover minutes (0 = configured default)")
	discoverCmd.Flags().String("interests", "", "traveler interests, comma-separated (e.g. culture,food)")
	discoverCmd.Flags().Bool("baggage", false, "bags are not checked through and must be collected")
	discoverCmd.Flags().Bool("json", false, "output the full result as JSON")

	rootCmd.AddCommand(discoverCmd)
}
