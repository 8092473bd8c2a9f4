// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/layover-engine/pkg/types"
)

// FormatTable writes a discovery result as a human-readable table to w.
func FormatTable(res types.DiscoveryResult, w io.Writer) {
	if len(res.Opportunities) == 0 {
		fmt.Fprintln(w, "No layover opportunities found.")
		if len(res.ProviderErrors) > 0 {
			fmt.Fprintf(w, "%d provider(s) failed:\n", len(res.ProviderErrors))
			for _, e := range res.ProviderErrors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return
	}

	fmt.Fprintf(w, "%-4s  %-16s  %-5s  %-9s  %-5s  %-8s  %-10s  %s\n",
		"Rank", "City", "Code", "Duration", "Score", "City OK", "Price", "Verdict")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, o := range res.Opportunities {
		city := o.Layover.City
		if len(city) > 16 {
			city = city[:13] + "..."
		}
		cityOK := "no"
		if o.Transit.CanLeaveAirport {
			cityOK = "yes"
		}
		fmt.Fprintf(w, "%-4d  %-16s  %-5s  %-9s  %-5.1f  %-8s  %-10s  %s\n",
			i+1, city, o.Layover.Airport, formatDuration(o.Layover.DurationMinutes),
			o.Score.Total, cityOK,
			fmt.Sprintf("%.0f %s", o.Layover.OfferPrice, res.Market.Currency),
			o.Score.Recommendation)
		for _, ins := range o.Score.Insights {
			fmt.Fprintf(w, "      - %s\n", ins)
		}
	}

	fmt.Fprintf(w, "\n%d opportunities from %d offers", len(res.Opportunities), len(res.Offers))
	if res.DuplicatesRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", res.DuplicatesRemoved)
	}
	if res.FromCache {
		fmt.Fprintf(w, " [cached]")
	}
	fmt.Fprintln(w)
}

// FormatJSON writes a discovery result as indented JSON to w.
func FormatJSON(res types.DiscoveryResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// FormatInsights writes market insights as a short human-readable report.
func FormatInsights(m types.MarketInsights, w io.Writer) {
	if m.AveragePrice > 0 {
		fmt.Fprintf(w, "Average price:      %.0f %s (confidence %.2f)\n", m.AveragePrice, m.Currency, m.PriceConfidence)
		fmt.Fprintf(w, "Price range:        %.0f - %.0f %s\n", m.MinPrice, m.MaxPrice, m.Currency)
	} else {
		fmt.Fprintln(w, "No price data available.")
	}
	if m.AverageLayoverMinutes > 0 {
		fmt.Fprintf(w, "Average layover:    %s\n", formatDuration(m.AverageLayoverMinutes))
	}
	fmt.Fprintf(w, "Seasonal factor:    %.2f\n", m.SeasonalMultiplier)
	if len(m.PopularCities) > 0 {
		fmt.Fprintf(w, "Popular cities:\n")
		for _, c := range m.PopularCities {
			fmt.Fprintf(w, "  %-16s %d\n", c.City, c.Count)
		}
	}
	for _, note := range m.Notes {
		fmt.Fprintf(w, "Note: %s\n", note)
	}
}

func formatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}
