package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/layover-engine/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Maintain the airport and activity reference catalog",
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference data into the catalog database",
	Long: `Seed upserts airport and activity reference data into the catalog database.
With --file it loads a YAML seed; without it the built-in seed is applied.
Existing rows with the same keys are updated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadPipelineConfig()
		if err != nil {
			return err
		}
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			cfg.Catalog.SeedFile = file
		}

		store, err := catalog.NewStore(cfg.Catalog)
		if err != nil {
			return err
		}
		defer store.Close()

		seed := catalog.BuiltinSeed()
		if cfg.Catalog.SeedFile != "" {
			seed, err = catalog.LoadSeedFile(cfg.Catalog.SeedFile)
			if err != nil {
				return err
			}
		}

		if err := store.Apply(cmd.Context(), seed); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Seeded %d airports and %d activities\n",
			len(seed.Airports), len(seed.Activities))
		return nil
	},
}

func init() {
	catalogSeedCmd.Flags().String("file", "", "YAML seed file (default: built-in seed)")

	catalogCmd.AddCommand(catalogSeedCmd)
	rootCmd.AddCommand(catalogCmd)
}
