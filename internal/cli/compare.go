package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oldto/oldto/internal/compare"
	"github.com/oldto/oldto/internal/geojson"
)

var (
	truthPath    string
	computedPath string
	reportPath   string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare computed dates and geocodes against a hand-verified truth set",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Null geometries stay in: a missing geocode is itself a result.
		truth, err := geojson.LoadCollection(truthPath)
		if err != nil {
			return err
		}
		computed, err := geojson.LoadCollection(computedPath)
		if err != nil {
			return err
		}

		out := os.Stdout
		if reportPath != "" {
			f, err := os.Create(reportPath)
			if err != nil {
				return fmt.Errorf("creating report: %w", err)
			}
			defer f.Close()
			out = f
		}

		_, err = compare.Run(truth, computed, out)
		return err
	},
}

func init() {
	compareCmd.Flags().StringVar(&truthPath, "truth", "", "Hand-verified truth GeoJSON file")
	compareCmd.Flags().StringVar(&computedPath, "computed", "", "Machine-computed GeoJSON file")
	compareCmd.Flags().StringVar(&reportPath, "out", "", "Write the TSV report here instead of stdout")
	_ = compareCmd.MarkFlagRequired("truth")
	_ = compareCmd.MarkFlagRequired("computed")
	rootCmd.AddCommand(compareCmd)
}
