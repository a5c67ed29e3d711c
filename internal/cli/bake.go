package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oldto/oldto/internal/bake"
	"github.com/oldto/oldto/internal/config"
	"github.com/oldto/oldto/internal/geojson"
	"github.com/oldto/oldto/internal/index"
	logpkg "github.com/oldto/oldto/internal/logger"
)

var bakeDir string

var bakeCmd = &cobra.Command{
	Use:   "bake",
	Short: "Write the derived indices out as a static file tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(env)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		raw, err := geojson.LoadCollection(cfg.Data.GeoJSON)
		if err != nil {
			return err
		}
		features := geojson.Normalize(raw, logger)

		featuredIDs, err := geojson.LoadFeatured(cfg.Data.Featured)
		if err != nil {
			return err
		}

		snap, err := index.BuildSnapshot(features, featuredIDs, cfg.Cache.ETagVersion)
		if err != nil {
			return fmt.Errorf("building snapshot: %w", err)
		}
		return bake.Export(snap, bakeDir, logger)
	},
}

func init() {
	bakeCmd.Flags().StringVar(&bakeDir, "dir", "build", "Output directory for the static tree")
	rootCmd.AddCommand(bakeCmd)
}
