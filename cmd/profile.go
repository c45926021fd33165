package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/closai/internal/sizing"
	"github.com/spigell/closai/internal/wardrobe"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the ideal-size profile built from garments that fit",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		e := newEnv(context.Background())
		defer e.close()

		snap, profile, err := e.store().IdealSize(e.ctx)
		if err != nil {
			e.logger.Fatal("computing ideal size", zap.Error(err))
		}

		if len(profile) == 0 {
			e.logger.Info("exiting",
				zap.String("reason", "no garment is marked as a good fit yet"),
				zap.Int("garments", snap.Len()),
			)
			return
		}

		e.logger.Info("ideal size computed", zap.Strings("categories", profile.Categories()))
		printJSON(e, struct {
			UserStats wardrobe.UserStats `json:"userStats"`
			IdealSize sizing.Profile     `json:"idealSize"`
		}{snap.UserStats, profile})
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
