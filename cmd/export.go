package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/closai/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the wardrobe and the ideal-size profile to an xlsx file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		e := newEnv(context.Background())
		defer e.close()

		out, _ := cmd.Flags().GetString("out")

		snap, profile, err := e.store().IdealSize(e.ctx)
		if err != nil {
			e.logger.Fatal("loading wardrobe", zap.Error(err))
		}

		wb, err := export.Workbook(snap, profile)
		if err != nil {
			e.logger.Fatal("building workbook", zap.Error(err))
		}
		defer wb.Close()

		if err := wb.SaveAs(out); err != nil {
			e.logger.Fatal("writing workbook", zap.String("filename", out), zap.Error(err))
		}

		e.logger.Info("wardrobe exported", zap.String("filename", out), zap.Int("garments", snap.Len()))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("out", "o", "wardrobe.xlsx", "output file")
}
