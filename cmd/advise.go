package cmd

import (
	"context"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	promptYes = "Yes"
	promptNo  = "No"
)

var adviseCmd = &cobra.Command{
	Use:   "advise <url|goodsNo>",
	Short: "Recommend a size for a product based on the wardrobe",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := newEnv(context.Background())
		defer e.close()

		store := e.store()
		narrator, summarizer := e.assistants()
		advice, err := e.advisor(store, narrator, summarizer).Advise(e.ctx, args[0])
		if err != nil {
			e.logger.Fatal("advising", zap.String("ref", args[0]), zap.Error(err))
		}

		printJSON(e, advice)

		if advice.Recommended != "" {
			e.logger.Info("recommended size", zap.String("size", advice.Recommended))
		} else {
			e.logger.Info("no size recommended", zap.String("reason", advice.Reason))
		}
		for step, msg := range advice.Errors {
			e.logger.Warn("ai step failed", zap.String("ai_step", step), zap.String("error", msg))
		}

		add, _ := cmd.Flags().GetBool("add")
		if !add {
			if yes, _ := cmd.Flags().GetBool("yes"); yes {
				return
			}
			prompt := promptui.Select{
				Label: "Add the product to the wardrobe?",
				Items: []string{promptNo, promptYes},
			}
			_, answer, err := prompt.Run()
			if err != nil {
				e.logger.Fatal("exiting", zap.Error(err))
			}
			add = answer == promptYes
		}
		if !add {
			return
		}

		if _, err := store.AddItem(e.ctx, itemFromProduct(advice.Product)); err != nil {
			e.logger.Fatal("saving garment", zap.Error(err))
		}
		e.logger.Info("garment saved", zap.String("goods_no", advice.Product.GoodsNo))
	},
}

func init() {
	rootCmd.AddCommand(adviseCmd)

	adviseCmd.Flags().BoolP("add", "a", false, "add the product to the wardrobe without asking")
	adviseCmd.Flags().BoolP("yes", "y", false, "do not ask anything, only print the advice")
}
