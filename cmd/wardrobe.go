package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/closai/internal/catalog"
	"github.com/spigell/closai/internal/wardrobe"
)

const (
	promptClear = "(clear)"
	promptBack  = "back"
)

var wardrobeCmd = &cobra.Command{
	Use:   "wardrobe",
	Short: "Manage the garments saved to the wardrobe",
}

var wardrobeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every saved garment",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		e := newEnv(context.Background())
		defer e.close()

		snap, err := e.store().Get(e.ctx)
		if err != nil {
			e.logger.Fatal("loading wardrobe", zap.Error(err))
		}

		e.logger.Info("wardrobe loaded", zap.Int("count", snap.Len()))
		printJSON(e, snap)
	},
}

var wardrobeAddCmd = &cobra.Command{
	Use:   "add <url|goodsNo>",
	Short: "Fetch a product from the shop and save it",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		e := newEnv(context.Background())
		defer e.close()

		product, err := e.catalog().Product(e.ctx, args[0])
		if err != nil {
			e.logger.Fatal("fetching product", zap.String("ref", args[0]), zap.Error(err))
		}

		if _, err := e.store().AddItem(e.ctx, itemFromProduct(product)); err != nil {
			e.logger.Fatal("saving garment", zap.Error(err))
		}

		e.logger.Info("garment saved",
			zap.String("goods_no", product.GoodsNo),
			zap.String("title", product.Title),
			zap.Strings("sizes", product.SizeTable.RowNames()),
		)
	},
}

var wardrobeFitCmd = &cobra.Command{
	Use:   "fit <goodsNo>",
	Short: "Record how a saved garment fits",
	Long:  "Record how a saved garment fits. Without --status and --size the values are asked interactively.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := newEnv(context.Background())
		defer e.close()

		store := e.store()
		goodsNo := args[0]

		snap, err := store.Get(e.ctx)
		if err != nil {
			e.logger.Fatal("loading wardrobe", zap.Error(err))
		}
		i := snap.Find(goodsNo)
		if i < 0 {
			e.logger.Info("exiting", zap.String("reason", "garment is not in the wardrobe"), zap.String("goods_no", goodsNo))
			return
		}
		item := snap.Items[i]

		rawStatus, _ := cmd.Flags().GetString("status")
		size, _ := cmd.Flags().GetString("size")

		if !cmd.Flags().Changed("status") {
			rawStatus, err = promptStatus(item)
			if err != nil {
				e.logger.Fatal("exiting", zap.Error(err))
			}
		}
		status, err := wardrobe.ParseFitStatus(rawStatus)
		if err != nil {
			e.logger.Fatal("parsing fit status", zap.Error(err))
		}

		if !cmd.Flags().Changed("size") && status != wardrobe.FitUnset {
			size, err = promptSize(item)
			if err != nil {
				e.logger.Fatal("exiting", zap.Error(err))
			}
		}

		if _, err := store.UpdateFit(e.ctx, goodsNo, status, size); err != nil {
			e.logger.Fatal("updating fit", zap.Error(err))
		}

		e.logger.Info("fit recorded",
			zap.String("goods_no", goodsNo),
			zap.String("status", string(status)),
			zap.String("size", size),
		)
	},
}

var wardrobeDeleteCmd = &cobra.Command{
	Use:   "delete <goodsNo>",
	Short: "Remove a garment from the wardrobe",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		e := newEnv(context.Background())
		defer e.close()

		snap, err := e.store().DeleteItem(e.ctx, args[0])
		if err != nil {
			e.logger.Fatal("deleting garment", zap.Error(err))
		}
		e.logger.Info("garment deleted", zap.String("goods_no", args[0]), zap.Int("left", snap.Len()))
	},
}

var wardrobeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Set height and weight",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		e := newEnv(context.Background())
		defer e.close()

		height, _ := cmd.Flags().GetString("height")
		weight, _ := cmd.Flags().GetString("weight")

		snap, err := e.store().UpdateStats(e.ctx, height, weight)
		if err != nil {
			e.logger.Fatal("updating stats", zap.Error(err))
		}
		e.logger.Info("stats saved", zap.String("height", snap.UserStats.Height), zap.String("weight", snap.UserStats.Weight))
	},
}

func init() {
	rootCmd.AddCommand(wardrobeCmd)
	wardrobeCmd.AddCommand(wardrobeListCmd, wardrobeAddCmd, wardrobeFitCmd, wardrobeDeleteCmd, wardrobeStatsCmd)

	wardrobeFitCmd.Flags().StringP("status", "s", "", "fit status: GOOD, BIG, SMALL or empty to clear")
	wardrobeFitCmd.Flags().String("size", "", "the size that was worn")

	wardrobeStatsCmd.Flags().String("height", "", "height in cm")
	wardrobeStatsCmd.Flags().String("weight", "", "weight in kg")
}

// itemFromProduct keeps the catalog fields the wardrobe stores.
func itemFromProduct(p *catalog.Product) wardrobe.Item {
	return wardrobe.Item{
		GoodsNo:   p.GoodsNo,
		Title:     p.Title,
		Brand:     p.Brand,
		ImageURL:  p.ImageURL,
		Category1: wardrobe.Category(p.Category1),
		Category2: p.Category2,
		Link:      p.Link,
		SizeTable: p.SizeTable,
	}
}

func promptStatus(item wardrobe.Item) (string, error) {
	items := make([]string, 0, len(wardrobe.FitStatuses)+1)
	for _, s := range wardrobe.FitStatuses {
		items = append(items, string(s))
	}
	items = append(items, promptClear)

	prompt := promptui.Select{
		Label: fmt.Sprintf("How does %q fit?", item.Title),
		Items: items,
	}
	_, selected, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if selected == promptClear {
		return "", nil
	}
	return selected, nil
}

func promptSize(item wardrobe.Item) (string, error) {
	sizes := item.SizeTable.RowNames()
	if len(sizes) == 0 {
		prompt := promptui.Prompt{
			Label:   "Worn size",
			Default: item.SelectedSize,
		}
		return prompt.Run()
	}

	prompt := promptui.Select{
		Label: "Which size did you wear?",
		Items: append(sizes, promptBack),
	}
	_, selected, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if selected == promptBack {
		return "", errors.New("no size selected")
	}
	return selected, nil
}

func printJSON(e *env, v any) {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		e.logger.Fatal("encoding output", zap.Error(err))
	}
	fmt.Fprintln(os.Stdout, string(pretty))
}
