package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/closai/internal/server"
	"github.com/spigell/closai/internal/wardrobe"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API used by the web client",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e := newEnv(ctx)
		defer e.close()

		var store *wardrobe.Store
		if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
			e.logger.Warn("wardrobe is kept in memory and lost on exit")
			store = wardrobe.NewStore(wardrobe.NewMemoryBackend(), e.logger.Named("wardrobe"))
		} else {
			store = e.store()
		}

		narrator, summarizer := e.assistants()
		adv := e.advisor(store, narrator, summarizer)

		srv, err := server.New(server.Deps{
			Store:      store,
			Advisor:    adv,
			Narrator:   narrator,
			Summarizer: summarizer,
			Logger:     e.logger.Named("http"),
		}, viper.GetBool("debug"))
		if err != nil {
			e.logger.Fatal("creating the http api", zap.Error(err))
		}

		e.logger.Info("starting closai", zap.String("version", version))
		if err := srv.Run(ctx, e.config.Server.Addr); err != nil {
			e.logger.Fatal("serving", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Bool("ephemeral", false, "keep the wardrobe in memory only")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
