package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/AskSQL/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(a.assistant, a.exec, a.catalog, server.Options{
			AskTimeout:   a.cfg.Server.AskTimeout,
			ProviderName: a.provider.Name(),
			Driver:       a.exec.Driver(),
		})
		return srv.ListenAndServe(ctx, a.cfg.Server.Address)
	},
}

func init() {
	serveCmd.Flags().StringVar(&cliFlags.Address, "addr", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}
