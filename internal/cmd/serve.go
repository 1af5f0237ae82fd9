package cmd

import (
	"github.com/lbscek/sarvajna/internal/app"
	"github.com/lbscek/sarvajna/internal/log"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the Telegram bot",
	Long: `Run the HTTP API (turns, history, /metrics) and, when TELEGRAM_API_TOKEN
is set, the Telegram bot. History is stored in PostgreSQL when DATABASE_URL
is set.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fx.New(
			log.Module(),
			app.Server(),
		).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
