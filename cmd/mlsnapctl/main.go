// Command mlsnapctl runs maintenance tasks against the collector database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MLBB-BOSS/MLSnap/internal/app"
	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	envFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mlsnapctl",
	Short: "Maintenance tasks for the MLSnap collector",
	Long: `Maintenance tasks for the MLSnap screenshot collector.

Configuration comes from the same environment variables and .env file as the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(envFile)
		if err != nil {
			return err
		}
		logger.Init(cfg.Env)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Dotenv file to read before the environment")

	rootCmd.AddCommand(
		migrateCmd,
		seedCmd,
		importUsersCmd,
		reportCmd,
		reevaluateCmd,
		digestCmd,
		tokenCmd,
	)
}

// openApp builds the collector for commands that need the database.
func openApp(cmd *cobra.Command) (*app.App, error) {
	return app.Open(cmd.Context(), cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
