package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/addrserve/internal/logger"
	"github.com/bastiangx/addrserve/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "addrctl",
	Short: "Region catalog and bulk address tool",
	Long:  "Import and inspect region catalogs, and parse address files in bulk.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			logger.SetLevel(log.DebugLevel)
		} else {
			logger.SetLevel(log.WarnLevel)
		}
	},
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the config named by --config, or the default one.
func loadConfig() *config.Config {
	cfg, _, err := config.LoadConfigWithPriority(configPath)
	if err != nil {
		log.Warnf("Using built-in defaults: %v", err)
		return config.DefaultConfig()
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(parseCmd)
}
