package main

import (
	"fmt"
	"os"

	"chato-dashboard/internal/config"
	"chato-dashboard/internal/platform/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	redisURL  string
	keyPrefix string
	verbose   bool

	cfg  *config.Config
	root *logrus.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatoctl",
	Short: "Operator tools for the Chato realtime store",
	Long: `chatoctl works directly against the Redis realtime store used by the
dashboard backend.

Quick Start:
  chatoctl seed --file fixture.yaml     # write sessions and messages
  chatoctl watch <apiKey>...            # print live aggregate snapshots`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if !cmd.Flags().Changed("redis-url") {
			redisURL = cfg.Realtime.RedisURL
		}
		if !cmd.Flags().Changed("prefix") {
			keyPrefix = cfg.Realtime.KeyPrefix
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		root = logger.NewWithOutput(os.Stderr, level, cfg.Log.Format)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "Redis URL (defaults to realtime.redis_url)")
	rootCmd.PersistentFlags().StringVar(&keyPrefix, "prefix", "", "Key prefix (defaults to realtime.key_prefix)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(seedCmd, watchCmd)
}
