package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mindstash/mindstash/internal/config"
	"github.com/mindstash/mindstash/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "mindstash",
	Short: "mindstash — scoped memory engine for agents",
	Long:  `mindstash stores, ranks, compresses and consolidates agent memories, and serves them over MCP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
