package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindstash/mindstash/internal/config"
	"github.com/mindstash/mindstash/internal/engine"
	"github.com/mindstash/mindstash/internal/providers/embedding"
	"github.com/mindstash/mindstash/pkg/log"
	"github.com/mindstash/mindstash/pkg/tokens"
)

var statsCmd = &cobra.Command{
	Use:           "stats",
	Short:         "Print memory store statistics",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		repo, err := initStorage(ctx, appCfg)
		if err != nil {
			return err
		}
		defer repo.Close()

		eng := engine.New(config.NewEngineConfig(ctx), repo, embedding.NewHashEmbedder())

		stats, err := eng.Stats(ctx)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		// Heuristic counts drive the budget packing; BPE counts are the
		// reporting-grade numbers.
		if counter, err := tokens.NewTiktoken(); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("tiktoken unavailable, skipping exact token counts")
		} else {
			memories, err := repo.All(ctx)
			if err != nil {
				return err
			}
			exact := 0
			for _, m := range memories {
				exact += counter.Count(m.Content)
			}
			fmt.Printf("exact content tokens (cl100k_base): %d\n", exact)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
