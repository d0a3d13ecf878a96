package cmd

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/discovery"
	"github.com/spigell/tender-bid/internal/logger"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a file of fake cable tenders for trying the pipeline",
	Run: func(cmd *cobra.Command, _ []string) {
		sample(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().IntP("count", "n", 5, "number of tenders to generate")
	sampleCmd.Flags().Int64("seed", 42, "random seed")
	sampleCmd.Flags().StringP("output", "o", "", "write to the file instead of stdout")
}

func sample(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetInt64("seed")
	output, _ := cmd.Flags().GetString("output")

	items := discovery.NewSample(count, seed, time.Now).Generate()
	raw, err := json.MarshalIndent(map[string]any{"tenders": items}, "", "  ")
	if err != nil {
		logger.Fatal("encoding tenders", zap.Error(err))
	}

	if output == "" {
		os.Stdout.Write(append(raw, '\n'))
		return
	}

	if err := os.WriteFile(output, raw, 0o644); err != nil {
		logger.Fatal("writing tenders", zap.Error(err))
	}
	logger.Info("sample tenders written", zap.String("file", output), zap.Int("count", len(items)))
}
