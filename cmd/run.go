package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/ai"
	"github.com/spigell/tender-bid/internal/logger"
	"github.com/spigell/tender-bid/internal/pipeline"
	"github.com/spigell/tender-bid/internal/report"
)

const (
	PromptExport       = "Export results"
	PromptNo           = "Exit without export"
	PromptShowRecord   = "Print decision record"
	PromptShowRequests = "Show new SKU requests"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptExport, PromptNo, PromptShowRecord, PromptShowRequests},
}

// processedMarker is implemented by sources that track which tenders were evaluated.
type processedMarker interface {
	MarkProcessed(ctx context.Context, ids []string) error
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate discovered tenders and recommend whether to bid",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "export results without asking for confirmation")
	runCmd.Flags().Bool("ignore-rotation", false, "do not skip tenders selected in the previous run")
	runCmd.Flags().StringP("tenders-file", "t", "", "a JSON file with candidate tenders (implies the file source)")

	viper.BindPFlag("tenders.file", runCmd.Flags().Lookup("tenders-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the tender-bid", zap.String("version", version))
	logger.Debug("starting with config", zap.Any("config", config))

	if cmd.Flag("tenders-file").Changed {
		config.Tenders.Source = "file"
	}

	ignoreRotation, _ := cmd.Flags().GetBool("ignore-rotation")
	app, err := buildApplication(ctx, config, ignoreRotation, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer app.Close()

	source, closeSource, err := tenderSource(ctx, config.Tenders, logger)
	if err != nil {
		logger.Fatal("opening the tenders source", zap.Error(err))
	}
	defer closeSource()

	candidates, err := source.Discover(ctx)
	if err != nil {
		logger.Fatal("discovering tenders", zap.Error(err))
	}
	logger.Info("getting tenders", zap.String("source", config.Tenders.Source), zap.Int("count", candidates.Len()))

	rec := app.coordinator.Run(ctx, candidates)
	ai.Annotate(ctx, app.narrator, rec, logger)

	if err := report.WriteText(os.Stdout, rec); err != nil {
		logger.Fatal("printing the summary", zap.Error(err))
	}

	if rec.SelectedRFP == nil {
		logger.Info("exiting", zap.String("reason", rec.Message))
		return
	}

	action := PromptExport
	for {
		autoApprove, _ := cmd.Flags().GetBool("auto-approve")
		if !autoApprove {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAction(ctx, action, app, source, rec, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, app *application, source any, rec *pipeline.Record, logger *zap.Logger) error {
	switch action {
	case PromptExport:
		files := app.exporter.Export(rec)
		logger.Info("results exported", zap.Strings("files", files))
		markProcessed(ctx, source, rec, logger)
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptShowRecord:
		return report.WriteJSON(os.Stdout, rec)
	case PromptShowRequests:
		if len(rec.NewProductRequests) == 0 {
			fmt.Println("No new SKU requests.")
			return nil
		}
		for _, r := range rec.NewProductRequests {
			fmt.Println(report.RequestMarkdown(r))
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func markProcessed(ctx context.Context, source any, rec *pipeline.Record, logger *zap.Logger) {
	marker, ok := source.(processedMarker)
	if !ok || rec.SelectedRFP == nil {
		return
	}
	if err := marker.MarkProcessed(ctx, []string{rec.SelectedRFP.TenderID}); err != nil {
		logger.Warn("marking tender as processed failed",
			zap.String("tender_id", rec.SelectedRFP.TenderID),
			zap.Error(err),
		)
	}
}
