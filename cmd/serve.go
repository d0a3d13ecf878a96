package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/logger"
	"github.com/spigell/tender-bid/internal/pipeline"
	"github.com/spigell/tender-bid/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluation pipeline over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default is server.listen)")
	serveCmd.Flags().Bool("export", false, "export every evaluated record to the output directory")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := buildApplication(ctx, config, false, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}
	defer app.Close()

	opts := server.Options{
		Addr:      config.Server.Listen,
		Evaluator: app.coordinator,
		Catalog:   app.catalog,
		Policy:    app.policy,
		Narrator:  app.narrator,
	}
	if export, _ := cmd.Flags().GetBool("export"); export {
		opts.OnRecord = func(rec *pipeline.Record) {
			app.exporter.Export(rec)
		}
	}

	logger.Info("starting the tender-bid server", zap.String("version", version))
	if err := server.New(opts, logger).Serve(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
