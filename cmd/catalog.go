package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/catalog"
	"github.com/spigell/tender-bid/internal/logger"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the product catalog as the matcher sees it",
	Run: func(_ *cobra.Command, _ []string) {
		listCatalog()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func listCatalog() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	c := catalog.Load(catalog.Options{
		DatasheetsDir: config.Catalog.DatasheetsDir,
		File:          config.Catalog.File,
		MergeBuiltin:  config.Catalog.MergeBuiltin,
	}, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tVOLTAGE\tTYPE\tCONDUCTOR\tCORES\tSIZE\tSTANDARDS\tPRICE/M")
	for _, p := range c.Products() {
		price := "-"
		if p.PricePerMeter > 0 {
			price = fmt.Sprintf("%.2f", p.PricePerMeter)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.SKU,
			p.Spec.Voltage,
			p.Spec.CableType,
			p.Spec.ConductorMaterial,
			p.Spec.Cores,
			p.Spec.ConductorSize,
			strings.Join(p.Spec.Standards, ", "),
			price,
		)
	}
	if err := w.Flush(); err != nil {
		logger.Fatal("printing the catalog", zap.Error(err))
	}
}
