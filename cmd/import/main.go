package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/CommonsAtlas/CA-Backend/internal/db"
	"github.com/CommonsAtlas/CA-Backend/internal/importer"
	"github.com/joho/godotenv"
)

func main() {
	var (
		country       = flag.String("country", "", "ISO3 country code (empty = multi-country mode)")
		minLevel      = flag.Int("min-level", importer.DefaultMinLevel, "lowest admin level to import")
		maxLevel      = flag.Int("max-level", importer.DefaultMaxLevel, "highest admin level to import")
		countriesFile = flag.String("countries", "", "YAML catalogue for multi-country mode")
	)
	flag.Parse()

	_ = godotenv.Load(".env.local")

	cfg := importer.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
	if *minLevel < 2 || *maxLevel > 11 || *minLevel > *maxLevel {
		log.Printf("invalid admin level range %d-%d", *minLevel, *maxLevel)
		os.Exit(1)
	}

	db.Connect()
	defer db.Close()
	if err := db.EnsureSchema(db.DB, "boundaries"); err != nil {
		log.Printf("ensure schema: %v", err)
	}

	// Interrupt cancels in-flight work; open transactions roll back.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := importer.NewPipeline(cfg, db.DB)

	if *country != "" {
		report, err := pipeline.ImportCountry(ctx, *country, *minLevel, *maxLevel)
		if err != nil {
			log.Printf("import %s failed: %v", *country, err)
			os.Exit(2)
		}
		if len(report.Persist.RowErrors) > 0 {
			os.Exit(2)
		}
		return
	}

	catalogue := importer.DefaultCatalogue
	if *countriesFile != "" {
		var err error
		catalogue, err = importer.LoadCatalogue(*countriesFile)
		if err != nil {
			log.Println(err)
			os.Exit(1)
		}
	}

	results, err := pipeline.ImportAll(ctx, catalogue, *minLevel, *maxLevel)
	if err != nil {
		log.Printf("multi-country run aborted: %v", err)
		os.Exit(2)
	}

	failed, withRowErrors := 0, 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
		if result.Report != nil && len(result.Report.Persist.RowErrors) > 0 {
			withRowErrors++
		}
	}
	log.Printf("multi-country run done: %d countries, %d failed", len(results), failed)
	if failed > 0 || withRowErrors > 0 {
		os.Exit(2)
	}
}
