// compile-clarifications compiles the clarification catalog from its CSV
// source and optional sampled-options JSON into the merged dataset the
// engine loads at startup.
//
// Usage: go run ./scripts/compile-clarifications [flags]
//
// Flags:
//
//	-csv      Path to the catalog CSV (default: data/clarification_catalog.csv)
//	-samples  Path to the sampled options JSON (default: data/clarification_samples.json)
//	-out      Path for the compiled dataset JSON (default: data/clarification_compiled.json)
package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/hintlane/clarify-engine/pkg/catalog"
)

func main() {
	csvPath := flag.String("csv", "data/clarification_catalog.csv", "Path to the catalog CSV")
	samplesPath := flag.String("samples", "data/clarification_samples.json", "Path to the sampled options JSON")
	outPath := flag.String("out", "data/clarification_compiled.json", "Path for the compiled dataset JSON")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dataset, err := catalog.Compile(*csvPath, *samplesPath)
	if err != nil {
		logger.Fatal("Failed to compile catalog", zap.Error(err))
	}

	if err := catalog.WriteCompiled(dataset, *outPath); err != nil {
		logger.Fatal("Failed to write compiled dataset", zap.Error(err))
	}

	logger.Info("Compiled clarification catalog",
		zap.String("csv", *csvPath),
		zap.String("out", *outPath),
		zap.Int("records", len(dataset.Order)))
}
