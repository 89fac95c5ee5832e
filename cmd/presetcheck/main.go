// Command presetcheck validates a weight-preset YAML document before it
// is rolled out: structure, canonical feature codes, and per-preset sums.
//
// Usage:
//
//	presetcheck -file weights.yaml
//
// The exit code is 1 when the document is invalid, so the command slots
// into CI and deploy pipelines.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/weights"
)

func main() {
	var (
		filePath = flag.String("file", "", "Path to the weight-preset YAML document")
		strict   = flag.Bool("strict", false, "Fail on unknown feature codes instead of warning")
	)
	flag.Parse()

	// Local overrides only; a missing .env file is the normal case.
	_ = godotenv.Load()

	if *filePath == "" {
		if env := os.Getenv("MATCH_WEIGHTS_FILE"); env != "" {
			*filePath = env
		} else {
			flag.Usage()
			os.Exit(2)
		}
	}

	source, err := weights.NewFileSource(*filePath)
	if err != nil {
		log.Fatalf("Invalid weight file path: %v", err)
	}

	doc, err := source.Load(context.Background())
	if err != nil {
		log.Fatalf("Weight document rejected: %v", err)
	}

	fmt.Printf("Weight document: %s (version %s)\n", *filePath, doc.Version)
	fmt.Printf("Presets: %d\n\n", len(doc.Presets))

	names := make([]string, 0, len(doc.Presets))
	for name := range doc.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := false
	for _, name := range names {
		mapping := doc.Presets[name]

		var unknown []string
		var sum float64
		for key, val := range mapping {
			if !domain.FeatureCode(key).IsCanonical() {
				unknown = append(unknown, key)
				continue
			}
			sum += val
		}
		sort.Strings(unknown)

		fmt.Printf("  %-12s sum=%.4f codes=%d\n", name, sum, len(mapping)-len(unknown))
		for _, key := range unknown {
			if *strict {
				failed = true
				fmt.Printf("    ERROR: unknown feature code %q\n", key)
			} else {
				fmt.Printf("    warning: unknown feature code %q (dropped at load)\n", key)
			}
		}
		if sum <= 0 {
			failed = true
			fmt.Printf("    ERROR: weights sum to %.4f; preset would fall back to %s\n", sum, weights.DefaultPreset)
		}
	}

	if failed {
		fmt.Println("\nDocument is INVALID")
		os.Exit(1)
	}
	fmt.Println("\nDocument is valid; weights normalize at resolve time")
}
