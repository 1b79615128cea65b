// Command nodegen is the first of the pipeline's two entry points: it
// ingests the per-route JSON feed and emits the node table CSV (spec.md
// §6's "Node generator" entry point), following the step-numbered
// startup logging style of cmd/importer/main.go in the teacher repo.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anninhn/hcmc-transit-accessibility/internal/config"
	"github.com/anninhn/hcmc-transit-accessibility/internal/expand"
	"github.com/anninhn/hcmc-transit-accessibility/internal/geocache"
	"github.com/anninhn/hcmc-transit-accessibility/internal/ingest"
	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
	"github.com/anninhn/hcmc-transit-accessibility/internal/nodewriter"
	"github.com/anninhn/hcmc-transit-accessibility/internal/pgsink"
	"github.com/anninhn/hcmc-transit-accessibility/internal/statusserver"
)

func main() {
	cfg := config.FromEnv()
	fs := flag.NewFlagSet("nodegen", flag.ExitOnError)
	cfg.BindFlags(fs)
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) < 1 {
		fmt.Println("Usage: nodegen <input.json> [output.csv] [flags]")
		fs.PrintDefaults()
		os.Exit(1)
	}
	inputPath := args[0]
	outputPath := "node.csv"
	if len(args) >= 2 {
		outputPath = args[1]
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("input file not found: %s", inputPath)
	}

	var progress *statusserver.Progress
	if cfg.StatusAddr != "" {
		progress = statusserver.New()
		srv, errc := statusserver.Start(cfg.StatusAddr, progress)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		go func() {
			if err := <-errc; err != nil {
				log.Printf("status server: %v", err)
			}
		}()
	}

	start := time.Now()

	log.Println("Step 1/3: Ingesting route catalog...")
	cat, err := ingest.Load(inputPath, cfg.RouteLimit)
	if err != nil {
		log.Fatalf("failed to load input: %v", err)
	}
	if progress != nil {
		progress.SetRoutesTotal(int64(len(cat.Routes)))
	}

	log.Println("Step 2/3: Expanding trips and writing node table...")
	w, err := nodewriter.Open(outputPath)
	if err != nil {
		log.Fatalf("failed to open output: %v", err)
	}

	cache := geocache.New(cfg.RedisAddr)
	defer cache.Close()

	var allNodes []model.Node
	collect := cfg.PostgresDSN != ""

	err = expand.Run(cat, cfg, cache, func(n model.Node) error {
		id, werr := w.Write(n)
		if werr != nil {
			return werr
		}
		if progress != nil {
			progress.AddNodes(1)
		}
		if collect {
			n.NodeID = id
			allNodes = append(allNodes, n)
		}
		return nil
	})
	if err != nil {
		w.Close()
		log.Fatalf("failed while writing node table: %v", err)
	}
	if err := w.Close(); err != nil {
		log.Fatalf("failed to close output: %v", err)
	}

	if cfg.PostgresDSN != "" {
		log.Println("Step 3/3: Mirroring nodes into Postgres...")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		sink, err := pgsink.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Printf("postgres sink unavailable, continuing without it: %v", err)
		} else {
			defer sink.Close()
			if err := sink.WriteNodes(ctx, allNodes); err != nil {
				log.Printf("postgres sink write failed: %v", err)
			}
		}
	} else {
		log.Println("Step 3/3: Skipping Postgres mirror (no --postgres-dsn set)")
	}

	info, statErr := os.Stat(outputPath)
	sizeMB := 0.0
	if statErr == nil {
		sizeMB = float64(info.Size()) / 1024 / 1024
	}
	log.Printf("Wrote %d nodes to %s (%.1f MB) in %s", w.Count(), outputPath, sizeMB, time.Since(start))
}
