// Command linkgen is the pipeline's second entry point: it reads the
// already-written node table and the source route JSON back in, then
// runs the four link builders E-H in sequence, appending to one link
// table CSV (spec.md §6's "Link generator" entry point).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anninhn/hcmc-transit-accessibility/internal/config"
	"github.com/anninhn/hcmc-transit-accessibility/internal/ingest"
	"github.com/anninhn/hcmc-transit-accessibility/internal/linkbuild"
	"github.com/anninhn/hcmc-transit-accessibility/internal/model"
	"github.com/anninhn/hcmc-transit-accessibility/internal/nodewriter"
	"github.com/anninhn/hcmc-transit-accessibility/internal/pgsink"
	"github.com/anninhn/hcmc-transit-accessibility/internal/statusserver"
)

func main() {
	cfg := config.FromEnv()
	fs := flag.NewFlagSet("linkgen", flag.ExitOnError)
	cfg.BindFlags(fs)
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) < 3 {
		fmt.Println("Usage: linkgen <node.csv> <bus.json> <links.csv> [flags]")
		fs.PrintDefaults()
		os.Exit(1)
	}
	nodePath, jsonPath, outputPath := args[0], args[1], args[2]

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	for _, p := range []string{nodePath, jsonPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			log.Fatalf("input file not found: %s", p)
		}
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

	log.Println("Step 1/3: Loading node table and route catalog...")
	nodes, err := nodewriter.ReadAll(nodePath)
	if err != nil {
		log.Fatalf("failed to load node table: %v", err)
	}
	cat, err := ingest.Load(jsonPath, cfg.RouteLimit)
	if err != nil {
		log.Fatalf("failed to load route catalog: %v", err)
	}
	if progress != nil {
		progress.AddNodes(int64(len(nodes)))
	}

	log.Println("Step 2/3: Building ride, wait, transfer, and walk links...")
	w, err := linkbuild.New(outputPath, 1)
	if err != nil {
		log.Fatalf("failed to open output: %v", err)
	}

	phases := []struct {
		name string
		run  func() error
	}{
		{"ride", func() error { return linkbuild.BuildRide(nodes, cfg, w) }},
		{"wait", func() error { return linkbuild.BuildWait(nodes, w) }},
		{"transfer", func() error { return linkbuild.BuildTransfer(nodes, cfg, w) }},
		{"walk", func() error { return linkbuild.BuildWalk(nodes, cat, cfg, w) }},
	}
	for _, phase := range phases {
		phaseStart := time.Now()
		before := w.NextID()
		if err := phase.run(); err != nil {
			w.Close()
			log.Fatalf("failed while building %s links: %v", phase.name, err)
		}
		log.Printf("  %s links: %d (%s)", phase.name, w.NextID()-before, time.Since(phaseStart))
		if progress != nil {
			progress.AddLinks(w.NextID() - before)
		}
	}

	if err := w.Close(); err != nil {
		log.Fatalf("failed to close output: %v", err)
	}

	if cfg.PostgresDSN != "" {
		log.Println("Step 3/3: Mirroring links into Postgres...")
		links, rerr := linkbuild.ReadAll(outputPath)
		if rerr != nil {
			log.Printf("could not reread links for postgres mirror: %v", rerr)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			sink, err := pgsink.Open(ctx, cfg.PostgresDSN)
			if err != nil {
				log.Printf("postgres sink unavailable, continuing without it: %v", err)
			} else {
				defer sink.Close()
				if err := sink.WriteLinks(ctx, links); err != nil {
					log.Printf("postgres sink write failed: %v", err)
				}
			}
		}
	} else {
		log.Println("Step 3/3: Skipping Postgres mirror (no --postgres-dsn set)")
	}

	total := int64(0)
	for _, c := range w.Counts() {
		total += c
	}
	info, statErr := os.Stat(outputPath)
	sizeMB := 0.0
	if statErr == nil {
		sizeMB = float64(info.Size()) / 1024 / 1024
	}
	log.Printf("Wrote %d links to %s (%.1f MB) in %s: %s", total, outputPath, sizeMB, time.Since(start), formatCounts(w.Counts()))
}

func formatCounts(counts map[model.Mode]int64) string {
	return fmt.Sprintf("bus=%d wait=%d transfer=%d walk=%d",
		counts[model.ModeBus], counts[model.ModeWait], counts[model.ModeTransfer], counts[model.ModeWalk])
}
