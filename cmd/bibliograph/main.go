// cmd/bibliograph is the batch entry point. It reads one pre-cleaned
// input bundle, rebuilds the bibliographic entity graph from it, runs
// the inference passes, and writes the terminal snapshot.
//
// Run sequence:
//  1. Load configuration (YAML file plus BIBLIOGRAPH_* overrides).
//  2. Open the snapshot store and load the previous graph, if any.
//  3. Resume the ID allocator above every identifier already issued.
//  4. Build the graph from the input records and run inference.
//  5. Report collected data-quality warnings.
//  6. Save the snapshot.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"bibliograph/internal/config"
	"bibliograph/internal/engine"
	"bibliograph/internal/graph"
	"bibliograph/internal/ident"
	"bibliograph/internal/refs"
	"bibliograph/internal/storage"
	"bibliograph/internal/storage/postgres"
	"bibliograph/internal/storage/sqlite"
	"bibliograph/internal/warn"
	"bibliograph/pkg/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file (optional)")
		inputPath  = flag.String("input", "", "path to JSON batch input bundle (required)")
		dryRun     = flag.Bool("dry-run", false, "build and report without saving the snapshot")
	)
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	if *inputPath == "" {
		log.Fatal("-input is required")
	}

	cfg, err := config.LoadConfigFromFile(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	configureLogger(log, cfg.Log)

	input, err := readInput(*inputPath)
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}
	if input.DefaultSheet == "" {
		input.DefaultSheet = cfg.Prefixes.DefaultSheet
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open snapshot store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("signal received, cancelling")
		cancel()
	}()

	g, prev, err := store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		g = graph.New()
		log.Info("no previous snapshot, starting from an empty graph")
	case err != nil:
		log.Fatalf("failed to load snapshot: %v", err)
	default:
		log.WithFields(logrus.Fields{
			"run_id":    prev.RunID,
			"entities":  prev.EntityCount,
			"relations": prev.RelationCount,
		}).Info("resuming from previous snapshot")
	}

	alloc := ident.New()
	if err := alloc.Resume(g); err != nil {
		// A malformed ID means the counters cannot be trusted; refusing to
		// run beats silently reissuing identifiers.
		log.Fatalf("failed to resume ID allocation: %v", err)
	}

	warns := warn.NewCollector(log)
	resolver := refs.NewResolver(cfg.Prefixes.Recognized, cfg.Prefixes.Namespace, cfg.Prefixes.OtherNS, warns)
	builder := engine.NewBuilder(g, alloc, resolver, warns, log)
	builder.SetClosureLimit(cfg.Inference.ClosureLimit)

	result, err := builder.Build(*input)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	warns.Report()

	if *dryRun {
		log.Info("dry run, snapshot not saved")
		return
	}

	info := storage.RunInfo{
		RunID:         result.RunID,
		CreatedAt:     time.Now().UTC(),
		EntityCount:   result.Graph.EntityCount(),
		RelationCount: result.Graph.RelationCount(),
		WarningCount:  warns.Count(),
	}
	if err := store.Save(ctx, result.Graph, info); err != nil {
		log.Fatalf("failed to save snapshot: %v", err)
	}
	log.WithFields(logrus.Fields{
		"run_id":    info.RunID,
		"entities":  info.EntityCount,
		"relations": info.RelationCount,
	}).Info("snapshot saved")
}

func configureLogger(log *logrus.Logger, cfg config.LogConfig) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
}

func readInput(path string) (*types.BatchInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var input types.BatchInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

func openStore(cfg config.StorageConfig) (storage.SnapshotStore, error) {
	if cfg.Engine == "postgres" {
		return postgres.NewSnapshotStore(cfg.DSN)
	}
	return sqlite.NewSnapshotStore(cfg.DSN)
}
