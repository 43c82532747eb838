package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/ekaya-inc/joinplanner/pkg/apperrors"
	"github.com/ekaya-inc/joinplanner/pkg/config"
	"github.com/ekaya-inc/joinplanner/pkg/correction"
	"github.com/ekaya-inc/joinplanner/pkg/graph"
	"github.com/ekaya-inc/joinplanner/pkg/llm"
	"github.com/ekaya-inc/joinplanner/pkg/logging"
	"github.com/ekaya-inc/joinplanner/pkg/models"
	"github.com/ekaya-inc/joinplanner/pkg/planner"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	fixError := flag.String("fix-error", "", "raw database error to correct; the query is read from the first positional argument")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Env),
		zap.String("graph_base", cfg.Graph.BasePath),
		zap.Int("graph_overlays", len(cfg.Graph.OverlayPaths)),
		zap.String("reasoner_provider", cfg.Reasoner.Provider))

	if *fixError != "" {
		if err := runCorrection(cfg, logger, *fixError, flag.Args()); err != nil {
			logger.Fatal("Correction failed", zap.Error(err))
		}
		return
	}

	if err := runPlan(cfg, logger, flag.Args()); err != nil {
		logger.Fatal("Planning failed", zap.Error(err))
	}
}

// runPlan loads the relationship graph and expands the requested tables into
// a join plan printed as JSON. With no tables requested it only reports the
// loaded graph and exits.
func runPlan(cfg *config.Config, logger *zap.Logger, tables []string) error {
	g, err := loadGraph(cfg, logger)
	if err != nil {
		return err
	}

	exclusions, err := planner.LoadManualExclusions(cfg.Graph.ExclusionsPath)
	if err != nil {
		return fmt.Errorf("failed to load manual exclusions: %w", err)
	}

	pathFinder := graph.NewPathFinder(g, logger)
	p := planner.NewPlanner(g, pathFinder, exclusions, cfg.Planner.MaxHops, logger)

	logger.Info("Graph loaded",
		zap.Int("tables", len(g.Tables())),
		zap.Int("relationships", len(g.Relationships())),
		zap.Int("max_hops", cfg.Planner.MaxHops))

	if len(tables) == 0 {
		logger.Info("No tables requested, nothing to plan")
		return nil
	}

	result, err := p.Plan(tables)
	if err != nil {
		return err
	}
	if len(tables) > 1 && len(result.Relationships) == 0 {
		return fmt.Errorf("%w: pairs %v", apperrors.ErrNoPath, result.UnconnectedPairs)
	}
	return printJSON(result)
}

// runCorrection feeds one failed query through the correction pipeline and
// prints the outcome as JSON.
func runCorrection(cfg *config.Config, logger *zap.Logger, rawError string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one query argument, got %d", len(args))
	}

	reasoner, err := llm.NewReasoner(&llm.Config{
		Provider: cfg.Reasoner.Provider,
		Endpoint: cfg.Reasoner.Endpoint,
		Model:    cfg.Reasoner.Model,
		APIKey:   cfg.Reasoner.APIKey,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to build reasoner: %w", err)
	}

	pipeline := correction.NewPipeline(reasoner, correction.NewMetrics(), correction.Options{
		MaxAttempts:       cfg.Correction.MaxAttempts,
		EscalationTimeout: cfg.Correction.EscalationTimeout(),
	}, logger)

	outcome, err := pipeline.Correct(context.Background(), args[0], rawError)
	if err != nil {
		// The outcome still carries the failure reason; print it before
		// surfacing the error.
		printJSON(outcome)
		return err
	}
	return printJSON(outcome)
}

// loadGraph reads the base graph document and any overlays, merges them, and
// builds the in-memory graph.
func loadGraph(cfg *config.Config, logger *zap.Logger) (*graph.Graph, error) {
	base, err := readGraphDocument(cfg.Graph.BasePath)
	if err != nil {
		return nil, err
	}

	overlays := make([]*models.GraphDocument, 0, len(cfg.Graph.OverlayPaths))
	for _, path := range cfg.Graph.OverlayPaths {
		doc, err := readGraphDocument(path)
		if err != nil {
			return nil, err
		}
		overlays = append(overlays, doc)
	}

	return graph.Load(graph.Merge(base, overlays...), logger)
}

func readGraphDocument(path string) (*models.GraphDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph document %s: %w", path, err)
	}
	doc, err := models.ParseGraphDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse graph document %s: %w", path, err)
	}
	return doc, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
