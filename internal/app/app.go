// Package app assembles the long-lived dependencies shared by the server and
// the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanshika/astronum/backend/internal/config"
	"github.com/vanshika/astronum/backend/internal/graph"
	"github.com/vanshika/astronum/backend/internal/insight"
	"github.com/vanshika/astronum/backend/internal/repository"
	"github.com/vanshika/astronum/backend/internal/service"
)

// Graph bundles the people-graph client with its repository. Both are nil
// when no graph is configured.
type Graph struct {
	Client graph.Client
	Repo   *repository.Repository
}

// Enabled reports whether a graph connection is open.
func (g Graph) Enabled() bool {
	return g.Client != nil
}

// Repository returns the repository as the service contract, or a nil
// interface when the graph is disabled.
func (g Graph) Repository() service.GraphRepository {
	if g.Repo == nil {
		return nil
	}
	return g.Repo
}

// Close releases the driver, if any.
func (g Graph) Close(ctx context.Context) error {
	if g.Client == nil {
		return nil
	}
	return g.Client.Close(ctx)
}

// OpenGraph connects to Neo4j and ensures the schema exists. An empty URI
// yields a disabled Graph and no error.
func OpenGraph(ctx context.Context, logger *slog.Logger, cfg config.GraphConfig) (Graph, error) {
	if !cfg.Enabled() {
		logger.Info("graph disabled; people endpoints will return 503")
		return Graph{}, nil
	}
	client, err := graph.NewNeo4jClient(ctx, graph.OptionsFromConfig(cfg))
	if err != nil {
		return Graph{}, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return Graph{}, fmt.Errorf("verify graph connectivity: %w", err)
	}
	repo := repository.New(client)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return Graph{}, err
	}
	logger.Info("connected to graph", "uri", cfg.URI, "database", cfg.Database)
	return Graph{Client: client, Repo: repo}, nil
}

// NewInsights returns the template generator, fronted by Gemini when an API
// key is configured. A Gemini setup failure is logged and templates are used
// alone.
func NewInsights(ctx context.Context, logger *slog.Logger, cfg config.AIConfig) (insight.Generator, error) {
	catalog, err := insight.LoadCatalog()
	if err != nil {
		return nil, err
	}
	templates := insight.NewTemplateGenerator(catalog)
	if cfg.APIKey == "" {
		return templates, nil
	}

	gen, err := insight.NewGenAIGenerator(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
	if err != nil {
		logger.Warn("genai unavailable; using templates", "error", err)
		return templates, nil
	}
	logger.Info("genai insights enabled", "model", cfg.Model)
	return insight.NewFallbackGenerator(gen, templates, logger), nil
}
