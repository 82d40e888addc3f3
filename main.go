package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lekesiz/netz-rag/internal/adapters/driven/embedding/hashed"
	"github.com/lekesiz/netz-rag/internal/adapters/driven/embedding/ollama"
	"github.com/lekesiz/netz-rag/internal/adapters/driven/storage/sqlite"
	"github.com/lekesiz/netz-rag/internal/adapters/driven/vector/array"
	"github.com/lekesiz/netz-rag/internal/adapters/driven/vector/qdrant"
	"github.com/lekesiz/netz-rag/internal/adapters/driving/cli"
	"github.com/lekesiz/netz-rag/internal/config"
	"github.com/lekesiz/netz-rag/internal/core/ports/driven"
	"github.com/lekesiz/netz-rag/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("NETZ_RAG_CONFIG"))
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	defer embedder.Close()

	vectors, location, err := newVectorStore(cfg)
	if err != nil {
		return err
	}
	defer vectors.Close()

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open metadata store: %w", err)
	}
	defer store.Close()

	svc := services.NewRAGService(
		embedder,
		vectors,
		store.MetadataStore(),
		store.QueryLog(cfg.QueryLog.MaxEntries),
		location,
	)

	return cli.Execute(svc)
}

func newEmbedder(cfg config.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    cfg.Embedding.Timeout(),
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	case "hashed":
		return hashed.NewEmbeddingService(cfg.Embedding.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func newVectorStore(cfg config.Config) (driven.VectorStore, string, error) {
	switch cfg.Vector.Backend {
	case config.BackendQdrant:
		store, err := qdrant.NewStore(context.Background(), qdrant.Config{
			Host:       cfg.Vector.Host,
			Port:       cfg.Vector.Port,
			Collection: cfg.Vector.Collection,
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to qdrant: %w", err)
		}
		location := fmt.Sprintf("qdrant://%s:%d/%s", cfg.Vector.Host, cfg.Vector.Port, cfg.Vector.Collection)
		return store, location, nil
	case config.BackendArray:
		store, err := array.NewStore(cfg.DataDir, cfg.Embedding.Dimensions)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open vector index: %w", err)
		}
		return store, cfg.DataDir, nil
	default:
		return nil, "", fmt.Errorf("unknown vector backend %q", cfg.Vector.Backend)
	}
}
