package storage

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"meetScribe/config"
)

// embedDim matches the embedding model used by both API-backed stores.
const embedDim = 1536

type embedder struct {
	cli   *openai.Client
	model string
}

func newEmbedder(cfg *config.Config) *embedder {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &embedder{
		cli:   openai.NewClientWithConfig(clientConfig),
		model: cfg.EmbeddingModel,
	}
}

func (e *embedder) embed(text string) ([]float32, error) {
	ctx := context.Background()
	resp, err := e.cli.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding API failed: %v", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return resp.Data[0].Embedding, nil
}
