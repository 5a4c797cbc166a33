package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-jobsearch-pipeline/internal/httpclient"
)

const (
	embeddingsURL  = "https://api.openai.com/v1/embeddings"
	embeddingModel = "text-embedding-3-large"
)

// EmbeddingScorer scores by cosine similarity between profile and job
// embeddings. The profile vector is embedded once and cached for the
// whole batch.
type EmbeddingScorer struct {
	client  *httpclient.Client
	apiKey  string
	model   string
	baseURL string

	profileText string
	profileVec  []float32
}

func NewEmbeddingScorer(client *httpclient.Client, apiKey string) *EmbeddingScorer {
	return &EmbeddingScorer{
		client:  client,
		apiKey:  apiKey,
		model:   embeddingModel,
		baseURL: embeddingsURL,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (e *EmbeddingScorer) embed(ctx context.Context, text string) ([]float32, error) {
	//newlines hurt embedding quality
	text = strings.ReplaceAll(text, "\n", " ")

	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embeddings response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned status %d: %s", resp.StatusCode, string(raw))
	}

	var er embeddingResponse
	if err := json.Unmarshal(raw, &er); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if er.Error != nil {
		return nil, fmt.Errorf("embeddings API error: %s", er.Error.Message)
	}
	if len(er.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return er.Data[0].Embedding, nil
}

func (e *EmbeddingScorer) Score(ctx context.Context, profile, jobText string) (float64, error) {
	if e.profileVec == nil || e.profileText != profile {
		vec, err := e.embed(ctx, profile)
		if err != nil {
			return 0, fmt.Errorf("embed profile: %w", err)
		}
		e.profileText = profile
		e.profileVec = vec
	}

	jobVec, err := e.embed(ctx, jobText)
	if err != nil {
		return 0, fmt.Errorf("embed job text: %w", err)
	}
	return Cosine(e.profileVec, jobVec), nil
}
