// Package gemini adapts the Google Gemini SDK to the generative model port.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/llm/imageload"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/resilience"
)

const defaultModel = "gemini-1.5-flash"

type Client struct {
	client   *genai.Client
	model    string
	images   *imageload.Loader
	executor *resilience.Executor
}

func New(ctx context.Context, apiKey, model string, images *imageload.Loader, executor *resilience.Executor) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	if images == nil {
		images = imageload.New(nil, 0)
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.Config{BreakerEnabled: false})
	}
	return &Client{client: client, model: model, images: images, executor: executor}, nil
}

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) Generate(ctx context.Context, req domain.ModelRequest) (string, error) {
	images, err := c.images.LoadAll(ctx, req.Images)
	if err != nil {
		return "", err
	}
	parts := buildParts(req.Prompt, images)

	// GenerativeModel carries per-request settings, so each call gets its own.
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}

	out, err := resilience.ExecuteValue(ctx, c.executor, "gemini.generate", func(callCtx context.Context) (string, error) {
		resp, err := model.GenerateContent(callCtx, parts...)
		if err != nil {
			return "", fmt.Errorf("gemini generate: %w", err)
		}
		return responseText(resp)
	}, classify)
	if err != nil {
		return "", resilience.WrapTemporary("gemini generate", err)
	}
	return out, nil
}

func buildParts(prompt string, images []imageload.Image) []genai.Part {
	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(prompt))
	for _, img := range images {
		parts = append(parts, genai.Blob{MIMEType: img.MimeType, Data: img.Data})
	}
	return parts
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini generate: empty response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("gemini generate: response has no text")
	}
	return strings.TrimSpace(b.String()), nil
}

// classify maps googleapi status codes onto the shared HTTP classification.
func classify(err error) resilience.ErrorClassification {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return resilience.ClassifyHTTPError(&resilience.StatusError{
			Upstream:   "gemini",
			Operation:  "generate",
			StatusCode: apiErr.Code,
			Status:     apiErr.Message,
		})
	}
	return resilience.ClassifyHTTPError(err)
}
