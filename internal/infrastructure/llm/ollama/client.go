package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/llm/imageload"
	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/resilience"
)

// Client calls /api/generate on an Ollama server with a vision-capable model.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	images     *imageload.Loader
	executor   *resilience.Executor
}

func New(baseURL, model string, images *imageload.Loader, executor *resilience.Executor) *Client {
	if images == nil {
		images = imageload.New(nil, 0)
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.Config{BreakerEnabled: false})
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		images:     images,
		executor:   executor,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Images  []string       `json:"images,omitempty"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (c *Client) Generate(ctx context.Context, req domain.ModelRequest) (string, error) {
	images, err := c.images.LoadAll(ctx, req.Images)
	if err != nil {
		return "", err
	}
	body := generateRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		System:  req.System,
		Stream:  false,
		Options: map[string]any{"temperature": 0},
	}
	for _, img := range images {
		body.Images = append(body.Images, img.Base64())
	}
	if req.JSON {
		body.Format = "json"
	}

	out, err := resilience.ExecuteValue(ctx, c.executor, "ollama.generate", func(callCtx context.Context) (string, error) {
		var resp generateResponse
		if err := c.postJSON(callCtx, "/api/generate", body, &resp, "generate"); err != nil {
			return "", err
		}
		if resp.Error != "" {
			return "", errors.New("ollama generate: " + resp.Error)
		}
		return strings.TrimSpace(resp.Response), nil
	}, resilience.ClassifyHTTPError)
	if err != nil {
		return "", resilience.WrapTemporary("ollama generate", err)
	}
	return out, nil
}
