package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/MagicMike0112/Project-Study-BSH/internal/infrastructure/llm/imageload"
)

func TestBuildPartsPutsPromptFirst(t *testing.T) {
	parts := buildParts("list the food", []imageload.Image{{MimeType: "image/png", Data: []byte("png")}})
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if txt, ok := parts[0].(genai.Text); !ok || string(txt) != "list the food" {
		t.Fatalf("expected prompt text first, got %#v", parts[0])
	}
	if blob, ok := parts[1].(genai.Blob); !ok || blob.MIMEType != "image/png" {
		t.Fatalf("expected png blob, got %#v", parts[1])
	}
}

func TestResponseTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"items":`), genai.Text(`[]}`)}},
	}}}
	out, err := responseText(resp)
	if err != nil || out != `{"items":[]}` {
		t.Fatalf("unexpected output %q %v", out, err)
	}
	if _, err := responseText(&genai.GenerateContentResponse{}); err == nil {
		t.Fatalf("expected error for empty response")
	}
}

func TestClassifyGoogleAPIErrors(t *testing.T) {
	unavailable := fmt.Errorf("gemini generate: %w", &googleapi.Error{Code: http.StatusServiceUnavailable})
	if !classify(unavailable).Retryable {
		t.Fatalf("expected 503 to be retryable")
	}
	if classify(&googleapi.Error{Code: http.StatusBadRequest}).Retryable {
		t.Fatalf("expected 400 not to be retryable")
	}
	if classify(context.Canceled).RecordFailure {
		t.Fatalf("cancellation must not count as a failure")
	}
	if !classify(errors.New("boom")).RecordFailure {
		t.Fatalf("unknown errors count as failures")
	}
}
