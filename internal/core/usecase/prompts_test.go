package usecase

import (
	"strings"
	"testing"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

func TestExtractionPromptCountsFromPurchaseDate(t *testing.T) {
	for _, mode := range []domain.ScanMode{domain.ModeReceipt, domain.ModeFridge, domain.ModeText} {
		prompt := buildExtractionPrompt(domain.ScanRequest{Mode: mode, Text: "2 milk"})
		if !strings.Contains(prompt, "from the purchase date") {
			t.Fatalf("%s prompt should count shelf life from the purchase date:\n%s", mode, prompt)
		}
		if strings.Contains(prompt, "from today") {
			t.Fatalf("%s prompt still counts from today", mode)
		}
		if !strings.Contains(prompt, `"bestBeforeDate"`) {
			t.Fatalf("%s prompt should request bestBeforeDate", mode)
		}
	}
}
