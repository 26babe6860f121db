package usecase

import (
	"fmt"
	"strings"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/recovery"
)

const extractionSystemPrompt = "You are a careful food inventory assistant. Answer with a single JSON object and nothing else."

const itemShape = `{"name": string, "genericName": string, "quantity": number, "unit": "pcs|kg|g|L|ml|pack|box|cup|bottle|can|tray|jar|bunch", "storageLocation": "fridge|freezer|pantry", "shelfLifeDays": integer, "bestBeforeDate": "YYYY-MM-DD" or null, "category": string, "confidence": number between 0 and 1}`

const extractionRules = `Rules:
- Only food and drink. Skip bags, deposits and returns, cleaning and paper products, discounts, totals and payment lines.
- Expand abbreviated receipt names into plain product names; genericName is the plain food in English (e.g. "chicken breast").
- shelfLifeDays counts days of safe home storage from the purchase date for the product in its usual storage place. Prefer shorter estimates when unsure.
- bestBeforeDate is a best-before or use-by date printed on the receipt or package; use null when none is visible.
- confidence reflects how sure you are that the row is a real food item read correctly.`

func buildExtractionPrompt(req domain.ScanRequest) string {
	var b strings.Builder
	switch req.Mode {
	case domain.ModeReceipt:
		b.WriteString("Read the grocery receipt and list every purchased food item.\n")
		b.WriteString(`Return {"purchaseDate": "YYYY-MM-DD" or null, "items": [ITEM, ...]} where ITEM is ` + itemShape + ".\n")
	case domain.ModeFridge:
		b.WriteString("Look at the photos of a fridge, freezer or pantry shelf and list each distinct visible food item once.\n")
		b.WriteString(`Return {"purchaseDate": null, "items": [ITEM, ...]} where ITEM is ` + itemShape + ".\n")
		b.WriteString("Set storageLocation from what the photo shows; estimate quantity from visible packages.\n")
	case domain.ModeText:
		b.WriteString("Parse the ingredient text below into food items. One line may hold several items.\n")
		b.WriteString(`Return {"purchaseDate": null, "items": [ITEM, ...]} where ITEM is ` + itemShape + ".\n")
	}
	b.WriteString(extractionRules)
	if text := strings.TrimSpace(req.Text); text != "" {
		if req.Mode == domain.ModeReceipt {
			b.WriteString("\n\nReceipt text:\n")
		} else {
			b.WriteString("\n\nText:\n")
		}
		b.WriteString(text)
	}
	return b.String()
}

func buildExtractionRequest(req domain.ScanRequest) domain.ModelRequest {
	return domain.ModelRequest{
		Operation: "scan.extract",
		System:    extractionSystemPrompt,
		Prompt:    buildExtractionPrompt(req),
		Images:    req.Images,
		JSON:      true,
	}
}

func buildExpiryRequest(name, genericName string, location domain.StorageLocation, refType domain.ReferenceType) domain.ModelRequest {
	food := name
	if genericName != "" && !strings.EqualFold(genericName, name) {
		food = fmt.Sprintf("%s (%s)", name, genericName)
	}
	since := "the day it was bought, still sealed"
	if refType == domain.ReferenceOpen {
		since = "the day it was opened"
	}

	prompt := fmt.Sprintf(`Estimate how many days this food stays safe to eat with home storage.
Food: %s
Storage: %s
Count from: %s
Prefer the shorter estimate when unsure.
Return {"shelfLifeDays": integer, "reason": short string}.`, food, location, since)

	return domain.ModelRequest{
		Operation: "expiry.estimate",
		System:    extractionSystemPrompt,
		Prompt:    prompt,
		JSON:      true,
	}
}

func buildRepairRequest(operation, text string, schema *recovery.Schema) domain.ModelRequest {
	schemaDoc := "{}"
	if schema != nil {
		schemaDoc = schema.Document
	}
	prompt := fmt.Sprintf(`Convert the text below into valid JSON that matches this JSON schema.
Output only the JSON object. Do not add commentary or code fences. Keep the original values.

Schema:
%s

Text:
%s`, schemaDoc, recovery.Sample(text, maxRepairInputRunes))

	return domain.ModelRequest{
		Operation: operation,
		System:    "You convert text into strict JSON.",
		Prompt:    prompt,
		JSON:      true,
	}
}
