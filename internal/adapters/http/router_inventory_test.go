package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/config"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestScanCollectsImagesFromAllFields(t *testing.T) {
	var got domain.ScanRequest
	handler := NewRouter(config.Config{}, &scannerFake{got: &got}, &expiryFake{}, exporterFake{}).Handler()

	body := `{"mode":"shelf","imageBase64":"AAAA","imagesBase64":["BBBB",""],"imageMimeType":"image/png","imageUrl":"https://cdn.example.com/a.jpg","imageUrls":["https://cdn.example.com/b.jpg"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/inventory/scan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if got.Mode != "shelf" {
		t.Fatalf("mode is passed through for the use case to coerce, got %q", got.Mode)
	}
	if len(got.Images) != 4 {
		t.Fatalf("expected 4 images, got %d: %+v", len(got.Images), got.Images)
	}
	if got.Images[1].Base64 != "BBBB" || got.Images[1].MimeType != "image/png" {
		t.Fatalf("unexpected second image: %+v", got.Images[1])
	}
	if got.Images[3].URL != "https://cdn.example.com/b.jpg" {
		t.Fatalf("unexpected url image: %+v", got.Images[3])
	}
}

func TestScanReturnsBatch(t *testing.T) {
	ref := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	batch := &domain.BatchResult{
		PurchaseDate: domain.NewCalendarDate(ref),
		Items: []domain.InventoryItem{{
			Name:            "Whole Milk",
			Quantity:        1,
			Unit:            domain.UnitLiter,
			StorageLocation: domain.LocationFridge,
			ShelfLifeDays:   7,
			ReferenceDate:   domain.NewCalendarDate(ref),
			ReferenceType:   domain.ReferencePurchase,
			PredictedExpiry: domain.NewCalendarDate(ref.AddDate(0, 0, 7)),
			Source:          domain.SourceRule,
		}},
	}
	handler := NewRouter(config.Config{}, &scannerFake{batch: batch}, &expiryFake{}, exporterFake{}).Handler()

	req := httptest.NewRequest(http.MethodPost, "/v1/inventory/scan", strings.NewReader(`{"mode":"text","text":"1L whole milk"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["purchaseDate"] != "2024-03-10" {
		t.Fatalf("unexpected purchaseDate: %v", resp["purchaseDate"])
	}
	items := resp["items"].([]any)
	item := items[0].(map[string]any)
	if item["predictedExpiry"] != "2024-03-17" || item["source"] != "rule" {
		t.Fatalf("unexpected item: %v", item)
	}
}

func TestExpiryReportsModelSourceAsAI(t *testing.T) {
	ref := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	var got domain.ExpiryRequest
	expiry := &expiryFake{got: &got, est: &domain.ExpiryEstimate{
		PredictedExpiry: ref.AddDate(0, 0, 21),
		Days:            21,
		ReferenceDate:   ref,
		ReferenceType:   domain.ReferenceOpen,
		Source:          domain.SourceModel,
	}}
	handler := NewRouter(config.Config{}, &scannerFake{}, expiry, exporterFake{}).Handler()

	body := `{"name":"Parmesan","location":"fridge","purchasedDate":"2024-03-01","openedDate":"2024-03-10"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/inventory/expiry", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got.OpenDate != "2024-03-10" {
		t.Fatalf("openedDate should feed OpenDate, got %q", got.OpenDate)
	}
	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["source"] != "ai" {
		t.Fatalf("expected source ai, got %v", resp["source"])
	}
	if resp["predictedExpiry"] != "2024-03-31T00:00:00Z" || resp["referenceType"] != "open" || resp["days"] != float64(21) {
		t.Fatalf("unexpected response: %v", resp)
	}
	refDate, _ := resp["referenceDate"].(string)
	if _, err := time.Parse(time.RFC3339, refDate); err != nil {
		t.Fatalf("referenceDate should be RFC 3339, got %q", refDate)
	}
}

func TestScanExportReturnsWorkbook(t *testing.T) {
	handler := newTestHandler(config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/inventory/scan/export", strings.NewReader(`{"mode":"text","text":"eggs"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := res.Header().Get("Content-Disposition"); !strings.Contains(cd, "inventory-2024-03-10.xlsx") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
}

func TestOpenAPIDocumentIsServed(t *testing.T) {
	handler := newTestHandler(config.Config{})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "/v1/inventory/expiry") {
		t.Fatalf("expected document body")
	}
}
