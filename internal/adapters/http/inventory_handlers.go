package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type scanRequest struct {
	Mode          string   `json:"mode"`
	ImageBase64   string   `json:"imageBase64"`
	ImagesBase64  []string `json:"imagesBase64"`
	ImageMimeType string   `json:"imageMimeType"`
	ImageURL      string   `json:"imageUrl"`
	ImageURLs     []string `json:"imageUrls"`
	Text          string   `json:"text"`
	PDFBase64     string   `json:"pdfBase64"`
}

func (req scanRequest) toDomain() domain.ScanRequest {
	out := domain.ScanRequest{
		Mode:      domain.ScanMode(strings.TrimSpace(req.Mode)),
		Text:      req.Text,
		PDFBase64: req.PDFBase64,
	}
	for _, b64 := range append([]string{req.ImageBase64}, req.ImagesBase64...) {
		if strings.TrimSpace(b64) != "" {
			out.Images = append(out.Images, domain.ImageInput{Base64: b64, MimeType: req.ImageMimeType})
		}
	}
	for _, url := range append([]string{req.ImageURL}, req.ImageURLs...) {
		if strings.TrimSpace(url) != "" {
			out.Images = append(out.Images, domain.ImageInput{URL: url})
		}
	}
	return out
}

type expiryRequest struct {
	Name           string `json:"name"`
	GenericName    string `json:"genericName"`
	Location       string `json:"location"`
	PurchasedDate  string `json:"purchasedDate"`
	OpenDate       string `json:"openDate"`
	OpenedDate     string `json:"openedDate"`
	BestBeforeDate string `json:"bestBeforeDate"`
}

type expiryResponse struct {
	PredictedExpiry time.Time            `json:"predictedExpiry"`
	Days            int                  `json:"days"`
	ReferenceDate   time.Time            `json:"referenceDate"`
	ReferenceType   domain.ReferenceType `json:"referenceType"`
	Source          string               `json:"source"`
}

func newExpiryResponse(est *domain.ExpiryEstimate) expiryResponse {
	return expiryResponse{
		PredictedExpiry: domain.NewCalendarDate(est.PredictedExpiry).Time,
		Days:            est.Days,
		ReferenceDate:   domain.NewCalendarDate(est.ReferenceDate).Time,
		ReferenceType:   est.ReferenceType,
		Source:          est.Source.Label(),
	}
}

func (rt *Router) scanInventory(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	batch, err := rt.scanner.Scan(r.Context(), req.toDomain())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (rt *Router) exportInventoryScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	batch, err := rt.scanner.Scan(r.Context(), req.toDomain())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeWorkbook(w, r, *batch, "inventory")
}

func (rt *Router) predictExpiry(w http.ResponseWriter, r *http.Request) {
	var req expiryRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	openDate := req.OpenDate
	if strings.TrimSpace(openDate) == "" {
		openDate = req.OpenedDate
	}
	est, err := rt.expiry.Predict(r.Context(), domain.ExpiryRequest{
		Name:           req.Name,
		GenericName:    req.GenericName,
		Location:       req.Location,
		PurchasedDate:  req.PurchasedDate,
		OpenDate:       openDate,
		BestBeforeDate: req.BestBeforeDate,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExpiryResponse(est))
}

func (rt *Router) writeWorkbook(w http.ResponseWriter, r *http.Request, batch domain.BatchResult, prefix string) {
	if rt.exporter == nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrFeatureDisabled, "export inventory", errors.New("xlsx export is not configured")))
		return
	}
	data, err := rt.exporter.ExportXLSX(r.Context(), batch)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	day := batch.PurchaseDate.Time
	if day.IsZero() {
		day = time.Now().UTC()
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.xlsx"`, prefix, day.Format(domain.DateLayout)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.WrapError(domain.ErrInvalidInput, "decode request", fmt.Errorf("body exceeds %d bytes", tooLarge.Limit))
		}
		return domain.WrapError(domain.ErrInvalidInput, "decode request", fmt.Errorf("invalid json: %w", err))
	}
	return nil
}
