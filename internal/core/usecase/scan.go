package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/ports"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/recovery"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/shelflife"
)

const (
	defaultMaxScanImages = 4
	defaultMaxImageBytes = 8 << 20
	defaultMaxTextRunes  = 6000
)

type ScanConfig struct {
	MaxImages     int
	MaxImageBytes int
	MaxTextRunes  int
	ModelTimeout  time.Duration
	RepairTimeout time.Duration
}

func (c ScanConfig) normalize() ScanConfig {
	if c.MaxImages <= 0 {
		c.MaxImages = defaultMaxScanImages
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = defaultMaxImageBytes
	}
	if c.MaxTextRunes <= 0 {
		c.MaxTextRunes = defaultMaxTextRunes
	}
	if c.ModelTimeout <= 0 {
		c.ModelTimeout = defaultModelTimeout
	}
	if c.RepairTimeout <= 0 {
		c.RepairTimeout = defaultRepairTimeout
	}
	return c
}

type ScanInventoryUseCase struct {
	model     ports.GenerativeModel
	engine    *shelflife.Engine
	pipeline  *recovery.Pipeline
	documents ports.DocumentTextExtractor
	observer  ports.PipelineObserver
	logger    *slog.Logger
	cfg       ScanConfig
	now       func() time.Time
}

func NewScanInventoryUseCase(
	model ports.GenerativeModel,
	engine *shelflife.Engine,
	documents ports.DocumentTextExtractor,
	observer ports.PipelineObserver,
	logger *slog.Logger,
	cfg ScanConfig,
) *ScanInventoryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanInventoryUseCase{
		model:     model,
		engine:    engine,
		pipeline:  recovery.NewPipeline(recovery.BatchSchema, recovery.DefaultSampleLimit),
		documents: documents,
		observer:  observerOrNoop(observer),
		logger:    logger,
		cfg:       cfg.normalize(),
		now:       time.Now,
	}
}

func (uc *ScanInventoryUseCase) Scan(ctx context.Context, req domain.ScanRequest) (*domain.BatchResult, error) {
	started := time.Now()
	req, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("scan.extract.start", "mode", req.Mode, "images", len(req.Images), "text_runes", len([]rune(req.Text)))
	raw, err := generate(ctx, uc.model, uc.cfg.ModelTimeout, buildExtractionRequest(req))
	if err != nil {
		uc.logger.Error("scan.extract.failed", "mode", req.Mode, "error", err, "elapsed_ms", time.Since(started).Milliseconds())
		return nil, err
	}

	res, err := uc.pipeline.Recover(ctx, raw, newRepairer(uc.model, uc.cfg.RepairTimeout, "scan.repair", uc.observer))
	if err != nil {
		uc.logRecoveryFailure("scan", err, raw)
		return nil, err
	}
	uc.observer.RecoveryFinished("scan", string(res.Stage), true)

	today := domain.NewCalendarDate(uc.now()).Time
	decoded := recovery.DecodeBatch(res.Object, today)
	purchaseDate := today
	if decoded.PurchaseDate != nil && !decoded.PurchaseDate.After(today) {
		purchaseDate = *decoded.PurchaseDate
	}

	batch, stats := uc.engine.Build(purchaseDate, decoded.Candidates)
	for reason, n := range stats.Dropped {
		uc.observer.ItemsDropped(string(reason), n)
	}
	for source, n := range stats.Sources {
		uc.observer.ItemsEmitted(source, n)
	}

	uc.logger.Info(
		"scan.extract.done",
		"mode", req.Mode,
		"recovery_stage", res.Stage,
		"candidates", stats.Candidates,
		"items", len(batch.Items),
		"merged", stats.Merged,
		"truncated", stats.Truncated,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return &batch, nil
}

func (uc *ScanInventoryUseCase) logRecoveryFailure(operation string, err error, raw string) {
	if outErr, ok := domain.AsModelOutputError(err); ok {
		uc.observer.RecoveryFinished(operation, outErr.Stage, false)
		uc.logger.Error("recovery.failed", "operation", operation, "stage", outErr.Stage, "sample", outErr.Sample, "error", outErr.Err)
		return
	}
	uc.observer.RecoveryFinished(operation, string(recovery.StageRepair), false)
	uc.logger.Error("recovery.repair.unavailable", "operation", operation, "error", err, "sample", recovery.Sample(raw, recovery.DefaultSampleLimit))
}

// prepare validates the request and turns a receipt PDF into prompt text.
func (uc *ScanInventoryUseCase) prepare(ctx context.Context, req domain.ScanRequest) (domain.ScanRequest, error) {
	req, err := ValidateScanRequest(req, uc.cfg)
	if err != nil {
		return req, err
	}
	if req.PDFBase64 == "" {
		return req, nil
	}
	if uc.documents == nil {
		return req, domain.WrapError(domain.ErrFeatureDisabled, "scan receipt pdf", errors.New("pdf extraction is not configured"))
	}
	data, err := base64.StdEncoding.DecodeString(stripDataURL(req.PDFBase64))
	if err != nil {
		return req, domain.WrapError(domain.ErrInvalidInput, "scan receipt pdf", fmt.Errorf("decode pdfBase64: %w", err))
	}
	text, err := uc.documents.ExtractText(ctx, data)
	if err != nil {
		return req, domain.WrapError(domain.ErrInvalidInput, "scan receipt pdf", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return req, domain.WrapError(domain.ErrInvalidInput, "scan receipt pdf", errors.New("pdf contains no text"))
	}
	req.Text = truncateRunes(text, uc.cfg.MaxTextRunes)
	req.PDFBase64 = ""
	return req, nil
}

// ValidateScanRequest normalizes the mode, strips data-URL prefixes and
// enforces the input bounds.
func ValidateScanRequest(req domain.ScanRequest, cfg ScanConfig) (domain.ScanRequest, error) {
	cfg = cfg.normalize()
	mode, ok := recovery.CoerceEnum(string(req.Mode),
		[]string{string(domain.ModeReceipt), string(domain.ModeFridge), string(domain.ModeText)},
		map[string]string{"shelf": string(domain.ModeFridge), "freezer": string(domain.ModeFridge), "pantry": string(domain.ModeFridge), "ingredient": string(domain.ModeText)},
	)
	if !ok {
		return req, domain.WrapError(domain.ErrInvalidInput, "validate scan", fmt.Errorf("mode must be receipt, fridge or text, got %q", req.Mode))
	}
	req.Mode = domain.ScanMode(mode)

	images := make([]domain.ImageInput, 0, len(req.Images))
	for _, img := range req.Images {
		img.URL = strings.TrimSpace(img.URL)
		if img.Base64 != "" {
			img.MimeType, img.Base64 = splitDataURL(img.Base64, img.MimeType)
			if len(img.Base64)/4*3 > cfg.MaxImageBytes {
				return req, domain.WrapError(domain.ErrInvalidInput, "validate scan", fmt.Errorf("image exceeds %d bytes", cfg.MaxImageBytes))
			}
		}
		if img.Base64 == "" && img.URL == "" {
			continue
		}
		if img.URL != "" && !strings.HasPrefix(img.URL, "http://") && !strings.HasPrefix(img.URL, "https://") {
			return req, domain.WrapError(domain.ErrInvalidInput, "validate scan", fmt.Errorf("imageUrl must be http(s)"))
		}
		images = append(images, img)
	}
	if len(images) > cfg.MaxImages {
		return req, domain.WrapError(domain.ErrInvalidInput, "validate scan", fmt.Errorf("at most %d images are accepted, got %d", cfg.MaxImages, len(images)))
	}
	req.Images = images

	req.Text = strings.TrimSpace(req.Text)
	if n := len([]rune(req.Text)); n > cfg.MaxTextRunes {
		return req, domain.WrapError(domain.ErrInvalidInput, "validate scan", fmt.Errorf("text exceeds %d characters", cfg.MaxTextRunes))
	}
	req.PDFBase64 = strings.TrimSpace(req.PDFBase64)

	switch req.Mode {
	case domain.ModeText:
		if req.Text == "" {
			return req, domain.WrapError(domain.ErrInvalidInput, "validate scan", errors.New("text mode requires text"))
		}
	case domain.ModeReceipt:
		if len(req.Images) == 0 && req.PDFBase64 == "" && req.Text == "" {
			return req, domain.WrapError(domain.ErrInvalidInput, "validate scan", errors.New("receipt mode requires an image, pdfBase64 or text"))
		}
	default:
		if len(req.Images) == 0 {
			return req, domain.WrapError(domain.ErrInvalidInput, "validate scan", errors.New("fridge mode requires at least one image"))
		}
		if req.PDFBase64 != "" {
			return req, domain.WrapError(domain.ErrInvalidInput, "validate scan", errors.New("pdfBase64 is only accepted in receipt mode"))
		}
	}
	return req, nil
}

// splitDataURL strips a "data:image/png;base64," prefix and returns the
// mime type it declared.
func splitDataURL(value, mimeType string) (string, string) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "data:") {
		if comma := strings.IndexByte(value, ','); comma > 0 {
			header := value[len("data:"):comma]
			if semi := strings.IndexByte(header, ';'); semi > 0 {
				header = header[:semi]
			}
			if header != "" {
				mimeType = header
			}
			value = value[comma+1:]
		}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return mimeType, value
}

func stripDataURL(value string) string {
	_, data := splitDataURL(value, "application/pdf")
	return data
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
