package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/ports"
)

// storedScanRequest is the payload written to object storage for a job.
type storedScanRequest struct {
	Mode      domain.ScanMode `json:"mode"`
	Images    []storedImage   `json:"images,omitempty"`
	Text      string          `json:"text,omitempty"`
	PDFBase64 string          `json:"pdfBase64,omitempty"`
}

type storedImage struct {
	Base64   string `json:"base64,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	URL      string `json:"url,omitempty"`
}

type SubmitScanJobUseCase struct {
	repo    ports.ScanJobRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	cfg     ScanConfig
}

func NewSubmitScanJobUseCase(
	repo ports.ScanJobRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	cfg ScanConfig,
) *SubmitScanJobUseCase {
	return &SubmitScanJobUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		cfg:     cfg.normalize(),
	}
}

func (uc *SubmitScanJobUseCase) Submit(ctx context.Context, req domain.ScanRequest) (*domain.ScanJob, error) {
	req, err := ValidateScanRequest(req, uc.cfg)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("scan_%s.json", id)
	payload, err := json.Marshal(toStoredRequest(req))
	if err != nil {
		return nil, fmt.Errorf("encode scan request: %w", err)
	}
	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(payload)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	now := time.Now().UTC()
	job := &domain.ScanJob{
		ID:         id,
		Mode:       req.Mode,
		StorageKey: storageKey,
		Status:     domain.ScanJobQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create scan job: %w", err)
	}
	if err := uc.queue.PublishScanRequested(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("publish scan event: %w", err)
	}
	return job, nil
}

type GetScanJobUseCase struct {
	repo ports.ScanJobRepository
}

func NewGetScanJobUseCase(repo ports.ScanJobRepository) *GetScanJobUseCase {
	return &GetScanJobUseCase{repo: repo}
}

func (uc *GetScanJobUseCase) GetByID(ctx context.Context, id string) (*domain.ScanJob, error) {
	return uc.repo.GetByID(ctx, id)
}

type ProcessScanJobUseCase struct {
	repo    ports.ScanJobRepository
	storage ports.ObjectStorage
	scanner ports.InventoryScanner
	logger  *slog.Logger
}

func NewProcessScanJobUseCase(
	repo ports.ScanJobRepository,
	storage ports.ObjectStorage,
	scanner ports.InventoryScanner,
	logger *slog.Logger,
) *ProcessScanJobUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessScanJobUseCase{
		repo:    repo,
		storage: storage,
		scanner: scanner,
		logger:  logger,
	}
}

func (uc *ProcessScanJobUseCase) ProcessByID(ctx context.Context, jobID string) error {
	if err := uc.repo.UpdateStatus(ctx, jobID, domain.ScanJobProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	job, result, err := uc.processPipeline(ctx, jobID)
	if err != nil {
		if failErr := uc.markFailed(ctx, jobID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveResult(ctx, jobID, *result); err != nil {
		err = fmt.Errorf("save scan result: %w", err)
		if failErr := uc.markFailed(ctx, jobID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}
	if err := uc.repo.UpdateStatus(ctx, jobID, domain.ScanJobReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	if err := uc.storage.Delete(ctx, job.StorageKey); err != nil {
		uc.logger.Warn("scan_job.payload.delete_failed", "job_id", jobID, "error", err)
	}
	return nil
}

func (uc *ProcessScanJobUseCase) processPipeline(ctx context.Context, jobID string) (*domain.ScanJob, *domain.BatchResult, error) {
	job, err := uc.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch scan job by id: %w", err)
	}
	req, err := uc.loadRequest(ctx, job.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	result, err := uc.scanner.Scan(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("scan inventory: %w", err)
	}
	return job, result, nil
}

func (uc *ProcessScanJobUseCase) loadRequest(ctx context.Context, key string) (domain.ScanRequest, error) {
	rc, err := uc.storage.Open(ctx, key)
	if err != nil {
		return domain.ScanRequest{}, fmt.Errorf("open scan payload: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.ScanRequest{}, fmt.Errorf("read scan payload: %w", err)
	}
	var stored storedScanRequest
	if err := json.Unmarshal(data, &stored); err != nil {
		return domain.ScanRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode scan payload", err)
	}
	return fromStoredRequest(stored), nil
}

func (uc *ProcessScanJobUseCase) markFailed(ctx context.Context, jobID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.repo.UpdateStatus(ctx, jobID, domain.ScanJobFailed, processErr.Error())
}

func toStoredRequest(req domain.ScanRequest) storedScanRequest {
	out := storedScanRequest{Mode: req.Mode, Text: req.Text, PDFBase64: req.PDFBase64}
	for _, img := range req.Images {
		out.Images = append(out.Images, storedImage{Base64: img.Base64, MimeType: img.MimeType, URL: img.URL})
	}
	return out
}

func fromStoredRequest(stored storedScanRequest) domain.ScanRequest {
	req := domain.ScanRequest{Mode: stored.Mode, Text: stored.Text, PDFBase64: stored.PDFBase64}
	for _, img := range stored.Images {
		req.Images = append(req.Images, domain.ImageInput{Base64: img.Base64, MimeType: img.MimeType, URL: img.URL})
	}
	return req
}
