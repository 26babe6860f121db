package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

type scanJobRepoFake struct {
	jobs        map[string]*domain.ScanJob
	statusCalls []domain.ScanJobStatus
	errMessages []string
	results     map[string]domain.BatchResult
	createErr   error
}

func newScanJobRepoFake() *scanJobRepoFake {
	return &scanJobRepoFake{jobs: map[string]*domain.ScanJob{}, results: map[string]domain.BatchResult{}}
}

func (f *scanJobRepoFake) Create(_ context.Context, job *domain.ScanJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyJob := *job
	f.jobs[job.ID] = &copyJob
	return nil
}

func (f *scanJobRepoFake) GetByID(_ context.Context, id string) (*domain.ScanJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrScanJobNotFound
	}
	copyJob := *job
	return &copyJob, nil
}

func (f *scanJobRepoFake) UpdateStatus(_ context.Context, id string, status domain.ScanJobStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, status)
	f.errMessages = append(f.errMessages, errMessage)
	if job, ok := f.jobs[id]; ok {
		job.Status = status
		job.Error = errMessage
	}
	return nil
}

func (f *scanJobRepoFake) SaveResult(_ context.Context, id string, result domain.BatchResult) error {
	f.results[id] = result
	return nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishScanRequested(_ context.Context, jobID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, jobID)
	return nil
}

func (f *queueFake) SubscribeScanRequested(context.Context, func(context.Context, string) error) error {
	return nil
}

type scannerFake struct {
	got    domain.ScanRequest
	result *domain.BatchResult
	err    error
}

func (f *scannerFake) Scan(_ context.Context, req domain.ScanRequest) (*domain.BatchResult, error) {
	f.got = req
	return f.result, f.err
}

func TestSubmitScanJobStoresPayloadAndPublishes(t *testing.T) {
	repo := newScanJobRepoFake()
	storage := newStorageFake()
	queue := &queueFake{}
	uc := NewSubmitScanJobUseCase(repo, storage, queue, ScanConfig{})

	job, err := uc.Submit(context.Background(), domain.ScanRequest{
		Mode:   "fridge",
		Images: []domain.ImageInput{{Base64: "data:image/webp;base64,aGk="}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.Status != domain.ScanJobQueued || job.Mode != domain.ModeFridge {
		t.Fatalf("unexpected job %+v", job)
	}
	if len(queue.published) != 1 || queue.published[0] != job.ID {
		t.Fatalf("expected job id published, got %v", queue.published)
	}
	payload, ok := storage.objects[job.StorageKey]
	if !ok {
		t.Fatalf("expected payload under %s", job.StorageKey)
	}
	if !strings.Contains(string(payload), `"mimeType":"image/webp"`) || strings.Contains(string(payload), "data:image") {
		t.Fatalf("expected normalized image payload, got %s", payload)
	}
}

func TestSubmitScanJobRejectsInvalidRequest(t *testing.T) {
	queue := &queueFake{}
	uc := NewSubmitScanJobUseCase(newScanJobRepoFake(), newStorageFake(), queue, ScanConfig{})

	if _, err := uc.Submit(context.Background(), domain.ScanRequest{Mode: "fridge"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(queue.published) != 0 {
		t.Fatalf("invalid requests must not be published")
	}
}

func TestProcessScanJobSuccess(t *testing.T) {
	repo := newScanJobRepoFake()
	storage := newStorageFake()
	submit := NewSubmitScanJobUseCase(repo, storage, &queueFake{}, ScanConfig{})
	job, err := submit.Submit(context.Background(), domain.ScanRequest{Mode: "text", Text: "2 apples"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	result := &domain.BatchResult{Items: []domain.InventoryItem{{Name: "apple", Quantity: 2}}}
	scanner := &scannerFake{result: result}
	uc := NewProcessScanJobUseCase(repo, storage, scanner, nil)

	if err := uc.ProcessByID(context.Background(), job.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	if scanner.got.Mode != domain.ModeText || scanner.got.Text != "2 apples" {
		t.Fatalf("unexpected scan request %+v", scanner.got)
	}
	if got := repo.statusCalls; len(got) != 2 || got[0] != domain.ScanJobProcessing || got[1] != domain.ScanJobReady {
		t.Fatalf("unexpected status transitions %v", got)
	}
	if len(repo.results[job.ID].Items) != 1 {
		t.Fatalf("expected result saved")
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != job.StorageKey {
		t.Fatalf("expected payload deleted, got %v", storage.deleted)
	}
}

func TestProcessScanJobMarksFailed(t *testing.T) {
	repo := newScanJobRepoFake()
	storage := newStorageFake()
	submit := NewSubmitScanJobUseCase(repo, storage, &queueFake{}, ScanConfig{})
	job, err := submit.Submit(context.Background(), domain.ScanRequest{Mode: "text", Text: "2 apples"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	scanErr := domain.WrapError(domain.ErrModelUnavailable, "scan.extract", errors.New("timeout"))
	uc := NewProcessScanJobUseCase(repo, storage, &scannerFake{err: scanErr}, nil)

	err = uc.ProcessByID(context.Background(), job.ID)
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected model unavailable, got %v", err)
	}
	last := len(repo.statusCalls) - 1
	if repo.statusCalls[last] != domain.ScanJobFailed || !strings.Contains(repo.errMessages[last], "timeout") {
		t.Fatalf("expected failed status with message, got %v %v", repo.statusCalls, repo.errMessages)
	}
	if len(storage.deleted) != 0 {
		t.Fatalf("failed jobs keep their payload")
	}
}
