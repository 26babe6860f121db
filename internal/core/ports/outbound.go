package ports

import (
	"context"
	"io"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

// GenerativeModel is the text/vision model. The response has no structural
// guarantee; callers recover structure themselves.
type GenerativeModel interface {
	Generate(ctx context.Context, req domain.ModelRequest) (string, error)
}

// EstimateCache remembers model day counts by normalized query.
type EstimateCache interface {
	GetMany(ctx context.Context, queries []string) (map[string]domain.CachedEstimate, error)
	Upsert(ctx context.Context, entries []domain.CachedEstimate) error
}

// ScanJobRepository persists asynchronous scan state.
type ScanJobRepository interface {
	Create(ctx context.Context, job *domain.ScanJob) error
	GetByID(ctx context.Context, id string) (*domain.ScanJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.ScanJobStatus, errMessage string) error
	SaveResult(ctx context.Context, id string, result domain.BatchResult) error
}

// ObjectStorage stores queued scan payloads.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes and consumes scan-requested events.
type MessageQueue interface {
	PublishScanRequested(ctx context.Context, jobID string) error
	SubscribeScanRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentTextExtractor pulls plain text out of an uploaded receipt document.
type DocumentTextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// PipelineObserver receives pipeline events for metrics.
type PipelineObserver interface {
	RecoveryFinished(operation, stage string, ok bool)
	RepairCalled(operation string)
	ItemsEmitted(source domain.EstimateSource, count int)
	ItemsDropped(reason string, count int)
	CacheLookup(result string)
	ExpiryEstimated(source domain.EstimateSource)
}
