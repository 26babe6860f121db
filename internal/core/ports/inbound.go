package ports

import (
	"context"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

// InventoryScanner runs batch extraction synchronously.
type InventoryScanner interface {
	Scan(ctx context.Context, req domain.ScanRequest) (*domain.BatchResult, error)
}

// ExpiryPredictor estimates shelf life for a single item.
type ExpiryPredictor interface {
	Predict(ctx context.Context, req domain.ExpiryRequest) (*domain.ExpiryEstimate, error)
}

// ScanJobSubmitter queues a batch extraction for the worker.
type ScanJobSubmitter interface {
	Submit(ctx context.Context, req domain.ScanRequest) (*domain.ScanJob, error)
}

// ScanJobReader is the read model for queued scans.
type ScanJobReader interface {
	GetByID(ctx context.Context, id string) (*domain.ScanJob, error)
}

// ScanJobProcessor is the worker-side contract.
type ScanJobProcessor interface {
	ProcessByID(ctx context.Context, jobID string) error
}

// InventoryExporter renders a batch as a spreadsheet.
type InventoryExporter interface {
	ExportXLSX(ctx context.Context, batch domain.BatchResult) ([]byte, error)
}
